package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bedfinder-backend/internal/model"
)

// Response models the top-level structure of the upstream feed.
type Response struct {
	Hospitals []Item `json:"hospitals"`
	Count     int    `json:"count"`
}

// Item is one loosely typed upstream hospital record.
type Item struct {
	ID                LooseID  `json:"id"`
	Name              string   `json:"name"`
	HospitalType      string   `json:"hospital_type"`
	Address           string   `json:"address"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	Zip               string   `json:"zip"`
	Lat               float64  `json:"lat"`
	Lng               float64  `json:"lng"`
	Phone             string   `json:"phone"`
	Beds              ItemBeds `json:"beds"`
	WaitTime          int      `json:"waitTime"`
	EmergencyServices bool     `json:"emergency_services"`
	Specialties       []string `json:"specialties"`
}

type ItemBeds struct {
	ER        int `json:"er"`
	ICU       int `json:"icu"`
	Pediatric int `json:"pediatric"`
	Maternity int `json:"maternity"`
}

// LooseID accepts either a JSON number or a JSON string.
type LooseID string

func (id *LooseID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = LooseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	*id = LooseID(n.String())
	return nil
}

const (
	defaultHospitalType = "General Acute Care Hospital"
	traumaCenterLevel   = "Level I Trauma Center"

	erTotalHeadroom    = 10
	otherTotalHeadroom = 5
	pediatricWaitExtra = 5
)

var feedInsurance = []string{"Medicare", "Medicaid"}

// ToHospital maps an upstream record to the internal model.
func (it Item) ToHospital(now time.Time) model.Hospital {
	hospitalType := it.HospitalType
	if hospitalType == "" {
		hospitalType = defaultHospitalType
	}

	traumaLevel := model.NotATraumaCenter
	for _, s := range it.Specialties {
		if strings.Contains(strings.ToLower(s), "trauma") {
			traumaLevel = traumaCenterLevel
			break
		}
	}

	return model.Hospital{
		ID:   string(it.ID),
		Name: it.Name,
		Type: hospitalType,
		Address: model.Address{
			Street:      it.Address,
			City:        it.City,
			State:       it.State,
			Zip:         it.Zip,
			Coordinates: model.Coordinates{Lat: it.Lat, Lng: it.Lng},
		},
		Contact: model.Contact{
			Phone:     it.Phone,
			Emergency: it.Phone,
		},
		Beds: model.Beds{
			ER:        model.BedCount{Available: it.Beds.ER, Total: it.Beds.ER + erTotalHeadroom},
			ICU:       model.BedCount{Available: it.Beds.ICU, Total: it.Beds.ICU + otherTotalHeadroom},
			Pediatric: model.BedCount{Available: it.Beds.Pediatric, Total: it.Beds.Pediatric + otherTotalHeadroom},
			Maternity: model.BedCount{Available: it.Beds.Maternity, Total: it.Beds.Maternity + otherTotalHeadroom},
		},
		WaitTimes: model.WaitTimes{
			ER:        it.WaitTime,
			Pediatric: it.WaitTime + pediatricWaitExtra,
		},
		Features: model.Features{
			TraumaLevel:            traumaLevel,
			Has24EmergencyServices: it.EmergencyServices,
			HasPharmacy:            true,
			HasSurgicalSuites:      true,
			HasLaboratory:          true,
			HasImaging:             true,
			HasFreeParking:         true,
		},
		Specialties: append([]string{}, it.Specialties...),
		Insurance:   append([]string(nil), feedInsurance...),
		LastUpdated: now,
	}
}
