// Package seed holds the static hospital set used when the upstream feed is
// unavailable.
package seed

import (
	"time"

	"bedfinder-backend/internal/model"
)

var hospitals = []model.Hospital{
	{
		ID:   "1",
		Name: "St. Mary's Medical Center",
		Type: "General Acute Care Hospital",
		Address: model.Address{
			Street: "1234 Healthcare Drive", City: "San Francisco", State: "CA", Zip: "94102",
			Coordinates: model.Coordinates{Lat: 37.7849, Lng: -122.4094},
		},
		Contact: model.Contact{Phone: "(415) 555-1234", Emergency: "(415) 555-9999", Website: "https://stmarys.org"},
		Beds: model.Beds{
			ER:        model.BedCount{Available: 12, Total: 20},
			ICU:       model.BedCount{Available: 5, Total: 15},
			Pediatric: model.BedCount{Available: 8, Total: 12},
			Maternity: model.BedCount{Available: 7, Total: 10},
		},
		WaitTimes: model.WaitTimes{ER: 15, Pediatric: 10},
		Features: model.Features{
			TraumaLevel:            "Level II Trauma Center",
			Has24EmergencyServices: true,
			HasPharmacy:            true,
			HasSurgicalSuites:      true,
			HasLaboratory:          true,
			HasImaging:             true,
			HasFreeParking:         true,
		},
		Specialties: []string{"Cardiology", "Emergency Medicine", "Pediatrics", "Maternity", "Orthopedics"},
		Insurance:   []string{"Medicare", "Medicaid", "Blue Cross Blue Shield", "Aetna", "Cigna", "United Healthcare"},
	},
	{
		ID:   "2",
		Name: "Central City Hospital",
		Type: "General Acute Care Hospital",
		Address: model.Address{
			Street: "5678 Medical Plaza", City: "San Francisco", State: "CA", Zip: "94103",
			Coordinates: model.Coordinates{Lat: 37.7749, Lng: -122.4194},
		},
		Contact: model.Contact{Phone: "(415) 555-2345", Emergency: "(415) 555-8888", Website: "https://centralcity.org"},
		Beds: model.Beds{
			ER:        model.BedCount{Available: 4, Total: 18},
			ICU:       model.BedCount{Available: 1, Total: 12},
			Pediatric: model.BedCount{Available: 2, Total: 8},
			Maternity: model.BedCount{Available: 3, Total: 8},
		},
		WaitTimes: model.WaitTimes{ER: 35, Pediatric: 25},
		Features: model.Features{
			TraumaLevel:            "Level III Trauma Center",
			TeachingHospital:       true,
			Has24EmergencyServices: true,
			HasHelicopterPad:       true,
			HasPharmacy:            true,
			HasSurgicalSuites:      true,
			HasLaboratory:          true,
			HasImaging:             true,
		},
		Specialties: []string{"Emergency Medicine", "General Surgery", "Internal Medicine", "Neurology"},
		Insurance:   []string{"Medicare", "Medicaid", "Kaiser Permanente", "Blue Cross Blue Shield"},
	},
	{
		ID:   "3",
		Name: "Riverside General Hospital",
		Type: "General Acute Care Hospital",
		Address: model.Address{
			Street: "910 Riverside Boulevard", City: "San Francisco", State: "CA", Zip: "94104",
			Coordinates: model.Coordinates{Lat: 37.7649, Lng: -122.3994},
		},
		Contact: model.Contact{Phone: "(415) 555-3456", Emergency: "(415) 555-7777", Website: "https://riversidegeneral.org"},
		Beds: model.Beds{
			ER:        model.BedCount{Available: 1, Total: 15},
			ICU:       model.BedCount{Available: 0, Total: 10},
			Pediatric: model.BedCount{Available: 1, Total: 6},
			Maternity: model.BedCount{Available: 0, Total: 5},
		},
		WaitTimes: model.WaitTimes{ER: 90, Pediatric: 75},
		Features: model.Features{
			TraumaLevel:            model.NotATraumaCenter,
			Has24EmergencyServices: true,
			HasPharmacy:            true,
			HasLaboratory:          true,
			HasFreeParking:         true,
		},
		Specialties: []string{"Emergency Medicine", "Family Medicine", "Internal Medicine"},
		Insurance:   []string{"Medicare", "Medicaid"},
	},
	{
		ID:   "4",
		Name: "UCSF Benioff Children's Hospital",
		Type: "Pediatric Specialty Hospital",
		Address: model.Address{
			Street: "1825 Fourth Street", City: "San Francisco", State: "CA", Zip: "94158",
			Coordinates: model.Coordinates{Lat: 37.7649, Lng: -122.3894},
		},
		Contact: model.Contact{Phone: "(415) 555-4567", Emergency: "(415) 555-6666", Website: "https://ucsf.edu/benioff"},
		Beds: model.Beds{
			ER:        model.BedCount{Available: 6, Total: 25},
			ICU:       model.BedCount{Available: 8, Total: 20},
			Pediatric: model.BedCount{Available: 15, Total: 50},
			Maternity: model.BedCount{Available: 0, Total: 0},
		},
		WaitTimes: model.WaitTimes{ER: 20, Pediatric: 15},
		Features: model.Features{
			TraumaLevel:            "Level I Pediatric Trauma Center",
			TeachingHospital:       true,
			Has24EmergencyServices: true,
			HasHelicopterPad:       true,
			HasPharmacy:            true,
			HasSurgicalSuites:      true,
			HasLaboratory:          true,
			HasImaging:             true,
		},
		Specialties: []string{"Pediatric Emergency", "Pediatric Surgery", "Neonatology", "Pediatric Cardiology", "Pediatric Oncology"},
		Insurance:   []string{"Medicare", "Medicaid", "All major insurance accepted"},
	},
	{
		ID:   "5",
		Name: "California Pacific Medical Center",
		Type: "General Acute Care Hospital",
		Address: model.Address{
			Street: "2333 Buchanan Street", City: "San Francisco", State: "CA", Zip: "94115",
			Coordinates: model.Coordinates{Lat: 37.7899, Lng: -122.4344},
		},
		Contact: model.Contact{Phone: "(415) 555-5678", Emergency: "(415) 555-5555", Website: "https://cpmc.org"},
		Beds: model.Beds{
			ER:        model.BedCount{Available: 3, Total: 22},
			ICU:       model.BedCount{Available: 2, Total: 18},
			Pediatric: model.BedCount{Available: 1, Total: 10},
			Maternity: model.BedCount{Available: 5, Total: 12},
		},
		WaitTimes: model.WaitTimes{ER: 45, Pediatric: 50},
		Features: model.Features{
			TraumaLevel:            "Level II Trauma Center",
			Has24EmergencyServices: true,
			HasPharmacy:            true,
			HasSurgicalSuites:      true,
			HasLaboratory:          true,
			HasImaging:             true,
			HasFreeParking:         true,
		},
		Specialties: []string{"Cardiology", "Maternity", "Orthopedics", "Emergency Medicine", "Women's Health"},
		Insurance:   []string{"Medicare", "Blue Cross Blue Shield", "Aetna", "United Healthcare"},
	},
	{
		ID:   "6",
		Name: "San Francisco General Hospital",
		Type: "Public Hospital - Level I Trauma Center",
		Address: model.Address{
			Street: "1001 Potrero Avenue", City: "San Francisco", State: "CA", Zip: "94110",
			Coordinates: model.Coordinates{Lat: 37.7557, Lng: -122.4044},
		},
		Contact: model.Contact{Phone: "(415) 555-6789", Emergency: "(415) 555-4444", Website: "https://sfgh.org"},
		Beds: model.Beds{
			ER:        model.BedCount{Available: 18, Total: 40},
			ICU:       model.BedCount{Available: 12, Total: 30},
			Pediatric: model.BedCount{Available: 6, Total: 15},
			Maternity: model.BedCount{Available: 4, Total: 10},
		},
		WaitTimes: model.WaitTimes{ER: 25, Pediatric: 30},
		Features: model.Features{
			TraumaLevel:            "Level I Trauma Center",
			TeachingHospital:       true,
			Has24EmergencyServices: true,
			HasHelicopterPad:       true,
			HasPharmacy:            true,
			HasSurgicalSuites:      true,
			HasLaboratory:          true,
			HasImaging:             true,
			HasFreeParking:         true,
		},
		Specialties: []string{"Trauma", "Emergency Medicine", "Burn Center", "Neurosurgery", "Cardiology", "All Specialties"},
		Insurance:   []string{"All insurance accepted", "Uninsured accepted", "Medicare", "Medicaid"},
	},
}

// Hospitals returns fresh copies of the seed set stamped with now.
func Hospitals(now time.Time) []model.Hospital {
	out := make([]model.Hospital, 0, len(hospitals))
	for _, h := range hospitals {
		c := h.Clone()
		c.LastUpdated = now
		out = append(out, c)
	}
	return out
}
