package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// BedCategory is one of the bed inventories a hospital reports.
type BedCategory string

const (
	CategoryER        BedCategory = "er"
	CategoryICU       BedCategory = "icu"
	CategoryPediatric BedCategory = "pediatric"
	CategoryMaternity BedCategory = "maternity"
)

// BedCategories lists every category in display order.
var BedCategories = []BedCategory{CategoryER, CategoryICU, CategoryPediatric, CategoryMaternity}

// ParseBedCategory matches a category name case-insensitively.
func ParseBedCategory(s string) (BedCategory, bool) {
	c := BedCategory(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range BedCategories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// AvailabilityStatus is the tri-state summary of ER+ICU capacity.
type AvailabilityStatus string

const (
	AvailabilityHigh   AvailabilityStatus = "high"
	AvailabilityMedium AvailabilityStatus = "medium"
	AvailabilityLow    AvailabilityStatus = "low"
)

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Address struct {
	Street      string      `gorm:"size:256" json:"street"`
	City        string      `gorm:"size:128;index" json:"city"`
	State       string      `gorm:"size:32" json:"state"`
	Zip         string      `gorm:"size:16" json:"zip"`
	Coordinates Coordinates `gorm:"embedded" json:"coordinates"`
}

type Contact struct {
	Phone     string `gorm:"size:32" json:"phone"`
	Emergency string `gorm:"size:32" json:"emergency"`
	Website   string `gorm:"size:256" json:"website"`
}

// BedCount is the available/total pair of one bed category.
type BedCount struct {
	Available int `gorm:"not null" json:"available"`
	Total     int `gorm:"not null" json:"total"`
}

type Beds struct {
	ER        BedCount `gorm:"embedded;embeddedPrefix:er_" json:"er"`
	ICU       BedCount `gorm:"embedded;embeddedPrefix:icu_" json:"icu"`
	Pediatric BedCount `gorm:"embedded;embeddedPrefix:pediatric_" json:"pediatric"`
	Maternity BedCount `gorm:"embedded;embeddedPrefix:maternity_" json:"maternity"`
}

// WaitTimes are expected queue times in minutes.
type WaitTimes struct {
	ER        int `gorm:"not null" json:"er"`
	Pediatric int `gorm:"not null" json:"pediatric"`
}

type Features struct {
	TraumaLevel            string `gorm:"size:128" json:"traumaLevel"`
	TeachingHospital       bool   `json:"teachingHospital"`
	Has24EmergencyServices bool   `gorm:"column:emergency_24h" json:"has24EmergencyServices"`
	HasHelicopterPad       bool   `json:"hasHelicopterPad"`
	HasPharmacy            bool   `json:"hasPharmacy"`
	HasSurgicalSuites      bool   `json:"hasSurgicalSuites"`
	HasLaboratory          bool   `json:"hasLaboratory"`
	HasImaging             bool   `json:"hasImaging"`
	HasFreeParking         bool   `json:"hasFreeParking"`
}

// NotATraumaCenter is the trauma level of facilities without a designation.
const NotATraumaCenter = "Not a Trauma Center"

// IsTraumaCenter reports whether the facility carries a trauma designation.
func (f Features) IsTraumaCenter() bool {
	return f.TraumaLevel != "" && f.TraumaLevel != NotATraumaCenter
}

// Hospital is a single facility with its bed inventory.
type Hospital struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	Type        string    `gorm:"size:128" json:"type"`
	Address     Address   `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Contact     Contact   `gorm:"embedded;embeddedPrefix:contact_" json:"contact"`
	Beds        Beds      `gorm:"embedded;embeddedPrefix:beds_" json:"beds"`
	WaitTimes   WaitTimes `gorm:"embedded;embeddedPrefix:wait_" json:"waitTimes"`
	Features    Features  `gorm:"embedded;embeddedPrefix:feature_" json:"features"`
	Specialties []string  `gorm:"serializer:json" json:"specialties"`
	Insurance   []string  `gorm:"serializer:json" json:"insurance"`
	LastUpdated time.Time `gorm:"not null" json:"lastUpdated"`

	// Index in the set last passed to the store; lists keep this order.
	Position int `gorm:"index" json:"-"`

	// Derived from a reference location; never persisted.
	Distance   *float64 `gorm:"-" json:"distance,omitempty"`
	TravelTime *int     `gorm:"-" json:"travelTime,omitempty"`
}

// Bed returns the inventory of the given category.
func (h *Hospital) Bed(c BedCategory) BedCount {
	switch c {
	case CategoryER:
		return h.Beds.ER
	case CategoryICU:
		return h.Beds.ICU
	case CategoryPediatric:
		return h.Beds.Pediatric
	case CategoryMaternity:
		return h.Beds.Maternity
	}
	return BedCount{}
}

// TotalAvailable sums available beds over every category.
func (h *Hospital) TotalAvailable() int {
	return h.Beds.ER.Available + h.Beds.ICU.Available + h.Beds.Pediatric.Available + h.Beds.Maternity.Available
}

// AvailabilityStatus classifies the summed ER and ICU availability.
func (h *Hospital) AvailabilityStatus() AvailabilityStatus {
	sum := h.Beds.ER.Available + h.Beds.ICU.Available
	switch {
	case sum >= 8:
		return AvailabilityHigh
	case sum >= 3:
		return AvailabilityMedium
	default:
		return AvailabilityLow
	}
}

// SetDerived records the distance and travel time together.
func (h *Hospital) SetDerived(miles float64, minutes int) {
	h.Distance = &miles
	h.TravelTime = &minutes
}

// ClearDerived drops the location-dependent fields.
func (h *Hospital) ClearDerived() {
	h.Distance = nil
	h.TravelTime = nil
}

// DistanceOr returns the distance in miles, or def when unknown.
func (h *Hospital) DistanceOr(def float64) float64 {
	if h.Distance == nil {
		return def
	}
	return *h.Distance
}

// HasSpecialty reports whether any specialty contains substr, ignoring case.
func (h *Hospital) HasSpecialty(substr string) bool {
	substr = strings.ToLower(substr)
	for _, s := range h.Specialties {
		if strings.Contains(strings.ToLower(s), substr) {
			return true
		}
	}
	return false
}

// Validate checks the record invariants.
func (h *Hospital) Validate() error {
	if strings.TrimSpace(h.ID) == "" {
		return errors.New("hospital id is empty")
	}
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("hospital %s: name is empty", h.ID)
	}
	for _, c := range BedCategories {
		b := h.Bed(c)
		if b.Available < 0 || b.Total < 0 {
			return fmt.Errorf("hospital %s: negative %s bed count", h.ID, c)
		}
		if b.Available > b.Total {
			return fmt.Errorf("hospital %s: %s available %d exceeds total %d", h.ID, c, b.Available, b.Total)
		}
	}
	if h.WaitTimes.ER < 0 || h.WaitTimes.Pediatric < 0 {
		return fmt.Errorf("hospital %s: negative wait time", h.ID)
	}
	if (h.Distance == nil) != (h.TravelTime == nil) {
		return fmt.Errorf("hospital %s: distance and travel time must be set together", h.ID)
	}
	return nil
}

// Clone returns a deep copy so callers can annotate or mutate freely.
func (h Hospital) Clone() Hospital {
	c := h
	c.Specialties = append([]string(nil), h.Specialties...)
	c.Insurance = append([]string(nil), h.Insurance...)
	if h.Distance != nil {
		d := *h.Distance
		c.Distance = &d
	}
	if h.TravelTime != nil {
		t := *h.TravelTime
		c.TravelTime = &t
	}
	return c
}
