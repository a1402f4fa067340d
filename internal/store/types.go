package store

import (
	"bedfinder-backend/internal/apperr"
	"bedfinder-backend/internal/model"
)

// ErrNotFound is wrapped by lookups that match no row.
var ErrNotFound = apperr.NotFound("record not found")

// Stats aggregates the current hospital set.
type Stats struct {
	TotalHospitals    int     `json:"totalHospitals"`
	TotalAvailable    int     `json:"totalAvailableBeds"`
	AverageERWait     float64 `json:"averageErWait"`
	EmergencyServices int     `json:"emergencyServices"`
}

// ERStep returns the signed change to apply to a hospital's ER availability.
type ERStep func(h model.Hospital) int

const subscriptionJoinTable = "subscription_hospital_mapping"
