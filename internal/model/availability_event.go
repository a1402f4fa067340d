package model

import "time"

// AvailabilityEvent is one observed change of a hospital's bed availability
// (history table, append only).
type AvailabilityEvent struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"-"`
	HospitalID string      `gorm:"size:64;not null;index:idx_availability_hospital_observed,priority:1" json:"hospitalId"`
	Category   BedCategory `gorm:"size:16;not null" json:"category"`
	Previous   int         `gorm:"not null" json:"previous"`
	Current    int         `gorm:"not null" json:"current"`
	Source     string      `gorm:"size:16;not null" json:"source"`
	ObservedAt time.Time   `gorm:"not null;index:idx_availability_hospital_observed,priority:2" json:"observedAt"`
}

// Event sources.
const (
	SourceFeed     = "feed"
	SourceLiveness = "liveness"
)

// Reopened reports whether the change brought a category back from zero.
func (e AvailabilityEvent) Reopened() bool {
	return e.Previous == 0 && e.Current > 0
}
