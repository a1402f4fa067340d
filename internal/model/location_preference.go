package model

import "time"

// LocationPreference remembers whether a client refused geolocation so it is
// not prompted again.
type LocationPreference struct {
	ClientID       string    `gorm:"primaryKey;size:64" json:"clientId"`
	LocationDenied bool      `gorm:"not null" json:"locationDenied"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`
}
