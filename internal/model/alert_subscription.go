package model

import "time"

// AlertSubscription holds a browser push subscription for bed alerts.
type AlertSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Hospitals []*Hospital `gorm:"many2many:subscription_hospital_mapping;"`
}
