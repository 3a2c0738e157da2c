package model

import "time"

// PushSubscription holds the information for an admin browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	UserID    string    `gorm:"size:64;index"`
	CreatedAt time.Time `gorm:"not null"`
}
