package model

import "time"

// SecurityEvent records a request rejected by the security guard.
type SecurityEvent struct {
	ID     int64     `gorm:"primaryKey" json:"id"`
	At     time.Time `gorm:"not null;index" json:"at"`
	IP     string    `gorm:"size:64;not null;index" json:"ip"`
	Kind   string    `gorm:"size:32;not null;index" json:"kind"`
	Key    string    `gorm:"size:64" json:"key"`
	Detail string    `gorm:"size:512" json:"detail"`
}
