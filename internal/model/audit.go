package model

import "time"

// AuditEntry is one forwarded mutation. It is a local trail only; the
// backend remains the system of record.
type AuditEntry struct {
	ID         int64     `gorm:"primaryKey"`
	At         time.Time `gorm:"not null;index"`
	RequestID  string    `gorm:"size:64"`
	Method     string    `gorm:"size:16;not null"`
	Path       string    `gorm:"size:512;not null"`
	UserID     string    `gorm:"size:64;index"`
	Role       string    `gorm:"size:32"`
	ClientIP   string    `gorm:"size:64"`
	Status     int       `gorm:"not null"`
	DurationMS int64     `gorm:"not null"`
}
