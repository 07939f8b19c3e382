package models

import (
	"time"
)

// Visit rows are append-only: a row is inserted when a short link is
// followed and never updated afterwards.
type Visit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LinkID     uint      `gorm:"not null;index" json:"link_id"`
	Timestamp  time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"timestamp"`
	Browser    string    `gorm:"size:100" json:"browser"`
	OS         string    `gorm:"size:100" json:"os"`
	DeviceType string    `gorm:"size:50" json:"device_type"`
	Referrer   string    `gorm:"size:255;default:'Direct'" json:"referrer"`
}
