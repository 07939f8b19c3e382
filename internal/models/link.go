package models

import (
	"time"
)

type Link struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ShortCode string    `gorm:"unique;not null;size:20;index" json:"short_code"`
	TargetURL string    `gorm:"not null;type:text" json:"target_url"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	Visits []Visit `gorm:"foreignKey:LinkID;constraint:OnDelete:CASCADE" json:"visits,omitempty"`
}

func (Link) TableName() string {
	return "links"
}
