package models

import (
	"time"

	"gorm.io/gorm"
)

type EventStatus string

const (
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

type Event struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// PublicID is the lowercase alphanumeric identifier embedded in QR payloads.
	PublicID string `gorm:"uniqueIndex;size:64" json:"public_id"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	VenueName string  `gorm:"size:255" json:"venue_name"`
	VenueLat  float64 `gorm:"column:venue_lat" json:"venue_lat"`
	VenueLng  float64 `gorm:"column:venue_lng" json:"venue_lng"`

	StartsAt time.Time `gorm:"not null" json:"starts_at"`
	EndsAt   time.Time `gorm:"not null" json:"ends_at"`

	CheckInBufferMins  int `gorm:"default:30" json:"check_in_buffer_mins"`
	CheckOutBufferMins int `gorm:"default:30" json:"check_out_buffer_mins"`

	Status    EventStatus `gorm:"size:32;default:'active';index" json:"status"`
	CreatorID uint        `gorm:"index" json:"creator_id"`
	Creator   User        `gorm:"foreignKey:CreatorID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
