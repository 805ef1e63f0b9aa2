package models

import (
	"time"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
	VerificationDisputed VerificationStatus = "disputed"
)

// Terminal reports whether the status may only be left via an appeal.
func (s VerificationStatus) Terminal() bool {
	return s == VerificationApproved || s == VerificationRejected
}

// AttendanceRecord rows are never deleted; verification history is permanent,
// so there is no gorm.DeletedAt here.
type AttendanceRecord struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EventID uint  `gorm:"not null;uniqueIndex:idx_event_user" json:"event_id"`
	UserID  uint  `gorm:"not null;uniqueIndex:idx_event_user" json:"user_id"`
	Event   Event `gorm:"foreignKey:EventID" json:"-"`
	User    User  `gorm:"foreignKey:UserID" json:"-"`

	CheckedInAt  time.Time  `gorm:"not null" json:"checked_in_at"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"`

	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	DistanceMeters float64 `json:"distance_meters"`

	FrontPhotoURL string `gorm:"size:512" json:"front_photo_url"`
	BackPhotoURL  string `gorm:"size:512" json:"back_photo_url"`
	SignatureURL  string `gorm:"size:512" json:"signature_url"`

	VerificationStatus VerificationStatus `gorm:"size:32;default:'pending';index" json:"verification_status"`
	DisputeNote        string             `gorm:"type:text" json:"dispute_note,omitempty"`
	VerifierID         *uint              `gorm:"index" json:"verifier_id,omitempty"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
