package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

type UserStatus string

const (
	RoleStudent   UserRole = "student"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"

	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

func (r UserRole) CanVerify() bool {
	return r == RoleModerator || r == RoleAdmin
}

type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FullName   string         `gorm:"size:255" json:"full_name"`
	Email      string         `gorm:"uniqueIndex;size:150" json:"email"`
	Password   string         `gorm:"size:255" json:"-"` // store hashed password, never return in JSON
	StudentID  string         `gorm:"size:64;index" json:"student_id"`
	Department string         `gorm:"size:255" json:"department"`
	Role       UserRole       `gorm:"size:32;default:'student';index" json:"role"`
	Status     UserStatus     `gorm:"size:32;default:'active'" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
