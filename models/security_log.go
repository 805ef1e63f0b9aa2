package models

import (
	"time"

	"gorm.io/datatypes"
)

// SecurityLog is the append-only audit trail. Entries are created by every
// sensitive action and never updated or deleted.
type SecurityLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ActorID    *uint          `gorm:"index" json:"actor_id"` // nil for system actions
	Action     string         `gorm:"size:64;not null;index" json:"action"`
	EntityType string         `gorm:"size:64;index" json:"entity_type"`
	EntityID   uint           `gorm:"index" json:"entity_id"`
	Metadata   datatypes.JSON `json:"metadata"`
	IP         string         `gorm:"size:64" json:"ip"`
	UserAgent  string         `gorm:"size:255" json:"user_agent"`

	CreatedAt time.Time `json:"created_at"`
}
