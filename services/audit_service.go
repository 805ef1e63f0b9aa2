package services

import (
	"encoding/json"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"attendance-backend/models"
)

// AuditRecorder is the append-only sink the state machine writes to.
type AuditRecorder interface {
	Record(action string, actorID *uint, entityType string, entityID uint, metadata map[string]interface{}, ip, userAgent string)
}

// SecurityLogService appends audit entries. Write failures are reported to
// the operational log only; an audit outage must never block or roll back the
// action it describes.
type SecurityLogService struct {
	DB *gorm.DB
}

func NewSecurityLogService(db *gorm.DB) *SecurityLogService {
	return &SecurityLogService{DB: db}
}

func (s *SecurityLogService) Record(action string, actorID *uint, entityType string, entityID uint, metadata map[string]interface{}, ip, userAgent string) {
	var payload datatypes.JSON
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			log.Printf("warning: security log metadata marshal failed (action=%s): %v", action, err)
		} else {
			payload = datatypes.JSON(b)
		}
	}

	entry := models.SecurityLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   payload,
		IP:         ip,
		UserAgent:  userAgent,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		log.Printf("warning: security log write failed (action=%s): %v", action, err)
	}
}

// List returns the newest entries for the admin dashboard.
func (s *SecurityLogService) List(limit int) ([]models.SecurityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []models.SecurityLog
	err := s.DB.Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
