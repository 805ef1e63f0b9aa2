package services

import (
	"errors"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"attendance-backend/models"
)

// Narrow storage interfaces so the verification core never touches a global
// database handle and can run against in-memory fakes in tests.

type EventStore interface {
	EventByPublicID(publicID string) (models.Event, error)
	EventByID(id uint) (models.Event, error)
}

type AttendanceFilter struct {
	EventID uint
	UserID  uint
	Status  models.VerificationStatus
	Limit   int
}

type AttendanceStore interface {
	CreateAttendance(rec *models.AttendanceRecord) error
	AttendanceByID(id uint) (models.AttendanceRecord, error)
	SaveCheckout(id uint, at time.Time) error
	// CompareAndSwapStatus applies updates only while the record still holds
	// one of the expected statuses; reports whether a row was written.
	CompareAndSwapStatus(id uint, expect []models.VerificationStatus, updates map[string]interface{}) (bool, error)
	ListAttendance(filter AttendanceFilter) ([]models.AttendanceRecord, error)
	CountByStatus(eventID uint) (map[models.VerificationStatus]int64, error)
}

// GormStore backs the store interfaces with MySQL through gorm.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) EventByPublicID(publicID string) (models.Event, error) {
	var ev models.Event
	err := s.DB.Where("public_id = ?", publicID).First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Event{}, ErrEventNotFound
	}
	return ev, err
}

func (s *GormStore) EventByID(id uint) (models.Event, error) {
	var ev models.Event
	err := s.DB.First(&ev, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Event{}, ErrEventNotFound
	}
	return ev, err
}

func (s *GormStore) CreateAttendance(rec *models.AttendanceRecord) error {
	if err := s.DB.Create(rec).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrDuplicateAttendance
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateAttendance
		}
		return err
	}
	return nil
}

func (s *GormStore) AttendanceByID(id uint) (models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := s.DB.First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AttendanceRecord{}, ErrAttendanceNotFound
	}
	return rec, err
}

func (s *GormStore) SaveCheckout(id uint, at time.Time) error {
	return s.DB.Model(&models.AttendanceRecord{}).
		Where("id = ?", id).
		Update("checked_out_at", at).Error
}

func (s *GormStore) CompareAndSwapStatus(id uint, expect []models.VerificationStatus, updates map[string]interface{}) (bool, error) {
	result := s.DB.Model(&models.AttendanceRecord{}).
		Where("id = ? AND verification_status IN ?", id, expect).
		Updates(updates)
	return result.RowsAffected > 0, result.Error
}

func (s *GormStore) ListAttendance(filter AttendanceFilter) ([]models.AttendanceRecord, error) {
	q := s.DB.Model(&models.AttendanceRecord{}).Order("id DESC")
	if filter.EventID != 0 {
		q = q.Where("event_id = ?", filter.EventID)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("verification_status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var recs []models.AttendanceRecord
	err := q.Find(&recs).Error
	return recs, err
}

func (s *GormStore) CountByStatus(eventID uint) (map[models.VerificationStatus]int64, error) {
	type row struct {
		VerificationStatus models.VerificationStatus
		Total              int64
	}
	var rows []row
	err := s.DB.Model(&models.AttendanceRecord{}).
		Select("verification_status, COUNT(*) AS total").
		Where("event_id = ?", eventID).
		Group("verification_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.VerificationStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.VerificationStatus] = r.Total
	}
	return counts, nil
}
