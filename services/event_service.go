package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"attendance-backend/models"
	"attendance-backend/utils"
)

// EventService manages the event catalogue. The attendance core only reads
// events; creation and editing are moderator/admin operations.
type EventService struct {
	DB    *gorm.DB
	Audit AuditRecorder
}

func NewEventService(db *gorm.DB, audit AuditRecorder) *EventService {
	return &EventService{DB: db, Audit: audit}
}

// newEventPublicID yields the lowercase alphanumeric id embedded in QR payloads.
func newEventPublicID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

type EventInput struct {
	Name               string    `json:"name" binding:"required"`
	Description        string    `json:"description"`
	VenueName          string    `json:"venue_name"`
	VenueLat           float64   `json:"venue_lat"`
	VenueLng           float64   `json:"venue_lng"`
	StartsAt           time.Time `json:"starts_at" binding:"required"`
	EndsAt             time.Time `json:"ends_at" binding:"required"`
	CheckInBufferMins  int       `json:"check_in_buffer_mins"`
	CheckOutBufferMins int       `json:"check_out_buffer_mins"`
}

var (
	ErrInvalidEventTimes = errors.New("event_times_invalid")
	ErrEventCompleted    = errors.New("event_completed")
)

func (in *EventInput) validate() error {
	if !in.EndsAt.After(in.StartsAt) {
		return ErrInvalidEventTimes
	}
	if in.CheckInBufferMins < 0 || in.CheckOutBufferMins < 0 {
		return ErrInvalidEventTimes
	}
	return nil
}

func (s *EventService) Create(actor AuthenticatedActor, in EventInput) (models.Event, error) {
	if !actor.Role.CanVerify() {
		return models.Event{}, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return models.Event{}, err
	}

	ev := models.Event{
		PublicID:           newEventPublicID(),
		Name:               strings.TrimSpace(in.Name),
		Description:        in.Description,
		VenueName:          in.VenueName,
		VenueLat:           in.VenueLat,
		VenueLng:           in.VenueLng,
		StartsAt:           in.StartsAt,
		EndsAt:             in.EndsAt,
		CheckInBufferMins:  in.CheckInBufferMins,
		CheckOutBufferMins: in.CheckOutBufferMins,
		Status:             models.EventActive,
		CreatorID:          actor.ID,
	}
	if ev.CheckInBufferMins == 0 {
		ev.CheckInBufferMins = 30
	}
	if ev.CheckOutBufferMins == 0 {
		ev.CheckOutBufferMins = 30
	}

	if err := s.DB.Create(&ev).Error; err != nil {
		return models.Event{}, err
	}

	s.Audit.Record("event.create", &actor.ID, "event", ev.ID, map[string]interface{}{
		"public_id": ev.PublicID,
	}, "", "")
	return ev, nil
}

func (s *EventService) byID(id uint) (models.Event, error) {
	var ev models.Event
	err := s.DB.First(&ev, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Event{}, ErrEventNotFound
	}
	return ev, err
}

func (s *EventService) Get(id uint) (models.Event, error) {
	return s.byID(id)
}

func (s *EventService) List(status models.EventStatus) ([]models.Event, error) {
	q := s.DB.Model(&models.Event{}).Order("starts_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var events []models.Event
	err := q.Find(&events).Error
	return events, err
}

// Update edits an event. Completed events are immutable except for
// administrative correction.
func (s *EventService) Update(actor AuthenticatedActor, id uint, in EventInput) (models.Event, error) {
	if !actor.Role.CanVerify() {
		return models.Event{}, ErrForbidden
	}
	ev, err := s.byID(id)
	if err != nil {
		return models.Event{}, err
	}
	if ev.Status == models.EventCompleted && actor.Role != models.RoleAdmin {
		return models.Event{}, ErrEventCompleted
	}
	if err := in.validate(); err != nil {
		return models.Event{}, err
	}

	ev.Name = strings.TrimSpace(in.Name)
	ev.Description = in.Description
	ev.VenueName = in.VenueName
	ev.VenueLat = in.VenueLat
	ev.VenueLng = in.VenueLng
	ev.StartsAt = in.StartsAt
	ev.EndsAt = in.EndsAt
	if in.CheckInBufferMins > 0 {
		ev.CheckInBufferMins = in.CheckInBufferMins
	}
	if in.CheckOutBufferMins > 0 {
		ev.CheckOutBufferMins = in.CheckOutBufferMins
	}
	if err := s.DB.Save(&ev).Error; err != nil {
		return models.Event{}, err
	}

	s.Audit.Record("event.update", &actor.ID, "event", ev.ID, nil, "", "")
	return ev, nil
}

// SetStatus moves an event through active -> completed | cancelled.
func (s *EventService) SetStatus(actor AuthenticatedActor, id uint, status models.EventStatus) (models.Event, error) {
	if !actor.Role.CanVerify() {
		return models.Event{}, ErrForbidden
	}
	if status != models.EventActive && status != models.EventCompleted && status != models.EventCancelled {
		return models.Event{}, ErrInvalidDecision
	}
	ev, err := s.byID(id)
	if err != nil {
		return models.Event{}, err
	}
	previous := ev.Status
	ev.Status = status
	if err := s.DB.Save(&ev).Error; err != nil {
		return models.Event{}, err
	}

	s.Audit.Record("event.status", &actor.ID, "event", ev.ID, map[string]interface{}{
		"previous_status": previous,
		"new_status":      status,
	}, "", "")
	return ev, nil
}

// Delete soft-deletes an event. Attendance history stays.
func (s *EventService) Delete(actor AuthenticatedActor, id uint) error {
	if !actor.Role.CanVerify() {
		return ErrForbidden
	}
	ev, err := s.byID(id)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(&ev).Error; err != nil {
		return err
	}
	s.Audit.Record("event.delete", &actor.ID, "event", ev.ID, nil, "", "")
	return nil
}

// IssueQRToken produces a fresh check-in token for an active event. Validity
// is bounded by the event's configured window, not by the issuance time.
func (s *EventService) IssueQRToken(id uint) (string, error) {
	ev, err := s.byID(id)
	if err != nil {
		return "", err
	}
	if ev.Status != models.EventActive {
		return "", ErrEventNotActive
	}
	return utils.EncodeQRPayload(ev.PublicID, time.Now().UTC()), nil
}
