package services

import (
	"strings"
	"time"
	"unicode/utf8"

	"attendance-backend/models"
	"attendance-backend/utils"
)

const (
	appealMinChars = 10
	appealMaxChars = 1000
)

// AuthenticatedActor is the identity behind every state-machine call. Token
// verification happens upstream; the core trusts this value.
type AuthenticatedActor struct {
	ID   uint
	Role models.UserRole
}

type SubmitAttendanceInput struct {
	Token         string // QR payload scanned at the venue
	Latitude      float64
	Longitude     float64
	FrontPhotoURL string
	BackPhotoURL  string
	SignatureURL  string
	SubmittedAt   time.Time // zero value means "now"
	IP            string
	UserAgent     string
}

type CheckOutInput struct {
	Latitude    float64
	Longitude   float64
	SubmittedAt time.Time
	IP          string
	UserAgent   string
}

// AttendanceService owns the attendance record lifecycle:
//
//	pending -> approved | rejected        (verify, moderator/admin)
//	rejected -> disputed                  (appeal, owning student)
//	disputed -> approved | rejected       (verify closes the appeal)
//
// Approved/rejected reached by verify are terminal except through appeal, and
// a disputed record cannot be appealed again.
type AttendanceService struct {
	Events EventStore
	Store  AttendanceStore
	Geo    *GeofenceValidator
	Audit  AuditRecorder
}

func NewAttendanceService(events EventStore, store AttendanceStore, geo *GeofenceValidator, audit AuditRecorder) *AttendanceService {
	return &AttendanceService{Events: events, Store: store, Geo: geo, Audit: audit}
}

// Submit decodes the QR token, validates geofence and time window, and
// creates the record in pending. One record per (event, user); the second
// concurrent submit loses on the storage uniqueness constraint.
func (s *AttendanceService) Submit(actor AuthenticatedActor, in SubmitAttendanceInput) (models.AttendanceRecord, error) {
	payload, err := utils.DecodeQRPayload(in.Token)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	ev, err := s.Events.EventByPublicID(payload.EventID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if ev.Status != models.EventActive {
		return models.AttendanceRecord{}, ErrEventNotActive
	}

	submittedAt := in.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	verdict := s.Geo.Validate(ev, in.Latitude, in.Longitude, submittedAt, false)
	if !verdict.WithinGeofence {
		return models.AttendanceRecord{}, &GeofenceError{
			DistanceMeters: verdict.DistanceMeters,
			RadiusMeters:   s.Geo.RadiusMeters,
		}
	}
	if !verdict.WithinTimeWindow {
		return models.AttendanceRecord{}, &TimeWindowError{
			WindowStart: verdict.WindowStart,
			WindowEnd:   verdict.WindowEnd,
			SubmittedAt: submittedAt,
		}
	}

	rec := models.AttendanceRecord{
		EventID:            ev.ID,
		UserID:             actor.ID,
		CheckedInAt:        submittedAt,
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		DistanceMeters:     verdict.DistanceMeters,
		FrontPhotoURL:      in.FrontPhotoURL,
		BackPhotoURL:       in.BackPhotoURL,
		SignatureURL:       in.SignatureURL,
		VerificationStatus: models.VerificationPending,
	}
	if err := s.Store.CreateAttendance(&rec); err != nil {
		return models.AttendanceRecord{}, err
	}

	s.Audit.Record("attendance.submit", &actor.ID, "attendance", rec.ID, map[string]interface{}{
		"event_id":        ev.ID,
		"distance_meters": verdict.DistanceMeters,
	}, in.IP, in.UserAgent)

	return rec, nil
}

// CheckOut stamps the optional check-out time on the caller's own record,
// validated against the check-out window around the event end.
func (s *AttendanceService) CheckOut(actor AuthenticatedActor, attendanceID uint, in CheckOutInput) (models.AttendanceRecord, error) {
	rec, err := s.Store.AttendanceByID(attendanceID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if rec.UserID != actor.ID {
		return models.AttendanceRecord{}, ErrNotRecordOwner
	}
	if rec.CheckedOutAt != nil {
		return models.AttendanceRecord{}, ErrAlreadyCheckedOut
	}

	ev, err := s.Events.EventByID(rec.EventID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	submittedAt := in.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	verdict := s.Geo.Validate(ev, in.Latitude, in.Longitude, submittedAt, true)
	if !verdict.WithinGeofence {
		return models.AttendanceRecord{}, &GeofenceError{
			DistanceMeters: verdict.DistanceMeters,
			RadiusMeters:   s.Geo.RadiusMeters,
		}
	}
	if !verdict.WithinTimeWindow {
		return models.AttendanceRecord{}, &TimeWindowError{
			WindowStart: verdict.WindowStart,
			WindowEnd:   verdict.WindowEnd,
			SubmittedAt: submittedAt,
		}
	}

	if err := s.Store.SaveCheckout(rec.ID, submittedAt); err != nil {
		return models.AttendanceRecord{}, err
	}
	rec.CheckedOutAt = &submittedAt

	s.Audit.Record("attendance.checkout", &actor.ID, "attendance", rec.ID, map[string]interface{}{
		"event_id":        rec.EventID,
		"distance_meters": verdict.DistanceMeters,
	}, in.IP, in.UserAgent)

	return rec, nil
}

// Verify moves a pending or disputed record to approved or rejected. The
// status write is a conditional update so two concurrent verifiers cannot
// both win; the loser gets AlreadyVerifiedError with the recorded outcome.
func (s *AttendanceService) Verify(actor AuthenticatedActor, attendanceID uint, decision models.VerificationStatus, disputeNote, ip, userAgent string) (models.AttendanceRecord, error) {
	if !actor.Role.CanVerify() {
		return models.AttendanceRecord{}, ErrForbidden
	}
	if decision != models.VerificationApproved && decision != models.VerificationRejected {
		return models.AttendanceRecord{}, ErrInvalidDecision
	}

	rec, err := s.Store.AttendanceByID(attendanceID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if rec.VerificationStatus.Terminal() {
		return models.AttendanceRecord{}, &AlreadyVerifiedError{
			Status:     rec.VerificationStatus,
			VerifierID: rec.VerifierID,
			VerifiedAt: rec.VerifiedAt,
		}
	}

	note := strings.TrimSpace(disputeNote)
	if decision == models.VerificationRejected && note == "" {
		return models.AttendanceRecord{}, ErrMissingDisputeNote
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"verification_status": decision,
		"verifier_id":         actor.ID,
		"verified_at":         now,
	}
	if decision == models.VerificationRejected {
		updates["dispute_note"] = note
	}

	previous := rec.VerificationStatus
	swapped, err := s.Store.CompareAndSwapStatus(rec.ID,
		[]models.VerificationStatus{models.VerificationPending, models.VerificationDisputed}, updates)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if !swapped {
		// lost the race: report whoever won
		current, rerr := s.Store.AttendanceByID(rec.ID)
		if rerr != nil {
			return models.AttendanceRecord{}, rerr
		}
		return models.AttendanceRecord{}, &AlreadyVerifiedError{
			Status:     current.VerificationStatus,
			VerifierID: current.VerifierID,
			VerifiedAt: current.VerifiedAt,
		}
	}

	s.Audit.Record("attendance.verify", &actor.ID, "attendance", rec.ID, map[string]interface{}{
		"previous_status": previous,
		"new_status":      decision,
	}, ip, userAgent)

	return s.Store.AttendanceByID(rec.ID)
}

// Appeal moves the owning student's rejected record to disputed. The appeal
// message becomes the new dispute note, overwriting the verifier's note, and
// the record stays disputed until a later verify closes it.
func (s *AttendanceService) Appeal(actor AuthenticatedActor, attendanceID uint, message, ip, userAgent string) (models.AttendanceRecord, error) {
	rec, err := s.Store.AttendanceByID(attendanceID)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if rec.UserID != actor.ID {
		return models.AttendanceRecord{}, ErrNotRecordOwner
	}

	if n := utf8.RuneCountInString(message); n < appealMinChars || n > appealMaxChars {
		return models.AttendanceRecord{}, ErrInvalidAppealMessage
	}
	if rec.VerificationStatus != models.VerificationRejected {
		return models.AttendanceRecord{}, ErrWrongStatus
	}

	swapped, err := s.Store.CompareAndSwapStatus(rec.ID,
		[]models.VerificationStatus{models.VerificationRejected},
		map[string]interface{}{
			"verification_status": models.VerificationDisputed,
			"dispute_note":        message,
		})
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if !swapped {
		return models.AttendanceRecord{}, ErrWrongStatus
	}

	s.Audit.Record("attendance.appeal", &actor.ID, "attendance", rec.ID, map[string]interface{}{
		"previous_status": models.VerificationRejected,
		"new_status":      models.VerificationDisputed,
	}, ip, userAgent)

	return s.Store.AttendanceByID(rec.ID)
}

// List returns records visible to the actor: students see their own, staff
// see everything matching the filter.
func (s *AttendanceService) List(actor AuthenticatedActor, filter AttendanceFilter) ([]models.AttendanceRecord, error) {
	if !actor.Role.CanVerify() {
		filter.UserID = actor.ID
	}
	return s.Store.ListAttendance(filter)
}

// StatusCounts powers per-event dashboard tiles.
func (s *AttendanceService) StatusCounts(eventID uint) (map[models.VerificationStatus]int64, error) {
	return s.Store.CountByStatus(eventID)
}
