package services

import (
	"errors"
	"fmt"
	"time"

	"attendance-backend/models"
)

// Expected, recoverable outcomes. Controllers branch on these and map them to
// HTTP codes; anything else is treated as an infrastructure failure.
var (
	ErrEventNotFound        = errors.New("event_not_found")
	ErrEventNotActive       = errors.New("event_not_active")
	ErrAttendanceNotFound   = errors.New("attendance_not_found")
	ErrDuplicateAttendance  = errors.New("attendance_already_submitted")
	ErrNotRecordOwner       = errors.New("not_record_owner")
	ErrWrongStatus          = errors.New("wrong_status_for_appeal")
	ErrMissingDisputeNote   = errors.New("dispute_note_required")
	ErrInvalidAppealMessage = errors.New("appeal_message_length_invalid")
	ErrInvalidDecision      = errors.New("invalid_decision")
	ErrForbidden            = errors.New("forbidden")
	ErrAlreadyCheckedOut    = errors.New("already_checked_out")
	ErrEmailTaken           = errors.New("email_already_registered")
	ErrUserNotFound         = errors.New("user_not_found")
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrUserInactive         = errors.New("user_inactive")
)

// GeofenceError reports a submission outside the allowed radius.
type GeofenceError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("outside_geofence: %.1fm from venue (max %.1fm)", e.DistanceMeters, e.RadiusMeters)
}

// TimeWindowError reports a submission outside the allowed check-in/out window.
type TimeWindowError struct {
	WindowStart time.Time
	WindowEnd   time.Time
	SubmittedAt time.Time
}

func (e *TimeWindowError) Error() string {
	return fmt.Sprintf("outside_time_window: submitted %s, window %s to %s",
		e.SubmittedAt.Format(time.RFC3339), e.WindowStart.Format(time.RFC3339), e.WindowEnd.Format(time.RFC3339))
}

// AlreadyVerifiedError is returned when verify is called on a record that has
// already reached a terminal status. It carries the existing outcome so a
// retrying verifier sees who decided and when.
type AlreadyVerifiedError struct {
	Status     models.VerificationStatus
	VerifierID *uint
	VerifiedAt *time.Time
}

func (e *AlreadyVerifiedError) Error() string {
	return fmt.Sprintf("attendance_already_verified: %s", e.Status)
}
