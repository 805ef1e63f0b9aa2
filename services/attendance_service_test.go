package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-backend/models"
	"attendance-backend/utils"
)

// ---------------------------
// In-memory fakes
// ---------------------------

type fakeEventStore struct {
	events map[string]models.Event
}

func (f *fakeEventStore) EventByPublicID(publicID string) (models.Event, error) {
	ev, ok := f.events[publicID]
	if !ok {
		return models.Event{}, ErrEventNotFound
	}
	return ev, nil
}

func (f *fakeEventStore) EventByID(id uint) (models.Event, error) {
	for _, ev := range f.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return models.Event{}, ErrEventNotFound
}

type fakeAttendanceStore struct {
	mu   sync.Mutex
	seq  uint
	recs map[uint]*models.AttendanceRecord
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{recs: make(map[uint]*models.AttendanceRecord)}
}

func (f *fakeAttendanceStore) CreateAttendance(rec *models.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.recs {
		if existing.EventID == rec.EventID && existing.UserID == rec.UserID {
			return ErrDuplicateAttendance
		}
	}
	f.seq++
	rec.ID = f.seq
	stored := *rec
	f.recs[rec.ID] = &stored
	return nil
}

func (f *fakeAttendanceStore) AttendanceByID(id uint) (models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return models.AttendanceRecord{}, ErrAttendanceNotFound
	}
	return *rec, nil
}

func (f *fakeAttendanceStore) SaveCheckout(id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.recs[id]; ok {
		rec.CheckedOutAt = &at
	}
	return nil
}

func (f *fakeAttendanceStore) CompareAndSwapStatus(id uint, expect []models.VerificationStatus, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return false, nil
	}
	matched := false
	for _, s := range expect {
		if rec.VerificationStatus == s {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	for k, v := range updates {
		switch k {
		case "verification_status":
			rec.VerificationStatus = v.(models.VerificationStatus)
		case "verifier_id":
			verifier := v.(uint)
			rec.VerifierID = &verifier
		case "verified_at":
			at := v.(time.Time)
			rec.VerifiedAt = &at
		case "dispute_note":
			rec.DisputeNote = v.(string)
		}
	}
	return true, nil
}

func (f *fakeAttendanceStore) ListAttendance(filter AttendanceFilter) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AttendanceRecord
	for _, rec := range f.recs {
		if filter.EventID != 0 && rec.EventID != filter.EventID {
			continue
		}
		if filter.UserID != 0 && rec.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && rec.VerificationStatus != filter.Status {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (f *fakeAttendanceStore) CountByStatus(eventID uint) (map[models.VerificationStatus]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[models.VerificationStatus]int64)
	for _, rec := range f.recs {
		if rec.EventID == eventID {
			counts[rec.VerificationStatus]++
		}
	}
	return counts, nil
}

type auditEntry struct {
	Action   string
	ActorID  *uint
	EntityID uint
	Metadata map[string]interface{}
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (f *fakeAudit) Record(action string, actorID *uint, entityType string, entityID uint, metadata map[string]interface{}, ip, userAgent string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, auditEntry{Action: action, ActorID: actorID, EntityID: entityID, Metadata: metadata})
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

// ---------------------------
// Fixture
// ---------------------------

var (
	student   = AuthenticatedActor{ID: 101, Role: models.RoleStudent}
	otherUser = AuthenticatedActor{ID: 102, Role: models.RoleStudent}
	moderator = AuthenticatedActor{ID: 201, Role: models.RoleModerator}
	admin     = AuthenticatedActor{ID: 301, Role: models.RoleAdmin}
)

func newFixture(t *testing.T) (*AttendanceService, *fakeAttendanceStore, *fakeAudit, models.Event, time.Time) {
	t.Helper()
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ev := models.Event{
		ID:                 1,
		PublicID:           "ev1abc",
		VenueLat:           14.5995,
		VenueLng:           120.9842,
		StartsAt:           start,
		EndsAt:             start.Add(2 * time.Hour),
		CheckInBufferMins:  30,
		CheckOutBufferMins: 30,
		Status:             models.EventActive,
	}
	events := &fakeEventStore{events: map[string]models.Event{ev.PublicID: ev}}
	store := newFakeAttendanceStore()
	audit := &fakeAudit{}
	svc := NewAttendanceService(events, store, NewGeofenceValidator(100), audit)
	return svc, store, audit, ev, start
}

func submitInput(ev models.Event, at time.Time) SubmitAttendanceInput {
	return SubmitAttendanceInput{
		Token:         utils.EncodeQRPayload(ev.PublicID, at),
		Latitude:      ev.VenueLat,
		Longitude:     ev.VenueLng,
		FrontPhotoURL: "https://cdn.example/front.jpg",
		BackPhotoURL:  "https://cdn.example/back.jpg",
		SignatureURL:  "https://cdn.example/sig.png",
		SubmittedAt:   at,
	}
}

// ---------------------------
// Submit
// ---------------------------

func TestSubmitCreatesPendingRecord(t *testing.T) {
	svc, _, audit, ev, start := newFixture(t)

	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, rec.VerificationStatus)
	assert.Equal(t, ev.ID, rec.EventID)
	assert.Equal(t, student.ID, rec.UserID)
	assert.Zero(t, rec.DistanceMeters)
	assert.Equal(t, []string{"attendance.submit"}, audit.actions())
}

func TestSubmitDuplicateLeavesFirstRecordUnchanged(t *testing.T) {
	svc, store, _, ev, start := newFixture(t)

	first, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)

	_, err = svc.Submit(student, submitInput(ev, start.Add(time.Minute)))
	assert.ErrorIs(t, err, ErrDuplicateAttendance)

	kept, err := store.AttendanceByID(first.ID)
	require.NoError(t, err)
	assert.True(t, kept.CheckedInAt.Equal(first.CheckedInAt))
	assert.Equal(t, models.VerificationPending, kept.VerificationStatus)
}

func TestSubmitOutsideGeofence(t *testing.T) {
	svc, _, audit, ev, start := newFixture(t)

	in := submitInput(ev, start)
	in.Latitude = ev.VenueLat + 0.01 // ~1.1km away

	_, err := svc.Submit(student, in)
	var geoErr *GeofenceError
	require.ErrorAs(t, err, &geoErr)
	assert.Greater(t, geoErr.DistanceMeters, 100.0)
	assert.Empty(t, audit.actions(), "no audit entry for a rejected submission")
}

func TestSubmitOutsideTimeWindow(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)

	in := submitInput(ev, start.Add(-30*time.Minute).Add(-time.Millisecond))
	_, err := svc.Submit(student, in)
	var windowErr *TimeWindowError
	require.ErrorAs(t, err, &windowErr)
}

func TestSubmitMalformedToken(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)

	in := submitInput(ev, start)
	in.Token = "attendance:EV1:123"
	_, err := svc.Submit(student, in)
	assert.ErrorIs(t, err, utils.ErrInvalidQRPayload)
}

func TestSubmitUnknownEvent(t *testing.T) {
	svc, _, _, _, start := newFixture(t)

	in := SubmitAttendanceInput{Token: utils.EncodeQRPayload("nosuchevent", start), SubmittedAt: start}
	_, err := svc.Submit(student, in)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestSubmitCancelledEvent(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	cancelled := ev
	cancelled.PublicID = "ev2def"
	cancelled.Status = models.EventCancelled
	svc.Events.(*fakeEventStore).events[cancelled.PublicID] = cancelled

	_, err := svc.Submit(student, submitInput(cancelled, start))
	assert.ErrorIs(t, err, ErrEventNotActive)
}

// ---------------------------
// Verify
// ---------------------------

func TestVerifyRejectWithoutNoteLeavesPending(t *testing.T) {
	svc, store, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)

	_, err = svc.Verify(moderator, rec.ID, models.VerificationRejected, "   ", "", "")
	assert.ErrorIs(t, err, ErrMissingDisputeNote)

	kept, _ := store.AttendanceByID(rec.ID)
	assert.Equal(t, models.VerificationPending, kept.VerificationStatus)
}

func TestVerifyRequiresStaffRole(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)

	_, err = svc.Verify(student, rec.ID, models.VerificationApproved, "", "", "")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestVerifyRejectsBogusDecision(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)

	_, err = svc.Verify(moderator, rec.ID, models.VerificationDisputed, "", "", "")
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestVerifyAlreadyVerifiedReportsExistingOutcome(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)

	approved, err := svc.Verify(moderator, rec.ID, models.VerificationApproved, "", "", "")
	require.NoError(t, err)
	require.NotNil(t, approved.VerifierID)

	_, err = svc.Verify(admin, rec.ID, models.VerificationRejected, "changed my mind", "", "")
	var already *AlreadyVerifiedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, models.VerificationApproved, already.Status)
	require.NotNil(t, already.VerifierID)
	assert.Equal(t, moderator.ID, *already.VerifierID)
	assert.NotNil(t, already.VerifiedAt)
}

// raceStore simulates a concurrent verifier winning between the status read
// and the conditional update.
type raceStore struct {
	*fakeAttendanceStore
	winner AuthenticatedActor
	once   sync.Once
}

func (r *raceStore) CompareAndSwapStatus(id uint, expect []models.VerificationStatus, updates map[string]interface{}) (bool, error) {
	raced := false
	r.once.Do(func() {
		now := time.Now().UTC()
		_, _ = r.fakeAttendanceStore.CompareAndSwapStatus(id, expect, map[string]interface{}{
			"verification_status": models.VerificationApproved,
			"verifier_id":         r.winner.ID,
			"verified_at":         now,
		})
		raced = true
	})
	if raced {
		return false, nil
	}
	return r.fakeAttendanceStore.CompareAndSwapStatus(id, expect, updates)
}

func TestVerifyLosesRaceReturnsWinnerOutcome(t *testing.T) {
	svc, store, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)

	svc.Store = &raceStore{fakeAttendanceStore: store, winner: admin}

	_, err = svc.Verify(moderator, rec.ID, models.VerificationRejected, "late arrival", "", "")
	var already *AlreadyVerifiedError
	require.ErrorAs(t, err, &already)
	assert.Equal(t, models.VerificationApproved, already.Status)
	require.NotNil(t, already.VerifierID)
	assert.Equal(t, admin.ID, *already.VerifierID)
}

// ---------------------------
// Appeal
// ---------------------------

func TestAppealOnPendingReturnsWrongStatus(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)

	_, err = svc.Appeal(student, rec.ID, "please take another look", "", "")
	assert.ErrorIs(t, err, ErrWrongStatus)
}

func TestAppealMessageLengthBounds(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)
	_, err = svc.Verify(moderator, rec.ID, models.VerificationRejected, "photo mismatch", "", "")
	require.NoError(t, err)

	_, err = svc.Appeal(student, rec.ID, "too short", "", "")
	assert.ErrorIs(t, err, ErrInvalidAppealMessage)

	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Appeal(student, rec.ID, string(long), "", "")
	assert.ErrorIs(t, err, ErrInvalidAppealMessage)

	_, err = svc.Appeal(student, rec.ID, "exactly10!", "", "")
	assert.NoError(t, err)
}

func TestAppealOwnershipEnforced(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)
	_, err = svc.Verify(moderator, rec.ID, models.VerificationRejected, "photo mismatch", "", "")
	require.NoError(t, err)

	_, err = svc.Appeal(otherUser, rec.ID, "this record is not even mine", "", "")
	assert.ErrorIs(t, err, ErrNotRecordOwner)
}

func TestAppealWhileDisputedRejected(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)
	_, err = svc.Verify(moderator, rec.ID, models.VerificationRejected, "photo mismatch", "", "")
	require.NoError(t, err)
	_, err = svc.Appeal(student, rec.ID, "first appeal, please re-check", "", "")
	require.NoError(t, err)

	_, err = svc.Appeal(student, rec.ID, "second appeal should not work", "", "")
	assert.ErrorIs(t, err, ErrWrongStatus)
}

// ---------------------------
// Check-out
// ---------------------------

func TestCheckOutFlow(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)

	out := CheckOutInput{
		Latitude:    ev.VenueLat,
		Longitude:   ev.VenueLng,
		SubmittedAt: ev.EndsAt.Add(10 * time.Minute),
	}

	_, err = svc.CheckOut(otherUser, rec.ID, out)
	assert.ErrorIs(t, err, ErrNotRecordOwner)

	updated, err := svc.CheckOut(student, rec.ID, out)
	require.NoError(t, err)
	require.NotNil(t, updated.CheckedOutAt)

	_, err = svc.CheckOut(student, rec.ID, out)
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
}

func TestCheckOutOutsideWindow(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)

	_, err = svc.CheckOut(student, rec.ID, CheckOutInput{
		Latitude:    ev.VenueLat,
		Longitude:   ev.VenueLng,
		SubmittedAt: ev.EndsAt.Add(31 * time.Minute),
	})
	var windowErr *TimeWindowError
	assert.ErrorAs(t, err, &windowErr)
}

// ---------------------------
// End-to-end lifecycle
// ---------------------------

func TestSubmitRejectAppealApproveScenario(t *testing.T) {
	svc, _, audit, ev, start := newFixture(t)

	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)
	assert.Equal(t, models.VerificationPending, rec.VerificationStatus)

	rec, err = svc.Verify(moderator, rec.ID, models.VerificationRejected, "too far from venue test", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationRejected, rec.VerificationStatus)
	assert.Equal(t, "too far from venue test", rec.DisputeNote)

	rec, err = svc.Appeal(student, rec.ID, "I was actually present, GPS was wrong here", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationDisputed, rec.VerificationStatus)
	assert.Equal(t, "I was actually present, GPS was wrong here", rec.DisputeNote, "appeal overwrites the verifier note")

	rec, err = svc.Verify(admin, rec.ID, models.VerificationApproved, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, rec.VerificationStatus)
	require.NotNil(t, rec.VerifierID)
	assert.Equal(t, admin.ID, *rec.VerifierID)

	assert.Equal(t, []string{
		"attendance.submit",
		"attendance.verify",
		"attendance.appeal",
		"attendance.verify",
	}, audit.actions())
}

// ---------------------------
// Listing / stats
// ---------------------------

func TestListScopesStudentsToOwnRecords(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	_, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)
	_, err = svc.Submit(otherUser, submitInput(ev, start))
	require.NoError(t, err)

	own, err := svc.List(student, AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, student.ID, own[0].UserID)

	all, err := svc.List(moderator, AttendanceFilter{EventID: ev.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStatusCounts(t *testing.T) {
	svc, _, _, ev, start := newFixture(t)
	rec, err := svc.Submit(student, submitInput(ev, start))
	require.NoError(t, err)
	_, err = svc.Submit(otherUser, submitInput(ev, start))
	require.NoError(t, err)
	_, err = svc.Verify(moderator, rec.ID, models.VerificationApproved, "", "", "")
	require.NoError(t, err)

	counts, err := svc.StatusCounts(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.VerificationPending])
	assert.Equal(t, int64(1), counts[models.VerificationApproved])
}
