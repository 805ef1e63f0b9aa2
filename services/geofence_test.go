package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"attendance-backend/models"
)

func testEvent(start time.Time) models.Event {
	return models.Event{
		VenueLat:           14.5995,
		VenueLng:           120.9842,
		StartsAt:           start,
		EndsAt:             start.Add(2 * time.Hour),
		CheckInBufferMins:  30,
		CheckOutBufferMins: 30,
		Status:             models.EventActive,
	}
}

func TestValidateAtVenueAlwaysWithinGeofence(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ev := testEvent(start)

	for _, radius := range []float64{1, 50, 100, 10000} {
		v := NewGeofenceValidator(radius)
		verdict := v.Validate(ev, ev.VenueLat, ev.VenueLng, start, false)
		assert.True(t, verdict.WithinGeofence, "radius %v", radius)
		assert.Zero(t, verdict.DistanceMeters)
	}
}

func TestValidateBeyondRadiusRejected(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ev := testEvent(start)
	v := NewGeofenceValidator(100)

	// ~1.1km north of the venue
	verdict := v.Validate(ev, ev.VenueLat+0.01, ev.VenueLng, start, false)
	assert.False(t, verdict.WithinGeofence)
	assert.Greater(t, verdict.DistanceMeters, 1000.0)
	assert.True(t, verdict.WithinTimeWindow)
}

func TestValidateTimeWindowBoundaries(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ev := testEvent(start)
	v := NewGeofenceValidator(100)

	windowOpen := start.Add(-30 * time.Minute)
	windowClose := start.Add(30 * time.Minute)

	cases := []struct {
		name   string
		at     time.Time
		within bool
	}{
		{"exactly at window open", windowOpen, true},
		{"one millisecond before open", windowOpen.Add(-time.Millisecond), false},
		{"exactly at window close", windowClose, true},
		{"one millisecond after close", windowClose.Add(time.Millisecond), false},
		{"nominal start", start, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := v.Validate(ev, ev.VenueLat, ev.VenueLng, tc.at, false)
			assert.Equal(t, tc.within, verdict.WithinTimeWindow)
		})
	}
}

func TestValidateCheckoutUsesEndWindow(t *testing.T) {
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ev := testEvent(start)
	v := NewGeofenceValidator(100)

	// inside the check-out window, far outside the check-in window
	at := ev.EndsAt.Add(15 * time.Minute)
	assert.True(t, v.Validate(ev, ev.VenueLat, ev.VenueLng, at, true).WithinTimeWindow)
	assert.False(t, v.Validate(ev, ev.VenueLat, ev.VenueLng, at, false).WithinTimeWindow)
}

func TestHaversineKnownDistance(t *testing.T) {
	// Manila to Quezon City memorial circle, roughly 11km
	d := HaversineMeters(14.5995, 120.9842, 14.6760, 121.0437)
	assert.InDelta(t, 10600, d, 500)
}
