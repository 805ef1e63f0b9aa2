package services

import (
	"math"
	"time"

	"attendance-backend/models"
)

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// GeofenceVerdict is the structured result of a geofence/time-window check.
// Both flags must be true for a submission to proceed.
type GeofenceVerdict struct {
	WithinGeofence   bool      `json:"within_geofence"`
	DistanceMeters   float64   `json:"distance_meters"`
	WithinTimeWindow bool      `json:"within_time_window"`
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
}

// GeofenceValidator applies the system-wide radius to per-event venues and
// buffer windows. The radius is configuration, not per-event data.
type GeofenceValidator struct {
	RadiusMeters float64
}

func NewGeofenceValidator(radiusMeters float64) *GeofenceValidator {
	return &GeofenceValidator{RadiusMeters: radiusMeters}
}

// Validate checks a claimed position and timestamp against the event's venue
// and buffer window. The check-in window is symmetric around the event start;
// the check-out window is symmetric around the event end. Bounds are inclusive.
func (v *GeofenceValidator) Validate(ev models.Event, lat, lng float64, at time.Time, checkout bool) GeofenceVerdict {
	distance := HaversineMeters(ev.VenueLat, ev.VenueLng, lat, lng)

	anchor := ev.StartsAt
	bufferMins := ev.CheckInBufferMins
	if checkout {
		anchor = ev.EndsAt
		bufferMins = ev.CheckOutBufferMins
	}
	buffer := time.Duration(bufferMins) * time.Minute
	windowStart := anchor.Add(-buffer)
	windowEnd := anchor.Add(buffer)

	return GeofenceVerdict{
		WithinGeofence:   distance <= v.RadiusMeters,
		DistanceMeters:   distance,
		WithinTimeWindow: !at.Before(windowStart) && !at.After(windowEnd),
		WindowStart:      windowStart,
		WindowEnd:        windowEnd,
	}
}
