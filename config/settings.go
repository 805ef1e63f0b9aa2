package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Geofence radius is a system-wide setting, not stored per event.
const DefaultGeofenceRadiusMeters = 100.0

// Sliding-window limit applied to authentication attempts only.
const (
	DefaultAuthAttemptLimit  = 5
	DefaultAuthAttemptWindow = time.Hour
)

// GeofenceRadiusMeters reads GEOFENCE_RADIUS_METERS, falling back to the
// system default when unset or unparseable.
func GeofenceRadiusMeters() float64 {
	raw := strings.TrimSpace(os.Getenv("GEOFENCE_RADIUS_METERS"))
	if raw == "" {
		return DefaultGeofenceRadiusMeters
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return DefaultGeofenceRadiusMeters
	}
	return v
}

// JWTSecret returns the signing secret; empty means the server must refuse to start.
func JWTSecret() string {
	return strings.TrimSpace(os.Getenv("JWT_SECRET"))
}
