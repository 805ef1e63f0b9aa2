package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// QR check-in token wire format (stable): attendance:<eventId>:<unixMillis>
// The event id is the lowercase alphanumeric public id of the event.
var qrPattern = regexp.MustCompile(`^attendance:([a-z0-9]+):([0-9]+)$`)

var ErrInvalidQRPayload = errors.New("invalid_qr_payload")

type QRPayload struct {
	EventID  string    `json:"event_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// EncodeQRPayload builds a check-in token. Callers supply a valid event
// public id; issuance time is truncated to millisecond precision.
func EncodeQRPayload(eventID string, issuedAt time.Time) string {
	return fmt.Sprintf("attendance:%s:%d", eventID, issuedAt.UnixMilli())
}

// DecodeQRPayload parses a check-in token. Anything that does not match the
// wire pattern exactly is rejected; no trimming or normalization is applied.
func DecodeQRPayload(token string) (QRPayload, error) {
	m := qrPattern.FindStringSubmatch(token)
	if m == nil {
		return QRPayload{}, ErrInvalidQRPayload
	}
	millis, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return QRPayload{}, ErrInvalidQRPayload
	}
	return QRPayload{EventID: m[1], IssuedAt: time.UnixMilli(millis).UTC()}, nil
}
