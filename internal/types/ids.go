package types

import (
	"time"

	"github.com/google/uuid"
)

// AlertID represents a UUIDv7 alert identifier.
// String alias enables type safety while maintaining JSON string
// serialization. Time-ordered IDs cluster sequential inserts in B-tree pages.
type AlertID string

// NewAlertID generates a UUIDv7 alert identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewAlertID() AlertID {
	return AlertID(uuid.Must(uuid.NewV7()).String())
}

// ParseAlertID validates and converts a string to AlertID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the system.
func ParseAlertID(s string) (AlertID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return AlertID(s), nil
}

// AlertIDTime extracts the timestamp embedded in a UUIDv7 alert ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func AlertIDTime(id AlertID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
