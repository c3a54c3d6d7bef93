package models

import "time"

// SessionMarker denotes an active login: the authenticated flag, the expiry
// instant and a cached profile snapshot.
type SessionMarker struct {
	Authenticated bool      `json:"authenticated"`
	ExpiresAt     time.Time `json:"expiresAt"`
	Profile       Profile   `json:"profile"`
}

// Valid reports whether the marker is authenticated and not expired at now.
func (m SessionMarker) Valid(now time.Time) bool {
	return m.Authenticated && now.Before(m.ExpiresAt)
}
