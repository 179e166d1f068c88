package domain

import (
	"errors"
	"time"
)

// ErrNotAuthenticated is returned when an operation requires a session identity
// but the request carries none.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session represents a server-side continuity of requests bound to one user.
// The token is opaque to the client and carried in a cookie.
type Session struct {
	Token     string // Opaque session token
	UserID    int64  // Bound user identifier
	CreatedAt int64  // Unix timestamp of establishment
	ExpiresAt int64  // Unix timestamp after which the session is anonymous again
}

// Expired reports whether the session is past its expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}
