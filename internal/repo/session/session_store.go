package session

import (
	"context"

	"github.com/mkrupp/volunteerlog/internal/domain"
)

// Store defines the interface for session persistence.
// Sessions are ephemeral server-side state; implementations may hold them in
// process memory.
type Store interface {
	// Put saves a session under its token, replacing any previous session
	// with the same token.
	Put(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by token. Returns the session and true if the
	// token is known, or nil and false otherwise. Expired sessions are
	// treated as unknown.
	Get(ctx context.Context, token string) (*domain.Session, bool, error)

	// Delete removes a session by token. Deleting an unknown token is a no-op.
	Delete(ctx context.Context, token string) error

	// Close releases any resources held by the store.
	Close() error
}

// StoreFactory is a function that creates a new Store instance.
// Returns an error if initialization fails.
type StoreFactory func() (Store, error)
