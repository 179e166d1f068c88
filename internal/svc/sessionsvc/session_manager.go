package sessionsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkrupp/volunteerlog/internal/domain"
	context_ "github.com/mkrupp/volunteerlog/internal/infra/context"
	"github.com/mkrupp/volunteerlog/internal/infra/logging"
	"github.com/mkrupp/volunteerlog/internal/repo/session"
)

// SessionConfig contains configuration parameters for the session manager.
type SessionConfig struct {
	// TTL is the session lifetime in seconds
	TTL int64 `env:"TTL" default:"86400"` // 24h
}

// Manager maps opaque session tokens to user identities. A session moves
// between two states: anonymous (no entry in the store) and authenticated
// (token bound to exactly one user identifier).
type Manager struct {
	Config SessionConfig
	Store  session.Store
	Log    logging.Logger
}

// NewManager creates a new Manager with the given session store factory and
// configuration. Returns an error if the store cannot be created.
func NewManager(storeFactory session.StoreFactory, cfg SessionConfig) (*Manager, error) {
	store, err := storeFactory()
	if err != nil {
		return nil, fmt.Errorf("new session store: %w", err)
	}

	return &Manager{
		Config: cfg,
		Store:  store,
		Log:    logging.GetLogger("svc.sessionsvc.session_manager"),
	}, nil
}

// Establish creates a fresh session bound to the given identity and returns
// it. Establishing while already authenticated (a re-login) simply issues a
// new session for the new identifier.
func (m *Manager) Establish(ctx context.Context, identity domain.Identifiable) (*domain.Session, error) {
	now := time.Now()

	sess := &domain.Session{
		Token:     uuid.NewString(),
		UserID:    identity.Identity(),
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(time.Duration(m.Config.TTL * int64(time.Second))).Unix(),
	}

	if err := m.Store.Put(ctx, sess); err != nil {
		return nil, fmt.Errorf("put session: %w", err)
	}

	m.Log.DebugContext(ctx, "session established", logging.Group("session",
		"user_id", sess.UserID,
	))

	return sess, nil
}

// Terminate clears the session bound to the given token. Terminating an
// unknown or already-anonymous token is a no-op.
func (m *Manager) Terminate(ctx context.Context, token string) {
	if err := m.Store.Delete(ctx, token); err != nil {
		m.Log.ErrorContext(ctx, "terminate session failed", "error", err)

		return
	}

	m.Log.DebugContext(ctx, "session terminated")
}

// Resolve maps an opaque token back to its session. Unknown and expired
// tokens resolve to anonymous.
func (m *Manager) Resolve(ctx context.Context, token string) (*domain.Session, bool) {
	sess, ok, err := m.Store.Get(ctx, token)
	if err != nil {
		m.Log.ErrorContext(ctx, "resolve session failed", "error", err)

		return nil, false
	}

	return sess, ok
}

// Close releases resources held by the manager.
func (m *Manager) Close() error {
	if err := m.Store.Close(); err != nil {
		return fmt.Errorf("close session store: %w", err)
	}

	return nil
}

// RequireAuthenticated is the guard for operations scoped to the current
// user. It returns the session carried by the request context, or
// domain.ErrNotAuthenticated when the request is anonymous.
func RequireAuthenticated(ctx context.Context) (*domain.Session, error) {
	sess, ok := context_.SessionFromContext(ctx)
	if !ok {
		return nil, domain.ErrNotAuthenticated
	}

	return sess, nil
}
