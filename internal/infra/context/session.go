package context

import (
	"context"

	"github.com/mkrupp/volunteerlog/internal/domain"
)

const contextKeySession = contextKey("session")

// SessionFromContext extracts the authenticated session from the context.
// Returns the session and true if the request is authenticated, or nil and
// false for an anonymous request.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	session, ok := ctx.Value(contextKeySession).(*domain.Session)

	return session, ok
}

// WithSession creates a new context carrying the given session identity.
// Handlers and services read the current-user identity from here rather than
// from any ambient global.
func WithSession(ctx context.Context, session *domain.Session) context.Context {
	return context.WithValue(ctx, contextKeySession, session)
}
