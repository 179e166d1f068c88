package http

import (
	"context"
	"net/http"

	"github.com/mkrupp/volunteerlog/internal/domain"
	context_ "github.com/mkrupp/volunteerlog/internal/infra/context"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "volunteerlog_session"

// SessionResolver resolves an opaque session token to an established session.
// Unknown or expired tokens resolve to (nil, false).
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, bool)
}

// SessionMiddleware creates middleware that resolves the session cookie into a
// context-carried identity. Anonymous requests pass through unchanged so that
// public routes keep working; guarding protected routes is the handlers'
// responsibility.
func SessionMiddleware(next http.Handler, sessions SessionResolver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)

			return
		}

		session, ok := sessions.Resolve(r.Context(), cookie.Value)
		if !ok {
			next.ServeHTTP(w, r)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithSession(r.Context(), session)))
	})
}

// SetSessionCookie attaches the session token to the response. The cookie is
// HttpOnly and scoped to the whole site; its lifetime matches the session's.
func SetSessionCookie(w http.ResponseWriter, session *domain.Session) {
	//nolint:exhaustruct
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   int(session.ExpiresAt - session.CreatedAt),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie from the client.
func ClearSessionCookie(w http.ResponseWriter) {
	//nolint:exhaustruct
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
