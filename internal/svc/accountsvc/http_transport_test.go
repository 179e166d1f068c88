package accountsvc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrupp/volunteerlog/internal/domain"
	context_ "github.com/mkrupp/volunteerlog/internal/infra/context"
	http_ "github.com/mkrupp/volunteerlog/internal/infra/transport/http"
	"github.com/mkrupp/volunteerlog/internal/repo/record"
	"github.com/mkrupp/volunteerlog/internal/repo/session"
	"github.com/mkrupp/volunteerlog/internal/repo/user"
	"github.com/mkrupp/volunteerlog/internal/svc/accountsvc"
	"github.com/mkrupp/volunteerlog/internal/svc/recordsvc"
	"github.com/mkrupp/volunteerlog/internal/svc/sessionsvc"
)

func setupTestTransport(t *testing.T) (*accountsvc.HTTPTransport, *sessionsvc.Manager) {
	t.Helper()

	svc, _ := setupTestService(t)

	sessions, err := sessionsvc.NewManager(session.MemorySessionStoreFactory(), sessionsvc.SessionConfig{TTL: 3600})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	//nolint:exhaustruct
	return accountsvc.NewHTTPTransport(svc, sessions, accountsvc.HTTPTransportConfig{}), sessions
}

func postForm(
	t *testing.T,
	handler http.Handler,
	path string,
	form url.Values,
	cookies ...*http.Cookie,
) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func registerForm(username string) url.Values {
	return url.Values{
		"username":         {username},
		"email":            {username + "@example.com"},
		"password":         {"password123"},
		"confirm-password": {"password123"},
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == http_.SessionCookieName {
			return cookie
		}
	}

	t.Fatalf("no %s cookie in response", http_.SessionCookieName)

	return nil
}

func TestHTTPTransport_Register(t *testing.T) {
	t.Parallel()

	transport, _ := setupTestTransport(t)

	rec := postForm(t, transport, "/register", registerForm("alice"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if location := rec.Header().Get("Location"); location != "/login" {
		t.Errorf("Location = %q, want /login", location)
	}

	// Registering the same username again must fail with a message.
	rec = postForm(t, transport, "/register", registerForm("alice"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if location := rec.Header().Get("Location"); !strings.HasPrefix(location, "/register?error=") {
		t.Errorf("Location = %q, want /register?error= redirect", location)
	}
}

func TestHTTPTransport_LoginEstablishesSession(t *testing.T) {
	t.Parallel()

	transport, sessions := setupTestTransport(t)

	if rec := postForm(t, transport, "/register", registerForm("alice")); rec.Code != http.StatusSeeOther {
		t.Fatalf("register status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	rec := postForm(t, transport, "/login", url.Values{
		"username": {"alice"},
		"password": {"password123"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if location := rec.Header().Get("Location"); location != "/dashboard" {
		t.Errorf("Location = %q, want /dashboard", location)
	}

	cookie := sessionCookie(t, rec)
	if cookie.Value == "" {
		t.Fatal("session cookie has no token")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}

	if _, ok := sessions.Resolve(context.Background(), cookie.Value); !ok {
		t.Error("session cookie token does not resolve to a session")
	}
}

func TestHTTPTransport_LoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	transport, _ := setupTestTransport(t)

	if rec := postForm(t, transport, "/register", registerForm("alice")); rec.Code != http.StatusSeeOther {
		t.Fatalf("register status = %d, want %d", rec.Code, http.StatusSeeOther)
	}

	rec := postForm(t, transport, "/login", url.Values{
		"username": {"alice"},
		"password": {"wrongpass"},
	})

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if location := rec.Header().Get("Location"); !strings.HasPrefix(location, "/login?error=") {
		t.Errorf("Location = %q, want /login?error= redirect", location)
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Errorf("failed login set cookies: %v", cookies)
	}
}

func TestHTTPTransport_Logout(t *testing.T) {
	t.Parallel()

	transport, sessions := setupTestTransport(t)

	//nolint:exhaustruct
	sess, err := sessions.Establish(context.Background(), domain.User{ID: 1})
	if err != nil {
		t.Fatalf("Establish() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req = req.WithContext(context_.WithSession(req.Context(), sess))
	rec := httptest.NewRecorder()

	transport.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if location := rec.Header().Get("Location"); location != "/" {
		t.Errorf("Location = %q, want /", location)
	}

	cookie := sessionCookie(t, rec)
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("logout did not clear the session cookie: %+v", cookie)
	}

	if _, ok := sessions.Resolve(req.Context(), sess.Token); ok {
		t.Error("session still resolves after logout")
	}
}

func TestHTTPTransport_LogoutRequiresSession(t *testing.T) {
	t.Parallel()

	transport, _ := setupTestTransport(t)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	rec := httptest.NewRecorder()

	transport.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if location := rec.Header().Get("Location"); !strings.HasPrefix(location, "/login") {
		t.Errorf("Location = %q, want /login redirect", location)
	}
}

// newTestApp wires both transports behind the session middleware against real
// SQLite stores, mirroring the service entrypoint.
func newTestApp(t *testing.T) http.Handler {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "volunteersvc.db")

	accountSvc, err := accountsvc.NewAccountService(
		user.RepositoryFactoryFor(user.RepositoryConfig{DSN: dsn}),
		accountsvc.AccountConfig{MinPasswordLength: 8, BcryptCost: bcrypt.MinCost},
	)
	if err != nil {
		t.Fatalf("NewAccountService() error = %v", err)
	}
	t.Cleanup(func() { _ = accountSvc.Close() })

	recordSvc, err := recordsvc.NewRecordService(
		record.RepositoryFactoryFor(record.RepositoryConfig{DSN: dsn}),
		recordsvc.RecordConfig{RecentLimit: 5},
	)
	if err != nil {
		t.Fatalf("NewRecordService() error = %v", err)
	}
	t.Cleanup(func() { _ = recordSvc.Close() })

	sessions, err := sessionsvc.NewManager(session.MemorySessionStoreFactory(), sessionsvc.SessionConfig{TTL: 3600})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { _ = sessions.Close() })

	//nolint:exhaustruct
	accountTransport := accountsvc.NewHTTPTransport(accountSvc, sessions, accountsvc.HTTPTransportConfig{})
	//nolint:exhaustruct
	recordTransport := recordsvc.NewHTTPTransport(recordSvc, recordsvc.HTTPTransportConfig{})

	mux := http.NewServeMux()
	mux.Handle("/", accountTransport)
	mux.Handle("/register", accountTransport)
	mux.Handle("/login", accountTransport)
	mux.Handle("/logout", accountTransport)
	mux.Handle("/dashboard", recordTransport)
	mux.Handle("/log_hours", recordTransport)
	mux.Handle("/view_hours", recordTransport)

	return http_.SessionMiddleware(mux, sessions)
}

func TestVolunteerFlow(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	// Register a new account.
	rec := postForm(t, app, "/register", registerForm("alice"))
	if location := rec.Header().Get("Location"); location != "/login" {
		t.Fatalf("register Location = %q, want /login", location)
	}

	// A second registration under the same name is rejected.
	rec = postForm(t, app, "/register", registerForm("alice"))
	if location := rec.Header().Get("Location"); !strings.HasPrefix(location, "/register?error=") {
		t.Fatalf("duplicate register Location = %q, want /register?error= redirect", location)
	}

	// Log in and capture the session cookie.
	rec = postForm(t, app, "/login", url.Values{
		"username": {"alice"},
		"password": {"password123"},
	})
	if location := rec.Header().Get("Location"); location != "/dashboard" {
		t.Fatalf("login Location = %q, want /dashboard", location)
	}
	cookie := sessionCookie(t, rec)

	// Log 3.5 hours at the shelter.
	rec = postForm(t, app, "/log_hours", url.Values{
		"organization": {"Shelter"},
		"hours":        {"3.5"},
		"date":         {"2024-05-01"},
	}, cookie)
	if location := rec.Header().Get("Location"); location != "/dashboard" {
		t.Fatalf("log hours Location = %q, want /dashboard", location)
	}

	// The dashboard reflects the new record.
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	dashRec := httptest.NewRecorder()
	app.ServeHTTP(dashRec, req)

	if dashRec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, want %d", dashRec.Code, http.StatusOK)
	}

	var dashboard struct {
		TotalHours float64 `json:"totalHours"`
		Recent     []struct {
			Organization string `json:"organization"`
			Date         string `json:"date"`
		} `json:"recent"`
	}
	if err := json.NewDecoder(dashRec.Body).Decode(&dashboard); err != nil {
		t.Fatalf("decode dashboard payload: %v", err)
	}

	if dashboard.TotalHours != 3.5 {
		t.Errorf("totalHours = %v, want 3.5", dashboard.TotalHours)
	}
	if len(dashboard.Recent) != 1 || dashboard.Recent[0].Organization != "Shelter" {
		t.Errorf("recent = %+v, want one Shelter record", dashboard.Recent)
	}

	// Log out; the session no longer grants access.
	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	logoutRec := httptest.NewRecorder()
	app.ServeHTTP(logoutRec, req)

	if location := logoutRec.Header().Get("Location"); location != "/" {
		t.Fatalf("logout Location = %q, want /", location)
	}

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	guardRec := httptest.NewRecorder()
	app.ServeHTTP(guardRec, req)

	if guardRec.Code != http.StatusSeeOther {
		t.Fatalf("post-logout dashboard status = %d, want %d", guardRec.Code, http.StatusSeeOther)
	}
	if location := guardRec.Header().Get("Location"); !strings.HasPrefix(location, "/login") {
		t.Errorf("post-logout dashboard Location = %q, want /login redirect", location)
	}
}
