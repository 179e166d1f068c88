package accountsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkrupp/volunteerlog/internal/infra/logging"
	http_ "github.com/mkrupp/volunteerlog/internal/infra/transport/http"
	"github.com/mkrupp/volunteerlog/internal/svc/sessionsvc"
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig
}

// pagePayload is the plain-data result handed to the (external) presentation
// layer for form pages. Error carries a user-facing message echoed back from
// a failed submission, empty otherwise.
type pagePayload struct {
	Page  string `json:"page"`
	Error string `json:"error,omitempty"`
}

// HTTPTransport handles HTTP requests for account management.
// It provides the landing page plus registration, login and logout.
type HTTPTransport struct {
	accountSvc *AccountService
	sessions   *sessionsvc.Manager
	log        logging.Logger
	cfg        HTTPTransportConfig
}

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires an AccountService for account operations and a session Manager
// for establishing and terminating sessions.
func NewHTTPTransport(
	accountSvc *AccountService,
	sessions *sessionsvc.Manager,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		accountSvc: accountSvc,
		sessions:   sessions,
		log:        logging.GetLogger("svc.accountsvc.http_transport"),
		cfg:        cfg,
	}
}

// ServeHTTP implements http.Handler and sets up routes for the account endpoints:
// - GET /: landing page
// - GET/POST /register: register a new account
// - GET/POST /login: authenticate and establish a session
// - GET /logout: terminate the current session.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", ht.HandleIndex)
	mux.HandleFunc("GET /register", ht.HandleRegisterPage)
	mux.HandleFunc("POST /register", ht.HandleRegister)
	mux.HandleFunc("GET /login", ht.HandleLoginPage)
	mux.HandleFunc("POST /login", ht.HandleLogin)
	mux.HandleFunc("GET /logout", ht.HandleLogout)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleIndex serves the landing page payload. No authentication required.
func (ht *HTTPTransport) HandleIndex(w http.ResponseWriter, r *http.Request) {
	_ = writePage(w, "index", r.URL.Query().Get("error"))
}

// HandleRegisterPage serves the registration form payload, echoing back any
// message from a failed submission.
func (ht *HTTPTransport) HandleRegisterPage(w http.ResponseWriter, r *http.Request) {
	_ = writePage(w, "register", r.URL.Query().Get("error"))
}

// HandleLoginPage serves the login form payload, echoing back any message
// from a failed submission.
func (ht *HTTPTransport) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	_ = writePage(w, "login", r.URL.Query().Get("error"))
}

// HandleRegister processes account registration requests.
// Expects form parameters: username, email, password, confirm-password.
// On success the user is sent to the login page; on failure back to the
// registration page with a message. No session is established either way.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	if err := r.ParseForm(); err != nil {
		http_.RedirectWithError(w, r, "/register", http_.GenericFailureMessage)

		return fmt.Errorf("parse form: %w", err)
	}

	log = log.With(logging.Group("user", "username", r.FormValue("username")))

	if err := ht.accountSvc.Register(
		r.Context(),
		r.FormValue("username"),
		r.FormValue("email"),
		r.FormValue("password"),
		r.FormValue("confirm-password"),
	); err != nil {
		http_.RedirectWithError(w, r, "/register", http_.UserFacingMessage(err))

		return fmt.Errorf("register user: %w", err)
	}

	http_.Redirect(w, r, "/login")

	return nil
}

// HandleLogin processes login requests.
// Expects form parameters: username, password.
// On success a session is established, its cookie set, and the user sent to
// the dashboard; on failure back to the login page with a generic message.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	if err := r.ParseForm(); err != nil {
		http_.RedirectWithError(w, r, "/login", http_.GenericFailureMessage)

		return fmt.Errorf("parse form: %w", err)
	}

	log = log.With(logging.Group("user", "username", r.FormValue("username")))

	usr, err := ht.accountSvc.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		http_.RedirectWithError(w, r, "/login", http_.UserFacingMessage(err))

		return fmt.Errorf("authenticate: %w", err)
	}

	sess, err := ht.sessions.Establish(r.Context(), usr)
	if err != nil {
		http_.RedirectWithError(w, r, "/login", http_.GenericFailureMessage)

		return fmt.Errorf("establish session: %w", err)
	}

	http_.SetSessionCookie(w, sess)
	http_.Redirect(w, r, "/dashboard")

	return nil
}

// HandleLogout terminates the current session and sends the user to the
// landing page. Requires an authenticated session.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogout(w, r)
}

func (ht *HTTPTransport) handleLogout(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user logout failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged out")
		}
	}(r.Context())

	sess, err := sessionsvc.RequireAuthenticated(r.Context())
	if err != nil {
		http_.RedirectWithError(w, r, "/login", http_.UserFacingMessage(err))

		return fmt.Errorf("require authenticated: %w", err)
	}

	ht.sessions.Terminate(r.Context(), sess.Token)
	http_.ClearSessionCookie(w)
	http_.Redirect(w, r, "/")

	return nil
}

func writePage(w http.ResponseWriter, page, errorMessage string) error {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(pagePayload{
		Page:  page,
		Error: errorMessage,
	}); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}
