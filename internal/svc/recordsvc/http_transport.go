package recordsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mkrupp/volunteerlog/internal/domain"
	"github.com/mkrupp/volunteerlog/internal/infra/logging"
	http_ "github.com/mkrupp/volunteerlog/internal/infra/transport/http"
	"github.com/mkrupp/volunteerlog/internal/svc/sessionsvc"
)

// HTTPTransportConfig contains configuration parameters for the HTTP transport layer.
type HTTPTransportConfig struct {
	http_.HTTPTransportConfig
}

// recordPayload is the plain-data representation of a volunteer record handed
// to the presentation layer.
type recordPayload struct {
	ID           int64   `json:"id"`
	Organization string  `json:"organization"`
	Hours        float64 `json:"hours"`
	Date         string  `json:"date"`
	Description  string  `json:"description,omitempty"`
}

// dashboardPayload is the dashboard result: lifetime total plus the most
// recent records.
type dashboardPayload struct {
	Page       string          `json:"page"`
	TotalHours float64         `json:"totalHours"`
	Recent     []recordPayload `json:"recent"`
}

// listPayload is the full-history result.
type listPayload struct {
	Page    string          `json:"page"`
	Records []recordPayload `json:"records"`
}

// logHoursPagePayload is the log-hours form payload, echoing back any message
// from a failed submission.
type logHoursPagePayload struct {
	Page  string `json:"page"`
	Error string `json:"error,omitempty"`
}

// HTTPTransport handles HTTP requests for volunteer records.
// All routes require an authenticated session; anonymous requests are sent to
// the login page before any service call is made.
type HTTPTransport struct {
	recordSvc *RecordService
	log       logging.Logger
	cfg       HTTPTransportConfig
}

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires a RecordService for record operations.
func NewHTTPTransport(
	recordSvc *RecordService,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	return &HTTPTransport{
		recordSvc: recordSvc,
		log:       logging.GetLogger("svc.recordsvc.http_transport"),
		cfg:       cfg,
	}
}

// ServeHTTP implements http.Handler and sets up routes for the record endpoints:
// - GET /dashboard: total hours plus most recent records
// - GET/POST /log_hours: log a new record
// - GET /view_hours: full record history.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /dashboard", ht.HandleDashboard)
	mux.HandleFunc("GET /log_hours", ht.HandleLogHoursPage)
	mux.HandleFunc("POST /log_hours", ht.HandleLogHours)
	mux.HandleFunc("GET /view_hours", ht.HandleViewHours)
	mux.ServeHTTP(w, r)
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// HandleDashboard serves the dashboard payload for the current user: total
// hours plus the configured number of most recent records.
func (ht *HTTPTransport) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleDashboard(w, r)
}

func (ht *HTTPTransport) handleDashboard(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "dashboard failed", "error", err)
		} else {
			log.DebugContext(ctx, "dashboard served")
		}
	}(r.Context())

	sess, err := sessionsvc.RequireAuthenticated(r.Context())
	if err != nil {
		http_.RedirectWithError(w, r, "/login", http_.UserFacingMessage(err))

		return fmt.Errorf("require authenticated: %w", err)
	}

	totalHours, err := ht.recordSvc.TotalHoursForUser(r.Context(), sess.UserID)
	if err != nil {
		http_.RedirectWithError(w, r, "/", http_.GenericFailureMessage)

		return fmt.Errorf("total hours: %w", err)
	}

	recent, err := ht.recordSvc.RecentForUser(r.Context(), sess.UserID, ht.recordSvc.Config.RecentLimit)
	if err != nil {
		http_.RedirectWithError(w, r, "/", http_.GenericFailureMessage)

		return fmt.Errorf("recent records: %w", err)
	}

	return writeJSON(w, dashboardPayload{
		Page:       "dashboard",
		TotalHours: totalHours,
		Recent:     toRecordPayloads(recent),
	})
}

// HandleLogHoursPage serves the log-hours form payload, echoing back any
// message from a failed submission.
func (ht *HTTPTransport) HandleLogHoursPage(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogHoursPage(w, r)
}

func (ht *HTTPTransport) handleLogHoursPage(w http.ResponseWriter, r *http.Request) (err error) {
	if _, err := sessionsvc.RequireAuthenticated(r.Context()); err != nil {
		http_.RedirectWithError(w, r, "/login", http_.UserFacingMessage(err))

		return fmt.Errorf("require authenticated: %w", err)
	}

	return writeJSON(w, logHoursPagePayload{
		Page:  "log_hours",
		Error: r.URL.Query().Get("error"),
	})
}

// HandleLogHours processes record submissions.
// Expects form parameters: organization, hours, date (YYYY-MM-DD), description.
// On success the user is sent to the dashboard; on failure back to the form
// with a message and nothing persisted.
func (ht *HTTPTransport) HandleLogHours(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogHours(w, r)
}

func (ht *HTTPTransport) handleLogHours(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "log hours failed", "error", err)
		} else {
			log.DebugContext(ctx, "hours logged")
		}
	}(r.Context())

	sess, err := sessionsvc.RequireAuthenticated(r.Context())
	if err != nil {
		http_.RedirectWithError(w, r, "/login", http_.UserFacingMessage(err))

		return fmt.Errorf("require authenticated: %w", err)
	}

	if err := r.ParseForm(); err != nil {
		http_.RedirectWithError(w, r, "/log_hours", http_.GenericFailureMessage)

		return fmt.Errorf("parse form: %w", err)
	}

	if _, err := ht.recordSvc.Log(
		r.Context(),
		sess.UserID,
		r.FormValue("organization"),
		r.FormValue("hours"),
		r.FormValue("date"),
		r.FormValue("description"),
	); err != nil {
		http_.RedirectWithError(w, r, "/log_hours", http_.UserFacingMessage(err))

		return fmt.Errorf("log record: %w", err)
	}

	http_.Redirect(w, r, "/dashboard")

	return nil
}

// HandleViewHours serves the full record history for the current user,
// most recent activity date first.
func (ht *HTTPTransport) HandleViewHours(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleViewHours(w, r)
}

func (ht *HTTPTransport) handleViewHours(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "view hours failed", "error", err)
		} else {
			log.DebugContext(ctx, "hours listed")
		}
	}(r.Context())

	sess, err := sessionsvc.RequireAuthenticated(r.Context())
	if err != nil {
		http_.RedirectWithError(w, r, "/login", http_.UserFacingMessage(err))

		return fmt.Errorf("require authenticated: %w", err)
	}

	records, err := ht.recordSvc.ListForUser(r.Context(), sess.UserID)
	if err != nil {
		http_.RedirectWithError(w, r, "/dashboard", http_.GenericFailureMessage)

		return fmt.Errorf("list records: %w", err)
	}

	return writeJSON(w, listPayload{
		Page:    "view_hours",
		Records: toRecordPayloads(records),
	})
}

func toRecordPayloads(records []domain.VolunteerRecord) []recordPayload {
	payloads := make([]recordPayload, 0, len(records))

	for _, record := range records {
		payloads = append(payloads, recordPayload{
			ID:           record.ID,
			Organization: record.Organization,
			Hours:        record.Hours,
			Date:         record.DateString(),
			Description:  record.Description,
		})
	}

	return payloads
}

func writeJSON(w http.ResponseWriter, payload any) error {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}
