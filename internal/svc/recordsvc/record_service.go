package recordsvc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mkrupp/volunteerlog/internal/domain"
	"github.com/mkrupp/volunteerlog/internal/infra/logging"
	"github.com/mkrupp/volunteerlog/internal/repo/record"
)

// RecordConfig contains configuration parameters for the volunteer record service.
type RecordConfig struct {
	// RecentLimit is the number of records shown on the dashboard
	RecentLimit int `env:"RECENT_LIMIT" default:"5"`
}

// RecordService provides logging and retrieval of volunteer records, always
// scoped to a single owning user.
type RecordService struct {
	Config     RecordConfig
	RecordRepo record.Repository
	Logger     logging.Logger
}

// NewRecordService creates a new RecordService with the given record
// repository factory and configuration. Returns an error if the record
// repository cannot be created.
func NewRecordService(repoFactory record.RepositoryFactory, cfg RecordConfig) (*RecordService, error) {
	recordRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new record repo: %w", err)
	}

	return &RecordService{
		Config:     cfg,
		RecordRepo: recordRepo,
		Logger:     logging.GetLogger("svc.recordsvc.record_service"),
	}, nil
}

// Log validates and persists a single volunteer activity for userID.
// Organization must be non-empty, hoursText must parse to a finite number
// greater than zero, and dateText must be a YYYY-MM-DD calendar date.
// The description may be empty. On failure nothing is persisted.
func (s *RecordService) Log(
	ctx context.Context,
	userID int64,
	organization, hoursText, dateText, description string,
) (_ *domain.VolunteerRecord, err error) {
	log := s.Logger.With(logging.Group("record", "user_id", userID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "log record failed", "error", err)
		} else {
			log.DebugContext(ctx, "record logged")
		}
	}()

	organization = strings.TrimSpace(organization)
	if organization == "" {
		return nil, domain.ErrOrganizationMissing
	}

	hours, err := strconv.ParseFloat(strings.TrimSpace(hoursText), 64)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidHours, err)
	}

	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return nil, domain.ErrHoursNotPositive
	}

	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(dateText))
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidDate, err)
	}

	//nolint:exhaustruct
	created, err := s.RecordRepo.CreateRecord(ctx, &domain.VolunteerRecord{
		UserID:       userID,
		Organization: organization,
		Hours:        hours,
		Date:         date,
		Description:  description,
	})
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	return created, nil
}

// ListForUser returns every record owned by userID, most recent activity date
// first. A user with no records gets an empty slice, never an error.
func (s *RecordService) ListForUser(ctx context.Context, userID int64) ([]domain.VolunteerRecord, error) {
	records, err := s.RecordRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	return records, nil
}

// RecentForUser returns at most limit records owned by userID, a prefix of
// ListForUser in the same order. The limit must be positive.
func (s *RecordService) RecentForUser(
	ctx context.Context,
	userID int64,
	limit int,
) ([]domain.VolunteerRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrValidation)
	}

	records, err := s.RecordRepo.RecentByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent records: %w", err)
	}

	return records, nil
}

// TotalHoursForUser returns the sum of hours over all of userID's records,
// 0 when there are none.
func (s *RecordService) TotalHoursForUser(ctx context.Context, userID int64) (float64, error) {
	total, err := s.RecordRepo.TotalHoursByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("total hours: %w", err)
	}

	return total, nil
}

// Close releases resources held by the service, such as database connections.
// Returns an error if cleanup fails.
func (s *RecordService) Close() error {
	if err := s.RecordRepo.Close(); err != nil {
		return fmt.Errorf("close record repo: %w", err)
	}

	return nil
}
