package record

import (
	"context"
	"strings"

	"github.com/mkrupp/volunteerlog/internal/domain"
)

// RepositoryConfig holds configuration for volunteer record persistence.
type RepositoryConfig struct {
	// DSN is the store connection string, shared with the user repository.
	// A postgres:// (or postgresql://) scheme selects the Postgres backend;
	// anything else is treated as a SQLite database path.
	DSN string `env:"DSN" default:"var/storage/volunteersvc.db"`
}

// Repository defines the interface for volunteer record persistence.
//
// All listing operations order by activity date descending; records sharing a
// date come back in insertion order (ascending identifier), which is stable
// because identifiers are assigned monotonically.
type Repository interface {
	// CreateRecord persists a new record and returns it with its assigned
	// identifier.
	CreateRecord(ctx context.Context, record *domain.VolunteerRecord) (*domain.VolunteerRecord, error)

	// ListByUser returns every record owned by userID, most recent activity
	// date first. Returns an empty slice, not an error, when there are none.
	ListByUser(ctx context.Context, userID int64) ([]domain.VolunteerRecord, error)

	// RecentByUser returns at most limit records owned by userID, a prefix of
	// ListByUser in the same order.
	RecentByUser(ctx context.Context, userID int64, limit int) ([]domain.VolunteerRecord, error)

	// TotalHoursByUser sums the hours of every record owned by userID.
	// Returns 0 for a user with no records.
	TotalHoursByUser(ctx context.Context, userID int64) (float64, error)

	// Close releases any resources held by the repository.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)

// RepositoryFactoryFor selects a backend from the DSN scheme.
func RepositoryFactoryFor(cfg RepositoryConfig) RepositoryFactory {
	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		return PostgresRecordRepositoryFactory(cfg)
	}

	return SQLiteRecordRepositoryFactory(cfg)
}
