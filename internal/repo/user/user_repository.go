package user

import (
	"context"
	"strings"

	"github.com/mkrupp/volunteerlog/internal/domain"
)

// RepositoryConfig holds configuration for user persistence.
type RepositoryConfig struct {
	// DSN is the store connection string. A postgres:// (or postgresql://)
	// scheme selects the Postgres backend; anything else is treated as a
	// SQLite database path.
	DSN string `env:"DSN" default:"var/storage/volunteersvc.db"`
}

// Repository defines the interface for user data persistence.
type Repository interface {
	// CreateUser adds a new user to the repository.
	// Returns ErrUserAlreadyExists if the username is already taken and
	// ErrEmailAlreadyExists if the email is. Uniqueness is enforced by the
	// store itself, so concurrent registrations cannot both succeed.
	CreateUser(ctx context.Context, username, email string, passwordHash []byte) error

	// GetUserByUsername retrieves a user by their exact username.
	// Returns the user object and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)

// RepositoryFactoryFor selects a backend from the DSN scheme.
func RepositoryFactoryFor(cfg RepositoryConfig) RepositoryFactory {
	if isPostgresDSN(cfg.DSN) {
		return PostgresUserRepositoryFactory(cfg)
	}

	return SQLiteUserRepositoryFactory(cfg)
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
