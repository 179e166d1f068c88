package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mkrupp/volunteerlog/internal/domain"
	"github.com/mkrupp/volunteerlog/internal/infra/logging"
)

const pgUniqueViolation = "23505"

// PostgresUserRepository implements Repository using PostgreSQL through the
// pgx stdlib driver.
type PostgresUserRepository struct {
	db  *sql.DB
	log logging.Logger
}

var _ Repository = (*PostgresUserRepository)(nil)

// PostgresUserRepositoryFactory creates a factory function that returns a new
// PostgresUserRepository. The factory function implements the RepositoryFactory type.
func PostgresUserRepositoryFactory(cfg RepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewPostgresUserRepository(cfg)
	}
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given
// configuration. It initializes the database connection and creates the schema
// if needed.
func NewPostgresUserRepository(cfg RepositoryConfig) (*PostgresUserRepository, error) {
	log := logging.GetLogger("repo.user.postgres_user_repository")

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT      NOT NULL CONSTRAINT users_username_key UNIQUE,
			email         TEXT      NOT NULL CONSTRAINT users_email_key UNIQUE,
			password_hash BYTEA     NOT NULL,
			created_at    BIGINT    NOT NULL
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &PostgresUserRepository{
		db:  db,
		log: log,
	}, nil
}

// CreateUser implements Repository.CreateUser using PostgreSQL.
func (r *PostgresUserRepository) CreateUser(
	ctx context.Context,
	username, email string,
	passwordHash []byte,
) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, created_at) VALUES ($1, $2, $3, $4)",
		username,
		email,
		passwordHash,
		time.Now().Unix(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "email") {
				err = errors.Join(domain.ErrEmailAlreadyExists, err)
			} else {
				err = errors.Join(domain.ErrUserAlreadyExists, err)
			}
		}

		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetUserByUsername implements Repository.GetUserByUsername using PostgreSQL.
func (r *PostgresUserRepository) GetUserByUsername(
	ctx context.Context,
	username string,
) (*domain.User, bool, error) {
	var user domain.User

	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, created_at FROM users WHERE username = $1",
		username,
	).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, false, fmt.Errorf("query user: %w", err)
	}

	return &user, true, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *PostgresUserRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
