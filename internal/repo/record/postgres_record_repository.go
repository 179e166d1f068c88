package record

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mkrupp/volunteerlog/internal/domain"
	"github.com/mkrupp/volunteerlog/internal/infra/logging"
)

// PostgresRecordRepository implements Repository using PostgreSQL through the
// pgx stdlib driver.
type PostgresRecordRepository struct {
	db  *sql.DB
	log logging.Logger
}

var _ Repository = (*PostgresRecordRepository)(nil)

// PostgresRecordRepositoryFactory creates a factory function that returns a new
// PostgresRecordRepository. The factory function implements the RepositoryFactory type.
func PostgresRecordRepositoryFactory(cfg RepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewPostgresRecordRepository(cfg)
	}
}

// NewPostgresRecordRepository creates a new PostgresRecordRepository with the
// given configuration. It initializes the database connection and creates the
// schema if needed.
func NewPostgresRecordRepository(cfg RepositoryConfig) (*PostgresRecordRepository, error) {
	log := logging.GetLogger("repo.record.postgres_record_repository")

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS volunteer_records (
			id           BIGSERIAL        PRIMARY KEY,
			user_id      BIGINT           NOT NULL REFERENCES users (id),
			organization TEXT             NOT NULL,
			hours        DOUBLE PRECISION NOT NULL,
			date         DATE             NOT NULL,
			description  TEXT             NOT NULL DEFAULT '',
			created_at   BIGINT           NOT NULL
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS volunteer_records_user_date
		ON volunteer_records (user_id, date DESC)
	`); err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &PostgresRecordRepository{
		db:  db,
		log: log,
	}, nil
}

// CreateRecord implements Repository.CreateRecord using PostgreSQL.
func (r *PostgresRecordRepository) CreateRecord(
	ctx context.Context,
	record *domain.VolunteerRecord,
) (*domain.VolunteerRecord, error) {
	created := *record
	created.CreatedAt = time.Now().Unix()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO volunteer_records (user_id, organization, hours, date, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		created.UserID,
		created.Organization,
		created.Hours,
		created.Date,
		created.Description,
		created.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	return &created, nil
}

// ListByUser implements Repository.ListByUser using PostgreSQL.
func (r *PostgresRecordRepository) ListByUser(
	ctx context.Context,
	userID int64,
) ([]domain.VolunteerRecord, error) {
	return r.queryRecords(ctx,
		`SELECT id, user_id, organization, hours, date, description, created_at
		 FROM volunteer_records
		 WHERE user_id = $1
		 ORDER BY date DESC, id ASC`,
		userID,
	)
}

// RecentByUser implements Repository.RecentByUser using PostgreSQL.
func (r *PostgresRecordRepository) RecentByUser(
	ctx context.Context,
	userID int64,
	limit int,
) ([]domain.VolunteerRecord, error) {
	return r.queryRecords(ctx,
		`SELECT id, user_id, organization, hours, date, description, created_at
		 FROM volunteer_records
		 WHERE user_id = $1
		 ORDER BY date DESC, id ASC
		 LIMIT $2`,
		userID, limit,
	)
}

// TotalHoursByUser implements Repository.TotalHoursByUser using PostgreSQL.
func (r *PostgresRecordRepository) TotalHoursByUser(
	ctx context.Context,
	userID int64,
) (float64, error) {
	var total float64

	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(hours), 0) FROM volunteer_records WHERE user_id = $1",
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum hours: %w", err)
	}

	return total, nil
}

func (r *PostgresRecordRepository) queryRecords(
	ctx context.Context,
	query string,
	args ...any,
) ([]domain.VolunteerRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := []domain.VolunteerRecord{}

	for rows.Next() {
		var record domain.VolunteerRecord

		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Organization,
			&record.Hours,
			&record.Date,
			&record.Description,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *PostgresRecordRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
