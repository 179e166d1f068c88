package record

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mkrupp/volunteerlog/internal/domain"
	"github.com/mkrupp/volunteerlog/internal/infra/logging"
)

// SQLiteRecordRepository implements Repository using SQLite as the storage backend.
// Activity dates are stored as YYYY-MM-DD text, so lexicographic ordering is
// chronological ordering.
type SQLiteRecordRepository struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Repository = (*SQLiteRecordRepository)(nil)

// SQLiteRecordRepositoryFactory creates a factory function that returns a new
// SQLiteRecordRepository. The factory function implements the RepositoryFactory type.
func SQLiteRecordRepositoryFactory(cfg RepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLiteRecordRepository(cfg)
	}
}

// NewSQLiteRecordRepository creates a new SQLiteRecordRepository with the given
// configuration. It initializes the database connection and creates the schema
// if needed.
func NewSQLiteRecordRepository(cfg RepositoryConfig) (*SQLiteRecordRepository, error) {
	log := logging.GetLogger("repo.record.sqlite_record_repository").With(
		logging.Group("db", "path", cfg.DSN),
	)

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeRecordDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteRecordRepository{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeRecordDB(db *sql.DB) (err error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS volunteer_records (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      INTEGER NOT NULL REFERENCES users (id),
			organization TEXT    NOT NULL,
			hours        REAL    NOT NULL,
			date         TEXT    NOT NULL,
			description  TEXT    NOT NULL DEFAULT '',
			created_at   INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS volunteer_records_user_date
		ON volunteer_records (user_id, date DESC)
	`); err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	return nil
}

// CreateRecord implements Repository.CreateRecord using SQLite.
func (r *SQLiteRecordRepository) CreateRecord(
	ctx context.Context,
	record *domain.VolunteerRecord,
) (*domain.VolunteerRecord, error) {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	created := *record
	created.CreatedAt = time.Now().Unix()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO volunteer_records (user_id, organization, hours, date, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		created.UserID,
		created.Organization,
		created.Hours,
		created.DateString(),
		created.Description,
		created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	created.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return &created, nil
}

// ListByUser implements Repository.ListByUser using SQLite.
func (r *SQLiteRecordRepository) ListByUser(
	ctx context.Context,
	userID int64,
) ([]domain.VolunteerRecord, error) {
	return r.queryRecords(ctx,
		`SELECT id, user_id, organization, hours, date, description, created_at
		 FROM volunteer_records
		 WHERE user_id = ?
		 ORDER BY date DESC, id ASC`,
		userID,
	)
}

// RecentByUser implements Repository.RecentByUser using SQLite.
func (r *SQLiteRecordRepository) RecentByUser(
	ctx context.Context,
	userID int64,
	limit int,
) ([]domain.VolunteerRecord, error) {
	return r.queryRecords(ctx,
		`SELECT id, user_id, organization, hours, date, description, created_at
		 FROM volunteer_records
		 WHERE user_id = ?
		 ORDER BY date DESC, id ASC
		 LIMIT ?`,
		userID, limit,
	)
}

// TotalHoursByUser implements Repository.TotalHoursByUser using SQLite.
func (r *SQLiteRecordRepository) TotalHoursByUser(
	ctx context.Context,
	userID int64,
) (float64, error) {
	var total float64

	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(hours), 0) FROM volunteer_records WHERE user_id = ?",
		userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum hours: %w", err)
	}

	return total, nil
}

func (r *SQLiteRecordRepository) queryRecords(
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
		var (
			record  domain.VolunteerRecord
			dateStr string
		)

		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Organization,
			&record.Hours,
			&dateStr,
			&record.Description,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		record.Date, err = time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored date: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

// Close implements Repository.Close by closing the database connection.
func (r *SQLiteRecordRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
