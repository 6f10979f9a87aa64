package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const jobsSchema = `
CREATE TABLE IF NOT EXISTS jobs (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    progress TEXT NOT NULL DEFAULT '',
    warnings TEXT NOT NULL DEFAULT '[]',
    error TEXT NOT NULL DEFAULT '',
    result TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
`

// SQLiteStore persists jobs in a SQLite database so job history survives
// daemon restarts.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite initializes or connects to the job database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(jobsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init jobs schema: %w", err)
	}
	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *SQLiteStore) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SQLiteStore) Create(ctx context.Context) (*Job, error) {
	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO jobs (id, status, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		job.ID, string(job.Status), now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	return job, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, progress, warnings, error, result, created_at, updated_at FROM jobs WHERE id = ?`, id)

	var (
		job                  Job
		status               string
		warningsJSON         string
		resultJSON           sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&job.ID, &status, &job.Progress, &warningsJSON, &job.Error, &resultJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}

	job.Status = Status(status)
	if warningsJSON != "" && warningsJSON != "[]" {
		if err := json.Unmarshal([]byte(warningsJSON), &job.Warnings); err != nil {
			return nil, fmt.Errorf("decode warnings: %w", err)
		}
	}
	if resultJSON.Valid && resultJSON.String != "" {
		job.Result = &Result{}
		if err := json.Unmarshal([]byte(resultJSON.String), job.Result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}
	if job.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if job.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &job, nil
}

// currentStatus reads the stored status so transition rules apply under
// the same retry discipline as writes.
func (s *SQLiteStore) currentStatus(ctx context.Context, id string) (Status, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM jobs WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read job status: %w", err)
	}
	return Status(status), nil
}

func (s *SQLiteStore) SetStatus(ctx context.Context, id string, status Status) error {
	current, err := s.currentStatus(ctx, id)
	if err != nil {
		return err
	}
	if err := validateTransition(current, status); err != nil {
		return err
	}
	_, err = s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339Nano), id)
	return err
}

func (s *SQLiteStore) SetProgress(ctx context.Context, id, progress string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?`,
		progress, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Complete(ctx context.Context, id string, result *Result, warnings []string) error {
	current, err := s.currentStatus(ctx, id)
	if err != nil {
		return err
	}
	if err := validateTransition(current, StatusCompleted); err != nil {
		return err
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}

	_, err = s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, result = ?, warnings = ?, progress = '', updated_at = ? WHERE id = ?`,
		string(StatusCompleted), string(resultJSON), string(warningsJSON),
		time.Now().UTC().Format(time.RFC3339Nano), id)
	return err
}

func (s *SQLiteStore) Fail(ctx context.Context, id, message string) error {
	current, err := s.currentStatus(ctx, id)
	if err != nil {
		return err
	}
	if err := validateTransition(current, StatusFailed); err != nil {
		return err
	}
	_, err = s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error = ?, progress = '', updated_at = ? WHERE id = ?`,
		string(StatusFailed), message, time.Now().UTC().Format(time.RFC3339Nano), id)
	return err
}
