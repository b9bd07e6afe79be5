package jobstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mediacopier/internal/planner"
	"mediacopier/internal/report"
	"mediacopier/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout keeps a fixed-width fraction so stored timestamps sort
// lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// schemaVersion is bumped on incompatible schema changes. A mismatched
// database must be cleared or deleted.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// schema version.
var ErrSchemaMismatch = errors.New("jobstore: schema version mismatch")

// Store persists jobs in SQLite. A flock file beside the database
// serializes access across processes; within a process database/sql
// handles concurrent use.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open creates or connects to the job database at dbPath, acquiring the
// cross-process lock. Parent directories are created as needed.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, services.Wrap(services.ErrValidation, "jobstore", "open",
			"database path is required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	lock := flock.New(dbPath + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire job db lock: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
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
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database and the cross-process lock.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// SaveJob inserts or replaces a job. A missing ID is generated; CreatedAt
// is set on first save and UpdatedAt on every save.
func (s *Store) SaveJob(ctx context.Context, job *Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = StatusPending
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now

	sourcesJSON, err := json.Marshal(job.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	planJSON, err := marshalNullable(job.Plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	reportJSON, err := marshalNullable(job.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (
			id, name, sources_json, destination, organization_mode,
			collision_strategy, dry_run, status, checkpoint_idx,
			plan_json, report_json, error_message, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sources_json = excluded.sources_json,
			destination = excluded.destination,
			organization_mode = excluded.organization_mode,
			collision_strategy = excluded.collision_strategy,
			dry_run = excluded.dry_run,
			status = excluded.status,
			checkpoint_idx = excluded.checkpoint_idx,
			plan_json = excluded.plan_json,
			report_json = excluded.report_json,
			error_message = excluded.error_message,
			updated_at = excluded.updated_at`,
		job.ID, job.Name, string(sourcesJSON), job.Destination, job.OrganizationMode,
		job.CollisionStrategy, boolToInt(job.DryRun), string(job.Status), job.CheckpointIdx,
		planJSON, reportJSON, job.ErrorMessage,
		job.CreatedAt.Format(timeLayout), job.UpdatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob loads one job by ID.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, selectJobColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "jobstore", "get_job",
			fmt.Sprintf("job %s not found", id), nil)
	}
	return job, err
}

// ListJobs returns all jobs, newest first.
func (s *Store) ListJobs(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, selectJobColumns+" FROM jobs ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateStatus sets the status and error message of a job.
func (s *Store) UpdateStatus(ctx context.Context, id string, status Status, errorMessage string) error {
	return s.touch(ctx, id,
		"UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?",
		string(status), errorMessage, nowString(), id)
}

// SaveCheckpoint persists the next unprocessed plan index.
func (s *Store) SaveCheckpoint(ctx context.Context, id string, checkpoint int) error {
	return s.touch(ctx, id,
		"UPDATE jobs SET checkpoint_idx = ?, updated_at = ? WHERE id = ?",
		checkpoint, nowString(), id)
}

// SaveReport persists the final job report.
func (s *Store) SaveReport(ctx context.Context, id string, jobReport *report.JobReport) error {
	data, err := marshalNullable(jobReport)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return s.touch(ctx, id,
		"UPDATE jobs SET report_json = ?, updated_at = ? WHERE id = ?",
		data, nowString(), id)
}

// DeleteJob removes a job.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	return s.touch(ctx, id, "DELETE FROM jobs WHERE id = ?", id)
}

// ClearCompleted deletes done and failed jobs and reports how many.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM jobs WHERE status IN (?, ?)",
		string(StatusDone), string(StatusFailed))
	if err != nil {
		return 0, fmt.Errorf("clear completed jobs: %w", err)
	}
	return res.RowsAffected()
}

// Stats counts jobs per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[Status(status)] = count
	}
	return stats, rows.Err()
}

func (s *Store) touch(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "jobstore", "update_job",
			fmt.Sprintf("job %s not found", id), nil)
	}
	return nil
}

const selectJobColumns = `SELECT
	id, name, sources_json, destination, organization_mode,
	collision_strategy, dry_run, status, checkpoint_idx,
	plan_json, report_json, error_message, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job          Job
		sourcesJSON  string
		dryRun       int
		status       string
		planJSON     sql.NullString
		reportJSON   sql.NullString
		createdAtStr string
		updatedAtStr string
	)
	err := row.Scan(
		&job.ID, &job.Name, &sourcesJSON, &job.Destination, &job.OrganizationMode,
		&job.CollisionStrategy, &dryRun, &status, &job.CheckpointIdx,
		&planJSON, &reportJSON, &job.ErrorMessage, &createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, err
	}

	job.DryRun = dryRun != 0
	job.Status = Status(status)

	if err := json.Unmarshal([]byte(sourcesJSON), &job.Sources); err != nil {
		return nil, fmt.Errorf("parse sources of job %s: %w", job.ID, err)
	}
	if planJSON.Valid && planJSON.String != "" {
		var plan planner.Plan
		if err := json.Unmarshal([]byte(planJSON.String), &plan); err != nil {
			return nil, fmt.Errorf("parse plan of job %s: %w", job.ID, err)
		}
		job.Plan = &plan
	}
	if reportJSON.Valid && reportJSON.String != "" {
		var jobReport report.JobReport
		if err := json.Unmarshal([]byte(reportJSON.String), &jobReport); err != nil {
			return nil, fmt.Errorf("parse report of job %s: %w", job.ID, err)
		}
		job.Report = &jobReport
	}

	if job.CreatedAt, err = time.Parse(timeLayout, createdAtStr); err != nil {
		return nil, fmt.Errorf("parse created_at of job %s: %w", job.ID, err)
	}
	if job.UpdatedAt, err = time.Parse(timeLayout, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parse updated_at of job %s: %w", job.ID, err)
	}
	return &job, nil
}

// marshalNullable returns NULL for nil pointers so absent plans and reports
// stay distinguishable from empty ones.
func marshalNullable(v any) (sql.NullString, error) {
	switch t := v.(type) {
	case *planner.Plan:
		if t == nil {
			return sql.NullString{}, nil
		}
	case *report.JobReport:
		if t == nil {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nowString() string {
	return time.Now().UTC().Format(timeLayout)
}
