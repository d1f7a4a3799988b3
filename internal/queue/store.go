package queue

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"dubforge/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape. Databases with a
// different version are rejected rather than migrated in place.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// Dubforge version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrNotFound indicates the requested task does not exist.
var ErrNotFound = errors.New("task not found")

// Store manages task persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the task database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "tasks.db"))
}

// OpenPath opens the task database at an explicit path.
func OpenPath(dbPath string) (*Store, error) {
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

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
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
		return fmt.Errorf("%w: database has version %d, expected %d (run 'dubforge queue clear' or delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// NewTask inserts a pending task for a source media file.
func (s *Store) NewTask(ctx context.Context, sourcePath, title, sourceLang, targetLang string) (*Task, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (source_path, title, source_language, target_language, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sourcePath, title, sourceLang, targetLang, StatusPending, timestamp, timestamp)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

const taskColumns = `id, source_path, title, source_language, target_language, status,
	audio_path, vocal_stem_path, background_stem_path, segments_path, rendered_path, final_path,
	error_message, review_reason, progress_stage, progress_percent, progress_message,
	created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*Task, error) {
	var task Task
	var created, updated string
	err := row.Scan(
		&task.ID, &task.SourcePath, &task.Title, &task.SourceLanguage, &task.TargetLanguage, &task.Status,
		&task.AudioPath, &task.VocalStemPath, &task.BackgroundStemPath, &task.SegmentsPath, &task.RenderedPath, &task.FinalPath,
		&task.ErrorMessage, &task.ReviewReason, &task.ProgressStage, &task.ProgressPercent, &task.ProgressMessage,
		&created, &updated,
	)
	if err != nil {
		return nil, err
	}
	task.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	task.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &task, nil
}

// GetByID fetches one task.
func (s *Store) GetByID(ctx context.Context, id int64) (*Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

// List returns all tasks ordered by id.
func (s *Store) List(ctx context.Context) ([]*Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// NextWithStatus returns the oldest task in any of the given statuses, or nil
// when none is ready.
func (s *Store) NextWithStatus(ctx context.Context, statuses ...Status) (*Task, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = string(status)
	}
	query := "SELECT " + taskColumns + " FROM tasks WHERE status IN (" +
		strings.Join(placeholders, ",") + ") ORDER BY id LIMIT 1"

	row := s.db.QueryRowContext(ctx, query, args...)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next task: %w", err)
	}
	return task, nil
}

// Update persists every mutable task field.
func (s *Store) Update(ctx context.Context, task *Task) error {
	if !task.Status.IsValid() {
		return fmt.Errorf("update task %d: invalid status %q", task.ID, task.Status)
	}
	task.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET
			source_path = ?, title = ?, source_language = ?, target_language = ?, status = ?,
			audio_path = ?, vocal_stem_path = ?, background_stem_path = ?, segments_path = ?,
			rendered_path = ?, final_path = ?, error_message = ?, review_reason = ?,
			progress_stage = ?, progress_percent = ?, progress_message = ?, updated_at = ?
		 WHERE id = ?`,
		task.SourcePath, task.Title, task.SourceLanguage, task.TargetLanguage, task.Status,
		task.AudioPath, task.VocalStemPath, task.BackgroundStemPath, task.SegmentsPath,
		task.RenderedPath, task.FinalPath, task.ErrorMessage, task.ReviewReason,
		task.ProgressStage, task.ProgressPercent, task.ProgressMessage,
		task.UpdatedAt.Format(time.RFC3339Nano), task.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", task.ID, err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("task %d: %w", task.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a task.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

// Clear removes all tasks.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	return nil
}

// ResetProcessing rolls every in-flight status back to its stable
// predecessor. Called on daemon startup so tasks orphaned by a crash rerun
// their interrupted stage.
func (s *Store) ResetProcessing(ctx context.Context) error {
	for from, to := range processingRollbacks {
		if _, err := s.db.ExecContext(ctx,
			"UPDATE tasks SET status = ?, updated_at = ? WHERE status = ?",
			to, time.Now().UTC().Format(time.RFC3339Nano), from); err != nil {
			return fmt.Errorf("rollback %s: %w", from, err)
		}
	}
	return nil
}

// Health aggregates queue counts.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM tasks GROUP BY status")
	if err != nil {
		return HealthSummary{}, fmt.Errorf("queue health: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch status {
		case StatusPending:
			summary.Pending += count
		case StatusCompleted:
			summary.Completed += count
		case StatusFailed:
			summary.Failed += count
		case StatusReview:
			summary.Review += count
		default:
			summary.Processing += count
		}
	}
	return summary, rows.Err()
}
