// Package journal persists workflow stage transitions to SQLite so operators
// can inspect what happened to a meeting after the fact. The pipeline itself
// never reads the journal; recording failures are logged and swallowed by the
// caller rather than failing a workflow.
package journal

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

	"scribe/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; stale databases are rejected rather than migrated in place.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by an incompatible
// version.
var ErrSchemaMismatch = errors.New("journal schema version mismatch")

// Statuses recorded for a stage transition.
const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Entry is one recorded stage transition.
type Entry struct {
	ID         int64
	WorkflowID string
	MeetingID  string
	Stage      string
	Status     string
	Detail     string
	CreatedAt  time.Time
}

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database. A nil store with no
// error is returned when journaling is disabled in the configuration.
func Open(cfg *config.Config) (*Store, error) {
	if strings.TrimSpace(cfg.Journal.Dir) == "" {
		return nil, nil
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Journal.Dir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
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

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
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
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (remove %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// RecordTransition appends one stage transition.
func (s *Store) RecordTransition(ctx context.Context, workflowID, meetingID, stage, status, detail string) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO stage_transitions (workflow_id, meeting_id, stage, status, detail, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		workflowID,
		meetingID,
		stage,
		status,
		detail,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert transition: %w", err)
	}
	return nil
}

// Recent returns up to limit transitions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, workflow_id, meeting_id, stage, status, detail, created_at
         FROM stage_transitions
         ORDER BY id DESC
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.WorkflowID, &entry.MeetingID, &entry.Stage,
			&entry.Status, &entry.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			entry.CreatedAt = parsed
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return entries, nil
}

// WorkflowHistory returns every transition for one workflow, oldest first.
func (s *Store) WorkflowHistory(ctx context.Context, workflowID string) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, workflow_id, meeting_id, stage, status, detail, created_at
         FROM stage_transitions
         WHERE workflow_id = ?
         ORDER BY id ASC`,
		workflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("query workflow history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.WorkflowID, &entry.MeetingID, &entry.Stage,
			&entry.Status, &entry.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			entry.CreatedAt = parsed
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow history: %w", err)
	}
	return entries, nil
}
