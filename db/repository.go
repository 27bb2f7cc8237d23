// Package db provides database utilities including repository methods for CRUD operations.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSessionNotFound is returned when a session id has no row.
var ErrSessionNotFound = errors.New("session not found")

// SessionRecord represents a row in the sessions table.
// State holds the serialized editor document as JSON.
type SessionRecord struct {
	ID        string    // UUID primary key
	Name      string    // User-visible session name, may be empty
	State     string    // JSON-encoded editor state
	CreatedAt time.Time // Timestamp when the session was created
	UpdatedAt time.Time // Timestamp of the last state write
}

// HistoryEntry represents a row in the session_history table.
// Each autosave appends a snapshot so edits can be recovered.
type HistoryEntry struct {
	ID        int64     // Auto-incremented primary key
	SessionID string    // Owning session id
	State     string    // JSON-encoded editor state at snapshot time
	CreatedAt time.Time // Timestamp when the snapshot was taken
}

// sqliteTimeFormat is the layout SQLite's datetime('now') produces.
const sqliteTimeFormat = "2006-01-02 15:04:05"

// Repository provides CRUD operations for sessions and their history.
// It wraps a Database instance and provides type-safe methods for
// inserting and querying records.
//
// The Repository is designed to work with both synchronous and
// asynchronous writes via the AsyncWriter: session upserts are always
// synchronous (the caller needs durability), history snapshots are
// queued asynchronously when a writer is configured.
type Repository struct {
	db          *Database
	asyncWriter *AsyncWriter
}

// NewRepository creates a new Repository instance.
// The asyncWriter parameter is optional; if nil, all writes will be synchronous.
func NewRepository(db *Database, asyncWriter *AsyncWriter) *Repository {
	return &Repository{
		db:          db,
		asyncWriter: asyncWriter,
	}
}

// UpsertSession inserts a session or replaces its name and state.
// The updated_at column always moves forward; created_at is preserved
// on conflict.
func (r *Repository) UpsertSession(ctx context.Context, record SessionRecord) error {
	if r.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if record.ID == "" {
		return fmt.Errorf("session id is required")
	}

	query := `
		INSERT INTO sessions (id, name, state, created_at, updated_at)
		VALUES (?, ?, ?, datetime('now'), datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			state = excluded.state,
			updated_at = datetime('now')`

	if _, err := r.db.Exec(query, record.ID, nullString(record.Name), record.State); err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", record.ID, err)
	}
	return nil
}

// GetSession retrieves a session by id.
// Returns ErrSessionNotFound if no row exists.
func (r *Repository) GetSession(ctx context.Context, id string) (SessionRecord, error) {
	if r.db == nil {
		return SessionRecord{}, fmt.Errorf("database connection is nil")
	}

	query := `
		SELECT id, COALESCE(name, ''), state, created_at, updated_at
		FROM sessions
		WHERE id = ?`

	var rec SessionRecord
	var createdAt, updatedAt string
	err := r.db.QueryRow(query, id).Scan(&rec.ID, &rec.Name, &rec.State, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionRecord{}, fmt.Errorf("get session %s: %w", id, ErrSessionNotFound)
		}
		return SessionRecord{}, fmt.Errorf("failed to get session %s: %w", id, err)
	}

	// Parse SQLite datetime
	rec.CreatedAt, _ = time.Parse(sqliteTimeFormat, createdAt)
	rec.UpdatedAt, _ = time.Parse(sqliteTimeFormat, updatedAt)
	return rec, nil
}

// ListSessions retrieves sessions ordered by most recently updated.
func (r *Repository) ListSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if limit <= 0 {
		limit = 50 // Default limit
	}

	query := `
		SELECT id, COALESCE(name, ''), state, created_at, updated_at
		FROM sessions
		ORDER BY updated_at DESC
		LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var createdAt, updatedAt string

		if err := rows.Scan(&rec.ID, &rec.Name, &rec.State, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}

		rec.CreatedAt, _ = time.Parse(sqliteTimeFormat, createdAt)
		rec.UpdatedAt, _ = time.Parse(sqliteTimeFormat, updatedAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session rows: %w", err)
	}

	return records, nil
}

// DeleteSession removes a session and, via foreign keys, its history.
// Returns ErrSessionNotFound if no row was deleted.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	if r.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	result, err := r.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete session %s: %w", id, ErrSessionNotFound)
	}
	return nil
}

// RecordHistory appends a state snapshot for a session.
// If an asyncWriter is configured, the write is queued asynchronously
// and the call returns immediately.
func (r *Repository) RecordHistory(ctx context.Context, sessionID, state string) error {
	if r.db == nil {
		return fmt.Errorf("database connection is nil")
	}

	query := `INSERT INTO session_history (session_id, state) VALUES (?, ?)`
	args := []interface{}{sessionID, state}

	// Use async writer if available
	if r.asyncWriter != nil && r.asyncWriter.IsStarted() {
		op := asyncInsertOp{
			query: query,
			args:  args,
		}
		if r.asyncWriter.Write(op) {
			return nil // Async write queued successfully
		}
		// Fall through to sync write if channel is full
	}

	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to record session history: %w", err)
	}
	return nil
}

// QueryHistory retrieves the most recent snapshots for a session.
// Results are ordered by created_at DESC.
func (r *Repository) QueryHistory(ctx context.Context, sessionID string, limit int) ([]HistoryEntry, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, session_id, state, created_at
		FROM session_history
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.Query(query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query session history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.State, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		entry.CreatedAt, _ = time.Parse(sqliteTimeFormat, createdAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return entries, nil
}

// CountSessions returns the total count of stored sessions.
func (r *Repository) CountSessions(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// CountHistory returns the total count of history snapshots.
func (r *Repository) CountHistory(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM session_history").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count session history: %w", err)
	}
	return count, nil
}

// asyncInsertOp is an internal type for async insert operations.
type asyncInsertOp struct {
	query string
	args  []interface{}
}

// CreateAsyncWriteHandler creates a WriteHandler for the Repository.
// This handler processes asyncInsertOp operations.
func (r *Repository) CreateAsyncWriteHandler() WriteHandler {
	return func(op WriteOperation) error {
		insertOp, ok := op.Data.(asyncInsertOp)
		if !ok {
			return fmt.Errorf("invalid operation type: expected asyncInsertOp")
		}

		_, err := r.db.Exec(insertOp.query, insertOp.args...)
		return err
	}
}

// nullString converts an empty string to sql.NullString for NULL storage.
func nullString(s string) interface{} {
	if s == "" {
		return sql.NullString{String: "", Valid: false}
	}
	return s
}
