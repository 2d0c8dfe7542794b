package trace

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists trace entries to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite trace store.
// The path should be a file path (e.g., "./trace.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS trace_entries (
			context_id TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			location TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (context_id, sequence)
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_trace_entries_context_id
		ON trace_entries(context_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(contextID, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO trace_entries (context_id, sequence, location, recorded_at)
		VALUES (
			?,
			COALESCE((SELECT MAX(sequence) FROM trace_entries WHERE context_id = ?), 0) + 1,
			?, ?
		)
	`, contextID, contextID, location, time.Now().UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("append trace entry: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(contextID string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT sequence, location, recorded_at
		FROM trace_entries
		WHERE context_id = ?
		ORDER BY sequence
	`, contextID)
	if err != nil {
		return nil, fmt.Errorf("list trace entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		var recordedAt string
		if err := rows.Scan(&entry.Sequence, &entry.Location, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan trace entry: %w", err)
		}
		entry.ContextID = contextID
		entry.RecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trace entries: %w", err)
	}

	return entries, nil
}

// DeleteContext implements Store.
func (s *SQLiteStore) DeleteContext(contextID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		DELETE FROM trace_entries WHERE context_id = ?
	`, contextID)
	if err != nil {
		return fmt.Errorf("delete trace entries: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}
