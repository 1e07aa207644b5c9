// Package cache provides the local persistence tier for review records.
//
// The cache is an embedded SQLite database keyed by file identifier.
// It is the fallback of last resort: always available, written on
// every save, and the only tier that works offline or without
// credentials. Records are stored as serialized JSON under a fixed
// key prefix, mirroring what browser-profile storage holds for the
// same file.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clipreview/clipreview/internal/review"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// KeyPrefix is prepended to the file identifier to form the storage key.
const KeyPrefix = "vr-comments-"

// Key returns the storage key for a file identifier.
func Key(fileID string) string {
	return KeyPrefix + fileID
}

// Store is the local review record cache.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates or opens the cache database at the specified path.
//
// The database is opened in embedded mode with WAL for concurrent
// reads; the same cache file may be shared by other processes
// reviewing the same files, with last-writer-wins semantics.
//
// The caller MUST call Close() when done.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path}

	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := s.initSchema(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the cache database, checkpointing the WAL first.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close cache database: %w", err)
	}
	s.conn = nil
	return nil
}

// initSchema creates the reviews table. Idempotent.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reviews (
		key TEXT PRIMARY KEY,
		record TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return nil
}

// Save upserts the record under its file identifier's key.
//
// The returned error is diagnostic only: callers keep the record
// valid in memory and retry on a future save, per the local-first
// storage contract.
func (s *Store) Save(rec *review.Record) error {
	return s.SaveContext(context.Background(), rec)
}

// SaveContext upserts a record with context support.
func (s *Store) SaveContext(ctx context.Context, rec *review.Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("invalid review record: %w", err)
	}

	data, err := rec.Encode()
	if err != nil {
		return err
	}

	query := `
	INSERT INTO reviews (key, record, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		record = excluded.record,
		updated_at = excluded.updated_at
	`

	_, err = s.conn.ExecContext(ctx, query,
		Key(rec.FileID),
		string(data),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save review record: %w", err)
	}
	return nil
}

// Load fetches the cached record for a file identifier.
//
// Absence is a normal result, not an error: missing keys and
// malformed stored payloads both report ok=false so callers can fall
// back to the canonical empty record.
func (s *Store) Load(fileID string) (*review.Record, bool) {
	return s.LoadContext(context.Background(), fileID)
}

// LoadContext fetches a cached record with context support.
func (s *Store) LoadContext(ctx context.Context, fileID string) (*review.Record, bool) {
	var data string
	err := s.conn.QueryRowContext(ctx,
		"SELECT record FROM reviews WHERE key = ?", Key(fileID)).Scan(&data)
	if err != nil {
		return nil, false
	}

	rec, err := review.Decode([]byte(data))
	if err != nil {
		return nil, false
	}
	return rec, true
}

// Keys lists all cached storage keys, for status reporting.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT key FROM reviews ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan cache key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache keys: %w", err)
	}
	return keys, nil
}
