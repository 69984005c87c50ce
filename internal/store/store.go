// Package store caches finished summaries in SQLite, keyed by document
// content hash and the options that shaped the summary.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned by Get when no summary is cached.
var ErrNotFound = errors.New("summary not found")

const schema = `
CREATE TABLE IF NOT EXISTS summaries (
	content_hash   TEXT NOT NULL,
	options_key    TEXT NOT NULL,
	filename       TEXT NOT NULL,
	summary        TEXT NOT NULL,
	chunks_total   INTEGER NOT NULL DEFAULT 0,
	chunks_skipped INTEGER NOT NULL DEFAULT 0,
	chunks_failed  INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL,
	PRIMARY KEY (content_hash, options_key)
)`

// Record is one cached summary.
type Record struct {
	ContentHash   string
	OptionsKey    string
	Filename      string
	Summary       string
	ChunksTotal   int
	ChunksSkipped int
	ChunksFailed  int
	CreatedAt     time.Time
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, contentHash, optionsKey string) (*Record, error) {
	rec := &Record{ContentHash: contentHash, OptionsKey: optionsKey}
	err := s.db.QueryRowContext(ctx, `
		SELECT filename, summary, chunks_total, chunks_skipped, chunks_failed, created_at
		FROM summaries WHERE content_hash = ? AND options_key = ?`,
		contentHash, optionsKey,
	).Scan(&rec.Filename, &rec.Summary, &rec.ChunksTotal, &rec.ChunksSkipped, &rec.ChunksFailed, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}
	return rec, nil
}

// Put inserts or replaces rec. A zero CreatedAt is set to now.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (content_hash, options_key, filename, summary, chunks_total, chunks_skipped, chunks_failed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_hash, options_key) DO UPDATE SET
			filename = excluded.filename,
			summary = excluded.summary,
			chunks_total = excluded.chunks_total,
			chunks_skipped = excluded.chunks_skipped,
			chunks_failed = excluded.chunks_failed,
			created_at = excluded.created_at`,
		rec.ContentHash, rec.OptionsKey, rec.Filename, rec.Summary,
		rec.ChunksTotal, rec.ChunksSkipped, rec.ChunksFailed, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put summary: %w", err)
	}
	return nil
}

// Count returns the number of cached summaries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM summaries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count summaries: %w", err)
	}
	return n, nil
}
