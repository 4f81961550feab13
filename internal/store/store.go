// Package store archives successful extractions in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jcaMx/company-extractor-web/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	company    TEXT NOT NULL,
	url        TEXT NOT NULL,
	result     TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_extractions_created ON extractions(created_at);
`

// timeLayout is fixed width so that created_at sorts as text in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultLimit is used by Recent when limit is not positive.
const DefaultLimit = 20

// Entry is one archived extraction.
type Entry struct {
	ID        int64                  `json:"id"`
	URL       string                 `json:"url"`
	Result    model.ExtractionResult `json:"result"`
	CreatedAt time.Time              `json:"created_at"`
}

// Store wraps the archive database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the archive at path. ":memory:" is allowed.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store dir: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// An in-memory database lives per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Save archives one successful extraction.
func (s *Store) Save(ctx context.Context, requestedURL string, res *model.ExtractionResult) (int64, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return 0, fmt.Errorf("encode result: %w", err)
	}
	r, err := s.db.ExecContext(ctx,
		`INSERT INTO extractions (company, url, result, created_at) VALUES (?, ?, ?, ?)`,
		res.Company, requestedURL, string(payload), s.now().UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("insert extraction: %w", err)
	}
	return r.LastInsertId()
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, result, created_at FROM extractions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			payload string
			created string
		)
		if err := rows.Scan(&e.ID, &e.URL, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Result); err != nil {
			return nil, fmt.Errorf("decode extraction %d: %w", e.ID, err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at %d: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
