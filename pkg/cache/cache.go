// Package cache stores raw Figma API payloads in a local SQLite database so repeated
// runs against an unchanged file skip the network.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the cache directory.
const FileName = "figma-cache.db"

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const schema = `CREATE TABLE IF NOT EXISTS responses (
	key        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	created_at INTEGER NOT NULL
)`

// Store is a SQLite-backed response cache. It implements figma.Cache.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (or creates) the cache database in dir. Entries older than ttl are
// treated as misses; a ttl <= 0 keeps entries forever.
func Open(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("cache: pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: migrate: %w", err)
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached body for key. Expired entries are misses.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		body      []byte
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT body, created_at FROM responses WHERE key = ?`, key).Scan(&body, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: get %q: %w", key, err)
	}

	if s.expired(createdAt) {
		return nil, false, nil
	}
	return body, true, nil
}

// Put stores body under key, replacing any previous entry.
func (s *Store) Put(ctx context.Context, key string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (key, body, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET body = excluded.body, created_at = excluded.created_at`,
		key, body, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("cache: put %q: %w", key, err)
	}
	return nil
}

// Purge deletes expired entries, or every entry when ttl <= 0, and reports how many
// rows were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if s.ttl <= 0 {
		res, err = s.db.ExecContext(ctx, `DELETE FROM responses`)
	} else {
		cutoff := s.now().Add(-s.ttl).UnixNano()
		res, err = s.db.ExecContext(ctx, `DELETE FROM responses WHERE created_at < ?`, cutoff)
	}
	if err != nil {
		return 0, fmt.Errorf("cache: purge: %w", err)
	}
	return res.RowsAffected()
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache: count: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) expired(createdAt int64) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(time.Unix(0, createdAt)) > s.ttl
}
