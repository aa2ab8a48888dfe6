package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists cache entries across runs in a single-table
// SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key      TEXT PRIMARY KEY,
	value    BLOB NOT NULL,
	saved_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_saved_at ON cache_entries(saved_at);
`

// NewSQLiteStore opens (creating if needed) the cache database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating cache schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(key string) (*Entry, error) {
	var value []byte
	var savedAt int64
	err := s.db.QueryRow(
		`SELECT value, saved_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&value, &savedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Entry{Value: value, SavedAt: time.Unix(savedAt, 0)}, nil
}

func (s *SQLiteStore) Set(key string, e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO cache_entries (key, value, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, saved_at = excluded.saved_at`,
		key, e.Value, e.SavedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

func (s *SQLiteStore) List() ([]KeyInfo, error) {
	rows, err := s.db.Query(`SELECT key, saved_at FROM cache_entries ORDER BY saved_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []KeyInfo
	for rows.Next() {
		var key string
		var savedAt int64
		if err := rows.Scan(&key, &savedAt); err != nil {
			return nil, err
		}
		infos = append(infos, KeyInfo{Key: key, SavedAt: time.Unix(savedAt, 0)})
	}
	return infos, rows.Err()
}
