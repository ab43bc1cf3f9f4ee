package app

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteKV keeps all keys in a single table inside one database file. It is
// interchangeable with FileKV; the store on top never knows the difference.
type SQLiteKV struct {
	Root   string
	dbPath string

	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteKV(root string) (*SQLiteKV, error) {
	if strings.TrimSpace(root) == "" {
		root = DefaultDataRoot()
	}
	root = filepath.Clean(root)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	s := &SQLiteKV{Root: root, dbPath: filepath.Join(root, "pocketchat.db")}

	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return nil, err
	}
	// Keep sqlite responsive under contention.
	_, _ = db.Exec("PRAGMA busy_timeout = 5000;")
	_, _ = db.Exec("PRAGMA journal_mode = WAL;")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL;")

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at_ns INTEGER NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *SQLiteKV) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteKV) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at_ns) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at_ns = excluded.updated_at_ns`,
		key, value, time.Now().UnixNano(),
	)
	return err
}

func (s *SQLiteKV) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
