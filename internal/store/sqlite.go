package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
	_ "github.com/mattn/go-sqlite3"
)

// sqliteStore keeps the whole key space in a single kv table. The registry
// writes one large snapshot value, so the schema stays deliberately flat.
type sqliteStore struct {
	db *sql.DB
	sync.RWMutex
	closeOnce sync.Once
	closeErr  error
}

// OpenSQLite initializes and returns a SQLite-backed store.
func OpenSQLite(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database at %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database at %s: %w", path, err)
	}

	s := &sqliteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	log.Debugf("SQLite store opened at %s", path)
	return s, nil
}

func (s *sqliteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TRIGGER IF NOT EXISTS update_kv_timestamp
		AFTER UPDATE ON kv
		BEGIN
			UPDATE kv SET updated_at = CURRENT_TIMESTAMP WHERE key = NEW.key;
		END;
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *sqliteStore) Get(key string) (string, error) {
	s.RLock()
	defer s.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	} else if err != nil {
		return "", fmt.Errorf("error querying key %s: %w", key, err)
	}
	return value, nil
}

func (s *sqliteStore) Set(key, value string) error {
	s.Lock()
	defer s.Unlock()

	_, err := s.db.Exec("INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)", key, value)
	if err != nil {
		return fmt.Errorf("error storing key %s: %w", key, err)
	}
	return nil
}

func (s *sqliteStore) Remove(key string) error {
	s.Lock()
	defer s.Unlock()

	result, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("error deleting key %s: %w", key, err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqliteStore) Close() error {
	s.closeOnce.Do(func() {
		s.Lock()
		defer s.Unlock()

		s.closeErr = s.db.Close()
		if s.closeErr != nil {
			log.Errorf("Error during store close: %v", s.closeErr)
		}
	})
	return s.closeErr
}
