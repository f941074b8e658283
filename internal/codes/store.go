// Package codes persists the mapping from normalized time patterns to
// organizational codes. Reads are cheap and concurrent; imports take the
// store exclusively. A busy store never blocks a validation: lookups
// degrade to "no code found" after a bounded wait.
package codes

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"

	"validador/internal/timeutil"
)

// ErrUnavailable reports that the store lock could not be acquired
// within the bounded wait.
var ErrUnavailable = errors.New("codes: store unavailable")

const (
	readWait  = time.Second
	writeWait = 2 * time.Second
)

// Store is the sqlite-backed code catalog with an in-memory cache.
type Store struct {
	db     *sql.DB
	logger *zerolog.Logger

	mu    sync.RWMutex
	cache map[string]string
}

// Open opens (creating if needed) the code store at path.
func Open(path string, logger *zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("codes: create directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("codes: open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("codes: connect: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS codes (
			pattern    TEXT PRIMARY KEY,
			code       TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("codes: create table: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.reload(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// reload rebuilds the cache from the database. Caller holds no lock.
func (s *Store) reload() error {
	rows, err := s.db.Query("SELECT pattern, code FROM codes")
	if err != nil {
		return fmt.Errorf("codes: load: %w", err)
	}
	defer rows.Close()

	cache := make(map[string]string)
	for rows.Next() {
		var pattern, code string
		if err := rows.Scan(&pattern, &code); err != nil {
			return fmt.Errorf("codes: scan: %w", err)
		}
		cache[pattern] = code
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("codes: load: %w", err)
	}

	s.mu.Lock()
	s.cache = cache
	s.mu.Unlock()
	return nil
}

// acquire retries a try-lock until it succeeds or the wait elapses.
func acquire(try func() bool, wait time.Duration) bool {
	deadline := time.Now().Add(wait)
	for {
		if try() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Lookup resolves the code for a normalized time pattern. An unavailable
// store reads as "no code found" rather than an error.
func (s *Store) Lookup(key string) (string, bool) {
	if !acquire(s.mu.TryRLock, readWait) {
		if s.logger != nil {
			s.logger.Warn().Msg("code lookup skipped: store busy")
		}
		return "", false
	}
	defer s.mu.RUnlock()

	code, ok := s.cache[timeutil.NormalizeKey(key)]
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

// All returns a copy of every pattern → code entry.
func (s *Store) All() (map[string]string, error) {
	if !acquire(s.mu.TryRLock, readWait) {
		return nil, ErrUnavailable
	}
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.cache))
	for k, v := range s.cache {
		out[k] = v
	}
	return out, nil
}

// Count returns the number of stored codes.
func (s *Store) Count() (int, error) {
	if !acquire(s.mu.TryRLock, readWait) {
		return 0, ErrUnavailable
	}
	defer s.mu.RUnlock()
	return len(s.cache), nil
}

// Save stores or updates one code. An empty code removes the entry.
func (s *Store) Save(pattern, code string) error {
	if code == "" {
		return s.Remove(pattern)
	}

	if !acquire(s.mu.TryLock, writeWait) {
		return ErrUnavailable
	}
	defer s.mu.Unlock()

	key := timeutil.NormalizeKey(pattern)
	if _, err := s.db.Exec(
		`INSERT INTO codes (pattern, code, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(pattern) DO UPDATE SET code = excluded.code, updated_at = excluded.updated_at`,
		key, code, time.Now(),
	); err != nil {
		return fmt.Errorf("codes: save: %w", err)
	}

	s.cache[key] = code
	return nil
}

// Remove deletes one code entry.
func (s *Store) Remove(pattern string) error {
	if !acquire(s.mu.TryLock, writeWait) {
		return ErrUnavailable
	}
	defer s.mu.Unlock()

	key := timeutil.NormalizeKey(pattern)
	if _, err := s.db.Exec("DELETE FROM codes WHERE pattern = ?", key); err != nil {
		return fmt.Errorf("codes: remove: %w", err)
	}

	delete(s.cache, key)
	return nil
}

// ImportMerge merges entries into the store, overwriting existing
// patterns. Keys are normalized before storage. Returns the number of
// entries written.
func (s *Store) ImportMerge(entries map[string]string) (int, error) {
	if len(entries) == 0 {
		return 0, errors.New("codes: nothing to import")
	}

	if !acquire(s.mu.TryLock, writeWait) {
		return 0, ErrUnavailable
	}
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("codes: import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO codes (pattern, code, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(pattern) DO UPDATE SET code = excluded.code, updated_at = excluded.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("codes: import: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	written := make(map[string]string, len(entries))
	for pattern, code := range entries {
		key := timeutil.NormalizeKey(pattern)
		if key == "" || code == "" {
			continue
		}
		if _, err := stmt.Exec(key, code, now); err != nil {
			return 0, fmt.Errorf("codes: import %q: %w", key, err)
		}
		written[key] = code
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("codes: import: %w", err)
	}

	count := len(written)
	for key, code := range written {
		s.cache[key] = code
	}

	if s.logger != nil {
		s.logger.Info().Int("imported", count).Msg("codes imported")
	}
	return count, nil
}
