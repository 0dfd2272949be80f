// Package diskcache persists the last accepted diagnostics per document
// and provider in a per-project SQLite database, so reopened files show
// their findings before the first pull of the session completes.
package diskcache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"quill/internal/diagnostic"
)

// Store is the on-disk diagnostics cache.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// ProviderKey builds the session-independent cache key for a provider:
// the configured server name plus the optional sub-identifier. Session
// server IDs are deliberately not part of the key.
func ProviderKey(serverName, identifier string) string {
	if identifier == "" {
		return serverName
	}
	return serverName + "/" + identifier
}

// Open creates or opens the cache database.
func Open(dbPath string) (*Store, error) {
	// Ensure parent directory exists for the DB file
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	// Open the database with WAL mode for concurrent access
	// Using _txlock=immediate to acquire locks early and avoid SQLITE_BUSY
	db, err := sql.Open("sqlite", dbPath+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable WAL mode and set pragmas for concurrent access and optimization
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
		"PRAGMA auto_vacuum=INCREMENTAL",
		"PRAGMA wal_autocheckpoint=1000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS diagnostics (
			uri TEXT NOT NULL,
			provider TEXT NOT NULL,
			items BLOB NOT NULL,
			PRIMARY KEY (uri, provider)
		);
		CREATE INDEX IF NOT EXISTS idx_diagnostics_uri ON diagnostics(uri);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Save replaces the cached set for (uri, providerKey). An empty set
// removes the row.
func (s *Store) Save(uri, providerKey string, items []diagnostic.Diagnostic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(items) == 0 {
		_, err := s.db.Exec("DELETE FROM diagnostics WHERE uri = ? AND provider = ?", uri, providerKey)
		if err != nil {
			return fmt.Errorf("failed to delete cached diagnostics: %w", err)
		}
		return nil
	}

	data, err := msgpack.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal diagnostics: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO diagnostics (uri, provider, items) VALUES (?, ?, ?)",
		uri, providerKey, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save diagnostics: %w", err)
	}
	return nil
}

// Load returns the cached set for (uri, providerKey), or nil when absent.
func (s *Store) Load(uri, providerKey string) ([]diagnostic.Diagnostic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data []byte
	err := s.db.QueryRow(
		"SELECT items FROM diagnostics WHERE uri = ? AND provider = ?",
		uri, providerKey,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}

	var items []diagnostic.Diagnostic
	if err := msgpack.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagnostics: %w", err)
	}
	return items, nil
}

// DeleteURI drops every cached set for a document.
func (s *Store) DeleteURI(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM diagnostics WHERE uri = ?", uri)
	if err != nil {
		return fmt.Errorf("failed to delete cached diagnostics: %w", err)
	}
	return nil
}

// Clear empties the cache.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM diagnostics")
	if err != nil {
		return err
	}

	// Reclaim space after clearing all data
	_, err = s.db.Exec("PRAGMA incremental_vacuum")
	return err
}

// Close closes the database with optimization
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Optimize query planner statistics before closing
	_, _ = s.db.Exec("PRAGMA optimize")

	// Reclaim any remaining unused space
	_, _ = s.db.Exec("PRAGMA incremental_vacuum")

	// Checkpoint and truncate the WAL file to reduce disk usage
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")

	return s.db.Close()
}
