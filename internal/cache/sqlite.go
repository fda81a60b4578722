package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"phonescope/pkg/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS evidence_cache (
    key TEXT PRIMARY KEY,
    value_json TEXT NOT NULL,
    expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evidence_cache_expires_at ON evidence_cache(expires_at);
`

type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the on-disk cache. The file survives
// process restarts so repeated offline runs do not re-hit live sources.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Get(adapter, subject string) ([]types.EvidenceItem, bool, error) {
	key := Key(adapter, subject)
	var valueJSON string
	var expiresAt int64
	err := s.db.QueryRow(
		"SELECT value_json, expires_at FROM evidence_cache WHERE key = ?", key,
	).Scan(&valueJSON, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if expiresAt <= time.Now().Unix() {
		// Lazy eviction: expired rows are removed when read, never swept.
		_, _ = s.db.Exec("DELETE FROM evidence_cache WHERE key = ?", key)
		return nil, false, nil
	}
	var items []types.EvidenceItem
	if err := json.Unmarshal([]byte(valueJSON), &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (s *SQLiteStore) Put(adapter, subject string, items []types.EvidenceItem, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(ttl).Unix()
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO evidence_cache(key, value_json, expires_at) VALUES (?, ?, ?)",
		Key(adapter, subject), string(raw), expiresAt,
	)
	return err
}
