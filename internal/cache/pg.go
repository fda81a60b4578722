package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"phonescope/pkg/types"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS evidence_cache (
    key TEXT PRIMARY KEY,
    value_json TEXT NOT NULL,
    expires_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evidence_cache_expires_at ON evidence_cache(expires_at);
`

// PostgresStore is the shared-team variant of the evidence cache, for setups
// where several analysts want to reuse each other's fetches.
type PostgresStore struct {
	db *sql.DB
}

func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(pgSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Get(adapter, subject string) ([]types.EvidenceItem, bool, error) {
	key := Key(adapter, subject)
	var valueJSON string
	var expiresAt int64
	err := s.db.QueryRow(
		"SELECT value_json, expires_at FROM evidence_cache WHERE key = $1", key,
	).Scan(&valueJSON, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if expiresAt <= time.Now().Unix() {
		_, _ = s.db.Exec("DELETE FROM evidence_cache WHERE key = $1", key)
		return nil, false, nil
	}
	var items []types.EvidenceItem
	if err := json.Unmarshal([]byte(valueJSON), &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (s *PostgresStore) Put(adapter, subject string, items []types.EvidenceItem, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(ttl).Unix()
	_, err = s.db.Exec(`
		INSERT INTO evidence_cache(key, value_json, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value_json = EXCLUDED.value_json, expires_at = EXCLUDED.expires_at
	`, Key(adapter, subject), string(raw), expiresAt)
	return err
}
