// Package cache provides the TTL evidence cache backing the orchestrator.
// Caching is an optimization, never a correctness dependency: callers treat
// any store error as a miss.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"phonescope/pkg/types"
)

type Store interface {
	Get(adapter, subject string) ([]types.EvidenceItem, bool, error)
	Put(adapter, subject string, items []types.EvidenceItem, ttl time.Duration) error
	Close() error
}

// Key returns a stable, short cache key for an (adapter, subject) pair.
func Key(adapter, subject string) string {
	sum := sha256.Sum256([]byte(adapter + "|" + subject))
	return "evidence:" + hex.EncodeToString(sum[:])
}
