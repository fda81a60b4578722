package cache

import (
	"sync"
	"time"

	"phonescope/pkg/types"
)

type memoryEntry struct {
	items     []types.EvidenceItem
	expiresAt time.Time
}

// MemoryStore is a process-local cache with the same contract as the
// persistent stores. Used in tests and by callers that want caching without a
// file on disk.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Get(adapter, subject string) ([]types.EvidenceItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[Key(adapter, subject)]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.After(s.now()) {
		delete(s.entries, Key(adapter, subject))
		return nil, false, nil
	}
	return entry.items, true, nil
}

func (s *MemoryStore) Put(adapter, subject string, items []types.EvidenceItem, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[Key(adapter, subject)] = memoryEntry{items: items, expiresAt: s.now().Add(ttl)}
	return nil
}
