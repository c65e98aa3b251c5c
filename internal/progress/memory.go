package progress

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps runs in process memory with a per-entry TTL.
// Expired entries are swept on write and ignored on read.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	run       Run
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Set(ctx context.Context, sessionID string, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, id)
		}
	}

	s.entries[sessionID] = memoryEntry{run: run, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[sessionID]
	if !ok || s.now().After(entry.expiresAt) {
		return Idle(), nil
	}
	return entry.run, nil
}
