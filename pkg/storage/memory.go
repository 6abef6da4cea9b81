package storage

import (
	"context"
	"sync"

	"github.com/groupify/backend/pkg/auth"
)

// MemoryBlacklist is an in-process blacklist store. Revocations do not
// survive a restart, so it is only suitable for development and tests.
type MemoryBlacklist struct {
	mu      sync.RWMutex
	entries map[string]auth.Entry
}

// NewMemoryBlacklist creates an empty in-memory blacklist.
func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]auth.Entry)}
}

// Insert records a revocation. Re-inserting an existing token keeps the
// original entry and returns nil.
func (s *MemoryBlacklist) Insert(ctx context.Context, entry auth.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.Token]; !ok {
		s.entries[entry.Token] = entry
	}
	return nil
}

// Lookup returns the entry for token, or nil when not revoked.
func (s *MemoryBlacklist) Lookup(ctx context.Context, token string) (*auth.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[token]; ok {
		return &e, nil
	}
	return nil, nil
}

// Len reports the number of revoked tokens.
func (s *MemoryBlacklist) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
