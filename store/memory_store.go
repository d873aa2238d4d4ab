package store

import (
	"context"
	"sync"
	"time"

	"github.com/BatmanBruc/handy-image-converter/types"
)

// MemoryConversationStore keeps pending conversions in process memory.
// A restart drops everything.
type MemoryConversationStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	pending map[int64]types.PendingConversion
}

// NewMemoryConversationStore returns a store whose entries expire after ttl.
// ttl <= 0 keeps entries until they are taken.
func NewMemoryConversationStore(ttl time.Duration) *MemoryConversationStore {
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryConversationStore{
		ttl:     ttl,
		now:     time.Now,
		pending: make(map[int64]types.PendingConversion),
	}
}

func (s *MemoryConversationStore) Put(_ context.Context, userKey int64, pending types.PendingConversion) error {
	now := s.now()
	pending.UserKey = userKey
	if pending.CreatedAt.IsZero() {
		pending.CreatedAt = now
	}
	pending.ExpiresAt = time.Time{}
	if s.ttl > 0 {
		pending.ExpiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	s.pending[userKey] = pending
	s.mu.Unlock()
	return nil
}

func (s *MemoryConversationStore) TakeAndClear(_ context.Context, userKey int64) (types.PendingConversion, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.pending[userKey]
	if !ok {
		return types.PendingConversion{}, false, nil
	}
	delete(s.pending, userKey)

	if s.expired(pending, s.now()) {
		return types.PendingConversion{}, false, nil
	}
	return pending, true, nil
}

// Expire removes entries past their expiry and returns them so the caller
// can clean up their source files.
func (s *MemoryConversationStore) Expire(_ context.Context, now time.Time) ([]types.PendingConversion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []types.PendingConversion
	for key, pending := range s.pending {
		if s.expired(pending, now) {
			expired = append(expired, pending)
			delete(s.pending, key)
		}
	}
	return expired, nil
}

func (s *MemoryConversationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *MemoryConversationStore) expired(pending types.PendingConversion, now time.Time) bool {
	return !pending.ExpiresAt.IsZero() && !now.Before(pending.ExpiresAt)
}
