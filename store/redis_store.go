package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/BatmanBruc/handy-image-converter/types"
)

// RedisConversationStore keeps pending conversions in Redis so several bot
// processes can share them. Expiry is left to the key TTL.
type RedisConversationStore struct {
	client *RedisClient
	ttl    time.Duration
}

func NewRedisConversationStore(redisClient *RedisClient, ttl time.Duration) *RedisConversationStore {
	if ttl < 0 {
		ttl = 0
	}

	return &RedisConversationStore{
		client: redisClient,
		ttl:    ttl,
	}
}

func (s *RedisConversationStore) key(userKey int64) string {
	return s.client.generateKey("pending", strconv.FormatInt(userKey, 10))
}

func (s *RedisConversationStore) Put(ctx context.Context, userKey int64, pending types.PendingConversion) error {
	now := time.Now()
	pending.UserKey = userKey
	if pending.CreatedAt.IsZero() {
		pending.CreatedAt = now
	}
	pending.ExpiresAt = time.Time{}
	if s.ttl > 0 {
		pending.ExpiresAt = now.Add(s.ttl)
	}

	return s.client.Set(ctx, s.key(userKey), pending, s.ttl)
}

func (s *RedisConversationStore) TakeAndClear(ctx context.Context, userKey int64) (types.PendingConversion, bool, error) {
	var pending types.PendingConversion
	if err := s.client.GetDel(ctx, s.key(userKey), &pending); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return types.PendingConversion{}, false, nil
		}
		return types.PendingConversion{}, false, err
	}
	return pending, true, nil
}
