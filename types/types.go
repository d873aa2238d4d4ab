package types

import (
	"context"
	"time"
)

// PendingConversion is the single unfinished conversion a user can have.
// SourcePath keeps the randomized scratch name; OriginalName is the base name
// (without extension) restored on the converted file.
type PendingConversion struct {
	UserKey      int64     `json:"user_key"`
	SourcePath   string    `json:"source_path"`
	OriginalName string    `json:"original_name"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// ConversationStore holds at most one PendingConversion per user key.
type ConversationStore interface {
	// Put replaces any entry stored for the same key.
	Put(ctx context.Context, userKey int64, pending PendingConversion) error
	// TakeAndClear reads and removes the entry in one step. ok is false when
	// nothing is stored.
	TakeAndClear(ctx context.Context, userKey int64) (pending PendingConversion, ok bool, err error)
}

// Expirer is implemented by stores that have to drop stale entries themselves.
type Expirer interface {
	Expire(ctx context.Context, now time.Time) ([]PendingConversion, error)
}
