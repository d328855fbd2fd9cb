package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache holds JSON-encoded values; used for the per-learner
// recommendation feed.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RecommendFeedKey is the cached ranked mentor list for a learner.
func RecommendFeedKey(learnerID uint) string {
	return fmt.Sprintf("recommend:user:%d", learnerID)
}

// ReviewSlotKey reserves the one-review-per-session slot.
func ReviewSlotKey(sessionID string) string {
	return "review:session:" + sessionID
}
