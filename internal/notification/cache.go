package notification

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	platformredis "nexus/internal/platform/redis"
	id "nexus/pkg/domain"
)

// UnreadCache caches per-user unread counts in Redis. Clients poll the
// badge endpoint every 45 seconds across the whole floor, so the short TTL
// absorbs almost all of that load. A nil cache disables caching entirely.
//
// Only mark-read invalidates eagerly (the reader expects their own badge to
// drop immediately). Dispatch cannot know which users a role or tenant scope
// will reach, so a fresh notification surfaces when the TTL lapses.
type UnreadCache struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewUnreadCache(client *platformredis.Client, ttl time.Duration) *UnreadCache {
	if client == nil {
		return nil
	}
	return &UnreadCache{client: client, ttl: ttl}
}

func unreadKey(userID id.UserID) string {
	return "notification:unread:" + uuid.UUID(userID).String()
}

// Get returns the cached count, or ok=false on miss or any Redis error.
func (c *UnreadCache) Get(ctx context.Context, userID id.UserID) (int, bool) {
	if c == nil {
		return 0, false
	}
	raw, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the count. Failures are ignored; the cache is advisory.
func (c *UnreadCache) Set(ctx context.Context, userID id.UserID, count int) {
	if c == nil {
		return
	}
	_ = c.client.Set(ctx, unreadKey(userID), strconv.Itoa(count), c.ttl).Err()
}

// Invalidate drops a user's cached count after a read acknowledgement.
func (c *UnreadCache) Invalidate(ctx context.Context, userID id.UserID) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, unreadKey(userID)).Err()
}
