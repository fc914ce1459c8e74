package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shardit/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	itemKeyPrefix = "item:%d"
	userKeyPrefix = "user:%d"
)

const (
	// ItemTTL is short: availability flips on every accepted pickup.
	ItemTTL = 2 * time.Minute
	UserTTL = 5 * time.Minute
)

// ItemKey returns the cache key for an item.
func ItemKey(itemID uint) string {
	return fmt.Sprintf(itemKeyPrefix, itemID)
}

// UserKey returns the cache key for a user profile.
func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

// GetItem returns the cached item, or nil on miss or when the cache is
// unavailable. Cache errors are never surfaced to callers.
func GetItem(ctx context.Context, itemID uint) *models.Item {
	if client == nil {
		return nil
	}
	raw, err := client.Get(ctx, ItemKey(itemID)).Bytes()
	if err != nil {
		return nil
	}
	var item models.Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil
	}
	return &item
}

// SetItem stores an item in the cache, best effort.
func SetItem(ctx context.Context, item *models.Item) {
	if client == nil || item == nil {
		return
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return
	}
	client.Set(ctx, ItemKey(item.ID), raw, ItemTTL)
}

// Invalidate removes a key from the cache.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateItem removes an item from the cache.
func InvalidateItem(ctx context.Context, itemID uint) {
	Invalidate(ctx, ItemKey(itemID))
}

// InvalidateUser removes a user profile from the cache.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// Healthy reports whether the cache connection responds to PING.
func Healthy(ctx context.Context) bool {
	if client == nil {
		return false
	}
	err := client.Ping(ctx).Err()
	return err == nil || errors.Is(err, redis.Nil)
}
