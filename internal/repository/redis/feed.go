package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
)

// FeedKey holds the serialized flattened review feed.
const FeedKey = "storefront:reviews:feed"

// FeedCache implements repository.ReviewFeedCache using Redis.
type FeedCache struct {
	client *redis.Client
}

// NewFeedCache creates a new Redis-backed review feed cache.
func NewFeedCache(client *redis.Client) *FeedCache {
	return &FeedCache{client: client}
}

// Get returns the cached feed. A missing key is a miss, not an error.
func (c *FeedCache) Get(ctx context.Context) ([]domain.FlattenedReview, bool, error) {
	data, err := c.client.Get(ctx, FeedKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get feed: %w", err)
	}

	var feed []domain.FlattenedReview
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, false, fmt.Errorf("unmarshal feed: %w", err)
	}
	if feed == nil {
		feed = []domain.FlattenedReview{}
	}

	return feed, true, nil
}

// Set stores the feed with the given TTL.
func (c *FeedCache) Set(ctx context.Context, feed []domain.FlattenedReview, ttl time.Duration) error {
	data, err := json.Marshal(feed)
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}

	if err := c.client.Set(ctx, FeedKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set feed: %w", err)
	}

	return nil
}

// Invalidate removes the cached feed.
func (c *FeedCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, FeedKey).Err(); err != nil {
		return fmt.Errorf("redis del feed: %w", err)
	}
	return nil
}
