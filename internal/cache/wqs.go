package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// WQSCache holds a coarse-TTL cache of per-waypoint classifications, per
// spec.md §4.F step 3 ("classification is allowed to be cached ... with a
// coarse TTL; the spec only requires eventual freshness").
type WQSCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWQSCache wraps an existing Redis client with the given cache TTL.
func NewWQSCache(client *redis.Client, ttl time.Duration) *WQSCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &WQSCache{client: client, ttl: ttl}
}

func wqsKey(userID, waypointID string) string {
	return "wqs:cache:" + userID + ":" + waypointID
}

// Get returns the cached score, or ErrCacheMiss if absent/expired.
func (c *WQSCache) Get(ctx context.Context, userID, waypointID string) (models.WQS, error) {
	raw, err := c.client.Get(ctx, wqsKey(userID, waypointID)).Bytes()
	if err == redis.Nil {
		return models.WQS{}, ErrCacheMiss
	}
	if err != nil {
		return models.WQS{}, err
	}
	var w models.WQS
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.WQS{}, err
	}
	return w, nil
}

// Set stores a freshly computed score.
func (c *WQSCache) Set(ctx context.Context, userID, waypointID string, w models.WQS) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, wqsKey(userID, waypointID), raw, c.ttl).Err()
}
