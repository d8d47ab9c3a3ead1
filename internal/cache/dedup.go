package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupLedger implements the proximity alert engine's cool-down window
// (spec.md §4.F step 5) as Redis keys with a TTL equal to the cool-down.
type DedupLedger struct {
	client *redis.Client
}

// NewDedupLedger wraps an existing Redis client.
func NewDedupLedger(client *redis.Client) *DedupLedger {
	return &DedupLedger{client: client}
}

func dedupKey(userID, waypointID string) string {
	return "proximity:dedup:" + userID + ":" + waypointID
}

// Recent reports whether an alert was emitted for (userID, waypointID)
// within the cool-down window.
func (d *DedupLedger) Recent(ctx context.Context, userID, waypointID string) (bool, error) {
	n, err := d.client.Exists(ctx, dedupKey(userID, waypointID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Record marks (userID, waypointID) as alerted, starting a new cool-down window.
func (d *DedupLedger) Record(ctx context.Context, userID, waypointID string, cooldown time.Duration) error {
	return d.client.Set(ctx, dedupKey(userID, waypointID), time.Now().UTC().Format(time.RFC3339), cooldown).Err()
}

// ErrCacheMiss is returned by cache lookups that found nothing; callers
// fall back to the durable store.
var ErrCacheMiss = errors.New("cache: miss")
