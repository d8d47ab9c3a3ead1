package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// GroupShareSnapshot holds the last-known position of every group member
// using the same Redis-TTL pattern as the dedup ledger: "updated in the
// last 30 minutes" per spec.md §4.J, with last-writer-wins semantics
// because each Set simply overwrites the member's key.
type GroupShareSnapshot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGroupShareSnapshot wraps an existing Redis client. ttl defaults to the
// spec's 30-minute visibility window.
func NewGroupShareSnapshot(client *redis.Client, ttl time.Duration) *GroupShareSnapshot {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &GroupShareSnapshot{client: client, ttl: ttl}
}

func groupShareKey(groupID, userID string) string {
	return "group:position:" + groupID + ":" + userID
}

// Put records the member's current share, resetting the visibility window.
func (s *GroupShareSnapshot) Put(ctx context.Context, share models.GroupPositionShare) error {
	raw, err := json.Marshal(share)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, groupShareKey(share.GroupID, share.UserID), raw, s.ttl).Err()
}

// Members returns every share still within the visibility window for groupID.
func (s *GroupShareSnapshot) Members(ctx context.Context, groupID string) ([]models.GroupPositionShare, error) {
	pattern := groupShareKey(groupID, "*")
	var shares []models.GroupPositionShare

	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var share models.GroupPositionShare
		if err := json.Unmarshal(raw, &share); err != nil {
			return nil, err
		}
		shares = append(shares, share)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return shares, nil
}

// Remove evicts a single member's share, e.g. on explicit group departure.
func (s *GroupShareSnapshot) Remove(ctx context.Context, groupID, userID string) error {
	return s.client.Del(ctx, groupShareKey(groupID, userID)).Err()
}
