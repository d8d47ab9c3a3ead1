package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// HeadingMirror durably mirrors in-process heading sessions into Redis so a
// restart or a second process replica can rehydrate them, per SPEC_FULL.md
// §4.H. The TTL is refreshed on every write, so a session that stops being
// written expires from Redis once the TTL elapses; the session registry
// itself enforces no inactivity window.
type HeadingMirror struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHeadingMirror wraps an existing Redis client with the given mirror TTL.
func NewHeadingMirror(client *redis.Client, ttl time.Duration) *HeadingMirror {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &HeadingMirror{client: client, ttl: ttl}
}

func headingKey(sessionID string) string {
	return "heading:session:" + sessionID
}

// Save writes the full session state, refreshing the TTL.
func (m *HeadingMirror) Save(ctx context.Context, session models.HeadingSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return m.client.Set(ctx, headingKey(session.ID), raw, m.ttl).Err()
}

// Load fetches a mirrored session, or ErrCacheMiss if it has expired or was
// never mirrored.
func (m *HeadingMirror) Load(ctx context.Context, sessionID string) (models.HeadingSession, error) {
	raw, err := m.client.Get(ctx, headingKey(sessionID)).Bytes()
	if err == redis.Nil {
		return models.HeadingSession{}, ErrCacheMiss
	}
	if err != nil {
		return models.HeadingSession{}, err
	}
	var session models.HeadingSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return models.HeadingSession{}, err
	}
	return session, nil
}

// Delete removes the mirrored entry, e.g. when a session ends.
func (m *HeadingMirror) Delete(ctx context.Context, sessionID string) error {
	return m.client.Del(ctx, headingKey(sessionID)).Err()
}
