// Package groupshare implements the group position fanout (spec.md §4.J):
// a 30-minute, last-writer-wins snapshot of where each sharing group
// member currently is, fronted by Redis with a durable Postgres mirror.
package groupshare

import (
	"context"
	"fmt"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// Snapshot is the fast, TTL-bounded view used to answer list_group_positions.
// Satisfied by *cache.GroupShareSnapshot.
type Snapshot interface {
	Put(ctx context.Context, share models.GroupPositionShare) error
	Members(ctx context.Context, groupID string) ([]models.GroupPositionShare, error)
	Remove(ctx context.Context, groupID, userID string) error
}

// Mirror is the durable last-writer-wins record, queried when the snapshot
// has nothing cached (e.g. after a Redis restart). Satisfied by
// group.PositionRepository.
type Mirror interface {
	PutPosition(ctx context.Context, share models.GroupPositionShare) error
	GetPositionsByGroup(ctx context.Context, groupID string) ([]models.GroupPositionShare, error)
}

// visibilityWindow mirrors cache.GroupShareSnapshot's default TTL: the
// durable fallback path has no TTL eviction of its own, so ListGroupPositions
// must re-apply the same "updated in the last 30 minutes" cutoff by hand.
const visibilityWindow = 30 * time.Minute

// Service implements update_position / list_group_positions / stop_sharing.
type Service struct {
	snapshot Snapshot
	mirror   Mirror
	now      func() time.Time
}

// New builds a Service.
func New(snapshot Snapshot, mirror Mirror) *Service {
	return &Service{snapshot: snapshot, mirror: mirror, now: time.Now}
}

// UpdatePosition upserts (groupID, userID)'s position. is_sharing stays
// true unless the caller has previously called StopSharing; a subsequent
// UpdatePosition re-enables sharing, since it's an explicit new share.
func (s *Service) UpdatePosition(ctx context.Context, groupID, userID string, lat, lng float64, heading *float64, status string) (*models.GroupPositionShare, error) {
	share := models.GroupPositionShare{
		GroupID:   groupID,
		UserID:    userID,
		Lat:       lat,
		Lng:       lng,
		Heading:   heading,
		Status:    status,
		IsSharing: true,
		UpdatedAt: s.now(),
	}

	if err := s.mirror.PutPosition(ctx, share); err != nil {
		return nil, fmt.Errorf("persist group position for %s/%s: %w", groupID, userID, err)
	}
	if err := s.snapshot.Put(ctx, share); err != nil {
		return nil, fmt.Errorf("cache group position for %s/%s: %w", groupID, userID, err)
	}
	return &share, nil
}

// ListGroupPositions returns every member of groupID whose share is both
// is_sharing=true and still within the snapshot's visibility window.
// Membership authorization is the HTTP surface's responsibility, per
// spec.md §4.J. If the Redis snapshot errors out (e.g. a restart mid-flight),
// it falls back to the durable mirror, re-applying the visibility window by
// hand since the mirror has no TTL eviction.
func (s *Service) ListGroupPositions(ctx context.Context, groupID string) ([]models.GroupPositionShare, error) {
	shares, err := s.snapshot.Members(ctx, groupID)
	if err == nil {
		return filterSharing(shares, s.now()), nil
	}

	shares, merr := s.mirror.GetPositionsByGroup(ctx, groupID)
	if merr != nil {
		return nil, fmt.Errorf("list group positions for %s: snapshot error %v, durable fallback also failed: %w", groupID, err, merr)
	}
	return filterSharing(shares, s.now()), nil
}

// StopSharing flips is_sharing to false while leaving the last known
// coordinates in place for the grace period (callers who still hold a
// snapshot entry see is_sharing=false, not an absent member).
func (s *Service) StopSharing(ctx context.Context, groupID, userID string) error {
	current, err := s.mirror.GetPositionsByGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("load group positions for %s: %w", groupID, err)
	}

	share := models.GroupPositionShare{GroupID: groupID, UserID: userID, UpdatedAt: s.now()}
	for _, c := range current {
		if c.UserID == userID {
			share = c
			break
		}
	}
	share.IsSharing = false
	share.UpdatedAt = s.now()

	if err := s.mirror.PutPosition(ctx, share); err != nil {
		return fmt.Errorf("persist stop-sharing for %s/%s: %w", groupID, userID, err)
	}
	if err := s.snapshot.Put(ctx, share); err != nil {
		return fmt.Errorf("cache stop-sharing for %s/%s: %w", groupID, userID, err)
	}
	return nil
}

func filterSharing(shares []models.GroupPositionShare, now time.Time) []models.GroupPositionShare {
	out := make([]models.GroupPositionShare, 0, len(shares))
	for _, s := range shares {
		if s.IsSharing && now.Sub(s.UpdatedAt) <= visibilityWindow {
			out = append(out, s)
		}
	}
	return out
}
