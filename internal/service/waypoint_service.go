package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/steeveross-eng/huntiq-telemetry/internal/database/waypoints"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/geo"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// kmPerDegree approximates the length of one degree of latitude, used to
// convert a radius in kilometers to the bounding-box prefilter degrees
// GetNear expects (the same prefilter-then-Haversine pattern the WQS
// calculator uses for its nearby-visit pooling).
const kmPerDegree = 111.0

// Scorer computes a waypoint's current WQS. Satisfied by *scoring.Calculator.
type Scorer interface {
	Score(ctx context.Context, waypoint models.Waypoint) (models.WQS, error)
}

// WaypointService implements the waypoint catalogue store (spec.md §4.B)
// plus the WQS read endpoints (§4.D) that compose it with the scorer: a
// single waypoint's score and the heatmap view over a user's whole
// catalogue.
type WaypointService struct {
	waypoints waypoints.Repository
	scorer    Scorer
	newID     func() string
}

// NewWaypointService builds a WaypointService.
func NewWaypointService(repo waypoints.Repository, scorer Scorer) *WaypointService {
	return &WaypointService{waypoints: repo, scorer: scorer, newID: func() string { return uuid.NewString() }}
}

// UpsertWaypoint creates w if it has no ID, or overwrites the existing
// waypoint otherwise. Lookups elsewhere are scoped by user_id, so a
// cross-user update surfaces as dberrors.ErrNotFound rather than succeeding
// silently (spec.md §4.B).
func (s *WaypointService) UpsertWaypoint(ctx context.Context, w models.Waypoint) (*models.Waypoint, error) {
	if w.ID == "" {
		w.ID = s.newID()
		return s.waypoints.Create(ctx, w)
	}
	if _, err := s.ownedWaypoint(ctx, w.UserID, w.ID); err != nil {
		return nil, err
	}
	return s.waypoints.Update(ctx, w)
}

// GetWaypoint retrieves a single waypoint owned by userID.
func (s *WaypointService) GetWaypoint(ctx context.Context, userID, waypointID string) (*models.Waypoint, error) {
	return s.ownedWaypoint(ctx, userID, waypointID)
}

// ListWaypoints retrieves every waypoint owned by userID.
func (s *WaypointService) ListWaypoints(ctx context.Context, userID string) ([]models.Waypoint, error) {
	return s.waypoints.GetByUser(ctx, userID)
}

// DeleteWaypoint removes a waypoint owned by userID.
func (s *WaypointService) DeleteWaypoint(ctx context.Context, userID, waypointID string) error {
	if _, err := s.ownedWaypoint(ctx, userID, waypointID); err != nil {
		return err
	}
	return s.waypoints.Delete(ctx, waypointID)
}

// WQS computes the current score for a single waypoint owned by userID.
func (s *WaypointService) WQS(ctx context.Context, userID, waypointID string) (*models.WQS, error) {
	wp, err := s.ownedWaypoint(ctx, userID, waypointID)
	if err != nil {
		return nil, err
	}
	score, err := s.scorer.Score(ctx, *wp)
	if err != nil {
		return nil, fmt.Errorf("score waypoint %s: %w", waypointID, err)
	}
	return &score, nil
}

// Heatmap computes the current score for every waypoint userID owns,
// sorted by descending total score so the hottest spots lead the response.
func (s *WaypointService) Heatmap(ctx context.Context, userID string) ([]models.WQS, error) {
	wps, err := s.waypoints.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load waypoints for %s: %w", userID, err)
	}

	scores := make([]models.WQS, 0, len(wps))
	for _, wp := range wps {
		score, err := s.scorer.Score(ctx, wp)
		if err != nil {
			return nil, fmt.Errorf("score waypoint %s: %w", wp.ID, err)
		}
		scores = append(scores, score)
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].TotalScore > scores[j].TotalScore })
	return scores, nil
}

// NearbyHotspots returns userID's hotspot-classified waypoints within
// radiusKM of (lat, lng), nearest first.
func (s *WaypointService) NearbyHotspots(ctx context.Context, userID string, lat, lng, radiusKM float64) ([]models.WQS, error) {
	boxDegrees := radiusKM / kmPerDegree
	candidates, err := s.waypoints.GetNear(ctx, userID, lat, lng, boxDegrees)
	if err != nil {
		return nil, fmt.Errorf("load nearby waypoints for %s: %w", userID, err)
	}

	origin := geo.Point{Lat: lat, Lng: lng}
	radiusM := radiusKM * 1000

	type scored struct {
		wqs      models.WQS
		distance float64
	}
	var hotspots []scored
	for _, wp := range candidates {
		distance := geo.Haversine(origin, geo.Point{Lat: wp.Lat, Lng: wp.Lng})
		if distance > radiusM {
			continue
		}
		wqs, err := s.scorer.Score(ctx, wp)
		if err != nil {
			return nil, fmt.Errorf("score waypoint %s: %w", wp.ID, err)
		}
		if wqs.Classification != models.ClassificationHotspot {
			continue
		}
		hotspots = append(hotspots, scored{wqs: wqs, distance: distance})
	}

	sort.Slice(hotspots, func(i, j int) bool { return hotspots[i].distance < hotspots[j].distance })

	out := make([]models.WQS, len(hotspots))
	for i, h := range hotspots {
		out[i] = h.wqs
	}
	return out, nil
}

// ownedWaypoint loads waypointID and lets the underlying repository's
// user-scoping (GetByID is not itself user-scoped; cross-user reads are
// rejected by comparing UserID here) surface as NotFound, per spec.md §4.B:
// "cross-user reads must fail with NotFound rather than PermissionDenied".
func (s *WaypointService) ownedWaypoint(ctx context.Context, userID, waypointID string) (*models.Waypoint, error) {
	wp, err := s.waypoints.GetByID(ctx, waypointID)
	if err != nil {
		return nil, fmt.Errorf("load waypoint %s: %w", waypointID, err)
	}
	if wp.UserID != userID {
		return nil, dberrors.NotFound("waypoint %s", waypointID)
	}
	return wp, nil
}
