package heading

import (
	"context"
	"fmt"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// WaypointSource supplies the candidate POIs a heading session scans for
// visibility. Satisfied by *waypoints.PostgresRepository.
type WaypointSource interface {
	GetByUser(ctx context.Context, userID string) ([]models.Waypoint, error)
}

// Scorer computes a waypoint's current WQS, used here only to derive a
// live POI priority. Satisfied by *scoring.Calculator.
type Scorer interface {
	Score(ctx context.Context, waypoint models.Waypoint) (models.WQS, error)
}

// ClassificationCache is the same coarse-TTL WQS cache the proximity engine
// uses, reused here so classifying a waypoint for cone priority doesn't
// force a redundant recompute within the cache's TTL window.
type ClassificationCache interface {
	Get(ctx context.Context, userID, waypointID string) (models.WQS, error)
	Set(ctx context.Context, userID, waypointID string, w models.WQS) error
}

// priorityByClassification maps a WQS band to the POI priority consumed by
// the visibility filter's poi_nearby alert gate (priority >= 8 surfaces an
// alert): only a hotspot clears that bar on its own.
var priorityByClassification = map[models.Classification]int{
	models.ClassificationHotspot:  10,
	models.ClassificationGood:     7,
	models.ClassificationStandard: 4,
	models.ClassificationWeak:     2,
}

// POISource adapts the waypoint catalogue into the POI candidates the view
// cone visibility filter consumes, annotating each with a priority derived
// from its current WQS classification.
type POISource struct {
	waypoints WaypointSource
	scorer    Scorer
	cache     ClassificationCache
}

// NewPOISource builds a POISource. cache may be nil, in which case every
// call recomputes the WQS.
func NewPOISource(waypoints WaypointSource, scorer Scorer, cache ClassificationCache) *POISource {
	return &POISource{waypoints: waypoints, scorer: scorer, cache: cache}
}

// Candidates returns userID's waypoints as POIs, each carrying the priority
// its current classification implies. Geometry fields (distance, bearing,
// visibility) are left zero; FilterVisible fills them in.
func (s *POISource) Candidates(ctx context.Context, userID string) ([]models.POI, error) {
	wps, err := s.waypoints.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load waypoints for %s: %w", userID, err)
	}

	pois := make([]models.POI, 0, len(wps))
	for _, wp := range wps {
		classification, err := s.classify(ctx, userID, wp)
		if err != nil {
			return nil, fmt.Errorf("classify waypoint %s: %w", wp.ID, err)
		}
		pois = append(pois, models.POI{
			ID:       wp.ID,
			Name:     wp.Name,
			Type:     wp.Type,
			Color:    wp.Color,
			Icon:     wp.Icon,
			Priority: priorityByClassification[classification],
			Lat:      wp.Lat,
			Lng:      wp.Lng,
		})
	}
	return pois, nil
}

func (s *POISource) classify(ctx context.Context, userID string, wp models.Waypoint) (models.Classification, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, userID, wp.ID); err == nil {
			return cached.Classification, nil
		}
	}
	w, err := s.scorer.Score(ctx, wp)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, userID, wp.ID, w)
	}
	return w.Classification, nil
}
