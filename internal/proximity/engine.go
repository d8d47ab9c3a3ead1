// Package proximity implements the proximity alert engine (spec.md §4.F):
// given a user's live position, it finds nearby waypoints, scores them,
// and emits deduplicated alerts.
package proximity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/cache"
	"github.com/steeveross-eng/huntiq-telemetry/internal/config"
	"github.com/steeveross-eng/huntiq-telemetry/internal/database/alerts"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/geo"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
	"github.com/steeveross-eng/huntiq-telemetry/internal/telemetrymetrics"
)

// WaypointSource supplies the waypoints a position is checked against.
type WaypointSource interface {
	GetByUser(ctx context.Context, userID string) ([]models.Waypoint, error)
}

// Scorer computes a waypoint's current WQS. Satisfied by *scoring.Calculator.
type Scorer interface {
	Score(ctx context.Context, waypoint models.Waypoint) (models.WQS, error)
}

// ClassificationCache is the coarse-TTL WQS cache. Satisfied by *cache.WQSCache.
type ClassificationCache interface {
	Get(ctx context.Context, userID, waypointID string) (models.WQS, error)
	Set(ctx context.Context, userID, waypointID string, w models.WQS) error
}

// DedupChecker is the proximity cool-down ledger. Satisfied by *cache.DedupLedger.
type DedupChecker interface {
	Recent(ctx context.Context, userID, waypointID string) (bool, error)
	Record(ctx context.Context, userID, waypointID string, cooldown time.Duration) error
}

// Engine is the proximity alert engine.
type Engine struct {
	waypoints WaypointSource
	scorer    Scorer
	wqsCache  ClassificationCache
	dedup     DedupChecker
	ledger    alerts.LedgerRepository
	cfg       config.ProximityConfig
	now       func() time.Time
}

// New builds a proximity Engine.
func New(waypoints WaypointSource, scorer Scorer, wqsCache ClassificationCache, dedup DedupChecker, ledger alerts.LedgerRepository, cfg config.ProximityConfig) *Engine {
	return &Engine{
		waypoints: waypoints,
		scorer:    scorer,
		wqsCache:  wqsCache,
		dedup:     dedup,
		ledger:    ledger,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (e *Engine) cooldown() time.Duration {
	return time.Duration(e.cfg.CooldownMinutes) * time.Minute
}

// Check evaluates every waypoint owned by userID against (lat, lng),
// persists a durable ledger entry for each newly qualifying alert, and
// returns the qualifying alerts sorted by ascending distance.
func (e *Engine) Check(ctx context.Context, userID string, lat, lng float64) ([]models.ProximityAlert, error) {
	waypointList, err := e.waypoints.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load waypoints for proximity check: %w", err)
	}

	var qualifying []models.ProximityAlert
	for _, wp := range waypointList {
		d := geo.Haversine(geo.Point{Lat: lat, Lng: lng}, geo.Point{Lat: wp.Lat, Lng: wp.Lng})

		wqs, err := e.classify(ctx, userID, wp)
		if err != nil {
			return nil, fmt.Errorf("classify waypoint %s: %w", wp.ID, err)
		}

		radius := e.cfg.BaselineRadiusMeters
		if wqs.Classification == models.ClassificationHotspot {
			radius += e.cfg.HotspotBonusMeters
		}
		if d > radius {
			continue
		}

		recent, err := e.recentlyAlerted(ctx, userID, wp.ID)
		if err != nil {
			return nil, fmt.Errorf("check dedup ledger for waypoint %s: %w", wp.ID, err)
		}
		if recent {
			continue
		}

		qualifying = append(qualifying, buildAlert(wp, d, wqs))
	}

	sort.Slice(qualifying, func(i, j int) bool {
		return qualifying[i].DistanceMeters < qualifying[j].DistanceMeters
	})

	for _, alert := range qualifying {
		rec := models.ProximityAlertRecord{
			UserID:     userID,
			WaypointID: alert.WaypointID,
			Alert:      alert,
			CreatedAt:  e.now(),
		}
		if err := e.ledger.RecordAlert(ctx, rec); err != nil {
			return nil, fmt.Errorf("record alert ledger for waypoint %s: %w", alert.WaypointID, err)
		}
		if err := e.dedup.Record(ctx, userID, alert.WaypointID, e.cooldown()); err != nil {
			return nil, fmt.Errorf("record dedup ledger for waypoint %s: %w", alert.WaypointID, err)
		}
		telemetrymetrics.ProximityAlertsEmitted.WithLabelValues(string(alert.Classification)).Inc()
	}

	return qualifying, nil
}

// recentlyAlerted reports whether (userID, waypointID) is inside its
// cool-down window, preferring the Redis dedup ledger and falling back to
// the durable alert ledger's last-recorded timestamp when Redis errors out.
func (e *Engine) recentlyAlerted(ctx context.Context, userID, waypointID string) (bool, error) {
	recent, err := e.dedup.Recent(ctx, userID, waypointID)
	if err == nil {
		return recent, nil
	}

	rec, lerr := e.ledger.GetLastAlertedAt(ctx, userID, waypointID)
	if lerr != nil {
		if dberrors.IsNotFound(lerr) {
			return false, nil
		}
		return false, fmt.Errorf("dedup ledger unavailable, durable fallback also failed for waypoint %s: %w", waypointID, lerr)
	}
	return e.now().Sub(rec.CreatedAt) < e.cooldown(), nil
}

// classify returns the waypoint's current WQS, preferring the coarse-TTL
// cache before falling back to a fresh calculation (spec.md §4.F step 3).
func (e *Engine) classify(ctx context.Context, userID string, wp models.Waypoint) (models.WQS, error) {
	if cached, err := e.wqsCache.Get(ctx, userID, wp.ID); err == nil {
		telemetrymetrics.WQSCalculations.WithLabelValues("hit").Inc()
		return cached, nil
	} else if err != cache.ErrCacheMiss {
		return models.WQS{}, err
	}

	telemetrymetrics.WQSCalculations.WithLabelValues("miss").Inc()
	wqs, err := e.scorer.Score(ctx, wp)
	if err != nil {
		return models.WQS{}, err
	}
	if err := e.wqsCache.Set(ctx, userID, wp.ID, wqs); err != nil {
		return models.WQS{}, err
	}
	return wqs, nil
}

func buildAlert(wp models.Waypoint, distanceM float64, wqs models.WQS) models.ProximityAlert {
	return models.ProximityAlert{
		WaypointID:     wp.ID,
		WaypointName:   wp.Name,
		WaypointType:   wp.Type,
		DistanceMeters: round1(distanceM),
		DistanceLabel:  formatDistance(distanceM),
		WQSScore:       wqs.TotalScore,
		Classification: wqs.Classification,
		AlertType:      "proximity",
		Message:        buildMessage(wp.Name, distanceM, wqs.Classification),
	}
}

func buildMessage(name string, distanceM float64, classification models.Classification) string {
	label := formatDistance(distanceM)
	switch classification {
	case models.ClassificationHotspot:
		return fmt.Sprintf("Hotspot '%s' at %s — excellent spot.", name, label)
	case models.ClassificationGood:
		return fmt.Sprintf("Waypoint '%s' at %s — strong potential.", name, label)
	default:
		return fmt.Sprintf("Approaching '%s' (%s).", name, label)
	}
}

func formatDistance(distanceM float64) string {
	if distanceM < 1000 {
		return fmt.Sprintf("%dm", int(distanceM))
	}
	return fmt.Sprintf("%.1fkm", distanceM/1000)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
