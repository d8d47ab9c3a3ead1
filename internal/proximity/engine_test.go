package proximity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/cache"
	"github.com/steeveross-eng/huntiq-telemetry/internal/config"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
	"github.com/steeveross-eng/huntiq-telemetry/internal/proximity"
)

type fakeWaypointSource struct {
	waypoints []models.Waypoint
}

func (f *fakeWaypointSource) GetByUser(ctx context.Context, userID string) ([]models.Waypoint, error) {
	return f.waypoints, nil
}

type fakeScorer struct {
	byID map[string]models.WQS
}

func (f *fakeScorer) Score(ctx context.Context, wp models.Waypoint) (models.WQS, error) {
	return f.byID[wp.ID], nil
}

type fakeClassificationCache struct{}

func (fakeClassificationCache) Get(ctx context.Context, userID, waypointID string) (models.WQS, error) {
	return models.WQS{}, cache.ErrCacheMiss
}
func (fakeClassificationCache) Set(ctx context.Context, userID, waypointID string, w models.WQS) error {
	return nil
}

type fakeDedup struct {
	recent map[string]bool
	err    error
	record []string
}

func (f *fakeDedup) Recent(ctx context.Context, userID, waypointID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.recent[userID+":"+waypointID], nil
}
func (f *fakeDedup) Record(ctx context.Context, userID, waypointID string, cooldown time.Duration) error {
	f.record = append(f.record, userID+":"+waypointID)
	return nil
}

type fakeLedger struct {
	recorded []models.ProximityAlertRecord
	lastAt   map[string]models.ProximityAlertRecord
}

func (f *fakeLedger) RecordAlert(ctx context.Context, rec models.ProximityAlertRecord) error {
	f.recorded = append(f.recorded, rec)
	return nil
}
func (f *fakeLedger) GetLastAlertedAt(ctx context.Context, userID, waypointID string) (*models.ProximityAlertRecord, error) {
	rec, ok := f.lastAt[userID+":"+waypointID]
	if !ok {
		return nil, dberrors.NotFound("alert record for %s/%s", userID, waypointID)
	}
	return &rec, nil
}

func defaultConfig() config.ProximityConfig {
	return config.ProximityConfig{BaselineRadiusMeters: 500, HotspotBonusMeters: 200, CooldownMinutes: 30}
}

func TestCheckExcludesWaypointsBeyondBaselineRadius(t *testing.T) {
	apex := models.Waypoint{ID: "near", Name: "Ridge Stand", Lat: 46.8000, Lng: -71.2000}
	far := models.Waypoint{ID: "far", Name: "Creek Bend", Lat: 46.8060, Lng: -71.2000}

	scorer := &fakeScorer{byID: map[string]models.WQS{
		"near": {Classification: models.ClassificationStandard, TotalScore: 40},
		"far":  {Classification: models.ClassificationStandard, TotalScore: 40},
	}}

	engine := proximity.New(
		&fakeWaypointSource{waypoints: []models.Waypoint{far, apex}},
		scorer,
		fakeClassificationCache{},
		&fakeDedup{recent: map[string]bool{}},
		&fakeLedger{},
		defaultConfig(),
	)

	alerts, err := engine.Check(context.Background(), "user-1", 46.8000, -71.2001)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Check() returned %d alerts, want 1 (far waypoint out of baseline radius)", len(alerts))
	}
	if alerts[0].WaypointID != "near" {
		t.Errorf("Check() alert waypoint = %v, want near", alerts[0].WaypointID)
	}
}

func TestCheckHotspotGetsBonusRadius(t *testing.T) {
	// ~600m east: outside the 500m baseline but inside 500+200=700m hotspot radius.
	wp := models.Waypoint{ID: "wp-1", Name: "Oak Stand", Lat: 46.8000, Lng: -71.19250}

	scorer := &fakeScorer{byID: map[string]models.WQS{
		"wp-1": {Classification: models.ClassificationHotspot, TotalScore: 80},
	}}

	engine := proximity.New(
		&fakeWaypointSource{waypoints: []models.Waypoint{wp}},
		scorer,
		fakeClassificationCache{},
		&fakeDedup{recent: map[string]bool{}},
		&fakeLedger{},
		defaultConfig(),
	)

	alerts, err := engine.Check(context.Background(), "user-1", 46.8000, -71.2000)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("Check() returned %d alerts, want 1 (hotspot bonus radius should include it)", len(alerts))
	}
	if alerts[0].Message == "" {
		t.Error("expected a non-empty hotspot message")
	}
}

func TestCheckSkipsDedupedWaypoint(t *testing.T) {
	wp := models.Waypoint{ID: "wp-1", Name: "Oak Stand", Lat: 46.8000, Lng: -71.2000}
	scorer := &fakeScorer{byID: map[string]models.WQS{"wp-1": {Classification: models.ClassificationGood}}}

	engine := proximity.New(
		&fakeWaypointSource{waypoints: []models.Waypoint{wp}},
		scorer,
		fakeClassificationCache{},
		&fakeDedup{recent: map[string]bool{"user-1:wp-1": true}},
		&fakeLedger{},
		defaultConfig(),
	)

	alerts, err := engine.Check(context.Background(), "user-1", 46.8000, -71.2000)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("Check() returned %d alerts, want 0 (deduped)", len(alerts))
	}
}

func TestCheckFallsBackToLedgerWhenDedupCacheErrors(t *testing.T) {
	wp := models.Waypoint{ID: "wp-1", Name: "Oak Stand", Lat: 46.8000, Lng: -71.2000}
	scorer := &fakeScorer{byID: map[string]models.WQS{"wp-1": {Classification: models.ClassificationGood}}}

	engine := proximity.New(
		&fakeWaypointSource{waypoints: []models.Waypoint{wp}},
		scorer,
		fakeClassificationCache{},
		&fakeDedup{err: errors.New("redis unavailable")},
		&fakeLedger{lastAt: map[string]models.ProximityAlertRecord{
			"user-1:wp-1": {CreatedAt: time.Now()},
		}},
		defaultConfig(),
	)

	alerts, err := engine.Check(context.Background(), "user-1", 46.8000, -71.2000)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("Check() returned %d alerts, want 0 (durable ledger says still within cooldown)", len(alerts))
	}
}

func TestCheckFallsBackToLedgerAndAllowsAfterCooldownExpires(t *testing.T) {
	wp := models.Waypoint{ID: "wp-1", Name: "Oak Stand", Lat: 46.8000, Lng: -71.2000}
	scorer := &fakeScorer{byID: map[string]models.WQS{"wp-1": {Classification: models.ClassificationGood}}}

	engine := proximity.New(
		&fakeWaypointSource{waypoints: []models.Waypoint{wp}},
		scorer,
		fakeClassificationCache{},
		&fakeDedup{err: errors.New("redis unavailable")},
		&fakeLedger{lastAt: map[string]models.ProximityAlertRecord{
			"user-1:wp-1": {CreatedAt: time.Now().Add(-time.Hour)},
		}},
		defaultConfig(),
	)

	alerts, err := engine.Check(context.Background(), "user-1", 46.8000, -71.2000)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(alerts) != 1 {
		t.Errorf("Check() returned %d alerts, want 1 (cooldown from an hour ago has expired)", len(alerts))
	}
}

func TestCheckFallsBackToLedgerWithNoPriorAlert(t *testing.T) {
	wp := models.Waypoint{ID: "wp-1", Name: "Oak Stand", Lat: 46.8000, Lng: -71.2000}
	scorer := &fakeScorer{byID: map[string]models.WQS{"wp-1": {Classification: models.ClassificationGood}}}

	engine := proximity.New(
		&fakeWaypointSource{waypoints: []models.Waypoint{wp}},
		scorer,
		fakeClassificationCache{},
		&fakeDedup{err: errors.New("redis unavailable")},
		&fakeLedger{},
		defaultConfig(),
	)

	alerts, err := engine.Check(context.Background(), "user-1", 46.8000, -71.2000)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(alerts) != 1 {
		t.Errorf("Check() returned %d alerts, want 1 (no prior alert recorded in the durable ledger)", len(alerts))
	}
}
