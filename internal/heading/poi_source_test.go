package heading

import (
	"context"
	"errors"
	"testing"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

var errCacheMiss = errors.New("cache: miss")

type fakeWaypointSource struct {
	waypoints []models.Waypoint
}

func (f *fakeWaypointSource) GetByUser(ctx context.Context, userID string) ([]models.Waypoint, error) {
	return f.waypoints, nil
}

type fakeScorer struct {
	classification models.Classification
	calls          int
}

func (f *fakeScorer) Score(ctx context.Context, wp models.Waypoint) (models.WQS, error) {
	f.calls++
	return models.WQS{WaypointID: wp.ID, Classification: f.classification}, nil
}

func TestPOISourceMapsClassificationToPriority(t *testing.T) {
	src := NewPOISource(
		&fakeWaypointSource{waypoints: []models.Waypoint{{ID: "w1", Name: "Stand"}}},
		&fakeScorer{classification: models.ClassificationHotspot},
		nil,
	)

	pois, err := src.Candidates(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Candidates() error = %v", err)
	}
	if len(pois) != 1 || pois[0].Priority != 10 {
		t.Fatalf("pois = %+v, want priority 10", pois)
	}
}

func TestPOISourceUsesCacheWhenPresent(t *testing.T) {
	cache := &fakeClassificationCache{}
	scorer := &fakeScorer{classification: models.ClassificationGood}
	src := NewPOISource(
		&fakeWaypointSource{waypoints: []models.Waypoint{{ID: "w1", Name: "Stand"}}},
		scorer,
		cache,
	)

	ctx := context.Background()
	if _, err := src.Candidates(ctx, "user-1"); err != nil {
		t.Fatalf("Candidates() error = %v", err)
	}
	if scorer.calls != 1 {
		t.Fatalf("scorer.calls = %d, want 1 (cold cache)", scorer.calls)
	}

	if _, err := src.Candidates(ctx, "user-1"); err != nil {
		t.Fatalf("Candidates() error = %v", err)
	}
	if scorer.calls != 1 {
		t.Errorf("scorer.calls = %d, want 1 (warm cache should skip recompute)", scorer.calls)
	}
}

type fakeClassificationCache struct {
	stored map[string]models.WQS
}

func (f *fakeClassificationCache) Get(ctx context.Context, userID, waypointID string) (models.WQS, error) {
	if f.stored == nil {
		return models.WQS{}, errCacheMiss
	}
	w, ok := f.stored[userID+":"+waypointID]
	if !ok {
		return models.WQS{}, errCacheMiss
	}
	return w, nil
}

func (f *fakeClassificationCache) Set(ctx context.Context, userID, waypointID string, w models.WQS) error {
	if f.stored == nil {
		f.stored = map[string]models.WQS{}
	}
	f.stored[userID+":"+waypointID] = w
	return nil
}
