package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
	"github.com/steeveross-eng/huntiq-telemetry/internal/service"
)

type fakeWaypointRepo struct {
	mu        sync.Mutex
	byID      map[string]models.Waypoint
	nextID    int
	createErr error
}

func newFakeWaypointRepo() *fakeWaypointRepo {
	return &fakeWaypointRepo{byID: map[string]models.Waypoint{}}
}

func (f *fakeWaypointRepo) Create(ctx context.Context, w models.Waypoint) (*models.Waypoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.byID[w.ID] = w
	copy := w
	return &copy, nil
}

func (f *fakeWaypointRepo) GetByID(ctx context.Context, id string) (*models.Waypoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wp, ok := f.byID[id]
	if !ok {
		return nil, dberrors.NotFound("waypoint %s", id)
	}
	copy := wp
	return &copy, nil
}

func (f *fakeWaypointRepo) GetByUser(ctx context.Context, userID string) ([]models.Waypoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Waypoint
	for _, wp := range f.byID {
		if wp.UserID == userID {
			out = append(out, wp)
		}
	}
	return out, nil
}

func (f *fakeWaypointRepo) GetNear(ctx context.Context, userID string, lat, lng, boxDegrees float64) ([]models.Waypoint, error) {
	return f.GetByUser(ctx, userID)
}

func (f *fakeWaypointRepo) Update(ctx context.Context, w models.Waypoint) (*models.Waypoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[w.ID]; !ok {
		return nil, dberrors.NotFound("waypoint %s", w.ID)
	}
	f.byID[w.ID] = w
	copy := w
	return &copy, nil
}

func (f *fakeWaypointRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return dberrors.NotFound("waypoint %s", id)
	}
	delete(f.byID, id)
	return nil
}

type fakeWaypointScorer struct{ byID map[string]models.WQS }

func (f *fakeWaypointScorer) Score(ctx context.Context, wp models.Waypoint) (models.WQS, error) {
	if wqs, ok := f.byID[wp.ID]; ok {
		wqs.WaypointID = wp.ID
		return wqs, nil
	}
	return models.WQS{WaypointID: wp.ID, Classification: models.ClassificationWeak}, nil
}

func TestUpsertWaypointAssignsIDOnCreate(t *testing.T) {
	repo := newFakeWaypointRepo()
	svc := service.NewWaypointService(repo, &fakeWaypointScorer{})

	created, err := svc.UpsertWaypoint(context.Background(), models.Waypoint{UserID: "user-1", Name: "Oak Stand"})
	if err != nil {
		t.Fatalf("UpsertWaypoint() error = %v", err)
	}
	if created.ID == "" {
		t.Error("UpsertWaypoint() left ID empty on create")
	}
}

func TestUpsertWaypointUpdatesExisting(t *testing.T) {
	repo := newFakeWaypointRepo()
	svc := service.NewWaypointService(repo, &fakeWaypointScorer{})

	created, err := svc.UpsertWaypoint(context.Background(), models.Waypoint{UserID: "user-1", Name: "Oak Stand"})
	if err != nil {
		t.Fatalf("UpsertWaypoint() create error = %v", err)
	}

	updated, err := svc.UpsertWaypoint(context.Background(), models.Waypoint{ID: created.ID, UserID: "user-1", Name: "Renamed Stand"})
	if err != nil {
		t.Fatalf("UpsertWaypoint() update error = %v", err)
	}
	if updated.Name != "Renamed Stand" {
		t.Errorf("UpsertWaypoint() name = %q, want %q", updated.Name, "Renamed Stand")
	}
}

func TestGetWaypointRejectsCrossUserAccess(t *testing.T) {
	repo := newFakeWaypointRepo()
	svc := service.NewWaypointService(repo, &fakeWaypointScorer{})

	created, err := svc.UpsertWaypoint(context.Background(), models.Waypoint{UserID: "user-1", Name: "Oak Stand"})
	if err != nil {
		t.Fatalf("UpsertWaypoint() error = %v", err)
	}

	_, err = svc.GetWaypoint(context.Background(), "user-2", created.ID)
	if !dberrors.IsNotFound(err) {
		t.Errorf("GetWaypoint() cross-user error = %v, want IsNotFound", err)
	}
}

func TestDeleteWaypointRejectsCrossUserAccess(t *testing.T) {
	repo := newFakeWaypointRepo()
	svc := service.NewWaypointService(repo, &fakeWaypointScorer{})

	created, err := svc.UpsertWaypoint(context.Background(), models.Waypoint{UserID: "user-1", Name: "Oak Stand"})
	if err != nil {
		t.Fatalf("UpsertWaypoint() error = %v", err)
	}

	if err := svc.DeleteWaypoint(context.Background(), "user-2", created.ID); !dberrors.IsNotFound(err) {
		t.Errorf("DeleteWaypoint() cross-user error = %v, want IsNotFound", err)
	}
	if _, err := repo.GetByID(context.Background(), created.ID); err != nil {
		t.Errorf("waypoint was deleted despite cross-user rejection: %v", err)
	}
}

func TestHeatmapSortsByDescendingScore(t *testing.T) {
	repo := newFakeWaypointRepo()
	low, _ := repo.Create(context.Background(), models.Waypoint{ID: "wp-low", UserID: "user-1", Name: "Low"})
	high, _ := repo.Create(context.Background(), models.Waypoint{ID: "wp-high", UserID: "user-1", Name: "High"})
	_ = low
	_ = high

	scorer := &fakeWaypointScorer{byID: map[string]models.WQS{
		"wp-low":  {TotalScore: 10, Classification: models.ClassificationWeak},
		"wp-high": {TotalScore: 90, Classification: models.ClassificationHotspot},
	}}
	svc := service.NewWaypointService(repo, scorer)

	scores, err := svc.Heatmap(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Heatmap() error = %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("Heatmap() returned %d scores, want 2", len(scores))
	}
	if scores[0].WaypointID != "wp-high" {
		t.Errorf("Heatmap()[0] = %s, want highest-scoring waypoint first", scores[0].WaypointID)
	}
}

func TestNearbyHotspotsFiltersByRadiusAndClassification(t *testing.T) {
	repo := newFakeWaypointRepo()
	// ~0.01 deg away on each axis (roughly 1.35km), within a 5km radius.
	repo.Create(context.Background(), models.Waypoint{ID: "wp-near-hotspot", UserID: "user-1", Lat: 46.81, Lng: -71.21})
	repo.Create(context.Background(), models.Waypoint{ID: "wp-near-good", UserID: "user-1", Lat: 46.81, Lng: -71.21})
	// Far outside the radius.
	repo.Create(context.Background(), models.Waypoint{ID: "wp-far-hotspot", UserID: "user-1", Lat: 50.0, Lng: -71.21})

	scorer := &fakeWaypointScorer{byID: map[string]models.WQS{
		"wp-near-hotspot": {Classification: models.ClassificationHotspot, TotalScore: 95},
		"wp-near-good":    {Classification: models.ClassificationGood, TotalScore: 60},
		"wp-far-hotspot":  {Classification: models.ClassificationHotspot, TotalScore: 99},
	}}
	svc := service.NewWaypointService(repo, scorer)

	hotspots, err := svc.NearbyHotspots(context.Background(), "user-1", 46.80, -71.20, 5.0)
	if err != nil {
		t.Fatalf("NearbyHotspots() error = %v", err)
	}
	if len(hotspots) != 1 {
		t.Fatalf("NearbyHotspots() returned %d results, want 1", len(hotspots))
	}
	if hotspots[0].WaypointID != "wp-near-hotspot" {
		t.Errorf("NearbyHotspots()[0] = %s, want wp-near-hotspot", hotspots[0].WaypointID)
	}
}
