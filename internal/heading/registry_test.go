package heading

import (
	"context"
	"testing"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/cache"
	"github.com/steeveross-eng/huntiq-telemetry/internal/config"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

type fakePOISourcer struct {
	pois []models.POI
}

func (f *fakePOISourcer) Candidates(ctx context.Context, userID string) ([]models.POI, error) {
	return f.pois, nil
}

type fakeWeatherProvider struct {
	wind models.Wind
	err  error
}

func (f *fakeWeatherProvider) CurrentWind(ctx context.Context, lat, lng float64) (models.Wind, error) {
	return f.wind, f.err
}

func testConfig() config.HeadingConfig {
	return config.HeadingConfig{DefaultApertureDegrees: 60, DefaultRangeMeters: 500}
}

func TestRegistryCreateBuildsViewConeAndVisiblePOIs(t *testing.T) {
	poi := models.POI{ID: "p1", Name: "Stand", Lat: 46.8009, Lng: -71.2, Priority: 5}
	reg := New(&fakePOISourcer{pois: []models.POI{poi}}, &fakeWeatherProvider{wind: models.Wind{Favorable: true}}, nil, testConfig())

	session, err := reg.Create(context.Background(), "user-1", 46.8, -71.2, 0, 0, 0)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.ViewCone.ApertureDegrees != 60 || session.ViewCone.RangeMeters != 500 {
		t.Errorf("cone defaults not applied: %+v", session.ViewCone)
	}
	if len(session.ViewCone.Vertices) != coneArcPoints+1 {
		t.Errorf("len(vertices) = %d, want %d", len(session.ViewCone.Vertices), coneArcPoints+1)
	}
	if len(session.VisiblePOIs) != 1 {
		t.Fatalf("len(VisiblePOIs) = %d, want 1", len(session.VisiblePOIs))
	}
	if session.State != models.HeadingActive {
		t.Errorf("State = %s, want active", session.State)
	}
}

func TestRegistryUpdatePositionAccumulatesDistanceAndAlerts(t *testing.T) {
	reg := New(&fakePOISourcer{}, &fakeWeatherProvider{wind: models.Wind{Favorable: false}}, nil, testConfig())

	session, err := reg.Create(context.Background(), "user-1", 46.8, -71.2, 0, 0, 0)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := reg.UpdatePosition(context.Background(), session.ID, 46.8009, -71.2, 0)
	if err != nil {
		t.Fatalf("UpdatePosition() error = %v", err)
	}
	if updated.DistanceTraveledM <= 0 {
		t.Errorf("DistanceTraveledM = %f, want > 0", updated.DistanceTraveledM)
	}

	hasWindAlert := false
	for _, a := range updated.Alerts {
		if a.AlertType == "wind_change" {
			hasWindAlert = true
		}
	}
	if !hasWindAlert {
		t.Error("expected a wind_change alert after unfavorable wind reading")
	}
}

func TestRegistryUpdatePositionOnUnknownSessionFails(t *testing.T) {
	reg := New(&fakePOISourcer{}, &fakeWeatherProvider{}, nil, testConfig())
	if _, err := reg.UpdatePosition(context.Background(), "missing", 0, 0, 0); !dberrors.IsNotFound(err) {
		t.Errorf("err = %v, want NotFound", err)
	}
}

func TestRegistryPauseResumeCycle(t *testing.T) {
	reg := New(&fakePOISourcer{}, &fakeWeatherProvider{wind: models.Wind{Favorable: true}}, nil, testConfig())
	session, _ := reg.Create(context.Background(), "user-1", 46.8, -71.2, 0, 0, 0)

	paused, err := reg.Pause(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	if paused.State != models.HeadingPaused {
		t.Errorf("State = %s, want paused", paused.State)
	}

	if _, err := reg.Pause(context.Background(), session.ID); !dberrors.IsInvalidState(err) {
		t.Errorf("double Pause() err = %v, want InvalidState", err)
	}

	resumed, err := reg.Resume(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if resumed.State != models.HeadingActive {
		t.Errorf("State = %s, want active", resumed.State)
	}
}

func TestRegistryEndComputesSummaryAndEvicts(t *testing.T) {
	poi := models.POI{ID: "p1", Name: "Stand", Lat: 46.8009, Lng: -71.2, Priority: 5}
	reg := New(&fakePOISourcer{pois: []models.POI{poi}}, &fakeWeatherProvider{wind: models.Wind{Favorable: true}}, nil, testConfig())
	session, _ := reg.Create(context.Background(), "user-1", 46.8, -71.2, 0, 0, 0)

	time.Sleep(2 * time.Millisecond)
	summary, err := reg.End(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if summary.POIsVisitedCount != 1 {
		t.Errorf("POIsVisitedCount = %d, want 1", summary.POIsVisitedCount)
	}

	if _, err := reg.Get(context.Background(), session.ID); !dberrors.IsNotFound(err) {
		t.Errorf("Get() after End() err = %v, want NotFound", err)
	}
}

type fakeHeadingMirror struct {
	sessions map[string]models.HeadingSession
	loadErr  error
	loads    int
}

func (f *fakeHeadingMirror) Save(ctx context.Context, session models.HeadingSession) error {
	if f.sessions == nil {
		f.sessions = make(map[string]models.HeadingSession)
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeHeadingMirror) Load(ctx context.Context, sessionID string) (models.HeadingSession, error) {
	f.loads++
	if f.loadErr != nil {
		return models.HeadingSession{}, f.loadErr
	}
	session, ok := f.sessions[sessionID]
	if !ok {
		return models.HeadingSession{}, cache.ErrCacheMiss
	}
	return session, nil
}

func (f *fakeHeadingMirror) Delete(ctx context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

func TestRegistryGetRehydratesFromMirrorOnProcessMiss(t *testing.T) {
	mirror := &fakeHeadingMirror{sessions: map[string]models.HeadingSession{
		"sess-1": {ID: "sess-1", UserID: "user-1", State: models.HeadingActive},
	}}
	reg := New(&fakePOISourcer{}, &fakeWeatherProvider{wind: models.Wind{Favorable: true}}, mirror, testConfig())

	session, err := reg.Get(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if session.UserID != "user-1" {
		t.Errorf("UserID = %s, want user-1", session.UserID)
	}
	if mirror.loads != 1 {
		t.Errorf("mirror.loads = %d, want 1", mirror.loads)
	}

	if _, err := reg.Get(context.Background(), "sess-1"); err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if mirror.loads != 1 {
		t.Errorf("mirror.loads after second Get = %d, want 1 (should be served from process cache)", mirror.loads)
	}
}

func TestRegistryMustActiveRehydratesFromMirror(t *testing.T) {
	mirror := &fakeHeadingMirror{sessions: map[string]models.HeadingSession{
		"sess-2": {ID: "sess-2", UserID: "user-1", State: models.HeadingActive, Position: models.Position{Lat: 46.8, Lng: -71.2}},
	}}
	reg := New(&fakePOISourcer{}, &fakeWeatherProvider{wind: models.Wind{Favorable: true}}, mirror, testConfig())

	updated, err := reg.UpdatePosition(context.Background(), "sess-2", 46.8009, -71.2, 90)
	if err != nil {
		t.Fatalf("UpdatePosition() error = %v", err)
	}
	if updated.Position.Heading != 90 {
		t.Errorf("Heading = %f, want 90", updated.Position.Heading)
	}
}

func TestRegistryGetMirrorMissIsNotFound(t *testing.T) {
	mirror := &fakeHeadingMirror{sessions: map[string]models.HeadingSession{}}
	reg := New(&fakePOISourcer{}, &fakeWeatherProvider{}, mirror, testConfig())

	if _, err := reg.Get(context.Background(), "missing"); !dberrors.IsNotFound(err) {
		t.Errorf("err = %v, want NotFound", err)
	}
}
