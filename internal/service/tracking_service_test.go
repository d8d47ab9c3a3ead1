package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/cache"
	"github.com/steeveross-eng/huntiq-telemetry/internal/config"
	dbtracking "github.com/steeveross-eng/huntiq-telemetry/internal/database/tracking"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
	"github.com/steeveross-eng/huntiq-telemetry/internal/proximity"
	"github.com/steeveross-eng/huntiq-telemetry/internal/push"
	"github.com/steeveross-eng/huntiq-telemetry/internal/service"
)

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.TrackingSession
	incr     map[string]int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.TrackingSession{}, incr: map[string]int{}}
}

func (f *fakeSessionRepo) Start(ctx context.Context, s models.TrackingSession) (*models.TrackingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.Active = true
	copy := s
	f.sessions[s.SessionID] = &copy
	return &copy, nil
}

func (f *fakeSessionRepo) CloseActiveForUser(ctx context.Context, userID string, endedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.UserID == userID && s.Active {
			s.Active = false
			s.EndedAt = &endedAt
		}
	}
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*models.TrackingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, dberrors.NotFound("tracking session %s", id)
	}
	copy := *s
	return &copy, nil
}

func (f *fakeSessionRepo) GetActiveByUser(ctx context.Context, userID string) (*models.TrackingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.UserID == userID && s.Active {
			copy := *s
			return &copy, nil
		}
	}
	return nil, dberrors.NotFound("active tracking session for %s", userID)
}

func (f *fakeSessionRepo) IncrementLocationsCount(ctx context.Context, userID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.UserID != userID || !s.Active {
		return nil
	}
	s.LocationsCount++
	f.incr[sessionID]++
	return nil
}

func (f *fakeSessionRepo) End(ctx context.Context, s models.TrackingSession) (*models.TrackingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.sessions[s.SessionID]
	if !ok {
		return nil, dberrors.NotFound("tracking session %s", s.SessionID)
	}
	*existing = s
	copy := *existing
	return &copy, nil
}

type fakeSampleRepo struct {
	mu      sync.Mutex
	samples []models.LocationSample
}

func (f *fakeSampleRepo) Append(ctx context.Context, sample models.LocationSample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.samples = append(f.samples, sample)
	return nil
}

func (f *fakeSampleRepo) GetBySession(ctx context.Context, sessionID string) ([]models.LocationSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LocationSample
	for _, s := range f.samples {
		if s.SessionID == sessionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSampleRepo) GetByUser(ctx context.Context, userID string, limit int) ([]models.LocationSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.LocationSample
	for i := len(f.samples) - 1; i >= 0; i-- {
		if f.samples[i].UserID == userID {
			out = append(out, f.samples[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeSampleRepo) GetLatestByUser(ctx context.Context, userID string) (*models.LocationSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.samples) - 1; i >= 0; i-- {
		if f.samples[i].UserID == userID {
			s := f.samples[i]
			return &s, nil
		}
	}
	return nil, dberrors.NotFound("latest sample for %s", userID)
}

// fakeTransactor runs fn directly against the given session repository,
// with no real transaction semantics — sufficient for unit tests that only
// care about the sequence of calls made within fn.
type fakeTransactor struct {
	sessions dbtracking.SessionRepository
}

func (f *fakeTransactor) RunInSessionTx(ctx context.Context, fn func(dbtracking.SessionRepository) error) error {
	return fn(f.sessions)
}

type fakeWaypointSource struct{ waypoints []models.Waypoint }

func (f *fakeWaypointSource) GetByUser(ctx context.Context, userID string) ([]models.Waypoint, error) {
	return f.waypoints, nil
}

type fakeScorer struct{ byID map[string]models.WQS }

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

type fakeDedup struct{ recent map[string]bool }

func (f *fakeDedup) Recent(ctx context.Context, userID, waypointID string) (bool, error) {
	return f.recent[userID+":"+waypointID], nil
}
func (f *fakeDedup) Record(ctx context.Context, userID, waypointID string, cooldown time.Duration) error {
	return nil
}

type fakeLedger struct{ recorded []models.ProximityAlertRecord }

func (f *fakeLedger) RecordAlert(ctx context.Context, rec models.ProximityAlertRecord) error {
	f.recorded = append(f.recorded, rec)
	return nil
}
func (f *fakeLedger) GetLastAlertedAt(ctx context.Context, userID, waypointID string) (*models.ProximityAlertRecord, error) {
	return nil, nil
}

type fakeNotifications struct {
	mu      sync.Mutex
	created []models.Notification
	nextID  int64
}

func (f *fakeNotifications) CreateNotification(ctx context.Context, n models.Notification) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.ID = f.nextID
	f.created = append(f.created, n)
	return &n, nil
}
func (f *fakeNotifications) GetNotificationsByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	return nil, nil
}
func (f *fakeNotifications) MarkNotificationRead(ctx context.Context, id int64) error { return nil }
func (f *fakeNotifications) UpdateOutcome(ctx context.Context, id int64, outcome models.PushOutcome) error {
	return nil
}

type fakeSubscriptions struct{}

func (fakeSubscriptions) UpsertSubscription(ctx context.Context, sub models.PushSubscription) error {
	return nil
}
func (fakeSubscriptions) GetSubscriptionByUser(ctx context.Context, userID string) (*models.PushSubscription, error) {
	return nil, dberrors.NotFound("push subscription for %s", userID)
}
func (fakeSubscriptions) DeleteSubscription(ctx context.Context, userID string) error { return nil }

type fakeTransport struct{}

func (fakeTransport) Deliver(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	return nil
}

func newTestProximityEngine(waypointList []models.Waypoint, byID map[string]models.WQS) *proximity.Engine {
	return proximity.New(
		&fakeWaypointSource{waypoints: waypointList},
		&fakeScorer{byID: byID},
		fakeClassificationCache{},
		&fakeDedup{recent: map[string]bool{}},
		&fakeLedger{},
		config.ProximityConfig{BaselineRadiusMeters: 500, HotspotBonusMeters: 200, CooldownMinutes: 30},
	)
}

func newTestOutbox() *push.Outbox {
	return push.NewOutbox(&fakeNotifications{}, fakeSubscriptions{}, fakeTransport{}, 1, 4)
}

func TestRecordPositionAppendsSampleAndIncrementsSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	samples := &fakeSampleRepo{}
	session, err := sessions.Start(context.Background(), models.TrackingSession{SessionID: "sess-1", UserID: "user-1", StartedAt: time.Now()})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	svc := service.NewTrackingService(sessions, samples, &fakeTransactor{sessions: sessions}, newTestProximityEngine(nil, nil), newTestOutbox())

	sample := models.LocationSample{Lat: 46.8, Lng: -71.2}
	got, alerts, err := svc.RecordPosition(context.Background(), "user-1", sample, session.SessionID)
	if err != nil {
		t.Fatalf("RecordPosition() error = %v", err)
	}
	if got.UserID != "user-1" || got.SessionID != session.SessionID {
		t.Errorf("RecordPosition() sample = %+v, want user/session stamped", got)
	}
	if len(alerts) != 0 {
		t.Errorf("RecordPosition() alerts = %d, want 0 (no waypoints configured)", len(alerts))
	}
	if len(samples.samples) != 1 {
		t.Fatalf("samples appended = %d, want 1", len(samples.samples))
	}
	if sessions.incr["sess-1"] != 1 {
		t.Errorf("locations_count increments = %d, want 1", sessions.incr["sess-1"])
	}
}

func TestRecordPositionEmitsProximityAlertThroughOutbox(t *testing.T) {
	sessions := newFakeSessionRepo()
	samples := &fakeSampleRepo{}

	wp := models.Waypoint{ID: "wp-1", Name: "Oak Stand", Lat: 46.8000, Lng: -71.2000}
	engine := newTestProximityEngine([]models.Waypoint{wp}, map[string]models.WQS{
		"wp-1": {Classification: models.ClassificationGood, TotalScore: 60},
	})

	svc := service.NewTrackingService(sessions, samples, &fakeTransactor{sessions: sessions}, engine, newTestOutbox())

	sample := models.LocationSample{Lat: 46.8000, Lng: -71.2000}
	_, alerts, err := svc.RecordPosition(context.Background(), "user-1", sample, "")
	if err != nil {
		t.Fatalf("RecordPosition() error = %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("RecordPosition() alerts = %d, want 1", len(alerts))
	}
	if alerts[0].WaypointID != "wp-1" {
		t.Errorf("alert waypoint = %v, want wp-1", alerts[0].WaypointID)
	}
}

func TestStartSessionClosesPriorActiveSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	samples := &fakeSampleRepo{}
	svc := service.NewTrackingService(sessions, samples, &fakeTransactor{sessions: sessions}, newTestProximityEngine(nil, nil), newTestOutbox())

	first, err := svc.StartSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	second, err := svc.StartSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if second.SessionID == first.SessionID {
		t.Fatalf("StartSession() returned the same session id twice")
	}

	reloadedFirst, err := sessions.GetByID(context.Background(), first.SessionID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if reloadedFirst.Active {
		t.Error("first session should have been closed by the second StartSession call")
	}
	if !second.Active {
		t.Error("second session should be active")
	}
}

func TestEndSessionComputesDistanceFromSamples(t *testing.T) {
	sessions := newFakeSessionRepo()
	samples := &fakeSampleRepo{}
	svc := service.NewTrackingService(sessions, samples, &fakeTransactor{sessions: sessions}, newTestProximityEngine(nil, nil), newTestOutbox())

	session, err := svc.StartSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	points := []models.LocationSample{
		{UserID: "user-1", SessionID: session.SessionID, Lat: 46.8000, Lng: -71.2000, Timestamp: time.Now()},
		{UserID: "user-1", SessionID: session.SessionID, Lat: 46.8010, Lng: -71.2000, Timestamp: time.Now()},
	}
	for _, p := range points {
		if _, _, err := svc.RecordPosition(context.Background(), "user-1", p, session.SessionID); err != nil {
			t.Fatalf("RecordPosition() error = %v", err)
		}
	}

	ended, err := svc.EndSession(context.Background(), "user-1", session.SessionID)
	if err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	if ended.Active {
		t.Error("EndSession() left session active")
	}
	if ended.DistanceKM <= 0 {
		t.Errorf("EndSession() distance = %v, want > 0", ended.DistanceKM)
	}
	if ended.LocationsCount != 2 {
		t.Errorf("EndSession() locations_count = %d, want 2", ended.LocationsCount)
	}
}

func TestEndSessionIsIdempotent(t *testing.T) {
	sessions := newFakeSessionRepo()
	samples := &fakeSampleRepo{}
	svc := service.NewTrackingService(sessions, samples, &fakeTransactor{sessions: sessions}, newTestProximityEngine(nil, nil), newTestOutbox())

	session, err := svc.StartSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	first, err := svc.EndSession(context.Background(), "user-1", session.SessionID)
	if err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	second, err := svc.EndSession(context.Background(), "user-1", session.SessionID)
	if err != nil {
		t.Fatalf("EndSession() (repeat) error = %v", err)
	}
	if second.DistanceKM != first.DistanceKM {
		t.Errorf("EndSession() repeat call changed distance: %v -> %v", first.DistanceKM, second.DistanceKM)
	}
}

func TestHistoryScopedToSessionRejectsOtherUsers(t *testing.T) {
	sessions := newFakeSessionRepo()
	samples := &fakeSampleRepo{}
	svc := service.NewTrackingService(sessions, samples, &fakeTransactor{sessions: sessions}, newTestProximityEngine(nil, nil), newTestOutbox())

	session, err := svc.StartSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, _, err := svc.RecordPosition(context.Background(), "user-1", models.LocationSample{Lat: 46.8, Lng: -71.2}, session.SessionID); err != nil {
		t.Fatalf("RecordPosition() error = %v", err)
	}

	history, err := svc.History(context.Background(), "user-1", session.SessionID, 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("History() returned %d samples, want 1", len(history))
	}

	if _, err := svc.History(context.Background(), "user-2", session.SessionID, 0); !dberrors.IsNotFound(err) {
		t.Errorf("History() cross-user error = %v, want IsNotFound", err)
	}
}

func TestHistoryWithoutSessionIDSpansAllSessionsAndRespectsLimit(t *testing.T) {
	sessions := newFakeSessionRepo()
	samples := &fakeSampleRepo{}
	svc := service.NewTrackingService(sessions, samples, &fakeTransactor{sessions: sessions}, newTestProximityEngine(nil, nil), newTestOutbox())

	for i := 0; i < 3; i++ {
		if _, _, err := svc.RecordPosition(context.Background(), "user-1", models.LocationSample{Lat: 46.8, Lng: -71.2}, ""); err != nil {
			t.Fatalf("RecordPosition() error = %v", err)
		}
	}

	all, err := svc.History(context.Background(), "user-1", "", 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("History() returned %d samples, want 3", len(all))
	}

	limited, err := svc.History(context.Background(), "user-1", "", 2)
	if err != nil {
		t.Fatalf("History() limited error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("History() limited returned %d samples, want 2", len(limited))
	}
}

func TestEndSessionRejectsOtherUsersSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	samples := &fakeSampleRepo{}
	svc := service.NewTrackingService(sessions, samples, &fakeTransactor{sessions: sessions}, newTestProximityEngine(nil, nil), newTestOutbox())

	session, err := svc.StartSession(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	_, err = svc.EndSession(context.Background(), "user-2", session.SessionID)
	if !dberrors.IsNotFound(err) {
		t.Errorf("EndSession() error = %v, want IsNotFound", err)
	}
}
