package heading

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/steeveross-eng/huntiq-telemetry/internal/cache"
	"github.com/steeveross-eng/huntiq-telemetry/internal/config"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/external"
	"github.com/steeveross-eng/huntiq-telemetry/internal/geo"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
	"github.com/steeveross-eng/huntiq-telemetry/internal/telemetrymetrics"
)

// Mirror durably shadows session state so a restart or replica can
// rehydrate it. Satisfied by *cache.HeadingMirror.
type Mirror interface {
	Save(ctx context.Context, session models.HeadingSession) error
	Load(ctx context.Context, sessionID string) (models.HeadingSession, error)
	Delete(ctx context.Context, sessionID string) error
}

// POISourcer supplies the live POI candidates for a user's view cone.
// Satisfied by *POISource.
type POISourcer interface {
	Candidates(ctx context.Context, userID string) ([]models.POI, error)
}

// Registry is the in-process, write-through cache of active heading
// sessions required by spec.md §4.H. It is process-local: multi-process
// deployments need sticky routing or an external coordinator, the mirror
// here is a durability aid, not a coordination mechanism.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*models.HeadingSession

	pois    POISourcer
	weather external.WeatherProvider
	mirror  Mirror
	cfg     config.HeadingConfig
	now     func() time.Time
	newID   func() string
}

// New builds a Registry. mirror may be nil to disable Redis write-through
// (e.g. in tests).
func New(pois POISourcer, weather external.WeatherProvider, mirror Mirror, cfg config.HeadingConfig) *Registry {
	return &Registry{
		sessions: make(map[string]*models.HeadingSession),
		pois:     pois,
		weather:  weather,
		mirror:   mirror,
		cfg:      cfg,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Create starts a new active heading session at the given position. Aperture
// and range default to the configured values when zero.
func (r *Registry) Create(ctx context.Context, userID string, lat, lng, headingDeg, apertureDeg, rangeM float64) (*models.HeadingSession, error) {
	if apertureDeg <= 0 {
		apertureDeg = r.cfg.DefaultApertureDegrees
	}
	if rangeM <= 0 {
		rangeM = r.cfg.DefaultRangeMeters
	}

	now := r.now()
	session := &models.HeadingSession{
		ID:     r.newID(),
		UserID: userID,
		State:  models.HeadingActive,
		Position: models.Position{
			Lat: lat, Lng: lng, Heading: headingDeg,
		},
		ViewCone: models.ViewCone{
			ApertureDegrees: apertureDeg,
			RangeMeters:     rangeM,
			Direction:       headingDeg,
		},
		StartedAt:  now,
		LastUpdate: now,
	}

	if err := r.refresh(ctx, session); err != nil {
		return nil, fmt.Errorf("create heading session: %w", err)
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	r.save(ctx, *session)
	return cloneSession(session), nil
}

// UpdatePosition moves an active session and recomputes its view cone,
// visible POIs, wind reading, and alerts.
func (r *Registry) UpdatePosition(ctx context.Context, sessionID string, lat, lng, headingDeg float64) (*models.HeadingSession, error) {
	session, err := r.mustActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	prev := session.Position
	session.DistanceTraveledM += geo.Haversine(geo.Point{Lat: prev.Lat, Lng: prev.Lng}, geo.Point{Lat: lat, Lng: lng})
	session.Position = models.Position{Lat: lat, Lng: lng, Heading: headingDeg}
	session.ViewCone.Direction = headingDeg
	session.LastUpdate = r.now()

	if err := r.refresh(ctx, session); err != nil {
		return nil, fmt.Errorf("update heading session %s: %w", sessionID, err)
	}

	r.save(ctx, *session)
	telemetrymetrics.HeadingUpdates.Inc()
	return cloneSession(session), nil
}

// UpdateSettings changes an active session's aperture and/or range (zero
// values leave the current setting unchanged) and recomputes its cone.
func (r *Registry) UpdateSettings(ctx context.Context, sessionID string, apertureDeg, rangeM float64) (*models.HeadingSession, error) {
	session, err := r.mustActive(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if apertureDeg > 0 {
		session.ViewCone.ApertureDegrees = apertureDeg
	}
	if rangeM > 0 {
		session.ViewCone.RangeMeters = rangeM
	}
	session.LastUpdate = r.now()

	if err := r.refresh(ctx, session); err != nil {
		return nil, fmt.Errorf("update heading session settings %s: %w", sessionID, err)
	}

	r.save(ctx, *session)
	return cloneSession(session), nil
}

// Pause suspends an active session without discarding its state.
func (r *Registry) Pause(ctx context.Context, sessionID string) (*models.HeadingSession, error) {
	session, err := r.mustState(ctx, sessionID, models.HeadingActive)
	if err != nil {
		return nil, err
	}
	session.State = models.HeadingPaused
	session.LastUpdate = r.now()
	r.save(ctx, *session)
	return cloneSession(session), nil
}

// Resume reactivates a paused session.
func (r *Registry) Resume(ctx context.Context, sessionID string) (*models.HeadingSession, error) {
	session, err := r.mustState(ctx, sessionID, models.HeadingPaused)
	if err != nil {
		return nil, err
	}
	session.State = models.HeadingActive
	session.LastUpdate = r.now()
	r.save(ctx, *session)
	return cloneSession(session), nil
}

// End finalizes a session, computes its summary, and evicts it from the
// registry and mirror.
func (r *Registry) End(ctx context.Context, sessionID string) (*models.HeadingSessionSummary, error) {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	r.mu.Unlock()
	if !ok {
		return nil, dberrors.NotFound("heading session %s", sessionID)
	}

	now := r.now()
	ended := now
	session.EndedAt = &ended
	session.State = models.HeadingEnded
	session.DurationSeconds = int64(now.Sub(session.StartedAt).Seconds())

	poisVisited := 0
	for _, poi := range session.VisiblePOIs {
		if poi.VisibleInCone {
			poisVisited++
		}
	}

	if r.mirror != nil {
		if err := r.mirror.Delete(ctx, sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("heading registry: failed to evict mirrored session")
		}
	}

	return &models.HeadingSessionSummary{
		DurationSeconds:   session.DurationSeconds,
		DistanceTraveledM: session.DistanceTraveledM,
		POIsVisitedCount:  poisVisited,
		AlertsCount:       len(session.Alerts),
		StartedAt:         session.StartedAt,
		EndedAt:           now,
	}, nil
}

// Get returns a copy of the session's current state, rehydrating it from
// the Redis mirror first if this process has no in-memory copy (e.g. after
// a restart, or a read landing on a replica other than the one handling the
// session's writes).
func (r *Registry) Get(ctx context.Context, sessionID string) (*models.HeadingSession, error) {
	session, err := r.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return cloneSession(session), nil
}

func (r *Registry) mustActive(ctx context.Context, sessionID string) (*models.HeadingSession, error) {
	return r.mustState(ctx, sessionID, models.HeadingActive)
}

func (r *Registry) mustState(ctx context.Context, sessionID string, want models.SessionState) (*models.HeadingSession, error) {
	session, err := r.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != want {
		return nil, dberrors.InvalidState("heading session %s is %s, want %s", sessionID, session.State, want)
	}
	return session, nil
}

// lookup returns the live, in-process session for sessionID, rehydrating it
// from the mirror into r.sessions on a miss. A mirror entry not found is
// reported the same as no session at all: the mirror only durably shadows
// sessions this process (or a sibling) actually created.
func (r *Registry) lookup(ctx context.Context, sessionID string) (*models.HeadingSession, error) {
	r.mu.Lock()
	session, ok := r.sessions[sessionID]
	r.mu.Unlock()
	if ok {
		return session, nil
	}
	if r.mirror == nil {
		return nil, dberrors.NotFound("heading session %s", sessionID)
	}

	mirrored, err := r.mirror.Load(ctx, sessionID)
	if err != nil {
		if err == cache.ErrCacheMiss {
			return nil, dberrors.NotFound("heading session %s", sessionID)
		}
		return nil, fmt.Errorf("rehydrate heading session %s: %w", sessionID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[sessionID]; ok {
		return existing, nil
	}
	rehydrated := mirrored
	r.sessions[sessionID] = &rehydrated
	return &rehydrated, nil
}

// refresh recomputes the cone geometry, visible POIs, wind, and alerts for
// session in place. Called under no lock; callers hold the session by
// pointer so mutations are visible to the registry map immediately.
func (r *Registry) refresh(ctx context.Context, session *models.HeadingSession) error {
	apex := session.Position
	session.ViewCone.Vertices = GenerateVertices(apex, session.ViewCone.Direction, session.ViewCone.ApertureDegrees, session.ViewCone.RangeMeters)

	candidates, err := r.pois.Candidates(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("load poi candidates: %w", err)
	}
	session.VisiblePOIs = FilterVisible(apex, session.ViewCone.Direction, session.ViewCone.ApertureDegrees, session.ViewCone.RangeMeters, candidates)

	wind, err := r.weather.CurrentWind(ctx, apex.Lat, apex.Lng)
	if err != nil {
		log.Warn().Err(err).Str("session_id", session.ID).Msg("heading registry: wind lookup failed, skipping wind_change alert")
		wind = models.Wind{Favorable: true}
	}
	session.Wind = &wind

	session.Alerts = synthesizeAlerts(session.Alerts, session.Wind, session.VisiblePOIs, r.now(), r.newID)
	return nil
}

func (r *Registry) save(ctx context.Context, session models.HeadingSession) {
	if r.mirror == nil {
		return
	}
	if err := r.mirror.Save(ctx, session); err != nil {
		log.Warn().Err(err).Str("session_id", session.ID).Msg("heading registry: failed to mirror session")
	}
}

func cloneSession(s *models.HeadingSession) *models.HeadingSession {
	clone := *s
	clone.ViewCone.Vertices = append([]models.Position(nil), s.ViewCone.Vertices...)
	clone.VisiblePOIs = append([]models.POI(nil), s.VisiblePOIs...)
	clone.Alerts = append([]models.HeadingAlert(nil), s.Alerts...)
	return &clone
}
