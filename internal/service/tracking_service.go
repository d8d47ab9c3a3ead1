package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	dbtracking "github.com/steeveross-eng/huntiq-telemetry/internal/database/tracking"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/geo"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
	"github.com/steeveross-eng/huntiq-telemetry/internal/proximity"
	"github.com/steeveross-eng/huntiq-telemetry/internal/push"
	"github.com/steeveross-eng/huntiq-telemetry/internal/telemetrymetrics"
)

// SessionTransactor runs fn against the session repository atomically.
// Satisfied by *database.Database.
type SessionTransactor interface {
	RunInSessionTx(ctx context.Context, fn func(dbtracking.SessionRepository) error) error
}

// TrackingService implements the position ingester (spec.md §4.E): it
// journals location samples, maintains session aggregates, and triggers
// the proximity alert engine on every position update.
type TrackingService struct {
	sessions  dbtracking.SessionRepository
	samples   dbtracking.SampleRepository
	tx        SessionTransactor
	proximity *proximity.Engine
	outbox    *push.Outbox
	now       func() time.Time
	newID     func() string
}

// NewTrackingService creates a new TrackingService.
func NewTrackingService(sessions dbtracking.SessionRepository, samples dbtracking.SampleRepository, tx SessionTransactor, proximityEngine *proximity.Engine, outbox *push.Outbox) *TrackingService {
	return &TrackingService{
		sessions:  sessions,
		samples:   samples,
		tx:        tx,
		proximity: proximityEngine,
		outbox:    outbox,
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// RecordPosition journals a position, bumps the named session's sample
// count if one is active, runs the proximity scan, and enqueues any
// resulting alerts for push delivery.
func (s *TrackingService) RecordPosition(ctx context.Context, userID string, sample models.LocationSample, sessionID string) (*models.LocationSample, []models.ProximityAlert, error) {
	start := s.now()
	sample.UserID = userID
	sample.SessionID = sessionID
	if sample.Timestamp.IsZero() {
		sample.Timestamp = start
	}

	if err := s.samples.Append(ctx, sample); err != nil {
		return nil, nil, fmt.Errorf("append location sample for %s: %w", userID, err)
	}

	if sessionID != "" {
		if err := s.sessions.IncrementLocationsCount(ctx, userID, sessionID); err != nil {
			return nil, nil, fmt.Errorf("increment locations_count for session %s: %w", sessionID, err)
		}
	}

	alerts, err := s.proximity.Check(ctx, userID, sample.Lat, sample.Lng)
	if err != nil {
		return nil, nil, fmt.Errorf("check proximity for %s: %w", userID, err)
	}

	for _, alert := range alerts {
		payload, err := json.Marshal(alert)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal proximity alert: %w", err)
		}
		if _, err := s.outbox.Enqueue(ctx, userID, payload); err != nil {
			return nil, nil, fmt.Errorf("enqueue push for proximity alert: %w", err)
		}
	}

	telemetrymetrics.PositionsIngested.Inc()
	telemetrymetrics.PositionIngestLatency.Observe(s.now().Sub(start).Seconds())

	return &sample, alerts, nil
}

// CheckProximity runs a manual proximity scan at (lat, lng) without
// journaling a location sample or bumping a session's count — used by the
// check-proximity endpoint, which previews alerts without recording an
// outing position.
func (s *TrackingService) CheckProximity(ctx context.Context, userID string, lat, lng float64) ([]models.ProximityAlert, error) {
	alerts, err := s.proximity.Check(ctx, userID, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("check proximity for %s: %w", userID, err)
	}

	for _, alert := range alerts {
		payload, err := json.Marshal(alert)
		if err != nil {
			return nil, fmt.Errorf("marshal proximity alert: %w", err)
		}
		if _, err := s.outbox.Enqueue(ctx, userID, payload); err != nil {
			return nil, fmt.Errorf("enqueue push for proximity alert: %w", err)
		}
	}

	return alerts, nil
}

// History returns userID's recorded location samples, newest first, capped
// at limit (0 means unlimited). When sessionID is non-empty, the result is
// scoped to that session's samples instead of the user's whole history;
// the session must belong to userID or History returns NotFound.
func (s *TrackingService) History(ctx context.Context, userID, sessionID string, limit int) ([]models.LocationSample, error) {
	if sessionID == "" {
		samples, err := s.samples.GetByUser(ctx, userID, limit)
		if err != nil {
			return nil, fmt.Errorf("load location history for %s: %w", userID, err)
		}
		return samples, nil
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if session.UserID != userID {
		return nil, dberrors.NotFound("tracking session %s", sessionID)
	}

	samples, err := s.samples.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load samples for session %s: %w", sessionID, err)
	}
	if limit > 0 && len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}
	reverseSamples(samples)
	return samples, nil
}

func reverseSamples(samples []models.LocationSample) {
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
}

// StartSession atomically closes any session already active for userID
// and opens a new one, per spec.md §4.E.
func (s *TrackingService) StartSession(ctx context.Context, userID string) (*models.TrackingSession, error) {
	now := s.now()
	var created *models.TrackingSession

	err := s.tx.RunInSessionTx(ctx, func(repo dbtracking.SessionRepository) error {
		if err := repo.CloseActiveForUser(ctx, userID, now); err != nil {
			return fmt.Errorf("close active session for %s: %w", userID, err)
		}

		session, err := repo.Start(ctx, models.TrackingSession{SessionID: s.newID(), UserID: userID, StartedAt: now})
		if err != nil {
			return fmt.Errorf("start session for %s: %w", userID, err)
		}
		created = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// EndSession finalizes sessionID, computing its total distance from the
// haversine sum over consecutive samples. Ending an already-ended session
// is idempotent and simply returns its current state.
func (s *TrackingService) EndSession(ctx context.Context, userID, sessionID string) (*models.TrackingSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if session.UserID != userID {
		return nil, dberrors.NotFound("tracking session %s", sessionID)
	}
	if !session.Active {
		return session, nil
	}

	samples, err := s.samples.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load samples for session %s: %w", sessionID, err)
	}

	var totalM float64
	for i := 1; i < len(samples); i++ {
		prev := geo.Point{Lat: samples[i-1].Lat, Lng: samples[i-1].Lng}
		cur := geo.Point{Lat: samples[i].Lat, Lng: samples[i].Lng}
		totalM += geo.Haversine(prev, cur)
	}

	now := s.now()
	session.EndedAt = &now
	session.Active = false
	session.LocationsCount = len(samples)
	session.DistanceKM = roundTo(totalM/1000, 2)

	updated, err := s.sessions.End(ctx, *session)
	if err != nil {
		return nil, fmt.Errorf("end session %s: %w", sessionID, err)
	}
	return updated, nil
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
