package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	dbtrips "github.com/steeveross-eng/huntiq-telemetry/internal/database/trips"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/external"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// TripService implements the trip/visit/observation store (spec.md §4.C).
type TripService struct {
	trips        dbtrips.TripRepository
	visits       dbtrips.VisitRepository
	observations dbtrips.ObservationRepository
	analytics    dbtrips.AnalyticsRepository
	users        external.UserDirectory
	mailer       external.Mailer
	now          func() time.Time
	newID        func() string
}

// NewTripService builds a TripService from a composed trips.Repository.
func NewTripService(repo dbtrips.Repository, users external.UserDirectory, mailer external.Mailer) *TripService {
	return NewTripServiceFromParts(repo.Trips(), repo.Visits(), repo.Observations(), repo.Analytics(), users, mailer)
}

// NewTripServiceFromParts builds a TripService from its individual
// sub-repository dependencies, letting callers (tests included) supply
// narrow fakes instead of a full dbtrips.Repository.
func NewTripServiceFromParts(
	trips dbtrips.TripRepository,
	visits dbtrips.VisitRepository,
	observations dbtrips.ObservationRepository,
	analytics dbtrips.AnalyticsRepository,
	users external.UserDirectory,
	mailer external.Mailer,
) *TripService {
	return &TripService{
		trips:        trips,
		visits:       visits,
		observations: observations,
		analytics:    analytics,
		users:        users,
		mailer:       mailer,
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}
}

// CreateTrip plans a new trip in state "planned".
func (s *TripService) CreateTrip(ctx context.Context, t models.Trip) (*models.Trip, error) {
	t.TripID = s.newID()
	t.Status = models.TripPlanned
	return s.trips.Create(ctx, t)
}

// StartTrip transitions tripID from planned to in_progress. Starting a trip
// that is already started (or further along) fails with InvalidState.
func (s *TripService) StartTrip(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripPlanned {
		return nil, dberrors.InvalidState("trip %s is %s, cannot start", tripID, trip.Status)
	}

	now := s.now()
	trip.Status = models.TripInProgress
	trip.StartTime = &now
	return s.trips.Update(ctx, *trip)
}

// EndTrip transitions tripID to completed, projects its analytics snapshot,
// mirrors its outcome onto every logged visit, and fires a best-effort
// summary email (spec.md §4.C step 6).
func (s *TripService) EndTrip(ctx context.Context, userID, tripID string, success bool) (*models.Trip, error) {
	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripInProgress {
		return nil, dberrors.InvalidState("trip %s is %s, cannot end", tripID, trip.Status)
	}

	observations, err := s.observations.GetObservationsByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("load observations for trip %s: %w", tripID, err)
	}

	now := s.now()
	var durationHours float64
	if trip.StartTime != nil {
		durationHours = now.Sub(*trip.StartTime).Hours()
	}

	trip.Status = models.TripCompleted
	trip.EndTime = &now
	trip.DurationHours = durationHours
	trip.Success = success
	trip.ObservationsCount = len(observations)

	updated, err := s.trips.Update(ctx, *trip)
	if err != nil {
		return nil, fmt.Errorf("complete trip %s: %w", tripID, err)
	}

	projection := models.AnalyticsProjection{
		TripID:               updated.TripID,
		UserID:               updated.UserID,
		TargetSpecies:        updated.TargetSpecies,
		Status:               updated.Status,
		Success:              updated.Success,
		DurationHours:        updated.DurationHours,
		ObservationsCount:    updated.ObservationsCount,
		Weather:              updated.Weather,
		PlannedWaypointCount: len(updated.PlannedWaypoints),
		VisitedWaypointCount: len(updated.VisitedWaypoints),
		ProjectedAt:          now,
	}
	if err := s.analytics.Upsert(ctx, projection); err != nil {
		return nil, fmt.Errorf("project analytics for trip %s: %w", tripID, err)
	}

	if err := s.visits.SetOutcomeForTrip(ctx, tripID, updated.Success, updated.Weather); err != nil {
		return nil, fmt.Errorf("set visit outcomes for trip %s: %w", tripID, err)
	}

	s.sendSummaryMail(ctx, *updated)

	return updated, nil
}

// sendSummaryMail is fire-and-forget: a send failure never fails EndTrip.
func (s *TripService) sendSummaryMail(ctx context.Context, trip models.Trip) {
	profile, err := s.users.GetProfile(ctx, trip.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", trip.UserID).Msg("trip summary mail: could not resolve user profile")
		return
	}

	summary := external.TripSummaryMail{
		TripTitle:         trip.Title,
		TargetSpecies:     trip.TargetSpecies,
		Success:           trip.Success,
		DurationHours:     trip.DurationHours,
		ObservationsCount: trip.ObservationsCount,
		Weather:           trip.Weather,
	}
	if err := s.mailer.SendTripSummary(ctx, profile.Email, summary); err != nil {
		log.Warn().Err(err).Str("user_id", trip.UserID).Str("trip_id", trip.TripID).Msg("trip summary mail failed")
	}
}

// LogVisit records a stop at a waypoint, optionally as part of a trip.
func (s *TripService) LogVisit(ctx context.Context, v models.WaypointVisit) (*models.WaypointVisit, error) {
	if v.TripID != nil {
		if _, err := s.ownedTrip(ctx, v.UserID, *v.TripID); err != nil {
			return nil, err
		}
	}
	v.VisitID = s.newID()
	if v.ArrivalTime.IsZero() {
		v.ArrivalTime = s.now()
	}
	return s.visits.CreateVisit(ctx, v)
}

// EndVisit closes an open visit, recording its departure time; the
// repository derives duration_minutes from the gap to its arrival_time.
func (s *TripService) EndVisit(ctx context.Context, visitID string) (*models.WaypointVisit, error) {
	return s.visits.EndVisit(ctx, visitID, s.now())
}

// LogObservation records a field observation, optionally tied to a trip.
func (s *TripService) LogObservation(ctx context.Context, userID string, o models.Observation) (*models.Observation, error) {
	if o.TripID != nil {
		if _, err := s.ownedTrip(ctx, userID, *o.TripID); err != nil {
			return nil, err
		}
	}
	o.ObservationID = s.newID()
	o.UserID = userID
	if o.Timestamp.IsZero() {
		o.Timestamp = s.now()
	}
	return s.observations.CreateObservation(ctx, o)
}

// TripsByUser lists userID's trips, most recent first.
func (s *TripService) TripsByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	return s.trips.GetByUser(ctx, userID)
}

// ObservationsByUser lists userID's observations, most recent first.
func (s *TripService) ObservationsByUser(ctx context.Context, userID string) ([]models.Observation, error) {
	return s.observations.GetObservationsByUser(ctx, userID)
}

// VisitsByWaypoint lists every recorded visit to waypointID, most recent
// first, for the WQS calculator's success-history sub-score.
func (s *TripService) VisitsByWaypoint(ctx context.Context, waypointID string) ([]models.WaypointVisit, error) {
	return s.visits.GetVisitsByWaypoint(ctx, waypointID)
}

// Statistics returns userID's completed-trip analytics projections.
func (s *TripService) Statistics(ctx context.Context, userID string) ([]models.AnalyticsProjection, error) {
	return s.analytics.GetAnalyticsByUser(ctx, userID)
}

// ownedTrip loads tripID and verifies it belongs to userID.
func (s *TripService) ownedTrip(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("load trip %s: %w", tripID, err)
	}
	if trip.UserID != userID {
		return nil, dberrors.ConstraintViolation("trip %s does not belong to user %s", tripID, userID)
	}
	return trip, nil
}
