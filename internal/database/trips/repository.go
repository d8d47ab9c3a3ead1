// Package trips provides repository operations for trip planning and
// history, waypoint visits, field observations, and the analytics
// projection written when a trip ends.
package trips

import (
	"context"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// Repository groups the trip domain's sub-repositories, following the same
// composed-interface shape the teacher uses for multi-entity domains.
type Repository interface {
	Trips() TripRepository
	Visits() VisitRepository
	Observations() ObservationRepository
	Analytics() AnalyticsRepository
}

// TripRepository handles Trip CRUD and lifecycle transitions.
type TripRepository interface {
	// Create inserts a new planned trip.
	Create(ctx context.Context, t models.Trip) (*models.Trip, error)

	// GetByID retrieves a trip by ID.
	// Returns dberrors.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*models.Trip, error)

	// GetByUser retrieves every trip owned by userID, most recent first.
	GetByUser(ctx context.Context, userID string) ([]models.Trip, error)

	// Update overwrites a trip's mutable fields (status, timestamps,
	// weather, waypoints, notes).
	// Returns dberrors.ErrNotFound if it does not exist.
	Update(ctx context.Context, t models.Trip) (*models.Trip, error)

	// Delete removes a trip by ID.
	// Returns dberrors.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}

// VisitRepository handles WaypointVisit logging.
type VisitRepository interface {
	// CreateVisit inserts a new waypoint visit.
	CreateVisit(ctx context.Context, v models.WaypointVisit) (*models.WaypointVisit, error)

	// GetVisitsByWaypoint retrieves every recorded visit to waypointID, most
	// recent first. Used by the WQS calculator's success-history sub-score.
	GetVisitsByWaypoint(ctx context.Context, waypointID string) ([]models.WaypointVisit, error)

	// GetVisitsByTrip retrieves every visit recorded as part of tripID.
	GetVisitsByTrip(ctx context.Context, tripID string) ([]models.WaypointVisit, error)

	// EndVisit records a visit's departure time, deriving duration_minutes
	// from the gap to its arrival_time.
	// Returns dberrors.ErrNotFound if visitID does not exist.
	EndVisit(ctx context.Context, visitID string, departureTime time.Time) (*models.WaypointVisit, error)

	// SetOutcomeForTrip overwrites success/weather on every visit belonging
	// to tripID, mirroring the trip's own outcome onto its visits when the
	// trip ends.
	SetOutcomeForTrip(ctx context.Context, tripID string, success bool, weather models.WeatherLabel) error
}

// ObservationRepository handles field Observation logging.
type ObservationRepository interface {
	// CreateObservation inserts a new observation.
	CreateObservation(ctx context.Context, o models.Observation) (*models.Observation, error)

	// GetObservationsByTrip retrieves every observation logged during tripID.
	GetObservationsByTrip(ctx context.Context, tripID string) ([]models.Observation, error)

	// GetObservationsByUser retrieves every observation logged by userID, most recent first.
	GetObservationsByUser(ctx context.Context, userID string) ([]models.Observation, error)
}

// AnalyticsRepository handles the read-model projection written once per
// completed trip.
type AnalyticsRepository interface {
	// Upsert writes or replaces a trip's analytics projection.
	Upsert(ctx context.Context, p models.AnalyticsProjection) error

	// GetAnalyticsByUser retrieves every projection for userID, most recently
	// projected first.
	GetAnalyticsByUser(ctx context.Context, userID string) ([]models.AnalyticsProjection, error)
}
