// Package tracking provides repository operations for the tracking session
// lifecycle: starting/ending sessions and appending the location samples
// that belong to them.
package tracking

import (
	"context"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// Repository groups the session and sample sub-repositories.
type Repository interface {
	Sessions() SessionRepository
	Samples() SampleRepository
}

// SessionRepository handles TrackingSession lifecycle.
type SessionRepository interface {
	// Start inserts a new active session.
	Start(ctx context.Context, s models.TrackingSession) (*models.TrackingSession, error)

	// CloseActiveForUser closes userID's currently active session, if any.
	// A no-op (not an error) when the user has no active session; callers
	// run this ahead of Start inside one transaction to make "start a
	// session" atomically supersede any prior active session.
	CloseActiveForUser(ctx context.Context, userID string, endedAt time.Time) error

	// GetByID retrieves a session by ID.
	// Returns dberrors.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*models.TrackingSession, error)

	// GetActiveByUser retrieves userID's currently active session, if any.
	// Returns dberrors.ErrNotFound if no session is active.
	GetActiveByUser(ctx context.Context, userID string) (*models.TrackingSession, error)

	// IncrementLocationsCount bumps sessionID's locations_count by one, if
	// it belongs to userID and is still active. A no-op otherwise.
	IncrementLocationsCount(ctx context.Context, userID, sessionID string) error

	// End marks a session ended, recording its final distance and location count.
	// Returns dberrors.ErrNotFound if it does not exist.
	End(ctx context.Context, s models.TrackingSession) (*models.TrackingSession, error)
}

// SampleRepository handles append-only LocationSample storage.
type SampleRepository interface {
	// Append inserts a new location sample.
	Append(ctx context.Context, sample models.LocationSample) error

	// GetBySession retrieves every sample for sessionID in timestamp order.
	GetBySession(ctx context.Context, sessionID string) ([]models.LocationSample, error)

	// GetLatestByUser retrieves a user's most recent sample, if any.
	// Returns dberrors.ErrNotFound if the user has never reported a position.
	GetLatestByUser(ctx context.Context, userID string) (*models.LocationSample, error)

	// GetByUser retrieves userID's most recent samples across every session,
	// newest first, capped at limit (0 means unlimited). Backs the
	// GET /geolocation/history endpoint for callers that omit session_id.
	GetByUser(ctx context.Context, userID string, limit int) ([]models.LocationSample, error)
}
