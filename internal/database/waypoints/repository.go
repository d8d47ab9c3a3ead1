// Package waypoints provides repository operations for hunter-owned
// waypoints: saved locations (stands, blinds, water, food plots) scored by
// the WQS calculator and watched by the proximity alert engine.
package waypoints

import (
	"context"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// Repository defines operations for waypoint storage. All methods are safe
// for concurrent use.
type Repository interface {
	// Create inserts a new waypoint under the ID the caller supplies and
	// returns the stored row.
	Create(ctx context.Context, w models.Waypoint) (*models.Waypoint, error)

	// GetByID retrieves a waypoint by ID.
	// Returns dberrors.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*models.Waypoint, error)

	// GetByUser retrieves every waypoint owned by userID, ordered by name.
	GetByUser(ctx context.Context, userID string) ([]models.Waypoint, error)

	// GetNear retrieves every waypoint owned by userID within a bounding box
	// around (lat, lng), used by the WQS calculator and nearby-hotspot
	// lookup to prefilter candidates before an exact Haversine check.
	GetNear(ctx context.Context, userID string, lat, lng, boxDegrees float64) ([]models.Waypoint, error)

	// Update overwrites an existing waypoint's mutable fields.
	// Returns dberrors.ErrNotFound if it does not exist.
	Update(ctx context.Context, w models.Waypoint) (*models.Waypoint, error)

	// Delete removes a waypoint by ID.
	// Returns dberrors.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}
