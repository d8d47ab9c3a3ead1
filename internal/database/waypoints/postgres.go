package waypoints

import (
	"context"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db DBConn
}

// NewPostgresRepository creates a new PostgreSQL waypoints repository.
func NewPostgresRepository(db DBConn) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanWaypoint(scan func(...interface{}) error) (models.Waypoint, error) {
	var w models.Waypoint
	err := scan(
		&w.ID,
		&w.UserID,
		&w.Name,
		&w.Lat,
		&w.Lng,
		&w.Type,
		&w.Color,
		&w.Icon,
		&w.CreatedAt,
	)
	return w, err
}

// Create inserts a new waypoint.
func (r *PostgresRepository) Create(ctx context.Context, w models.Waypoint) (*models.Waypoint, error) {
	row := r.db.QueryRowContext(ctx, queryCreate,
		w.ID, w.UserID, w.Name, w.Lat, w.Lng, w.Type, w.Color, w.Icon, w.CreatedAt,
	)
	created, err := scanWaypoint(row.Scan)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetByID retrieves a waypoint by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Waypoint, error) {
	row := r.db.QueryRowContext(ctx, queryGetByID, id)
	w, err := scanWaypoint(row.Scan)
	if err != nil {
		return nil, dberrors.WrapNotFound(err)
	}
	return &w, nil
}

// GetByUser retrieves every waypoint owned by userID.
func (r *PostgresRepository) GetByUser(ctx context.Context, userID string) ([]models.Waypoint, error) {
	rows, err := r.db.QueryContext(ctx, queryGetByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Waypoint
	for rows.Next() {
		w, err := scanWaypoint(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNear retrieves a bounding-box prefilter of waypoints around (lat, lng).
func (r *PostgresRepository) GetNear(ctx context.Context, userID string, lat, lng, boxDegrees float64) ([]models.Waypoint, error) {
	rows, err := r.db.QueryContext(ctx, queryGetNear, userID, lat, lng, boxDegrees)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Waypoint
	for rows.Next() {
		w, err := scanWaypoint(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites a waypoint's mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, w models.Waypoint) (*models.Waypoint, error) {
	row := r.db.QueryRowContext(ctx, queryUpdate,
		w.ID, w.Name, w.Lat, w.Lng, w.Type, w.Color, w.Icon,
	)
	updated, err := scanWaypoint(row.Scan)
	if err != nil {
		return nil, dberrors.WrapNotFound(err)
	}
	return &updated, nil
}

// Delete removes a waypoint by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, queryDelete, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return dberrors.NotFound("waypoint %s", id)
	}
	return nil
}
