package trips

import (
	"context"
	"time"

	"github.com/lib/pq"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL, composed from
// sub-repositories the same way the teacher's climbing package groups
// History/Activity/Search under one struct.
type PostgresRepository struct {
	db DBConn
}

// NewPostgresRepository creates a new PostgreSQL trips repository.
func NewPostgresRepository(db DBConn) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Trips() TripRepository               { return r }
func (r *PostgresRepository) Visits() VisitRepository             { return r }
func (r *PostgresRepository) Observations() ObservationRepository { return r }
func (r *PostgresRepository) Analytics() AnalyticsRepository      { return r }

// ====================
// Trips
// ====================

func scanTrip(scan func(...interface{}) error) (models.Trip, error) {
	var t models.Trip
	err := scan(
		&t.TripID, &t.UserID, &t.Title, &t.TargetSpecies, &t.Status, &t.PlannedDate,
		&t.StartTime, &t.EndTime, &t.DurationHours, &t.Weather, &t.Temperature,
		&t.WindSpeed, &t.Success, pq.Array(&t.PlannedWaypoints), pq.Array(&t.VisitedWaypoints),
		&t.ObservationsCount, &t.Notes, &t.LocationLat, &t.LocationLng,
	)
	return t, err
}

func (r *PostgresRepository) Create(ctx context.Context, t models.Trip) (*models.Trip, error) {
	row := r.db.QueryRowContext(ctx, queryTripCreate,
		t.TripID, t.UserID, t.Title, t.TargetSpecies, t.Status, t.PlannedDate,
		t.StartTime, t.EndTime, t.DurationHours, t.Weather, t.Temperature,
		t.WindSpeed, t.Success, pq.Array(t.PlannedWaypoints), pq.Array(t.VisitedWaypoints),
		t.ObservationsCount, t.Notes, t.LocationLat, t.LocationLng,
	)
	created, err := scanTrip(row.Scan)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Trip, error) {
	row := r.db.QueryRowContext(ctx, queryTripGetByID, id)
	t, err := scanTrip(row.Scan)
	if err != nil {
		return nil, dberrors.WrapNotFound(err)
	}
	return &t, nil
}

func (r *PostgresRepository) GetByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	rows, err := r.db.QueryContext(ctx, queryTripGetByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Trip
	for rows.Next() {
		t, err := scanTrip(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, t models.Trip) (*models.Trip, error) {
	row := r.db.QueryRowContext(ctx, queryTripUpdate,
		t.TripID, t.Title, t.TargetSpecies, t.Status, t.PlannedDate,
		t.StartTime, t.EndTime, t.DurationHours, t.Weather, t.Temperature,
		t.WindSpeed, t.Success, pq.Array(t.PlannedWaypoints), pq.Array(t.VisitedWaypoints),
		t.ObservationsCount, t.Notes, t.LocationLat, t.LocationLng,
	)
	updated, err := scanTrip(row.Scan)
	if err != nil {
		return nil, dberrors.WrapNotFound(err)
	}
	return &updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, queryTripDelete, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return dberrors.NotFound("trip %s", id)
	}
	return nil
}

// ====================
// Waypoint visits
// ====================

func scanVisit(scan func(...interface{}) error) (models.WaypointVisit, error) {
	var v models.WaypointVisit
	err := scan(
		&v.VisitID, &v.UserID, &v.WaypointID, &v.TripID, &v.ArrivalTime, &v.DepartureTime,
		&v.DurationMinutes, &v.Weather, &v.ActivityLevel, &v.Success, &v.ObservationsCount,
	)
	return v, err
}

func (r *PostgresRepository) CreateVisit(ctx context.Context, v models.WaypointVisit) (*models.WaypointVisit, error) {
	row := r.db.QueryRowContext(ctx, queryVisitCreate,
		v.VisitID, v.UserID, v.WaypointID, v.TripID, v.ArrivalTime, v.DepartureTime,
		v.DurationMinutes, v.Weather, v.ActivityLevel, v.Success, v.ObservationsCount,
	)
	created, err := scanVisit(row.Scan)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PostgresRepository) GetVisitsByWaypoint(ctx context.Context, waypointID string) ([]models.WaypointVisit, error) {
	rows, err := r.db.QueryContext(ctx, queryVisitGetByWaypoint, waypointID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WaypointVisit
	for rows.Next() {
		v, err := scanVisit(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetVisitsByTrip(ctx context.Context, tripID string) ([]models.WaypointVisit, error) {
	rows, err := r.db.QueryContext(ctx, queryVisitGetByTrip, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WaypointVisit
	for rows.Next() {
		v, err := scanVisit(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) EndVisit(ctx context.Context, visitID string, departureTime time.Time) (*models.WaypointVisit, error) {
	row := r.db.QueryRowContext(ctx, queryVisitEnd, visitID, departureTime)
	v, err := scanVisit(row.Scan)
	if err != nil {
		return nil, dberrors.WrapNotFound(err)
	}
	return &v, nil
}

func (r *PostgresRepository) SetOutcomeForTrip(ctx context.Context, tripID string, success bool, weather models.WeatherLabel) error {
	_, err := r.db.ExecContext(ctx, queryVisitSetOutcomeForTrip, tripID, success, weather)
	return err
}

// ====================
// Observations
// ====================

func scanObservation(scan func(...interface{}) error) (models.Observation, error) {
	var o models.Observation
	err := scan(
		&o.ObservationID, &o.UserID, &o.TripID, &o.WaypointID, &o.ObservationType,
		&o.Species, &o.Count, &o.DistanceMeters, &o.Direction, &o.Behavior,
		&o.LocationLat, &o.LocationLng, &o.Timestamp,
	)
	return o, err
}

func (r *PostgresRepository) CreateObservation(ctx context.Context, o models.Observation) (*models.Observation, error) {
	row := r.db.QueryRowContext(ctx, queryObservationCreate,
		o.ObservationID, o.UserID, o.TripID, o.WaypointID, o.ObservationType,
		o.Species, o.Count, o.DistanceMeters, o.Direction, o.Behavior,
		o.LocationLat, o.LocationLng, o.Timestamp,
	)
	created, err := scanObservation(row.Scan)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PostgresRepository) GetObservationsByTrip(ctx context.Context, tripID string) ([]models.Observation, error) {
	rows, err := r.db.QueryContext(ctx, queryObservationGetByTrip, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Observation
	for rows.Next() {
		o, err := scanObservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetObservationsByUser(ctx context.Context, userID string) ([]models.Observation, error) {
	rows, err := r.db.QueryContext(ctx, queryObservationGetByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Observation
	for rows.Next() {
		o, err := scanObservation(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ====================
// Analytics projections
// ====================

func (r *PostgresRepository) Upsert(ctx context.Context, p models.AnalyticsProjection) error {
	_, err := r.db.ExecContext(ctx, queryAnalyticsUpsert,
		p.TripID, p.UserID, p.TargetSpecies, p.Status, p.Success, p.DurationHours,
		p.ObservationsCount, p.Weather, p.PlannedWaypointCount, p.VisitedWaypointCount, p.ProjectedAt,
	)
	return err
}

func (r *PostgresRepository) GetAnalyticsByUser(ctx context.Context, userID string) ([]models.AnalyticsProjection, error) {
	rows, err := r.db.QueryContext(ctx, queryAnalyticsGetByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.AnalyticsProjection
	for rows.Next() {
		var p models.AnalyticsProjection
		if err := rows.Scan(
			&p.TripID, &p.UserID, &p.TargetSpecies, &p.Status, &p.Success, &p.DurationHours,
			&p.ObservationsCount, &p.Weather, &p.PlannedWaypointCount, &p.VisitedWaypointCount, &p.ProjectedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
