package tracking

import (
	"context"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db DBConn
}

// NewPostgresRepository creates a new PostgreSQL tracking repository.
func NewPostgresRepository(db DBConn) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Sessions() SessionRepository { return r }
func (r *PostgresRepository) Samples() SampleRepository    { return r }

func scanSession(scan func(...interface{}) error) (models.TrackingSession, error) {
	var s models.TrackingSession
	err := scan(&s.SessionID, &s.UserID, &s.StartedAt, &s.EndedAt, &s.Active, &s.LocationsCount, &s.DistanceKM)
	return s, err
}

func (r *PostgresRepository) Start(ctx context.Context, s models.TrackingSession) (*models.TrackingSession, error) {
	row := r.db.QueryRowContext(ctx, querySessionStart, s.SessionID, s.UserID, s.StartedAt)
	created, err := scanSession(row.Scan)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PostgresRepository) CloseActiveForUser(ctx context.Context, userID string, endedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, querySessionCloseActive, userID, endedAt)
	return err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.TrackingSession, error) {
	row := r.db.QueryRowContext(ctx, querySessionGetByID, id)
	s, err := scanSession(row.Scan)
	if err != nil {
		return nil, dberrors.WrapNotFound(err)
	}
	return &s, nil
}

func (r *PostgresRepository) GetActiveByUser(ctx context.Context, userID string) (*models.TrackingSession, error) {
	row := r.db.QueryRowContext(ctx, querySessionGetActiveByUser, userID)
	s, err := scanSession(row.Scan)
	if err != nil {
		return nil, dberrors.WrapNotFound(err)
	}
	return &s, nil
}

func (r *PostgresRepository) IncrementLocationsCount(ctx context.Context, userID, sessionID string) error {
	_, err := r.db.ExecContext(ctx, querySessionIncrementLocationsCount, sessionID, userID)
	return err
}

func (r *PostgresRepository) End(ctx context.Context, s models.TrackingSession) (*models.TrackingSession, error) {
	row := r.db.QueryRowContext(ctx, querySessionEnd, s.SessionID, s.EndedAt, s.LocationsCount, s.DistanceKM)
	updated, err := scanSession(row.Scan)
	if err != nil {
		return nil, dberrors.WrapNotFound(err)
	}
	return &updated, nil
}

func (r *PostgresRepository) Append(ctx context.Context, sample models.LocationSample) error {
	_, err := r.db.ExecContext(ctx, querySampleAppend,
		sample.UserID, sample.SessionID, sample.Lat, sample.Lng,
		sample.Accuracy, sample.Altitude, sample.Heading, sample.Speed, sample.Timestamp,
	)
	return err
}

func (r *PostgresRepository) GetBySession(ctx context.Context, sessionID string) ([]models.LocationSample, error) {
	rows, err := r.db.QueryContext(ctx, querySampleGetBySession, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LocationSample
	for rows.Next() {
		var s models.LocationSample
		if err := rows.Scan(&s.UserID, &s.SessionID, &s.Lat, &s.Lng, &s.Accuracy, &s.Altitude, &s.Heading, &s.Speed, &s.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetByUser(ctx context.Context, userID string, limit int) ([]models.LocationSample, error) {
	query, args := querySampleGetByUser, []interface{}{userID}
	if limit > 0 {
		query, args = querySampleGetByUserLimited, []interface{}{userID, limit}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LocationSample
	for rows.Next() {
		var s models.LocationSample
		if err := rows.Scan(&s.UserID, &s.SessionID, &s.Lat, &s.Lng, &s.Accuracy, &s.Altitude, &s.Heading, &s.Speed, &s.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetLatestByUser(ctx context.Context, userID string) (*models.LocationSample, error) {
	row := r.db.QueryRowContext(ctx, querySampleGetLatestByUser, userID)
	var s models.LocationSample
	err := row.Scan(&s.UserID, &s.SessionID, &s.Lat, &s.Lng, &s.Accuracy, &s.Altitude, &s.Heading, &s.Speed, &s.Timestamp)
	if err != nil {
		return nil, dberrors.WrapNotFound(err)
	}
	return &s, nil
}
