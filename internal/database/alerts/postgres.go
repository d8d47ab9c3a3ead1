package alerts

import (
	"context"
	"encoding/json"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db DBConn
}

// NewPostgresRepository creates a new PostgreSQL alerts repository.
func NewPostgresRepository(db DBConn) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Ledger() LedgerRepository             { return r }
func (r *PostgresRepository) Notifications() NotificationRepository { return r }
func (r *PostgresRepository) Subscriptions() SubscriptionRepository { return r }

// ====================
// Ledger
// ====================

func (r *PostgresRepository) RecordAlert(ctx context.Context, rec models.ProximityAlertRecord) error {
	payload, err := json.Marshal(rec.Alert)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, queryLedgerRecord, rec.UserID, rec.WaypointID, payload, rec.CreatedAt)
	return err
}

func (r *PostgresRepository) GetLastAlertedAt(ctx context.Context, userID, waypointID string) (*models.ProximityAlertRecord, error) {
	var rec models.ProximityAlertRecord
	var payload []byte
	err := r.db.QueryRowContext(ctx, queryLedgerGetLastAlertedAt, userID, waypointID).
		Scan(&rec.UserID, &rec.WaypointID, &payload, &rec.CreatedAt)
	if err != nil {
		return nil, dberrors.WrapNotFound(err)
	}
	if err := json.Unmarshal(payload, &rec.Alert); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ====================
// Notifications
// ====================

func (r *PostgresRepository) CreateNotification(ctx context.Context, n models.Notification) (*models.Notification, error) {
	var created models.Notification
	err := r.db.QueryRowContext(ctx, queryNotificationCreate, n.UserID, n.Payload, n.Outcome, n.SentAt).
		Scan(&created.ID, &created.UserID, &created.Payload, &created.Outcome, &created.SentAt, &created.Read)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PostgresRepository) GetNotificationsByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, queryNotificationGetByUser, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Payload, &n.Outcome, &n.SentAt, &n.Read); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) MarkNotificationRead(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, queryNotificationMarkRead, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return dberrors.NotFound("notification %d", id)
	}
	return nil
}

func (r *PostgresRepository) UpdateOutcome(ctx context.Context, id int64, outcome models.PushOutcome) error {
	result, err := r.db.ExecContext(ctx, queryNotificationUpdateOutcome, id, outcome)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return dberrors.NotFound("notification %d", id)
	}
	return nil
}

// ====================
// Subscriptions
// ====================

func (r *PostgresRepository) UpsertSubscription(ctx context.Context, sub models.PushSubscription) error {
	_, err := r.db.ExecContext(ctx, querySubscriptionUpsert, sub.UserID, sub.Endpoint, sub.Keys["p256dh"], sub.Keys["auth"])
	return err
}

func (r *PostgresRepository) GetSubscriptionByUser(ctx context.Context, userID string) (*models.PushSubscription, error) {
	var sub models.PushSubscription
	var p256dh, auth string
	err := r.db.QueryRowContext(ctx, querySubscriptionGetByUser, userID).
		Scan(&sub.UserID, &sub.Endpoint, &p256dh, &auth)
	if err != nil {
		return nil, dberrors.WrapNotFound(err)
	}
	sub.Keys = map[string]string{"p256dh": p256dh, "auth": auth}
	return &sub, nil
}

func (r *PostgresRepository) DeleteSubscription(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx, querySubscriptionDelete, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return dberrors.NotFound("push subscription for user %s", userID)
	}
	return nil
}
