// Package alerts provides repository operations for the proximity alert
// engine's durable dedup ledger, the notification journal, and push
// subscriptions. Redis (internal/cache) fronts the dedup ledger for the
// hot path; this package is the durable system of record.
package alerts

import (
	"context"

	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

// Repository groups the alert domain's sub-repositories.
type Repository interface {
	Ledger() LedgerRepository
	Notifications() NotificationRepository
	Subscriptions() SubscriptionRepository
}

// LedgerRepository durably records every proximity alert emitted, backing
// the Redis dedup ledger should it be evicted or unavailable.
type LedgerRepository interface {
	// RecordAlert inserts a durable ledger entry.
	RecordAlert(ctx context.Context, rec models.ProximityAlertRecord) error

	// GetLastAlertedAt returns the most recent record for (userID,
	// waypointID), or dberrors.ErrNotFound if none exists.
	GetLastAlertedAt(ctx context.Context, userID, waypointID string) (*models.ProximityAlertRecord, error)
}

// NotificationRepository handles the always-written notification journal.
type NotificationRepository interface {
	// CreateNotification inserts a new notification.
	CreateNotification(ctx context.Context, n models.Notification) (*models.Notification, error)

	// GetNotificationsByUser retrieves userID's notifications, most recent first.
	GetNotificationsByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)

	// MarkNotificationRead marks a notification read.
	// Returns dberrors.ErrNotFound if it does not exist.
	MarkNotificationRead(ctx context.Context, id int64) error

	// UpdateOutcome records the outcome of a deferred dispatch attempt,
	// once the push outbox's worker pool has resolved it.
	// Returns dberrors.ErrNotFound if it does not exist.
	UpdateOutcome(ctx context.Context, id int64, outcome models.PushOutcome) error
}

// SubscriptionRepository handles the single current Web Push subscription
// per user (spec.md §4.G: "a user has at most one active subscription;
// subscribing again replaces it").
type SubscriptionRepository interface {
	// UpsertSubscription replaces userID's subscription.
	UpsertSubscription(ctx context.Context, sub models.PushSubscription) error

	// GetSubscriptionByUser retrieves userID's subscription.
	// Returns dberrors.ErrNotFound if the user has none.
	GetSubscriptionByUser(ctx context.Context, userID string) (*models.PushSubscription, error)

	// DeleteSubscription removes userID's subscription, e.g. after the
	// remote endpoint reports gone (dberrors.ErrDependencyGone).
	DeleteSubscription(ctx context.Context, userID string) error
}
