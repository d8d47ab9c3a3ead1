// Package push implements the push outbox (spec.md §4.G): the notification
// journal is always written; delivery through the external Web Push
// transport is best-effort and runs off the request path on a bounded
// worker pool so record_position never blocks on it (spec.md §5).
package push

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/steeveross-eng/huntiq-telemetry/internal/database/alerts"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/external"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
	"github.com/steeveross-eng/huntiq-telemetry/internal/resilience"
	"github.com/steeveross-eng/huntiq-telemetry/internal/telemetrymetrics"
)

const dispatchDeadline = 10 * time.Second

type dispatchJob struct {
	ctx            context.Context
	notificationID int64
	userID         string
	payload        []byte
}

// Outbox journals notifications and dispatches them through a circuit
// breaker-guarded transport on a fixed pool of background workers.
type Outbox struct {
	notifications alerts.NotificationRepository
	subscriptions alerts.SubscriptionRepository
	transport     external.PushTransport
	breaker       *resilience.Breaker[models.PushOutcome]
	jobs          chan dispatchJob
	now           func() time.Time
}

// NewOutbox builds an Outbox and starts workers background goroutines
// draining its dispatch queue. queueSize bounds how many dispatches may be
// pending before Enqueue starts dropping delivery attempts (the journal
// write itself is never dropped).
func NewOutbox(notifications alerts.NotificationRepository, subscriptions alerts.SubscriptionRepository, transport external.PushTransport, workers, queueSize int) *Outbox {
	o := &Outbox{
		notifications: notifications,
		subscriptions: subscriptions,
		transport:     transport,
		breaker:       resilience.New[models.PushOutcome]("push-transport"),
		jobs:          make(chan dispatchJob, queueSize),
		now:           time.Now,
	}
	for i := 0; i < workers; i++ {
		go o.worker()
	}
	return o
}

func (o *Outbox) worker() {
	for job := range o.jobs {
		o.dispatch(job)
	}
}

// Enqueue journals a notification for userID and, if a subscription
// exists, schedules best-effort delivery. The returned Notification always
// reflects the journal write; its Outcome may still be PushDeferred when
// this call returns, since dispatch happens asynchronously.
func (o *Outbox) Enqueue(ctx context.Context, userID string, payload []byte) (*models.Notification, error) {
	n := models.Notification{
		UserID:  userID,
		Payload: string(payload),
		Outcome: models.PushDeferred,
		SentAt:  o.now(),
	}
	created, err := o.notifications.CreateNotification(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("journal notification for %s: %w", userID, err)
	}

	job := dispatchJob{
		// Detached from the request context: dispatch outlives the HTTP
		// request that triggered it, per the §5 back-pressure requirement.
		ctx:            context.WithoutCancel(ctx),
		notificationID: created.ID,
		userID:         userID,
		payload:        payload,
	}

	select {
	case o.jobs <- job:
	default:
		log.Warn().Str("user_id", userID).Msg("push dispatch queue full, notification remains deferred")
	}

	return created, nil
}

func (o *Outbox) dispatch(job dispatchJob) {
	sub, err := o.subscriptions.GetSubscriptionByUser(job.ctx, job.userID)
	if err != nil {
		if !dberrors.IsNotFound(err) {
			log.Error().Err(err).Str("user_id", job.userID).Msg("push dispatch: failed to load subscription")
		}
		return
	}

	outcome, err := o.breaker.Call(job.ctx, dispatchDeadline, func(ctx context.Context) (models.PushOutcome, error) {
		deliverErr := o.transport.Deliver(ctx, *sub, job.payload)
		switch {
		case deliverErr == nil:
			return models.PushDelivered, nil
		case dberrors.IsDependencyGone(deliverErr):
			// A gone subscription is an expected outcome, not a transport
			// failure; it must not trip the breaker.
			return models.PushFailedSubscriptionGone, nil
		default:
			return "", deliverErr
		}
	})
	if err != nil {
		outcome = models.PushFailedTransient
	}

	if outcome == models.PushFailedSubscriptionGone {
		if delErr := o.subscriptions.DeleteSubscription(job.ctx, job.userID); delErr != nil {
			log.Error().Err(delErr).Str("user_id", job.userID).Msg("push dispatch: failed to delete gone subscription")
		}
	}

	telemetrymetrics.PushDeliveries.WithLabelValues(string(outcome)).Inc()
	if updErr := o.notifications.UpdateOutcome(job.ctx, job.notificationID, outcome); updErr != nil {
		log.Error().Err(updErr).Int64("notification_id", job.notificationID).Msg("push dispatch: failed to record outcome")
	}
}
