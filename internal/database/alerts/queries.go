package alerts

const (
	queryLedgerRecord = `
		INSERT INTO huntiq.proximity_alert_ledger (user_id, waypoint_id, alert_payload, created_at)
		VALUES ($1, $2, $3, $4)
	`

	queryLedgerGetLastAlertedAt = `
		SELECT user_id, waypoint_id, alert_payload, created_at
		FROM huntiq.proximity_alert_ledger
		WHERE user_id = $1 AND waypoint_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	queryNotificationCreate = `
		INSERT INTO huntiq.notifications (user_id, payload, outcome, sent_at, read)
		VALUES ($1, $2, $3, $4, false)
		RETURNING id, user_id, payload, outcome, sent_at, read
	`

	queryNotificationGetByUser = `
		SELECT id, user_id, payload, outcome, sent_at, read
		FROM huntiq.notifications
		WHERE user_id = $1
		ORDER BY sent_at DESC
		LIMIT $2
	`

	queryNotificationMarkRead = `
		UPDATE huntiq.notifications
		SET read = true
		WHERE id = $1
	`

	queryNotificationUpdateOutcome = `
		UPDATE huntiq.notifications
		SET outcome = $2
		WHERE id = $1
	`

	querySubscriptionUpsert = `
		INSERT INTO huntiq.push_subscriptions (user_id, endpoint, p256dh, auth)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			endpoint = EXCLUDED.endpoint,
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth
	`

	querySubscriptionGetByUser = `
		SELECT user_id, endpoint, p256dh, auth
		FROM huntiq.push_subscriptions
		WHERE user_id = $1
	`

	querySubscriptionDelete = `
		DELETE FROM huntiq.push_subscriptions
		WHERE user_id = $1
	`
)
