package group

const (
	queryPositionPut = `
		INSERT INTO huntiq.group_position_shares (group_id, user_id, lat, lng, heading, status, is_sharing, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (group_id, user_id) DO UPDATE SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			heading = EXCLUDED.heading,
			status = EXCLUDED.status,
			is_sharing = EXCLUDED.is_sharing,
			updated_at = EXCLUDED.updated_at
	`

	queryPositionGetByGroup = `
		SELECT group_id, user_id, lat, lng, heading, status, is_sharing, updated_at
		FROM huntiq.group_position_shares
		WHERE group_id = $1
	`

	queryMessageCreate = `
		INSERT INTO huntiq.chat_messages (
			id, group_id, sender_id, message_type, content, location, alert_type, created_at, read_by, is_deleted
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false)
		RETURNING id, group_id, sender_id, message_type, content, location, alert_type, created_at, read_by, is_deleted
	`

	queryMessageGetByGroup = `
		SELECT id, group_id, sender_id, message_type, content, location, alert_type, created_at, read_by, is_deleted
		FROM (
			SELECT id, group_id, sender_id, message_type, content, location, alert_type, created_at, read_by, is_deleted
			FROM huntiq.chat_messages
			WHERE group_id = $1 AND is_deleted = false
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at
	`

	queryMessageMarkRead = `
		UPDATE huntiq.chat_messages
		SET read_by = read_by || jsonb_build_object($2::text, true)
		WHERE id = $1
	`
)
