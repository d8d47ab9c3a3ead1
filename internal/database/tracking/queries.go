package tracking

const (
	querySessionStart = `
		INSERT INTO huntiq.tracking_sessions (session_id, user_id, started_at, active, locations_count, distance_km)
		VALUES ($1, $2, $3, true, 0, 0)
		RETURNING session_id, user_id, started_at, ended_at, active, locations_count, distance_km
	`

	querySessionCloseActive = `
		UPDATE huntiq.tracking_sessions
		SET active = false, ended_at = $2
		WHERE user_id = $1 AND active = true
	`

	querySessionGetByID = `
		SELECT session_id, user_id, started_at, ended_at, active, locations_count, distance_km
		FROM huntiq.tracking_sessions
		WHERE session_id = $1
	`

	querySessionGetActiveByUser = `
		SELECT session_id, user_id, started_at, ended_at, active, locations_count, distance_km
		FROM huntiq.tracking_sessions
		WHERE user_id = $1 AND active = true
		LIMIT 1
	`

	querySessionIncrementLocationsCount = `
		UPDATE huntiq.tracking_sessions
		SET locations_count = locations_count + 1
		WHERE session_id = $1 AND user_id = $2 AND active = true
	`

	querySessionEnd = `
		UPDATE huntiq.tracking_sessions
		SET active = false, ended_at = $2, locations_count = $3, distance_km = $4
		WHERE session_id = $1
		RETURNING session_id, user_id, started_at, ended_at, active, locations_count, distance_km
	`

	querySampleAppend = `
		INSERT INTO huntiq.location_samples (user_id, session_id, lat, lng, accuracy, altitude, heading, speed, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	querySampleGetBySession = `
		SELECT user_id, session_id, lat, lng, accuracy, altitude, heading, speed, timestamp
		FROM huntiq.location_samples
		WHERE session_id = $1
		ORDER BY timestamp
	`

	querySampleGetLatestByUser = `
		SELECT user_id, session_id, lat, lng, accuracy, altitude, heading, speed, timestamp
		FROM huntiq.location_samples
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`

	querySampleGetByUser = `
		SELECT user_id, session_id, lat, lng, accuracy, altitude, heading, speed, timestamp
		FROM huntiq.location_samples
		WHERE user_id = $1
		ORDER BY timestamp DESC
	`

	querySampleGetByUserLimited = querySampleGetByUser + `
		LIMIT $2
	`
)
