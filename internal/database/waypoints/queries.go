package waypoints

const (
	queryCreate = `
		INSERT INTO huntiq.waypoints (id, user_id, name, lat, lng, type, color, icon, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, user_id, name, lat, lng, type, color, icon, created_at
	`

	queryGetByID = `
		SELECT id, user_id, name, lat, lng, type, color, icon, created_at
		FROM huntiq.waypoints
		WHERE id = $1
	`

	queryGetByUser = `
		SELECT id, user_id, name, lat, lng, type, color, icon, created_at
		FROM huntiq.waypoints
		WHERE user_id = $1
		ORDER BY name
	`

	// queryGetNear uses a cheap bounding-box prefilter; the caller applies
	// the exact Haversine check afterward.
	queryGetNear = `
		SELECT id, user_id, name, lat, lng, type, color, icon, created_at
		FROM huntiq.waypoints
		WHERE user_id = $1
		  AND lat BETWEEN $2 - $4 AND $2 + $4
		  AND lng BETWEEN $3 - $4 AND $3 + $4
	`

	queryUpdate = `
		UPDATE huntiq.waypoints
		SET name = $2, lat = $3, lng = $4, type = $5, color = $6, icon = $7
		WHERE id = $1
		RETURNING id, user_id, name, lat, lng, type, color, icon, created_at
	`

	queryDelete = `
		DELETE FROM huntiq.waypoints
		WHERE id = $1
	`
)
