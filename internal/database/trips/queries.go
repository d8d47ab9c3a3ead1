package trips

const (
	queryTripCreate = `
		INSERT INTO huntiq.trips (
			trip_id, user_id, title, target_species, status, planned_date,
			start_time, end_time, duration_hours, weather, temperature,
			wind_speed, success, planned_waypoints, visited_waypoints,
			observations_count, notes, location_lat, location_lng
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		)
		RETURNING trip_id, user_id, title, target_species, status, planned_date,
			start_time, end_time, duration_hours, weather, temperature,
			wind_speed, success, planned_waypoints, visited_waypoints,
			observations_count, notes, location_lat, location_lng
	`

	queryTripGetByID = `
		SELECT trip_id, user_id, title, target_species, status, planned_date,
			start_time, end_time, duration_hours, weather, temperature,
			wind_speed, success, planned_waypoints, visited_waypoints,
			observations_count, notes, location_lat, location_lng
		FROM huntiq.trips
		WHERE trip_id = $1
	`

	queryTripGetByUser = `
		SELECT trip_id, user_id, title, target_species, status, planned_date,
			start_time, end_time, duration_hours, weather, temperature,
			wind_speed, success, planned_waypoints, visited_waypoints,
			observations_count, notes, location_lat, location_lng
		FROM huntiq.trips
		WHERE user_id = $1
		ORDER BY COALESCE(start_time, planned_date) DESC
	`

	queryTripUpdate = `
		UPDATE huntiq.trips
		SET title = $2, target_species = $3, status = $4, planned_date = $5,
			start_time = $6, end_time = $7, duration_hours = $8, weather = $9,
			temperature = $10, wind_speed = $11, success = $12,
			planned_waypoints = $13, visited_waypoints = $14,
			observations_count = $15, notes = $16, location_lat = $17, location_lng = $18
		WHERE trip_id = $1
		RETURNING trip_id, user_id, title, target_species, status, planned_date,
			start_time, end_time, duration_hours, weather, temperature,
			wind_speed, success, planned_waypoints, visited_waypoints,
			observations_count, notes, location_lat, location_lng
	`

	queryTripDelete = `DELETE FROM huntiq.trips WHERE trip_id = $1`

	queryVisitCreate = `
		INSERT INTO huntiq.waypoint_visits (
			visit_id, user_id, waypoint_id, trip_id, arrival_time, departure_time,
			duration_minutes, weather, activity_level, success, observations_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING visit_id, user_id, waypoint_id, trip_id, arrival_time, departure_time,
			duration_minutes, weather, activity_level, success, observations_count
	`

	queryVisitGetByWaypoint = `
		SELECT visit_id, user_id, waypoint_id, trip_id, arrival_time, departure_time,
			duration_minutes, weather, activity_level, success, observations_count
		FROM huntiq.waypoint_visits
		WHERE waypoint_id = $1
		ORDER BY arrival_time DESC
	`

	queryVisitGetByTrip = `
		SELECT visit_id, user_id, waypoint_id, trip_id, arrival_time, departure_time,
			duration_minutes, weather, activity_level, success, observations_count
		FROM huntiq.waypoint_visits
		WHERE trip_id = $1
		ORDER BY arrival_time
	`

	queryVisitEnd = `
		UPDATE huntiq.waypoint_visits
		SET departure_time = $2,
			duration_minutes = EXTRACT(EPOCH FROM ($2 - arrival_time)) / 60
		WHERE visit_id = $1
		RETURNING visit_id, user_id, waypoint_id, trip_id, arrival_time, departure_time,
			duration_minutes, weather, activity_level, success, observations_count
	`

	queryVisitSetOutcomeForTrip = `
		UPDATE huntiq.waypoint_visits
		SET success = $2, weather = $3
		WHERE trip_id = $1
	`

	queryObservationCreate = `
		INSERT INTO huntiq.observations (
			observation_id, user_id, trip_id, waypoint_id, observation_type,
			species, count, distance_meters, direction, behavior,
			location_lat, location_lng, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING observation_id, user_id, trip_id, waypoint_id, observation_type,
			species, count, distance_meters, direction, behavior,
			location_lat, location_lng, timestamp
	`

	queryObservationGetByTrip = `
		SELECT observation_id, user_id, trip_id, waypoint_id, observation_type,
			species, count, distance_meters, direction, behavior,
			location_lat, location_lng, timestamp
		FROM huntiq.observations
		WHERE trip_id = $1
		ORDER BY timestamp
	`

	queryObservationGetByUser = `
		SELECT observation_id, user_id, trip_id, waypoint_id, observation_type,
			species, count, distance_meters, direction, behavior,
			location_lat, location_lng, timestamp
		FROM huntiq.observations
		WHERE user_id = $1
		ORDER BY timestamp DESC
	`

	queryAnalyticsUpsert = `
		INSERT INTO huntiq.analytics_projections (
			trip_id, user_id, target_species, status, success, duration_hours,
			observations_count, weather, planned_waypoint_count, visited_waypoint_count, projected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (trip_id) DO UPDATE SET
			status = EXCLUDED.status,
			success = EXCLUDED.success,
			duration_hours = EXCLUDED.duration_hours,
			observations_count = EXCLUDED.observations_count,
			weather = EXCLUDED.weather,
			planned_waypoint_count = EXCLUDED.planned_waypoint_count,
			visited_waypoint_count = EXCLUDED.visited_waypoint_count,
			projected_at = EXCLUDED.projected_at
	`

	queryAnalyticsGetByUser = `
		SELECT trip_id, user_id, target_species, status, success, duration_hours,
			observations_count, weather, planned_waypoint_count, visited_waypoint_count, projected_at
		FROM huntiq.analytics_projections
		WHERE user_id = $1
		ORDER BY projected_at DESC
	`
)
