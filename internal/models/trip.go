package models

import "time"

// TripStatus is the lifecycle state of a Trip. Transitions are monotone:
// planned -> in_progress -> completed, with cancelled reachable from planned
// or in_progress.
type TripStatus string

const (
	TripPlanned    TripStatus = "planned"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

// ObservationType enumerates the kinds of field observation a hunter can log.
type ObservationType string

const (
	ObservationSighting ObservationType = "sighting"
	ObservationTracks   ObservationType = "tracks"
	ObservationSounds   ObservationType = "sounds"
	ObservationSigns    ObservationType = "signs"
	ObservationHarvest  ObservationType = "harvest"
)

// WeatherLabel is one of the five wire-stable weather conditions used by the
// WQS weather-correlation sub-score.
type WeatherLabel string

const (
	WeatherSunny  WeatherLabel = "Sunny"
	WeatherCloudy WeatherLabel = "Cloudy"
	WeatherRainy  WeatherLabel = "Rainy"
	WeatherFoggy  WeatherLabel = "Foggy"
	WeatherSnowy  WeatherLabel = "Snowy"
)

// Trip is a single planned-and-executed hunting outing.
type Trip struct {
	TripID            string       `json:"trip_id"`
	UserID            string       `json:"user_id"`
	Title             string       `json:"title"`
	TargetSpecies     string       `json:"target_species"`
	Status            TripStatus   `json:"status"`
	PlannedDate       *time.Time   `json:"planned_date,omitempty"`
	StartTime         *time.Time   `json:"start_time,omitempty"`
	EndTime           *time.Time   `json:"end_time,omitempty"`
	DurationHours     float64      `json:"duration_hours,omitempty"`
	Weather           WeatherLabel `json:"weather,omitempty"`
	Temperature       *float64     `json:"temperature,omitempty"`
	WindSpeed         *float64     `json:"wind_speed,omitempty"`
	Success           bool         `json:"success"`
	PlannedWaypoints  []string     `json:"planned_waypoints,omitempty"`
	VisitedWaypoints  []string     `json:"visited_waypoints,omitempty"`
	ObservationsCount int          `json:"observations_count"`
	Notes             string       `json:"notes,omitempty"`
	// LocationLat/LocationLng anchor the trip on a map; they are stored as
	// the caller supplies them and are not filled in from waypoints or
	// observations.
	// The WQS nearby-waypoint prefilter (scoring.Calculator) resolves
	// proximity from waypoint coordinates, not these.
	LocationLat float64 `json:"location_lat,omitempty"`
	LocationLng float64 `json:"location_lng,omitempty"`
}

// WaypointVisit records a single stop at a waypoint, optionally as part of a trip.
type WaypointVisit struct {
	VisitID           string       `json:"visit_id"`
	UserID            string       `json:"user_id"`
	WaypointID        string       `json:"waypoint_id"`
	TripID            *string      `json:"trip_id,omitempty"`
	ArrivalTime       time.Time    `json:"arrival_time"`
	DepartureTime     *time.Time   `json:"departure_time,omitempty"`
	DurationMinutes   *float64     `json:"duration_minutes,omitempty"`
	Weather           WeatherLabel `json:"weather,omitempty"`
	ActivityLevel     int          `json:"activity_level"`
	Success           bool         `json:"success"`
	ObservationsCount int          `json:"observations_count"`
}

// Observation is a single field sighting/sign logged by a hunter.
type Observation struct {
	ObservationID   string          `json:"observation_id"`
	UserID          string          `json:"user_id"`
	TripID          *string         `json:"trip_id,omitempty"`
	WaypointID      *string         `json:"waypoint_id,omitempty"`
	ObservationType ObservationType `json:"observation_type"`
	Species         string          `json:"species,omitempty"`
	Count           int             `json:"count,omitempty"`
	DistanceMeters  *float64        `json:"distance_meters,omitempty"`
	Direction       string          `json:"direction,omitempty"`
	Behavior        string          `json:"behavior,omitempty"`
	LocationLat     *float64        `json:"location_lat,omitempty"`
	LocationLng     *float64        `json:"location_lng,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// AnalyticsProjection is a denormalized read-model mirror of a completed
// Trip, written once per trip end for read-heavy consumers outside the core.
type AnalyticsProjection struct {
	TripID                string       `json:"trip_id"`
	UserID                string       `json:"user_id"`
	TargetSpecies         string       `json:"target_species"`
	Status                TripStatus   `json:"status"`
	Success               bool         `json:"success"`
	DurationHours         float64      `json:"duration_hours"`
	ObservationsCount     int          `json:"observations_count"`
	Weather               WeatherLabel `json:"weather,omitempty"`
	PlannedWaypointCount  int          `json:"planned_waypoint_count"`
	VisitedWaypointCount  int          `json:"visited_waypoint_count"`
	ProjectedAt           time.Time    `json:"projected_at"`
}
