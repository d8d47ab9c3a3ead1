package models

import "time"

// Waypoint is a user-owned, fixed geographic point of interest (stand,
// feeding area, trail). Coordinates are treated as immutable by scoring
// once set; name/metadata remain mutable.
type Waypoint struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Type      string    `json:"type,omitempty"`
	Color     string    `json:"color,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
