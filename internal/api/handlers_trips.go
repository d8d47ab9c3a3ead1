package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/steeveross-eng/huntiq-telemetry/internal/api/middleware"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

type createTripRequest struct {
	Title         string     `json:"title" binding:"required"`
	TargetSpecies string     `json:"target_species"`
	PlannedDate   *time.Time `json:"planned_date,omitempty"`
	LocationLat   float64    `json:"location_lat,omitempty"`
	LocationLng   float64    `json:"location_lng,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// CreateTrip handles POST /trips/create.
func (h *Handler) CreateTrip(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode trip: %v", err))
		return
	}

	principal := middleware.PrincipalFrom(c)
	trip, err := h.trips.CreateTrip(c.Request.Context(), models.Trip{
		UserID:        principal.UserID,
		Title:         req.Title,
		TargetSpecies: req.TargetSpecies,
		PlannedDate:   req.PlannedDate,
		LocationLat:   req.LocationLat,
		LocationLng:   req.LocationLng,
		Notes:         req.Notes,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

type tripIDRequest struct {
	TripID string `json:"trip_id" binding:"required"`
}

// StartTrip handles POST /trips/start.
func (h *Handler) StartTrip(c *gin.Context) {
	var req tripIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode request: %v", err))
		return
	}

	principal := middleware.PrincipalFrom(c)
	trip, err := h.trips.StartTrip(c.Request.Context(), principal.UserID, req.TripID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

type endTripRequest struct {
	TripID  string `json:"trip_id" binding:"required"`
	Success bool   `json:"success"`
}

// EndTrip handles POST /trips/end.
func (h *Handler) EndTrip(c *gin.Context) {
	var req endTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode request: %v", err))
		return
	}

	principal := middleware.PrincipalFrom(c)
	trip, err := h.trips.EndTrip(c.Request.Context(), principal.UserID, req.TripID, req.Success)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

type logObservationRequest struct {
	TripID          *string    `json:"trip_id,omitempty"`
	WaypointID      *string    `json:"waypoint_id,omitempty"`
	ObservationType string     `json:"observation_type" binding:"required"`
	Species         string     `json:"species,omitempty"`
	Count           int        `json:"count,omitempty"`
	DistanceMeters  *float64   `json:"distance_meters,omitempty"`
	Direction       string     `json:"direction,omitempty"`
	Behavior        string     `json:"behavior,omitempty"`
	LocationLat     *float64   `json:"location_lat,omitempty"`
	LocationLng     *float64   `json:"location_lng,omitempty"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
}

var validObservationTypes = map[models.ObservationType]bool{
	models.ObservationSighting: true,
	models.ObservationTracks:   true,
	models.ObservationSounds:   true,
	models.ObservationSigns:    true,
	models.ObservationHarvest:  true,
}

// LogObservation handles POST /trips/observations.
func (h *Handler) LogObservation(c *gin.Context) {
	var req logObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode observation: %v", err))
		return
	}

	observationType := models.ObservationType(req.ObservationType)
	if !validObservationTypes[observationType] {
		c.Error(dberrors.InvalidRequest("unknown observation_type %q", req.ObservationType))
		return
	}

	principal := middleware.PrincipalFrom(c)
	observation := models.Observation{
		TripID:          req.TripID,
		WaypointID:      req.WaypointID,
		ObservationType: observationType,
		Species:         req.Species,
		Count:           req.Count,
		DistanceMeters:  req.DistanceMeters,
		Direction:       req.Direction,
		Behavior:        req.Behavior,
		LocationLat:     req.LocationLat,
		LocationLng:     req.LocationLng,
	}
	if req.Timestamp != nil {
		observation.Timestamp = *req.Timestamp
	}

	saved, err := h.trips.LogObservation(c.Request.Context(), principal.UserID, observation)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// TripStatistics handles GET /trips/statistics.
func (h *Handler) TripStatistics(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	stats, err := h.trips.Statistics(c.Request.Context(), principal.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"statistics": stats})
}

// ListTrips handles GET /trips — a listing endpoint supplementing the
// lifecycle operations explicitly named in spec.md §6.
func (h *Handler) ListTrips(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	trips, err := h.trips.TripsByUser(c.Request.Context(), principal.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}
