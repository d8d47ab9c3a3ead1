package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steeveross-eng/huntiq-telemetry/internal/api/middleware"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

type upsertWaypointRequest struct {
	ID    string  `json:"id,omitempty"`
	Name  string  `json:"name" binding:"required"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Type  string  `json:"type,omitempty"`
	Color string  `json:"color,omitempty"`
	Icon  string  `json:"icon,omitempty"`
}

// UpsertWaypoint handles POST /waypoints: the catalogue store's
// upsert_waypoint operation (spec.md §4.B).
func (h *Handler) UpsertWaypoint(c *gin.Context) {
	var req upsertWaypointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode waypoint: %v", err))
		return
	}
	if err := validateLatLng(req.Lat, req.Lng); err != nil {
		c.Error(err)
		return
	}

	principal := middleware.PrincipalFrom(c)
	waypoint, err := h.waypoints.UpsertWaypoint(c.Request.Context(), models.Waypoint{
		ID:     req.ID,
		UserID: principal.UserID,
		Name:   req.Name,
		Lat:    req.Lat,
		Lng:    req.Lng,
		Type:   req.Type,
		Color:  req.Color,
		Icon:   req.Icon,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, waypoint)
}

// GetWaypoint handles GET /waypoints/{id}: the catalogue store's
// get_waypoint operation.
func (h *Handler) GetWaypoint(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	waypoint, err := h.waypoints.GetWaypoint(c.Request.Context(), principal.UserID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, waypoint)
}

// ListWaypoints handles GET /waypoints: the catalogue store's
// list_waypoints operation.
func (h *Handler) ListWaypoints(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	waypoints, err := h.waypoints.ListWaypoints(c.Request.Context(), principal.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waypoints": waypoints})
}

// DeleteWaypoint handles DELETE /waypoints/{id}.
func (h *Handler) DeleteWaypoint(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if err := h.waypoints.DeleteWaypoint(c.Request.Context(), principal.UserID, c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// WaypointWQS handles GET /waypoint-scoring/wqs/{id}.
func (h *Handler) WaypointWQS(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	wqs, err := h.waypoints.WQS(c.Request.Context(), principal.UserID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, wqs)
}

// WaypointHeatmap handles GET /waypoint-scoring/heatmap.
func (h *Handler) WaypointHeatmap(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	scores, err := h.waypoints.Heatmap(c.Request.Context(), principal.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"heatmap": scores})
}
