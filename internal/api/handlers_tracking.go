package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/steeveross-eng/huntiq-telemetry/internal/api/middleware"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

type recordPositionRequest struct {
	Lat       float64    `json:"lat" binding:"required"`
	Lng       float64    `json:"lng" binding:"required"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
	Altitude  *float64   `json:"altitude,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
	Heading   *float64   `json:"heading,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// RecordPosition handles POST /geolocation/location.
func (h *Handler) RecordPosition(c *gin.Context) {
	var req recordPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode position: %v", err))
		return
	}
	if err := validateLatLng(req.Lat, req.Lng); err != nil {
		c.Error(err)
		return
	}

	principal := middleware.PrincipalFrom(c)
	sample := models.LocationSample{
		Lat:      req.Lat,
		Lng:      req.Lng,
		Accuracy: req.Accuracy,
		Altitude: req.Altitude,
		Speed:    req.Speed,
		Heading:  req.Heading,
	}
	if req.Timestamp != nil {
		sample.Timestamp = *req.Timestamp
	}

	saved, alerts, err := h.tracking.RecordPosition(c.Request.Context(), principal.UserID, sample, c.Query("session_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sample": saved, "alerts": alerts})
}

// GeolocationHistory handles GET /geolocation/history. Query by session_id
// (optional; scopes the result to one session) and limit (optional; caps
// the number of samples returned, newest first).
func (h *Handler) GeolocationHistory(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.Error(dberrors.InvalidRequest("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	samples, err := h.tracking.History(c.Request.Context(), principal.UserID, c.Query("session_id"), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"samples": samples})
}

// StartTrackingSession handles POST /geolocation/session/start.
func (h *Handler) StartTrackingSession(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	session, err := h.tracking.StartSession(c.Request.Context(), principal.UserID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// EndTrackingSession handles POST /geolocation/session/{id}/end.
func (h *Handler) EndTrackingSession(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	session, err := h.tracking.EndSession(c.Request.Context(), principal.UserID, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type pushSubscriptionRequest struct {
	Endpoint string            `json:"endpoint" binding:"required"`
	Keys     map[string]string `json:"keys"`
}

// Subscribe handles POST /geolocation/subscribe.
func (h *Handler) Subscribe(c *gin.Context) {
	var req pushSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode subscription: %v", err))
		return
	}

	principal := middleware.PrincipalFrom(c)
	sub := models.PushSubscription{UserID: principal.UserID, Endpoint: req.Endpoint, Keys: req.Keys}
	if err := h.subscriptions.UpsertSubscription(c.Request.Context(), sub); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "subscribed"})
}

// Unsubscribe handles DELETE /geolocation/subscribe.
func (h *Handler) Unsubscribe(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if err := h.subscriptions.DeleteSubscription(c.Request.Context(), principal.UserID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
}

// NearbyHotspots handles GET /geolocation/nearby-hotspots.
func (h *Handler) NearbyHotspots(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	lat, lng, err := parseLatLngQuery(c)
	if err != nil {
		c.Error(err)
		return
	}

	radiusKM := 5.0
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			c.Error(dberrors.InvalidRequest("radius_km must be a positive number"))
			return
		}
		radiusKM = parsed
	}

	hotspots, err := h.waypoints.NearbyHotspots(c.Request.Context(), principal.UserID, lat, lng, radiusKM)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hotspots": hotspots})
}

// CheckProximity handles POST /geolocation/check-proximity: a manual scan
// that does not journal a location sample, unlike RecordPosition.
func (h *Handler) CheckProximity(c *gin.Context) {
	var req recordPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode position: %v", err))
		return
	}
	if err := validateLatLng(req.Lat, req.Lng); err != nil {
		c.Error(err)
		return
	}

	principal := middleware.PrincipalFrom(c)
	alerts, err := h.tracking.CheckProximity(c.Request.Context(), principal.UserID, req.Lat, req.Lng)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func parseLatLngQuery(c *gin.Context) (lat, lng float64, err error) {
	lat, err = strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return 0, 0, dberrors.InvalidRequest("lat query parameter required")
	}
	lng, err = strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return 0, 0, dberrors.InvalidRequest("lng query parameter required")
	}
	if err := validateLatLng(lat, lng); err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}
