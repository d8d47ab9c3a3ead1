package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steeveross-eng/huntiq-telemetry/internal/api/middleware"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/realtime"
)

type createHeadingSessionRequest struct {
	Lat             float64 `json:"lat"`
	Lng             float64 `json:"lng"`
	HeadingDeg      float64 `json:"heading_deg"`
	ApertureDegrees float64 `json:"aperture_degrees"`
	RangeMeters     float64 `json:"range_meters"`
}

// CreateHeadingSession handles POST /live-heading/session.
func (h *Handler) CreateHeadingSession(c *gin.Context) {
	var req createHeadingSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode heading session: %v", err))
		return
	}
	if err := validateLatLng(req.Lat, req.Lng); err != nil {
		c.Error(err)
		return
	}
	if err := validateAperture(req.ApertureDegrees); err != nil {
		c.Error(err)
		return
	}
	if err := validateRange(req.RangeMeters); err != nil {
		c.Error(err)
		return
	}

	principal := middleware.PrincipalFrom(c)
	session, err := h.heading.Create(c.Request.Context(), principal.UserID, req.Lat, req.Lng, req.HeadingDeg, req.ApertureDegrees, req.RangeMeters)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

type updateHeadingPositionRequest struct {
	SessionID  string  `json:"session_id" binding:"required"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	HeadingDeg float64 `json:"heading_deg"`
}

// UpdateHeadingPosition handles POST /live-heading/position.
func (h *Handler) UpdateHeadingPosition(c *gin.Context) {
	var req updateHeadingPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode position update: %v", err))
		return
	}
	if err := validateLatLng(req.Lat, req.Lng); err != nil {
		c.Error(err)
		return
	}

	session, err := h.heading.UpdatePosition(c.Request.Context(), req.SessionID, req.Lat, req.Lng, req.HeadingDeg)
	if err != nil {
		c.Error(err)
		return
	}
	h.hub.PublishHeadingUpdate(req.SessionID, session)
	c.JSON(http.StatusOK, session)
}

type updateHeadingSettingsRequest struct {
	ApertureDegrees float64 `json:"aperture_degrees"`
	RangeMeters     float64 `json:"range_meters"`
}

// UpdateHeadingSettings handles POST /live-heading/session/{id}/settings.
func (h *Handler) UpdateHeadingSettings(c *gin.Context) {
	var req updateHeadingSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode settings update: %v", err))
		return
	}
	if err := validateAperture(req.ApertureDegrees); err != nil {
		c.Error(err)
		return
	}
	if err := validateRange(req.RangeMeters); err != nil {
		c.Error(err)
		return
	}

	sessionID := c.Param("id")
	session, err := h.heading.UpdateSettings(c.Request.Context(), sessionID, req.ApertureDegrees, req.RangeMeters)
	if err != nil {
		c.Error(err)
		return
	}
	h.hub.PublishHeadingUpdate(sessionID, session)
	c.JSON(http.StatusOK, session)
}

// PauseHeadingSession handles POST /live-heading/session/{id}/pause.
func (h *Handler) PauseHeadingSession(c *gin.Context) {
	session, err := h.heading.Pause(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ResumeHeadingSession handles POST /live-heading/session/{id}/resume.
func (h *Handler) ResumeHeadingSession(c *gin.Context) {
	session, err := h.heading.Resume(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetHeadingSession handles GET /live-heading/session/{id}.
func (h *Handler) GetHeadingSession(c *gin.Context) {
	session, err := h.heading.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// EndHeadingSession handles POST /live-heading/session/{id}/end.
func (h *Handler) EndHeadingSession(c *gin.Context) {
	summary, err := h.heading.End(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// HeadingSessionWS handles GET /live-heading/session/{id}/ws, upgrading the
// connection and subscribing it to the session's realtime topic.
func (h *Handler) HeadingSessionWS(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := h.heading.Get(c.Request.Context(), sessionID); err != nil {
		c.Error(err)
		return
	}
	upgradeAndServe(c, h.hub, realtime.HeadingTopic(sessionID))
}
