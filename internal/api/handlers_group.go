package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/steeveross-eng/huntiq-telemetry/internal/api/middleware"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/realtime"
)

type updateGroupPositionRequest struct {
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Heading *float64 `json:"heading,omitempty"`
	Status  string   `json:"status,omitempty"`
}

// UpdateGroupPosition handles POST /tracking/group/{group_id}/positions.
func (h *Handler) UpdateGroupPosition(c *gin.Context) {
	var req updateGroupPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode group position: %v", err))
		return
	}
	if err := validateLatLng(req.Lat, req.Lng); err != nil {
		c.Error(err)
		return
	}

	principal := middleware.PrincipalFrom(c)
	groupID := c.Param("group_id")
	if err := h.authorizer.RequireMembership(c.Request.Context(), principal.UserID, groupID); err != nil {
		c.Error(err)
		return
	}

	share, err := h.groupshare.UpdatePosition(c.Request.Context(), groupID, principal.UserID, req.Lat, req.Lng, req.Heading, req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	h.hub.PublishGroupSnapshot(groupID, share)
	c.JSON(http.StatusOK, share)
}

// GroupPositions handles GET /tracking/group/{group_id}/positions.
func (h *Handler) GroupPositions(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	groupID := c.Param("group_id")
	if err := h.authorizer.RequireMembership(c.Request.Context(), principal.UserID, groupID); err != nil {
		c.Error(err)
		return
	}

	shares, err := h.groupshare.ListGroupPositions(c.Request.Context(), groupID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"positions": shares})
}

// StopSharingGroupPosition handles DELETE /tracking/group/{group_id}/positions.
func (h *Handler) StopSharingGroupPosition(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	groupID := c.Param("group_id")
	if err := h.groupshare.StopSharing(c.Request.Context(), groupID, principal.UserID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// GroupPositionsWS handles GET /tracking/group/{group_id}/ws.
func (h *Handler) GroupPositionsWS(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	groupID := c.Param("group_id")
	if err := h.authorizer.RequireMembership(c.Request.Context(), principal.UserID, groupID); err != nil {
		c.Error(err)
		return
	}
	upgradeAndServe(c, h.hub, realtime.GroupTopic(groupID))
}
