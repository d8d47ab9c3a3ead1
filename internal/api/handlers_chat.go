package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
)

type sendMessageRequest struct {
	MessageType string               `json:"message_type" binding:"required"`
	Content     string               `json:"content"`
	Location    *models.ChatLocation `json:"location,omitempty"`
}

// SendMessage handles POST /chat/{group_id}/message/{user_id}.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode message: %v", err))
		return
	}

	groupID, userID := c.Param("group_id"), c.Param("user_id")
	if err := h.authorizer.RequireMembership(c.Request.Context(), userID, groupID); err != nil {
		c.Error(err)
		return
	}

	msg, err := h.chat.Post(c.Request.Context(), groupID, userID, models.MessageType(req.MessageType), req.Content, req.Location, nil)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

type sendAlertRequest struct {
	AlertType string               `json:"alert_type" binding:"required"`
	Content   string               `json:"content"`
	Location  *models.ChatLocation `json:"location,omitempty"`
}

// SendAlert handles POST /chat/{group_id}/alert/{user_id}.
func (h *Handler) SendAlert(c *gin.Context) {
	var req sendAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(dberrors.InvalidRequest("decode alert: %v", err))
		return
	}

	groupID, userID := c.Param("group_id"), c.Param("user_id")
	if err := h.authorizer.RequireMembership(c.Request.Context(), userID, groupID); err != nil {
		c.Error(err)
		return
	}

	alertType := models.GroupAlertType(req.AlertType)
	msg, err := h.chat.Post(c.Request.Context(), groupID, userID, models.MessageAlert, req.Content, req.Location, &alertType)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// ChatHistory handles GET /chat/{group_id}/history.
func (h *Handler) ChatHistory(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	messages, err := h.chat.History(c.Request.Context(), c.Param("group_id"), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// MarkChatRead handles POST /chat/{group_id}/read/{user_id}.
func (h *Handler) MarkChatRead(c *gin.Context) {
	if err := h.chat.MarkRead(c.Request.Context(), c.Param("group_id"), c.Param("user_id"), nil); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// ChatUnreadCount handles GET /chat/{group_id}/unread/{user_id}.
func (h *Handler) ChatUnreadCount(c *gin.Context) {
	count, err := h.chat.UnreadCount(c.Request.Context(), c.Param("group_id"), c.Param("user_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
