package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tradegig/marketfeed/internal/core"
	"github.com/tradegig/marketfeed/internal/service/notifications"
)

// NotificationHandlers provides HTTP handlers for notification endpoints.
type NotificationHandlers struct {
	svc *notifications.Service
	log *zerolog.Logger
}

// NewNotificationHandlers creates a new notification handlers instance.
func NewNotificationHandlers(svc *notifications.Service, logger *zerolog.Logger) *NotificationHandlers {
	return &NotificationHandlers{
		svc: svc,
		log: logger,
	}
}

// CreateNotificationRequest represents the producer request body.
type CreateNotificationRequest struct {
	UserID  string          `json:"user_id" binding:"required"`
	Type    string          `json:"type" binding:"required"`
	Payload json.RawMessage `json:"payload"`
}

// AcknowledgeRequest represents the read-acknowledgment request body.
type AcknowledgeRequest struct {
	NotificationID string `json:"notification_id" binding:"required"`
}

// ListUnread handles unread notification fetches.
// GET /api/notifications?user_id=<id>
func (h *NotificationHandlers) ListUnread(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing user_id"})
		return
	}

	ns, err := h.svc.ListUnread(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notificationsToResponse(ns)})
}

// CreateNotification handles producer-side notification creation.
// POST /api/notifications
func (h *NotificationHandlers) CreateNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid create notification request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing fields"})
		return
	}

	n, err := h.svc.Create(c.Request.Context(), req.UserID, req.Type, req.Payload)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"notification": notificationToResponse(n)})
}

// Acknowledge handles read acknowledgments. An unknown id yields a null
// notification rather than an error, matching what feed clients expect.
// PATCH /api/notifications
func (h *NotificationHandlers) Acknowledge(c *gin.Context) {
	var req AcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid acknowledge request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing notification_id"})
		return
	}

	n, err := h.svc.Acknowledge(c.Request.Context(), req.NotificationID)
	if err != nil {
		if core.IsNotFound(err) {
			c.JSON(http.StatusOK, gin.H{"notification": nil})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notification": notificationToResponse(n)})
}

func (h *NotificationHandlers) writeError(c *gin.Context, err error) {
	if core.IsValidation(err) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("notification request failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
