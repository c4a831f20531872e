package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tradegig/marketfeed/internal/config"
	"github.com/tradegig/marketfeed/internal/service/messages"
	"github.com/tradegig/marketfeed/internal/service/notifications"
)

// NewServer builds the HTTP server with all routes registered.
func NewServer(msgs *messages.Service, notifs *notifications.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	messageHandlers := NewMessageHandlers(msgs, logger)
	notificationHandlers := NewNotificationHandlers(notifs, logger)
	streamHandlers := NewStreamHandlers(msgs, logger)

	api := router.Group("/api")
	{
		api.GET("/messages", messageHandlers.ListMessages)
		api.POST("/messages", messageHandlers.SendMessage)
		api.GET("/notifications", notificationHandlers.ListUnread)
		api.POST("/notifications", AdminKeyMiddleware(cfg.AdminKey, logger), notificationHandlers.CreateNotification)
		api.PATCH("/notifications", notificationHandlers.Acknowledge)
		api.GET("/rooms/:room_id/stream", streamHandlers.StreamRoom)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
