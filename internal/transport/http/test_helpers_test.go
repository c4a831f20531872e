package http

import (
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/tradegig/marketfeed/internal/config"
	"github.com/tradegig/marketfeed/internal/core"
	"github.com/tradegig/marketfeed/internal/log"
	"github.com/tradegig/marketfeed/internal/service/messages"
	"github.com/tradegig/marketfeed/internal/service/notifications"
	"github.com/tradegig/marketfeed/internal/store/sqlite"
)

// newTestServer builds a server over an in-memory database.
func newTestServer(t *testing.T, adminKey string) *stdhttp.Server {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		AdminKey:          adminKey,
	}

	logger := log.Disabled()
	broker := core.NewBroker()
	messageService := messages.NewService(st, broker, logger)
	notificationService := notifications.NewService(st, logger)

	return NewServer(messageService, notificationService, &cfg, logger)
}

// Response envelopes mirror the API's JSON wrappers.
type messageEnvelope struct {
	Message MessageResponse `json:"message"`
}

type messagesEnvelope struct {
	Messages []MessageResponse `json:"messages"`
}

type notificationEnvelope struct {
	Notification *NotificationResponse `json:"notification"`
}

type notificationsEnvelope struct {
	Notifications []NotificationResponse `json:"notifications"`
}
