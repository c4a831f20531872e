package feed

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/tradegig/marketfeed/internal/core"
)

// Session carries the signed-in user's identity and the shared services
// both feed kinds depend on. It is constructed explicitly on sign-in and
// closed on sign-out; everything it opened is torn down with it.
type Session struct {
	userID       string
	messages     MessageService
	notification NotificationService
	pollInterval time.Duration
	log          *zerolog.Logger

	open          []*MessageFeed
	notifications *NotificationFeed
}

// NewSession binds a user id to the message and notification services.
func NewSession(userID string, msgs MessageService, notifs NotificationService, pollInterval time.Duration, logger *zerolog.Logger) (*Session, error) {
	if userID == "" {
		return nil, core.ValidationError("missing user_id")
	}
	return &Session{
		userID:       userID,
		messages:     msgs,
		notification: notifs,
		pollInterval: pollInterval,
		log:          logger,
	}, nil
}

// UserID returns the session's user id.
func (s *Session) UserID() string {
	return s.userID
}

// OpenRoom activates a message feed for a room. The feed is owned by the
// session and closed with it.
func (s *Session) OpenRoom(ctx context.Context, roomID string) (*MessageFeed, error) {
	if roomID == "" {
		return nil, core.ValidationError("missing room_id")
	}
	f, err := OpenMessageFeed(ctx, s.messages, roomID, s.log)
	if err != nil {
		return nil, err
	}
	s.open = append(s.open, f)
	return f, nil
}

// Send appends a message to a room as the session user.
func (s *Session) Send(ctx context.Context, roomID, content string) error {
	_, err := s.messages.Append(ctx, roomID, s.userID, content)
	return err
}

// Notifications starts (once) and returns the session's notification feed.
func (s *Session) Notifications(ctx context.Context) *NotificationFeed {
	if s.notifications == nil {
		s.notifications = StartNotificationFeed(ctx, s.notification, s.userID, s.pollInterval, s.log)
	}
	return s.notifications
}

// Close tears down every feed the session opened. Called on sign-out.
func (s *Session) Close() {
	for _, f := range s.open {
		f.Close()
	}
	s.open = nil
	if s.notifications != nil {
		s.notifications.Stop()
		s.notifications = nil
	}
}
