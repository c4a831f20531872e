package notifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/tradegig/marketfeed/internal/core"
	"github.com/tradegig/marketfeed/internal/store"
	"github.com/tradegig/marketfeed/internal/utils"
)

// Service validates and persists per-user notifications. Producing actions
// (a new gig application, a new message) create records here; the only
// mutation ever applied afterwards is the read acknowledgment.
type Service struct {
	store store.NotificationStore
	log   *zerolog.Logger
}

// NewService creates a new notification service.
func NewService(st store.NotificationStore, logger *zerolog.Logger) *Service {
	return &Service{
		store: st,
		log:   logger,
	}
}

// Create validates and stores a notification. payload is opaque structured
// data and may be nil.
func (s *Service) Create(ctx context.Context, userID, typ string, payload json.RawMessage) (*store.Notification, error) {
	if userID == "" {
		return nil, core.ValidationError("missing user_id")
	}
	if typ == "" {
		return nil, core.ValidationError("missing type")
	}

	n := &store.Notification{
		ID:        utils.NewID(),
		UserID:    userID,
		Type:      typ,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateNotification(ctx, n); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to create notification")
		return nil, core.TransportError("failed to save notification", err)
	}

	s.log.Debug().Str("user_id", userID).Str("type", typ).Str("notification_id", n.ID).Msg("notification created")
	return n, nil
}

// ListUnread returns a user's unread notifications, newest first.
func (s *Service) ListUnread(ctx context.Context, userID string) ([]*store.Notification, error) {
	if userID == "" {
		return nil, core.ValidationError("missing user_id")
	}

	ns, err := s.store.ListUnreadNotifications(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to list notifications")
		return nil, core.TransportError("failed to load notifications", err)
	}
	return ns, nil
}

// Acknowledge marks a notification read and returns the updated record.
// Re-acknowledging an already-read notification succeeds; an unknown id is
// a not-found error and mutates nothing.
func (s *Service) Acknowledge(ctx context.Context, id string) (*store.Notification, error) {
	if id == "" {
		return nil, core.ValidationError("missing notification_id")
	}

	n, err := s.store.AcknowledgeNotification(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NotFoundError("notification not found")
		}
		s.log.Error().Err(err).Str("notification_id", id).Msg("failed to acknowledge notification")
		return nil, core.TransportError("failed to acknowledge notification", err)
	}
	return n, nil
}
