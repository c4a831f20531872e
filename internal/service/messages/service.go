package messages

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/tradegig/marketfeed/internal/core"
	"github.com/tradegig/marketfeed/internal/store"
	"github.com/tradegig/marketfeed/internal/utils"
)

// Service validates and persists chat messages and publishes every
// accepted append to the room's live subscribers.
type Service struct {
	store  store.MessageStore
	broker *core.Broker
	log    *zerolog.Logger
}

// NewService creates a new message service.
func NewService(st store.MessageStore, broker *core.Broker, logger *zerolog.Logger) *Service {
	return &Service{
		store:  st,
		broker: broker,
		log:    logger,
	}
}

// Append validates and stores a message, then fans it out to the room's
// subscribers. The id and creation time are assigned here.
func (s *Service) Append(ctx context.Context, roomID, senderID, content string) (*store.Message, error) {
	if roomID == "" {
		return nil, core.ValidationError("missing room_id")
	}
	if senderID == "" {
		return nil, core.ValidationError("missing sender_id")
	}
	if content == "" {
		return nil, core.ValidationError("missing content")
	}

	msg := &store.Message{
		ID:        utils.NewID(),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.AppendMessage(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("room_id", roomID).Msg("failed to append message")
		return nil, core.TransportError("failed to save message", err)
	}

	s.broker.Publish(msg)

	s.log.Debug().Str("room_id", roomID).Str("message_id", msg.ID).Msg("message appended")
	return msg, nil
}

// List returns a room's history ascending by creation time. A zero or
// negative limit falls back to the default; requests above the ceiling are
// clamped.
func (s *Service) List(ctx context.Context, roomID string, limit int) ([]*store.Message, error) {
	if roomID == "" {
		return nil, core.ValidationError("missing room_id")
	}
	if limit <= 0 {
		limit = store.ListMessagesDefaultLimit
	}
	if limit > store.ListMessagesMaxLimit {
		limit = store.ListMessagesMaxLimit
	}

	msgs, err := s.store.ListMessages(ctx, roomID, limit)
	if err != nil {
		s.log.Error().Err(err).Str("room_id", roomID).Msg("failed to list messages")
		return nil, core.TransportError("failed to load messages", err)
	}
	return msgs, nil
}

// Subscribe opens a live stream of messages appended to one room.
func (s *Service) Subscribe(roomID string) *core.Subscription {
	return s.broker.Subscribe(roomID)
}
