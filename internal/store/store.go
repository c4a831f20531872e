package store

import (
	"context"
	"encoding/json"
	"time"
)

// Message is a persisted chat message. Messages are immutable: they are
// created on send and never updated or deleted.
type Message struct {
	ID        string
	RoomID    string
	SenderID  string
	Content   string
	CreatedAt time.Time
}

// Notification is a persisted per-user notification. Only the Read flag
// ever changes after creation.
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Payload   json.RawMessage // nullable, opaque to the server
	Read      bool
	CreatedAt time.Time
}

// ListMessagesDefaultLimit and ListMessagesMaxLimit bound message history
// queries.
const (
	ListMessagesDefaultLimit = 50
	ListMessagesMaxLimit     = 100
)

// MessageStore handles message persistence. Rooms are identified by opaque
// strings; there is no separate room entity.
type MessageStore interface {
	// AppendMessage persists msg. The caller assigns ID and CreatedAt.
	AppendMessage(ctx context.Context, msg *Message) error

	// ListMessages returns up to limit messages for a room, ascending by
	// created_at with insertion order breaking ties.
	ListMessages(ctx context.Context, roomID string, limit int) ([]*Message, error)
}

// NotificationStore handles notification persistence.
type NotificationStore interface {
	// CreateNotification persists n with Read=false.
	CreateNotification(ctx context.Context, n *Notification) error

	// ListUnreadNotifications returns a user's unread notifications,
	// newest first.
	ListUnreadNotifications(ctx context.Context, userID string) ([]*Notification, error)

	// AcknowledgeNotification sets read=true and returns the updated
	// record. Acknowledging an already-read record succeeds. Unknown ids
	// return an error wrapping sql.ErrNoRows.
	AcknowledgeNotification(ctx context.Context, id string) (*Notification, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	MessageStore
	NotificationStore

	// Close closes the underlying database connection.
	Close() error
}
