package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tradegig/marketfeed/internal/core"
	"github.com/tradegig/marketfeed/internal/store"
)

// MessageService is what the message feed needs from the message layer.
type MessageService interface {
	List(ctx context.Context, roomID string, limit int) ([]*store.Message, error)
	Append(ctx context.Context, roomID, senderID, content string) (*store.Message, error)
	Subscribe(roomID string) *core.Subscription
}

// MessageFeed is a live, ordered view of one room's messages: an initial
// bulk fetch merged with a subscription to newly appended rows. Messages
// are appended to the tail in delivery order and never reordered.
type MessageFeed struct {
	svc    MessageService
	roomID string
	log    *zerolog.Logger

	mu      sync.Mutex
	visible []*store.Message
	seen    map[string]struct{}
	closed  bool

	sub  *core.Subscription
	once sync.Once
	done chan struct{}
}

// OpenMessageFeed activates a feed for roomID. The subscription is opened
// before the history fetch, so a message racing the fetch arrives on both
// paths and is collapsed by id.
func OpenMessageFeed(ctx context.Context, svc MessageService, roomID string, logger *zerolog.Logger) (*MessageFeed, error) {
	f := &MessageFeed{
		svc:    svc,
		roomID: roomID,
		log:    logger,
		seen:   make(map[string]struct{}),
		sub:    svc.Subscribe(roomID),
		done:   make(chan struct{}),
	}

	history, err := svc.List(ctx, roomID, store.ListMessagesMaxLimit)
	if err != nil {
		f.sub.Cancel()
		return nil, err
	}
	for _, msg := range history {
		f.seen[msg.ID] = struct{}{}
		f.visible = append(f.visible, msg)
	}

	go f.run()
	return f, nil
}

func (f *MessageFeed) run() {
	for {
		select {
		case msg, ok := <-f.sub.Messages():
			if !ok {
				return
			}
			f.apply(msg)
		case <-f.done:
			return
		}
	}
}

// apply appends a delivered message if it belongs to this room and has not
// been seen. Dedup by id is the only race-safety mechanism; delivery is
// at-least-once.
func (f *MessageFeed) apply(msg *store.Message) {
	if msg.RoomID != f.roomID {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if _, dup := f.seen[msg.ID]; dup {
		return
	}
	f.seen[msg.ID] = struct{}{}
	f.visible = append(f.visible, msg)
}

// Messages returns a snapshot of the visible sequence.
func (f *MessageFeed) Messages() []*store.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*store.Message, len(f.visible))
	copy(out, f.visible)
	return out
}

// Send appends a message to the room. The feed does not insert the result
// locally; the echo is expected to arrive via the subscription, so the
// sender may briefly observe a gap if delivery lags. Validation errors
// surface to the caller.
func (f *MessageFeed) Send(ctx context.Context, senderID, content string) (*store.Message, error) {
	return f.svc.Append(ctx, f.roomID, senderID, content)
}

// Close cancels the subscription. Nothing is applied to the visible
// sequence after Close returns. Safe to call twice.
func (f *MessageFeed) Close() {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()

		f.sub.Cancel()
		close(f.done)
	})
}
