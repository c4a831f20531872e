package core

import (
	"sync"

	"github.com/tradegig/marketfeed/internal/store"
)

// subscriptionBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind than this drops events; consumers dedup by id, so
// delivery is at-least-once overall, not guaranteed.
const subscriptionBuffer = 16

// Broker fans newly appended messages out to per-room subscribers. It is
// the in-process form of the row-insert subscription the feeds consume.
type Broker struct {
	mu    sync.Mutex
	rooms map[string]map[*Subscription]struct{}
}

// NewBroker constructs a broker with no subscribers.
func NewBroker() *Broker {
	return &Broker{
		rooms: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a subscriber for inserts into a single room. Only
// messages whose RoomID matches are ever delivered.
func (b *Broker) Subscribe(roomID string) *Subscription {
	sub := &Subscription{
		broker: b,
		roomID: roomID,
		ch:     make(chan *store.Message, subscriptionBuffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.rooms[roomID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		b.rooms[roomID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Publish delivers msg to every live subscriber of its room. Delivery
// happens under the broker lock, so a cancelled subscription never
// receives another message.
func (b *Broker) Publish(msg *store.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.rooms[msg.RoomID] {
		select {
		case sub.ch <- msg:
		default:
			// Drop if slow consumer.
		}
	}
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.rooms[sub.roomID]
	if !ok {
		return
	}
	if _, exists := subs[sub]; !exists {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.rooms, sub.roomID)
	}
	close(sub.ch)
}

// Subscription is a cancellable stream of messages inserted into one room.
type Subscription struct {
	broker *Broker
	roomID string
	ch     chan *store.Message
	once   sync.Once
}

// Messages returns the delivery channel. It is closed by Cancel.
func (s *Subscription) Messages() <-chan *store.Message {
	return s.ch
}

// Cancel tears the subscription down. After Cancel returns no further
// messages are delivered and the channel is closed. Safe to call twice.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.broker.remove(s)
	})
}
