package feed

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/tradegig/marketfeed/internal/core"
	"github.com/tradegig/marketfeed/internal/store"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// stubMessageService backs message feed tests with an in-memory history
// and a real broker, so the list/subscription race behaves like the real
// service.
type stubMessageService struct {
	broker *core.Broker

	mu      sync.Mutex
	history []*store.Message
	nextID  int
}

func newStubMessageService() *stubMessageService {
	return &stubMessageService{broker: core.NewBroker()}
}

func (s *stubMessageService) seed(msg *store.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, msg)
}

func (s *stubMessageService) List(_ context.Context, roomID string, _ int) ([]*store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*store.Message
	for _, msg := range s.history {
		if msg.RoomID == roomID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (s *stubMessageService) Append(_ context.Context, roomID, senderID, content string) (*store.Message, error) {
	if content == "" {
		return nil, core.ValidationError("missing content")
	}

	s.mu.Lock()
	s.nextID++
	msg := &store.Message{
		ID:        "m" + strconv.Itoa(s.nextID),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.history = append(s.history, msg)
	s.mu.Unlock()

	s.broker.Publish(msg)
	return msg, nil
}

func (s *stubMessageService) Subscribe(roomID string) *core.Subscription {
	return s.broker.Subscribe(roomID)
}

// stubNotificationService backs notification feed tests. listGate, when
// set, blocks ListUnread until released so a poll can be held in flight.
type stubNotificationService struct {
	mu       sync.Mutex
	unread   map[string]*store.Notification
	listErr  error
	ackErr   error
	listGate chan struct{}
}

func newStubNotificationService() *stubNotificationService {
	return &stubNotificationService{unread: make(map[string]*store.Notification)}
}

func (s *stubNotificationService) seed(n *store.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread[n.ID] = n
}

func (s *stubNotificationService) ListUnread(_ context.Context, userID string) ([]*store.Notification, error) {
	// Snapshot before blocking on the gate, so a held poll carries the
	// data as it was when the poll started.
	s.mu.Lock()
	listErr := s.listErr
	gate := s.listGate
	var out []*store.Notification
	for _, n := range s.unread {
		if n.UserID == userID && !n.Read {
			row := *n
			out = append(out, &row)
		}
	}
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if listErr != nil {
		return nil, listErr
	}
	return out, nil
}

func (s *stubNotificationService) Acknowledge(_ context.Context, id string) (*store.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ackErr != nil {
		return nil, s.ackErr
	}
	n, ok := s.unread[id]
	if !ok {
		return nil, core.NotFoundError("notification not found")
	}
	n.Read = true
	return n, nil
}

func (s *stubNotificationService) setListErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}
