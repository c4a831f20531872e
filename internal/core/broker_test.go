package core

import (
	"testing"
	"time"

	"github.com/tradegig/marketfeed/internal/store"
)

func mustReceive(t *testing.T, sub *Subscription) *store.Message {
	t.Helper()
	select {
	case msg, ok := <-sub.Messages():
		if !ok {
			t.Fatal("subscription channel closed")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func mustNotReceive(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case msg, ok := <-sub.Messages():
		if ok {
			t.Fatalf("unexpected message delivered: %+v", msg)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerDeliversToMatchingRoomOnly(t *testing.T) {
	b := NewBroker()

	sub1 := b.Subscribe("r1")
	defer sub1.Cancel()
	sub2 := b.Subscribe("r2")
	defer sub2.Cancel()

	b.Publish(&store.Message{ID: "m1", RoomID: "r1", SenderID: "u1", Content: "hi"})

	got := mustReceive(t, sub1)
	if got.ID != "m1" || got.RoomID != "r1" {
		t.Fatalf("unexpected message: %+v", got)
	}
	mustNotReceive(t, sub2)
}

func TestBrokerFansOutToAllRoomSubscribers(t *testing.T) {
	b := NewBroker()

	subA := b.Subscribe("r1")
	defer subA.Cancel()
	subB := b.Subscribe("r1")
	defer subB.Cancel()

	b.Publish(&store.Message{ID: "m1", RoomID: "r1"})

	if got := mustReceive(t, subA); got.ID != "m1" {
		t.Fatalf("subscriber A: unexpected message %+v", got)
	}
	if got := mustReceive(t, subB); got.ID != "m1" {
		t.Fatalf("subscriber B: unexpected message %+v", got)
	}
}

func TestBrokerCancelStopsDelivery(t *testing.T) {
	b := NewBroker()

	sub := b.Subscribe("r1")
	sub.Cancel()
	// Cancel twice must be safe.
	sub.Cancel()

	b.Publish(&store.Message{ID: "m1", RoomID: "r1"})

	if _, ok := <-sub.Messages(); ok {
		t.Fatal("expected closed channel after cancel")
	}
}

func TestBrokerSlowConsumerDrops(t *testing.T) {
	b := NewBroker()

	sub := b.Subscribe("r1")
	defer sub.Cancel()

	// Publish more than the buffer without draining; Publish must not
	// block and the overflow is dropped.
	for i := 0; i < subscriptionBuffer*2; i++ {
		b.Publish(&store.Message{ID: string(rune('a' + i)), RoomID: "r1"})
	}

	received := 0
	for {
		select {
		case <-sub.Messages():
			received++
			continue
		default:
		}
		break
	}

	if received != subscriptionBuffer {
		t.Fatalf("expected %d buffered messages, got %d", subscriptionBuffer, received)
	}
}
