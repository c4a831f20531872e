package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tradegig/marketfeed/internal/core"
	"github.com/tradegig/marketfeed/internal/log"
	"github.com/tradegig/marketfeed/internal/store"
)

func TestNotificationFeedInitialPoll(t *testing.T) {
	svc := newStubNotificationService()
	svc.seed(&store.Notification{ID: "n1", UserID: "u1", Type: "new_application"})
	svc.seed(&store.Notification{ID: "n2", UserID: "u1", Type: "new_message"})
	svc.seed(&store.Notification{ID: "x1", UserID: "u2", Type: "new_message"})

	f := StartNotificationFeed(context.Background(), svc, "u1", time.Hour, log.Disabled())
	defer f.Stop()

	// One immediate fetch on activation, before any interval elapses.
	waitFor(t, func() bool { return len(f.Notifications()) == 2 }, "initial poll never applied")
}

func TestNotificationFeedPollReplacesWholesale(t *testing.T) {
	svc := newStubNotificationService()
	svc.seed(&store.Notification{ID: "n1", UserID: "u1", Type: "new_message"})

	f := StartNotificationFeed(context.Background(), svc, "u1", 20*time.Millisecond, log.Disabled())
	defer f.Stop()

	waitFor(t, func() bool { return len(f.Notifications()) == 1 }, "initial poll never applied")

	// A notification acknowledged through another code path disappears on
	// the next tick; a new one appears.
	if _, err := svc.Acknowledge(context.Background(), "n1"); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	svc.seed(&store.Notification{ID: "n2", UserID: "u1", Type: "new_application"})

	waitFor(t, func() bool {
		ns := f.Notifications()
		return len(ns) == 1 && ns[0].ID == "n2"
	}, "poll did not replace the visible set")
}

func TestMarkAsReadRemovesImmediately(t *testing.T) {
	svc := newStubNotificationService()
	svc.seed(&store.Notification{ID: "n1", UserID: "u1", Type: "new_message"})
	svc.seed(&store.Notification{ID: "n2", UserID: "u1", Type: "new_application"})

	// Interval long enough that no tick lands during the test: removal
	// must not wait for a poll.
	f := StartNotificationFeed(context.Background(), svc, "u1", time.Hour, log.Disabled())
	defer f.Stop()

	waitFor(t, func() bool { return len(f.Notifications()) == 2 }, "initial poll never applied")

	if err := f.MarkAsRead(context.Background(), "n1"); err != nil {
		t.Fatalf("mark as read: %v", err)
	}

	ns := f.Notifications()
	if len(ns) != 1 || ns[0].ID != "n2" {
		t.Fatalf("expected only n2 visible immediately, got %v", ns)
	}
}

func TestMarkAsReadFailureLeavesSet(t *testing.T) {
	svc := newStubNotificationService()
	svc.seed(&store.Notification{ID: "n1", UserID: "u1", Type: "new_message"})

	f := StartNotificationFeed(context.Background(), svc, "u1", time.Hour, log.Disabled())
	defer f.Stop()

	waitFor(t, func() bool { return len(f.Notifications()) == 1 }, "initial poll never applied")

	svc.mu.Lock()
	svc.ackErr = core.TransportError("boom", errors.New("boom"))
	svc.mu.Unlock()

	if err := f.MarkAsRead(context.Background(), "n1"); err == nil {
		t.Fatal("expected error from failed acknowledge")
	}
	if ns := f.Notifications(); len(ns) != 1 {
		t.Fatalf("visible set changed after failed acknowledge: %v", ns)
	}
}

func TestNotificationFeedPollErrorKeepsLastKnown(t *testing.T) {
	svc := newStubNotificationService()
	svc.seed(&store.Notification{ID: "n1", UserID: "u1", Type: "new_message"})

	f := StartNotificationFeed(context.Background(), svc, "u1", 20*time.Millisecond, log.Disabled())
	defer f.Stop()

	waitFor(t, func() bool { return len(f.Notifications()) == 1 }, "initial poll never applied")

	svc.setListErr(errors.New("db down"))
	time.Sleep(100 * time.Millisecond)

	if ns := f.Notifications(); len(ns) != 1 || ns[0].ID != "n1" {
		t.Fatalf("failed polls must keep the last-known set, got %v", ns)
	}
}

func TestNotificationFeedDiscardsStalePoll(t *testing.T) {
	svc := newStubNotificationService()
	svc.seed(&store.Notification{ID: "n1", UserID: "u1", Type: "new_message"})

	gate := make(chan struct{})
	svc.mu.Lock()
	svc.listGate = gate
	svc.mu.Unlock()

	f := StartNotificationFeed(context.Background(), svc, "u1", time.Hour, log.Disabled())
	defer f.Stop()

	// The initial poll is in flight, holding a snapshot that still
	// contains n1. Acknowledge locally while it hangs.
	if err := f.MarkAsRead(context.Background(), "n1"); err != nil {
		t.Fatalf("mark as read: %v", err)
	}

	close(gate)
	time.Sleep(50 * time.Millisecond)

	// The stale result must not resurrect the acknowledged notification.
	if ns := f.Notifications(); len(ns) != 0 {
		t.Fatalf("stale poll resurrected acknowledged notification: %v", ns)
	}
}

func TestNotificationFeedStopDiscardsInFlightPoll(t *testing.T) {
	svc := newStubNotificationService()
	svc.seed(&store.Notification{ID: "n1", UserID: "u1", Type: "new_message"})

	gate := make(chan struct{})
	svc.mu.Lock()
	svc.listGate = gate
	svc.mu.Unlock()

	f := StartNotificationFeed(context.Background(), svc, "u1", time.Hour, log.Disabled())

	stopped := make(chan struct{})
	go func() {
		f.Stop()
		close(stopped)
	}()

	time.Sleep(20 * time.Millisecond)
	close(gate)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop never completed")
	}

	if ns := f.Notifications(); len(ns) != 0 {
		t.Fatalf("poll result applied after stop: %v", ns)
	}
}
