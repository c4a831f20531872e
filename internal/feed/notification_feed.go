package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tradegig/marketfeed/internal/store"
)

// DefaultPollInterval is how often the notification feed re-fetches the
// unread set when the config does not override it.
const DefaultPollInterval = 5 * time.Second

// NotificationService is what the notification feed needs from the
// notification layer.
type NotificationService interface {
	ListUnread(ctx context.Context, userID string) ([]*store.Notification, error)
	Acknowledge(ctx context.Context, id string) (*store.Notification, error)
}

// NotificationFeed maintains a near-real-time unread set for one user by
// polling on a fixed interval. Each successful poll replaces the visible
// set wholesale; a failed poll is swallowed and the set keeps its
// last-known value until the next tick.
type NotificationFeed struct {
	svc      NotificationService
	userID   string
	interval time.Duration
	log      *zerolog.Logger

	mu      sync.Mutex
	visible []*store.Notification
	// gen counts local mutations. A poll started before the latest
	// mutation is stale and its result is discarded, so a wholesale
	// replace cannot resurrect an acknowledged notification.
	gen    uint64
	active bool

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

// StartNotificationFeed activates the feed: one immediate fetch, then one
// per interval until Stop.
func StartNotificationFeed(ctx context.Context, svc NotificationService, userID string, interval time.Duration, logger *zerolog.Logger) *NotificationFeed {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	f := &NotificationFeed{
		svc:      svc,
		userID:   userID,
		interval: interval,
		log:      logger,
		active:   true,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	go f.run(ctx)
	return f
}

func (f *NotificationFeed) run(ctx context.Context) {
	defer close(f.done)

	f.poll(ctx)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			f.poll(ctx)
		case <-f.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (f *NotificationFeed) poll(ctx context.Context) {
	f.mu.Lock()
	startGen := f.gen
	f.mu.Unlock()

	ns, err := f.svc.ListUnread(ctx, f.userID)
	if err != nil {
		// Swallowed: the next tick is the retry.
		f.log.Warn().Err(err).Str("user_id", f.userID).Msg("notification poll failed")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active || f.gen != startGen {
		// Torn down, or a local mutation landed while the poll was in
		// flight. Discard the stale result.
		return
	}
	f.visible = ns
}

// Notifications returns a snapshot of the visible unread set.
func (f *NotificationFeed) Notifications() []*store.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*store.Notification, len(f.visible))
	copy(out, f.visible)
	return out
}

// MarkAsRead acknowledges a notification and removes it from the visible
// set immediately, without waiting for the next poll. On failure the error
// propagates and the set is left unchanged.
func (f *NotificationFeed) MarkAsRead(ctx context.Context, id string) error {
	if _, err := f.svc.Acknowledge(ctx, id); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	kept := f.visible[:0]
	for _, n := range f.visible {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	f.visible = kept
	return nil
}

// Stop deactivates the feed and halts polling. An in-flight poll is not
// aborted but its result is discarded.
func (f *NotificationFeed) Stop() {
	f.once.Do(func() {
		f.mu.Lock()
		f.active = false
		f.mu.Unlock()

		close(f.stop)
		<-f.done
	})
}
