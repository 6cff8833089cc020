package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/A3Manav/jewellery-wishlist-service/internal/event"
)

// Notification levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notifier delivers one transient notification to a device session.
// Delivery is best-effort; a dropped notification never fails the operation
// that produced it.
type Notifier interface {
	Notify(ctx context.Context, sessionID, level, message string)
}

// EventNotifier publishes notifications as Kafka events for the storefront
// to render.
type EventNotifier struct {
	producer *event.Producer
	logger   *slog.Logger
}

// NewEventNotifier creates a Kafka-backed notifier.
func NewEventNotifier(producer *event.Producer, logger *slog.Logger) *EventNotifier {
	return &EventNotifier{producer: producer, logger: logger}
}

// Notify publishes the notification, logging publish failures.
func (n *EventNotifier) Notify(ctx context.Context, sessionID, level, message string) {
	if err := n.producer.PublishNotification(ctx, sessionID, level, message); err != nil {
		n.logger.WarnContext(ctx, "failed to publish notification",
			slog.String("session_id", sessionID),
			slog.String("message", message),
			slog.String("error", err.Error()),
		)
	}
}

// Deduper suppresses repeats of the same (session, message) pair within a
// window, so rapid duplicate triggers produce one notification instead of a
// burst.
type Deduper struct {
	inner  Notifier
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[dedupeKey]time.Time
}

type dedupeKey struct {
	sessionID string
	message   string
}

// NewDeduper wraps a notifier with duplicate suppression.
func NewDeduper(inner Notifier, window time.Duration) *Deduper {
	return &Deduper{
		inner:  inner,
		window: window,
		now:    time.Now,
		seen:   make(map[dedupeKey]time.Time),
	}
}

// Notify forwards the notification unless the same message was delivered to
// the session within the window.
func (d *Deduper) Notify(ctx context.Context, sessionID, level, message string) {
	key := dedupeKey{sessionID: sessionID, message: message}
	now := d.now()

	d.mu.Lock()
	if last, ok := d.seen[key]; ok && now.Sub(last) < d.window {
		d.mu.Unlock()
		return
	}
	d.seen[key] = now
	d.sweepLocked(now)
	d.mu.Unlock()

	d.inner.Notify(ctx, sessionID, level, message)
}

// sweepLocked evicts expired entries. Called with the lock held; the map
// stays small because entries expire after one window.
func (d *Deduper) sweepLocked(now time.Time) {
	for key, last := range d.seen {
		if now.Sub(last) >= d.window {
			delete(d.seen, key)
		}
	}
}
