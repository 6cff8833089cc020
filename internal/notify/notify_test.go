package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, _, _, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func (r *recordingNotifier) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func TestDeduper_SuppressesRepeatsWithinWindow(t *testing.T) {
	inner := &recordingNotifier{}
	d := NewDeduper(inner, 3*time.Second)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	ctx := context.Background()
	d.Notify(ctx, "dev-1", LevelSuccess, "Added to wishlist")
	d.Notify(ctx, "dev-1", LevelSuccess, "Added to wishlist")
	d.Notify(ctx, "dev-1", LevelSuccess, "Added to wishlist")

	assert.Equal(t, []string{"Added to wishlist"}, inner.all())
}

func TestDeduper_DeliversAfterWindow(t *testing.T) {
	inner := &recordingNotifier{}
	d := NewDeduper(inner, 3*time.Second)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	ctx := context.Background()
	d.Notify(ctx, "dev-1", LevelSuccess, "Added to wishlist")

	now = now.Add(5 * time.Second)
	d.Notify(ctx, "dev-1", LevelSuccess, "Added to wishlist")

	assert.Len(t, inner.all(), 2)
}

func TestDeduper_DistinctKeysPassThrough(t *testing.T) {
	inner := &recordingNotifier{}
	d := NewDeduper(inner, 3*time.Second)

	ctx := context.Background()
	d.Notify(ctx, "dev-1", LevelSuccess, "Added to wishlist")
	d.Notify(ctx, "dev-2", LevelSuccess, "Added to wishlist")
	d.Notify(ctx, "dev-1", LevelInfo, "Signed out")

	assert.Len(t, inner.all(), 3)
}
