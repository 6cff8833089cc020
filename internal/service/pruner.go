package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/A3Manav/jewellery-wishlist-service/internal/upstream"
	apperrors "github.com/A3Manav/jewellery-wishlist-service/pkg/errors"
)

var (
	prunerJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_pruner_jobs_total",
			Help: "Prune jobs by outcome.",
		},
		[]string{"outcome"},
	)
	prunerRemovalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wishlist_pruner_removals_total",
			Help: "Stale product ids removed from server-side wishlists.",
		},
	)
)

// PruneJob asks for stale product ids to be removed from a user's
// server-side wishlist. Jobs are produced during materialization when the
// catalog reports a wishlisted product as gone.
type PruneJob struct {
	SessionID  string
	Token      string
	ProductIDs []string
}

// PruneEnqueuer accepts prune jobs for asynchronous processing.
type PruneEnqueuer interface {
	Enqueue(job PruneJob) bool
}

// Pruner drains prune jobs in the background. The queue is bounded; when it
// is full new jobs are dropped rather than blocking the request path, since
// the next materialization of the same session will re-detect the stale ids.
type Pruner struct {
	auth        upstream.AuthAPI
	logger      *slog.Logger
	jobs        chan PruneJob
	maxAttempts int
	baseDelay   time.Duration
}

// NewPruner creates a pruner with a bounded job queue.
func NewPruner(auth upstream.AuthAPI, queueSize int, logger *slog.Logger) *Pruner {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pruner{
		auth:        auth,
		logger:      logger,
		jobs:        make(chan PruneJob, queueSize),
		maxAttempts: 3,
		baseDelay:   500 * time.Millisecond,
	}
}

// Enqueue submits a job without blocking. Returns false when the queue is
// full and the job was dropped.
func (p *Pruner) Enqueue(job PruneJob) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		prunerJobsTotal.WithLabelValues("dropped").Inc()
		p.logger.Warn("prune queue full, dropping job",
			slog.String("session_id", job.SessionID),
			slog.Int("product_count", len(job.ProductIDs)),
		)
		return false
	}
}

// Run processes jobs until the context is canceled.
func (p *Pruner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.jobs:
			p.process(ctx, job)
		}
	}
}

func (p *Pruner) process(ctx context.Context, job PruneJob) {
	failed := 0
	for _, id := range job.ProductIDs {
		if err := p.removeWithRetry(ctx, job.Token, id); err != nil {
			failed++
			p.logger.WarnContext(ctx, "failed to prune stale wishlist entry",
				slog.String("session_id", job.SessionID),
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		prunerRemovalsTotal.Inc()
	}

	if failed > 0 {
		prunerJobsTotal.WithLabelValues("failed").Inc()
		return
	}
	prunerJobsTotal.WithLabelValues("succeeded").Inc()

	p.logger.DebugContext(ctx, "pruned stale wishlist entries",
		slog.String("session_id", job.SessionID),
		slog.Int("product_count", len(job.ProductIDs)),
	)
}

func (p *Pruner) removeWithRetry(ctx context.Context, token, productID string) error {
	var lastErr error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.baseDelay << (attempt - 1)):
			}
		}

		_, err := p.auth.WishlistRemove(ctx, token, productID)
		if err == nil {
			return nil
		}
		// Already gone on the server is the outcome we wanted.
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		// An invalid token will not become valid by retrying.
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return err
		}
		lastErr = err
	}
	return lastErr
}
