package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/A3Manav/jewellery-wishlist-service/internal/domain"
	"github.com/A3Manav/jewellery-wishlist-service/internal/store"
	apperrors "github.com/A3Manav/jewellery-wishlist-service/pkg/errors"
)

// materializeLocked resolves the session's id set into product projections.
// Ids the catalog no longer knows are pruned from local state, and for
// signed-in users a background job removes them from the server wishlist
// too. Transient catalog failures keep the id but skip the projection, so
// one flaky fetch never evicts a product the user saved.
func (r *Reconciler) materializeLocked(ctx context.Context, sessionID string, s *session) {
	if len(s.ids) == 0 {
		s.products = nil
		return
	}

	type result struct {
		product *domain.Product
		stale   bool
	}
	results := make([]result, len(s.ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.MaterializeConcurrency)

	for i, id := range s.ids {
		g.Go(func() error {
			product, err := r.catalog.Product(gctx, id)
			switch {
			case err == nil:
				results[i] = result{product: product}
			case errors.Is(err, apperrors.ErrNotFound):
				results[i] = result{stale: true}
			default:
				r.logger.WarnContext(gctx, "product fetch failed during materialization",
					slog.String("session_id", sessionID),
					slog.String("product_id", id),
					slog.String("error", err.Error()),
				)
			}
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	kept := make(domain.Wishlist, 0, len(s.ids))
	products := make([]domain.Product, 0, len(s.ids))
	var stale []string
	for i, id := range s.ids {
		if results[i].stale {
			stale = append(stale, id)
			continue
		}
		kept = kept.Add(id)
		if results[i].product != nil {
			products = append(products, *results[i].product)
		}
	}

	s.products = products
	if len(stale) == 0 {
		return
	}

	s.ids = kept
	r.logger.InfoContext(ctx, "pruned deleted products from wishlist",
		slog.String("session_id", sessionID),
		slog.Int("pruned_count", len(stale)),
	)

	if s.user != nil {
		r.persistUserList(ctx, sessionID, s)
		r.pruner.Enqueue(PruneJob{
			SessionID:  sessionID,
			Token:      s.token,
			ProductIDs: stale,
		})
	} else {
		if err := r.saveList(ctx, store.GuestWishlistKey(sessionID), s.ids); err != nil {
			r.logger.WarnContext(ctx, "failed to persist pruned guest wishlist",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Materialize replaces the session's id set with the given ids and resolves
// them into products. The input is deduplicated and blank entries dropped
// before anything is persisted.
func (r *Reconciler) Materialize(ctx context.Context, sessionID string, ids []string) (*domain.SessionView, error) {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		normalized, err := domain.NormalizeID(id)
		if err != nil {
			continue
		}
		clean = append(clean, normalized)
	}

	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.initLocked(ctx, sessionID, s); err != nil {
		return nil, err
	}

	s.ids = domain.Dedupe(clean)
	if s.user != nil {
		r.persistUserList(ctx, sessionID, s)
	} else if err := r.saveList(ctx, store.GuestWishlistKey(sessionID), s.ids); err != nil {
		return nil, err
	}

	r.materializeLocked(ctx, sessionID, s)
	return r.viewLocked(sessionID, s), nil
}
