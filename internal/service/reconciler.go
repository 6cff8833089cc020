package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/A3Manav/jewellery-wishlist-service/internal/domain"
	"github.com/A3Manav/jewellery-wishlist-service/internal/event"
	"github.com/A3Manav/jewellery-wishlist-service/internal/notify"
	"github.com/A3Manav/jewellery-wishlist-service/internal/store"
	"github.com/A3Manav/jewellery-wishlist-service/internal/token"
	"github.com/A3Manav/jewellery-wishlist-service/internal/upstream"
	apperrors "github.com/A3Manav/jewellery-wishlist-service/pkg/errors"
)

// Config tunes the reconciler.
type Config struct {
	// SessionTTL bounds how long session keys live in the store.
	SessionTTL time.Duration

	// ProfileTimeout bounds the profile fetch during session
	// initialization so a slow upstream cannot stall every request.
	ProfileTimeout time.Duration

	// MaterializeConcurrency caps parallel catalog fetches per session.
	MaterializeConcurrency int

	// LoginPromptDelay is how long after a guest's first add the sign-in
	// prompt fires.
	LoginPromptDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.SessionTTL <= 0 {
		c.SessionTTL = 30 * 24 * time.Hour
	}
	if c.ProfileTimeout <= 0 {
		c.ProfileTimeout = 5 * time.Second
	}
	if c.MaterializeConcurrency <= 0 {
		c.MaterializeConcurrency = 4
	}
	if c.LoginPromptDelay <= 0 {
		c.LoginPromptDelay = 2 * time.Second
	}
	return c
}

// Reconciler keeps each device session's wishlist consistent across three
// surfaces: the session store, the signed-in user's server-side wishlist,
// and the in-memory state served to the storefront. All operations on one
// session are serialized by a per-session mutex, so a slow response can
// never overwrite the result of a later operation on the same session.
type Reconciler struct {
	store    store.Store
	auth     upstream.AuthAPI
	catalog  upstream.CatalogAPI
	events   *event.Producer
	notifier notify.Notifier
	pruner   PruneEnqueuer
	logger   *slog.Logger
	cfg      Config

	guard *opGuard
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// session is the in-memory state for one device. Fields are protected by mu;
// every operation takes it for the session's full duration.
type session struct {
	mu sync.Mutex

	initialized bool
	token       string
	user        *domain.User
	ids         domain.Wishlist
	products    []domain.Product

	promptScheduled bool
}

// NewReconciler wires the reconciler.
func NewReconciler(
	st store.Store,
	auth upstream.AuthAPI,
	catalog upstream.CatalogAPI,
	events *event.Producer,
	notifier notify.Notifier,
	pruner PruneEnqueuer,
	cfg Config,
	logger *slog.Logger,
) *Reconciler {
	return &Reconciler{
		store:    st,
		auth:     auth,
		catalog:  catalog,
		events:   events,
		notifier: notifier,
		pruner:   pruner,
		logger:   logger,
		cfg:      cfg.withDefaults(),
		guard:    newOpGuard(),
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

func (r *Reconciler) session(sessionID string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		s = &session{ids: domain.Wishlist{}}
		r.sessions[sessionID] = s
	}
	return s
}

// InitializeSession reconciles the session's state from the store and the
// upstream profile, and returns the resulting view. Safe to call repeatedly;
// reconciliation runs once per process lifetime of the session.
func (r *Reconciler) InitializeSession(ctx context.Context, sessionID string) (*domain.SessionView, error) {
	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.initLocked(ctx, sessionID, s); err != nil {
		return nil, err
	}
	return r.viewLocked(sessionID, s), nil
}

// initLocked loads the session's persisted state exactly once. A stored
// token is validated against the upstream profile; on auth failure the token
// is dropped and the session demotes to anonymous. On transport failure the
// token stays in the store for the next process to retry, but this process
// serves the guest list rather than failing the request.
func (r *Reconciler) initLocked(ctx context.Context, sessionID string, s *session) error {
	if s.initialized {
		return nil
	}

	defer func() {
		// Whatever happened above, the session must come out usable.
		s.initialized = true
		if s.ids == nil {
			s.ids = domain.Wishlist{}
		}
	}()

	tok, err := r.loadToken(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session token: %w", err)
	}

	if tok != "" && token.Expired(tok, r.now()) {
		r.logger.InfoContext(ctx, "stored token expired, demoting session to anonymous",
			slog.String("session_id", sessionID),
		)
		if err := r.store.Delete(ctx, store.TokenKey(sessionID)); err != nil {
			r.logger.WarnContext(ctx, "failed to delete expired token",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		tok = ""
	}

	if tok != "" {
		pctx, cancel := context.WithTimeout(ctx, r.cfg.ProfileTimeout)
		user, perr := r.auth.Profile(pctx, tok)
		cancel()

		switch {
		case perr == nil:
			s.token = tok
			s.user = user
			s.ids = domain.Dedupe(user.Wishlist)
			r.persistUserList(ctx, sessionID, s)
			r.deleteKeys(ctx, sessionID, store.GuestWishlistKey(sessionID))
			r.materializeLocked(ctx, sessionID, s)
			return nil

		case errors.Is(perr, apperrors.ErrUnauthorized):
			r.logger.InfoContext(ctx, "stored token rejected by upstream, demoting session to anonymous",
				slog.String("session_id", sessionID),
			)
			r.deleteKeys(ctx, sessionID, store.TokenKey(sessionID))

		default:
			// Upstream unreachable. Keep the token stored for a later
			// retry and serve what the device has locally.
			r.logger.WarnContext(ctx, "profile fetch failed, serving guest state",
				slog.String("session_id", sessionID),
				slog.String("error", perr.Error()),
			)
			r.notifier.Notify(ctx, sessionID, notify.LevelError,
				"Could not reach the store, showing your saved wishlist")
		}
	}

	ids, err := r.loadList(ctx, store.GuestWishlistKey(sessionID))
	if err != nil {
		return fmt.Errorf("load guest wishlist: %w", err)
	}
	s.ids = ids
	r.materializeLocked(ctx, sessionID, s)
	return nil
}

// AddToWishlist adds a product to the session's wishlist. For signed-in
// users the server copy is updated first and its response replaces local
// state; guests persist to the session store only. A second add of the same
// product reports ALREADY_IN_WISHLIST without touching anything.
func (r *Reconciler) AddToWishlist(ctx context.Context, sessionID, productID string) (*domain.SessionView, error) {
	id, err := domain.NormalizeID(productID)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	// The guard is taken before the session mutex: a duplicate trigger for
	// the same product must be rejected immediately, not queued behind the
	// in-flight operation.
	guardKey := "add:" + sessionID + ":" + id
	if !r.guard.begin(guardKey) {
		return nil, errOperationInProgress()
	}
	defer r.guard.end(guardKey)

	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.initLocked(ctx, sessionID, s); err != nil {
		return nil, err
	}

	if s.ids.Contains(id) {
		return nil, errAlreadyInWishlist()
	}

	if s.user != nil {
		user, err := r.auth.WishlistAdd(ctx, s.token, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				// Server already has it; converge local state to match.
				s.ids = s.ids.Add(id)
				r.persistUserList(ctx, sessionID, s)
				return nil, errAlreadyInWishlist()
			}
			r.notifier.Notify(ctx, sessionID, notify.LevelError, "Could not add to wishlist")
			return nil, fmt.Errorf("add to server wishlist: %w", err)
		}
		s.user = user
		s.ids = domain.Dedupe(user.Wishlist)
		r.persistUserList(ctx, sessionID, s)
	} else {
		s.ids = s.ids.Add(id)
		if err := r.saveList(ctx, store.GuestWishlistKey(sessionID), s.ids); err != nil {
			s.ids = s.ids.Remove(id)
			return nil, fmt.Errorf("persist guest wishlist: %w", err)
		}
		r.scheduleLoginPrompt(sessionID, s)
	}

	r.materializeLocked(ctx, sessionID, s)
	r.notifier.Notify(ctx, sessionID, notify.LevelSuccess, "Added to wishlist")
	r.publishWishlistUpdated(ctx, sessionID, s)

	return r.viewLocked(sessionID, s), nil
}

// RemoveFromWishlist removes a product from the session's wishlist. Removal
// is only honored from the profile page; every other surface gets
// REMOVE_NOT_ALLOWED with no side effects.
func (r *Reconciler) RemoveFromWishlist(ctx context.Context, sessionID, productID string, fromProfilePage bool) (*domain.SessionView, error) {
	if !fromProfilePage {
		return nil, errRemoveNotAllowed()
	}

	id, err := domain.NormalizeID(productID)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	guardKey := "remove:" + sessionID + ":" + id
	if !r.guard.begin(guardKey) {
		return nil, errOperationInProgress()
	}
	defer r.guard.end(guardKey)

	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.initLocked(ctx, sessionID, s); err != nil {
		return nil, err
	}

	if !s.ids.Contains(id) {
		return nil, errNotInWishlist()
	}

	if s.user != nil {
		user, err := r.auth.WishlistRemove(ctx, s.token, id)
		switch {
		case err == nil:
			s.user = user
			s.ids = domain.Dedupe(user.Wishlist)
		case errors.Is(err, apperrors.ErrNotFound):
			// Already gone on the server; converge local state.
			s.ids = s.ids.Remove(id)
		default:
			r.notifier.Notify(ctx, sessionID, notify.LevelError, "Could not remove from wishlist")
			return nil, fmt.Errorf("remove from server wishlist: %w", err)
		}
		r.persistUserList(ctx, sessionID, s)
	} else {
		s.ids = s.ids.Remove(id)
		if err := r.saveList(ctx, store.GuestWishlistKey(sessionID), s.ids); err != nil {
			return nil, fmt.Errorf("persist guest wishlist: %w", err)
		}
	}

	r.materializeLocked(ctx, sessionID, s)
	r.notifier.Notify(ctx, sessionID, notify.LevelSuccess, "Removed from wishlist")
	r.publishWishlistUpdated(ctx, sessionID, s)

	return r.viewLocked(sessionID, s), nil
}

// RemoveFromWishlistLegacy is the retired non-profile removal path. It has
// rejected every call since the profile-page policy shipped, and is kept so
// old storefront builds get a stable error instead of a 404.
func (r *Reconciler) RemoveFromWishlistLegacy(ctx context.Context, sessionID, productID string) (*domain.SessionView, error) {
	r.logger.WarnContext(ctx, "deprecated wishlist removal path called",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
	)
	return r.RemoveFromWishlist(ctx, sessionID, productID, false)
}

// IsInWishlist reports membership for one product id. Errors degrade to
// false so rendering never blocks on a membership check.
func (r *Reconciler) IsInWishlist(ctx context.Context, sessionID, productID string) bool {
	id, err := domain.NormalizeID(productID)
	if err != nil {
		return false
	}

	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.initLocked(ctx, sessionID, s); err != nil {
		r.logger.WarnContext(ctx, "membership check degraded to false",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return s.ids.Contains(id)
}

// View returns the session's current reconciled state.
func (r *Reconciler) View(ctx context.Context, sessionID string) (*domain.SessionView, error) {
	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.initLocked(ctx, sessionID, s); err != nil {
		return nil, err
	}
	return r.viewLocked(sessionID, s), nil
}

// viewLocked snapshots the session state. Slices are copied so the caller
// cannot observe later mutations.
func (r *Reconciler) viewLocked(sessionID string, s *session) *domain.SessionView {
	view := &domain.SessionView{
		SessionID:   sessionID,
		WishlistIDs: append(domain.Wishlist{}, s.ids...),
		Products:    append([]domain.Product{}, s.products...),
	}
	if s.user != nil {
		u := *s.user
		u.Wishlist = append(domain.Wishlist{}, s.ids...)
		view.User = &u
	}
	return view
}

// scheduleLoginPrompt fires a one-time sign-in nudge shortly after a guest's
// first add. Scheduled at most once per session lifetime.
func (r *Reconciler) scheduleLoginPrompt(sessionID string, s *session) {
	if s.promptScheduled {
		return
	}
	s.promptScheduled = true

	time.AfterFunc(r.cfg.LoginPromptDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.notifier.Notify(ctx, sessionID, notify.LevelInfo,
			"Sign in to keep your wishlist across devices")
	})
}

func (r *Reconciler) publishWishlistUpdated(ctx context.Context, sessionID string, s *session) {
	if err := r.events.PublishWishlistUpdated(ctx, sessionID, s.user, s.ids); err != nil {
		r.logger.WarnContext(ctx, "failed to publish wishlist.updated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (r *Reconciler) loadToken(ctx context.Context, sessionID string) (string, error) {
	raw, err := r.store.Get(ctx, store.TokenKey(sessionID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(raw), nil
}

// loadList reads a persisted id list. Missing keys and corrupt payloads both
// yield an empty list; corrupt data is logged, not fatal.
func (r *Reconciler) loadList(ctx context.Context, key string) (domain.Wishlist, error) {
	raw, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Wishlist{}, nil
		}
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		r.logger.Warn("discarding corrupt wishlist payload", slog.String("key", key))
		return domain.Wishlist{}, nil
	}
	return domain.Dedupe(ids), nil
}

func (r *Reconciler) saveList(ctx context.Context, key string, ids domain.Wishlist) error {
	raw, err := json.Marshal([]string(ids))
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}
	return r.store.Set(ctx, key, raw, r.cfg.SessionTTL)
}

// persistUserList writes the signed-in user's list copy. Failures are logged
// and swallowed: the server copy is authoritative, the stored copy only
// seeds the next initialization.
func (r *Reconciler) persistUserList(ctx context.Context, sessionID string, s *session) {
	if s.user == nil {
		return
	}
	if err := r.saveList(ctx, store.UserWishlistKey(sessionID, s.user.ID), s.ids); err != nil {
		r.logger.WarnContext(ctx, "failed to persist user wishlist copy",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (r *Reconciler) deleteKeys(ctx context.Context, sessionID string, keys ...string) {
	if err := r.store.Delete(ctx, keys...); err != nil {
		r.logger.WarnContext(ctx, "failed to delete session keys",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}
