package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/A3Manav/jewellery-wishlist-service/internal/domain"
	"github.com/A3Manav/jewellery-wishlist-service/internal/notify"
	"github.com/A3Manav/jewellery-wishlist-service/internal/store"
	apperrors "github.com/A3Manav/jewellery-wishlist-service/pkg/errors"
)

// Login authenticates against the storefront API and reconciles the guest
// wishlist with the account's server-side wishlist. When the server list is
// non-empty it wins outright; an empty server list adopts the guest's list,
// which is then replayed onto the server so other devices see it.
func (r *Reconciler) Login(ctx context.Context, sessionID, email, password string) (*domain.SessionView, error) {
	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.initLocked(ctx, sessionID, s); err != nil {
		return nil, err
	}

	tok, user, err := r.auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	guestIDs, err := r.loadList(ctx, store.GuestWishlistKey(sessionID))
	if err != nil {
		r.logger.WarnContext(ctx, "failed to load guest wishlist during login",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		guestIDs = domain.Wishlist{}
	}

	serverIDs := domain.Dedupe(user.Wishlist)
	final := serverIDs
	if len(serverIDs) == 0 && len(guestIDs) > 0 {
		final = guestIDs
		r.replayGuestList(ctx, sessionID, tok, guestIDs)
	}

	if err := r.store.Set(ctx, store.TokenKey(sessionID), []byte(tok), r.cfg.SessionTTL); err != nil {
		return nil, fmt.Errorf("persist session token: %w", err)
	}

	s.token = tok
	s.user = user
	s.user.Wishlist = final
	s.ids = final

	r.persistUserList(ctx, sessionID, s)
	r.deleteKeys(ctx, sessionID, store.GuestWishlistKey(sessionID))
	r.materializeLocked(ctx, sessionID, s)

	r.notifier.Notify(ctx, sessionID, notify.LevelSuccess, "Welcome back, "+user.Name)
	if err := r.events.PublishSessionChanged(ctx, sessionID, s.user); err != nil {
		r.logger.WarnContext(ctx, "failed to publish session.changed event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	r.publishWishlistUpdated(ctx, sessionID, s)

	r.logger.InfoContext(ctx, "session authenticated",
		slog.String("session_id", sessionID),
		slog.String("user_id", user.ID),
		slog.Int("wishlist_count", len(final)),
	)

	return r.viewLocked(sessionID, s), nil
}

// replayGuestList pushes guest-saved ids onto a fresh account's server
// wishlist. Best effort: a failed replay leaves the id local-only until the
// next add converges it.
func (r *Reconciler) replayGuestList(ctx context.Context, sessionID, tok string, ids domain.Wishlist) {
	for _, id := range ids {
		_, err := r.auth.WishlistAdd(ctx, tok, id)
		if err != nil && !errors.Is(err, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "failed to replay guest wishlist entry to server",
				slog.String("session_id", sessionID),
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Logout drops the session back to a fresh anonymous state. Every key the
// session could have written is cleared, including wishlist copies left by
// users who signed in on this device earlier.
func (r *Reconciler) Logout(ctx context.Context, sessionID string) (*domain.SessionView, error) {
	s := r.session(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.initLocked(ctx, sessionID, s); err != nil {
		return nil, err
	}

	if err := r.store.Delete(ctx,
		store.TokenKey(sessionID),
		store.CartKey(sessionID),
	); err != nil {
		return nil, fmt.Errorf("clear session keys: %w", err)
	}

	deleted, err := r.store.DeleteMatching(ctx, store.WishlistPattern(sessionID))
	if err != nil {
		return nil, fmt.Errorf("clear wishlist keys: %w", err)
	}

	s.token = ""
	s.user = nil
	s.ids = domain.Wishlist{}
	s.products = nil
	s.promptScheduled = false

	r.logger.InfoContext(ctx, "session signed out",
		slog.String("session_id", sessionID),
		slog.Int("wishlist_keys_cleared", deleted),
	)

	r.notifier.Notify(ctx, sessionID, notify.LevelInfo, "Signed out")
	if err := r.events.PublishSessionChanged(ctx, sessionID, nil); err != nil {
		r.logger.WarnContext(ctx, "failed to publish session.changed event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}

	return r.viewLocked(sessionID, s), nil
}

// Register creates a storefront account. Session state does not change; the
// account must be verified by email before it can sign in.
func (r *Reconciler) Register(ctx context.Context, sessionID, name, email, password string) error {
	if err := r.auth.Register(ctx, name, email, password); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return apperrors.AlreadyExists("an account with this email already exists")
		}
		return fmt.Errorf("register: %w", err)
	}

	r.notifier.Notify(ctx, sessionID, notify.LevelInfo,
		"Check your email to verify your account")

	r.logger.InfoContext(ctx, "account registered",
		slog.String("session_id", sessionID),
	)
	return nil
}
