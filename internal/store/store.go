package store

import (
	"context"
	"time"
)

// Store is the key-value persistence surface for per-session state. It
// mirrors the storage the storefront client keeps on the device: a token,
// a guest wishlist, per-user wishlists, and an opaque cart payload.
type Store interface {
	// Get retrieves the value under key. Missing keys return an error
	// wrapping errors.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key with the given TTL. A zero TTL means no
	// expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Deleting a missing key is not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeleteMatching removes every key matching the glob pattern and
	// returns how many were deleted.
	DeleteMatching(ctx context.Context, pattern string) (int, error)
}

// Key layout. Everything a device session owns lives under session:<sid>: so
// the logout sweep can clear wishlist state with one pattern.
const sessionPrefix = "session:"

// TokenKey is where the session's bearer token lives.
func TokenKey(sessionID string) string {
	return sessionPrefix + sessionID + ":token"
}

// GuestWishlistKey holds the anonymous wishlist for a session.
func GuestWishlistKey(sessionID string) string {
	return sessionPrefix + sessionID + ":wishlist:guest"
}

// UserWishlistKey holds the wishlist copy for an authenticated user on this
// session.
func UserWishlistKey(sessionID, userID string) string {
	return sessionPrefix + sessionID + ":wishlist:user:" + userID
}

// CartKey holds the session's cart payload. The cart is owned elsewhere;
// this service only clears it on logout.
func CartKey(sessionID string) string {
	return sessionPrefix + sessionID + ":cart"
}

// WishlistPattern matches every wishlist key a session could have written,
// including orphans from earlier signed-in users.
func WishlistPattern(sessionID string) string {
	return sessionPrefix + sessionID + ":wishlist:*"
}
