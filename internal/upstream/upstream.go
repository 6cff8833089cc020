package upstream

import (
	"context"

	"github.com/A3Manav/jewellery-wishlist-service/internal/domain"
)

// AuthAPI is the storefront account API the reconciler depends on. The
// wishlist attached to the returned user is always the server's
// authoritative copy.
type AuthAPI interface {
	// Login exchanges credentials for a bearer token and profile.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)

	// Register creates an account. No session token is returned; the
	// account must be verified by email before login.
	Register(ctx context.Context, name, email, password string) error

	// Profile fetches the profile for a bearer token.
	Profile(ctx context.Context, token string) (*domain.User, error)

	// WishlistAdd adds a product to the server wishlist and returns the
	// updated profile.
	WishlistAdd(ctx context.Context, token, productID string) (*domain.User, error)

	// WishlistRemove removes a product from the server wishlist and
	// returns the updated profile.
	WishlistRemove(ctx context.Context, token, productID string) (*domain.User, error)
}

// CatalogAPI resolves product ids into display projections.
type CatalogAPI interface {
	// Product fetches one product by id. Deleted products return an error
	// wrapping errors.ErrNotFound.
	Product(ctx context.Context, id string) (*domain.Product, error)
}
