package domain

// User is the remote profile projection returned by the storefront auth API.
// The wishlist attached to it is the server-side authoritative list.
type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Wishlist Wishlist `json:"wishlist"`
}
