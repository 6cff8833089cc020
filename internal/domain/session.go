package domain

// SessionView is the reconciled state exposed to consumers for one device
// session: who is signed in (nil while anonymous), the id set that answers
// membership queries, and the materialized products for rendering.
type SessionView struct {
	SessionID   string    `json:"session_id"`
	User        *User     `json:"user,omitempty"`
	WishlistIDs Wishlist  `json:"wishlist_ids"`
	Products    []Product `json:"products"`
	Loading     bool      `json:"loading"`
}

// Authenticated reports whether the view belongs to a signed-in user.
func (v *SessionView) Authenticated() bool {
	return v.User != nil
}
