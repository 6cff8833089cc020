package upstream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/A3Manav/jewellery-wishlist-service/internal/domain"
)

// userPayload mirrors the account document the storefront API returns.
// Wishlist entries arrive either as id strings or as populated documents.
type userPayload struct {
	ID       string              `json:"_id"`
	Name     string              `json:"name"`
	Email    string              `json:"email"`
	Wishlist []domain.ProductRef `json:"wishlist"`
}

func (p *userPayload) toDomain() *domain.User {
	return &domain.User{
		ID:       p.ID,
		Name:     p.Name,
		Email:    p.Email,
		Wishlist: domain.RefsToWishlist(p.Wishlist),
	}
}

// decodeUser accepts both a bare user document and the {"user": {...}}
// wrapper some endpoints use.
func decodeUser(raw []byte) (*domain.User, error) {
	var wrapped struct {
		User *userPayload `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil && wrapped.User.ID != "" {
		return wrapped.User.toDomain(), nil
	}

	var direct userPayload
	if err := json.Unmarshal(raw, &direct); err != nil {
		return nil, fmt.Errorf("decode user payload: %w", err)
	}
	if direct.ID == "" {
		return nil, fmt.Errorf("user payload missing _id")
	}
	return direct.toDomain(), nil
}

// nameField decodes a value serialized either as a plain string or as a
// populated document carrying a name.
type nameField string

func (n *nameField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = nameField(strings.TrimSpace(s))
		return nil
	}

	var doc struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode name field: %w", err)
	}
	*n = nameField(strings.TrimSpace(doc.Name))
	return nil
}

// productPayload mirrors the catalog document.
type productPayload struct {
	ID       string    `json:"_id"`
	Title    string    `json:"title"`
	Price    float64   `json:"price"`
	Discount float64   `json:"discount"`
	Images   []string  `json:"images"`
	Category nameField `json:"category"`
}

func (p *productPayload) toDomain() *domain.Product {
	return &domain.Product{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		Discount: p.Discount,
		Images:   p.Images,
		Category: string(p.Category),
	}
}
