package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Wishlist is an ordered collection of product ids with set semantics: a
// product id appears at most once.
type Wishlist []string

// Contains reports whether the id is present.
func (w Wishlist) Contains(id string) bool {
	for _, existing := range w {
		if existing == id {
			return true
		}
	}
	return false
}

// Add returns the wishlist with id appended. Adding an id that is already
// present is a no-op.
func (w Wishlist) Add(id string) Wishlist {
	if w.Contains(id) {
		return w
	}
	return append(w, id)
}

// Remove returns the wishlist with every occurrence of id filtered out.
func (w Wishlist) Remove(id string) Wishlist {
	out := make(Wishlist, 0, len(w))
	for _, existing := range w {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// Dedupe returns the wishlist with duplicates removed, keeping first
// occurrences in order. Lists from storage or the upstream API may carry
// duplicates; everything in memory goes through this first.
func Dedupe(ids []string) Wishlist {
	seen := make(map[string]struct{}, len(ids))
	out := make(Wishlist, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Union merges b into a, keeping a's order and appending b's ids that a does
// not already contain.
func Union(a, b Wishlist) Wishlist {
	out := Dedupe(a)
	for _, id := range b {
		out = out.Add(id)
	}
	return out
}

// NormalizeID canonicalizes a product id string. It errors on empty or
// whitespace-only input so callers never persist a blank entry.
func NormalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("product id is empty")
	}
	return id, nil
}

// ProductRef decodes a product reference that the upstream API serializes
// either as a bare id string or as an embedded document {"_id": "..."}.
type ProductRef string

// UnmarshalJSON accepts both reference forms and normalizes to the string id.
func (p *ProductRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = ProductRef(strings.TrimSpace(s))
		return nil
	}

	var doc struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("product reference is neither a string nor an object: %w", err)
	}
	*p = ProductRef(strings.TrimSpace(doc.ID))
	return nil
}

// RefsToWishlist converts decoded product references into a de-duplicated
// wishlist, dropping blank entries.
func RefsToWishlist(refs []ProductRef) Wishlist {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref != "" {
			ids = append(ids, string(ref))
		}
	}
	return Dedupe(ids)
}
