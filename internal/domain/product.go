package domain

// Product is the read-only catalog projection used to materialize a
// wishlist for display. It is fetched from the catalog API and never
// mutated here.
type Product struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Discount float64  `json:"discount,omitempty"`
	Images   []string `json:"images,omitempty"`
	Category string   `json:"category,omitempty"`
}
