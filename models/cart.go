package models

import "time"

// CartItem is one product/quantity/variant entry within a cart. The ID is
// assigned by the cart gateway; Product may be nil when the backing catalog
// record no longer resolves.
type CartItem struct {
	ID         string            `json:"id"`
	Product    *Product          `json:"product"`
	Quantity   int               `json:"quantity"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// IsValid reports whether the line still resolves to a sellable product.
// Invalid lines never contribute to totals and are never purchasable.
func (ci CartItem) IsValid() bool {
	return ci.Product != nil &&
		ci.Product.ID != "" &&
		ci.Product.Name != "" &&
		ci.Product.RegularPrice != nil
}

// Cart is an ordered sequence of line items. Order is display and checkout
// order. Totals are always derived from the item list, never patched.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}
