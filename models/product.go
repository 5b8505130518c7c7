package models

// DiscountType represents the kind of discount attached to a product.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFlat       DiscountType = "flat"
)

// Product is a denormalized snapshot of catalog data attached to a cart
// line. The catalog service owns the record; the cart holds a read-only
// cached copy that may go stale at any time.
type Product struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	RegularPrice      *float64     `json:"regular_price"`
	SpecialOfferPrice *float64     `json:"special_offer_price,omitempty"`
	DiscountValue     float64      `json:"discount_value,omitempty"`
	DiscountType      DiscountType `json:"discount_type,omitempty"`
	Images            []string     `json:"images,omitempty"`
	Stock             *int         `json:"stock,omitempty"`
}
