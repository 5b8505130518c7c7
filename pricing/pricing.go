// Package pricing computes effective prices and savings. Every component
// that displays or sums prices goes through this package; it is the single
// source of discount precedence.
package pricing

import "github.com/mmaaza/surgical-mart-sub001/models"

// EffectivePrice returns the unit price actually charged for a product.
// Precedence: a special-offer price below the regular price wins; otherwise
// a percentage or flat discount applies; otherwise the regular price.
// At most one mechanism ever applies. Malformed input yields 0, never an
// error.
func EffectivePrice(p *models.Product) float64 {
	if p == nil || p.RegularPrice == nil {
		return 0
	}
	regular := *p.RegularPrice
	if regular < 0 {
		return 0
	}

	if p.SpecialOfferPrice != nil && *p.SpecialOfferPrice >= 0 && *p.SpecialOfferPrice < regular {
		return *p.SpecialOfferPrice
	}

	if p.DiscountValue > 0 {
		switch p.DiscountType {
		case models.DiscountTypePercentage:
			return regular * (1 - p.DiscountValue/100)
		case models.DiscountTypeFlat:
			discounted := regular - p.DiscountValue
			if discounted < 0 {
				return 0
			}
			return discounted
		}
	}

	return regular
}

// Savings returns the per-unit amount saved when a discount mechanism
// applied, else 0.
func Savings(p *models.Product) float64 {
	if p == nil || p.RegularPrice == nil {
		return 0
	}
	saved := *p.RegularPrice - EffectivePrice(p)
	if saved <= 0 {
		return 0
	}
	return saved
}

// LineSubtotal returns the effective price of a cart line. Invalid lines
// contribute nothing.
func LineSubtotal(item models.CartItem) float64 {
	if !item.IsValid() || item.Quantity < 1 {
		return 0
	}
	return EffectivePrice(item.Product) * float64(item.Quantity)
}
