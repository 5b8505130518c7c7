package models

import "time"

// ReceiptFile is an uploaded payment screenshot held in memory until the
// order gateway accepts it.
type ReceiptFile struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Data     []byte `json:"-"`
}

// OrderSummary carries the itemized totals computed at checkout so the
// gateway receives exactly what the user saw.
type OrderSummary struct {
	Subtotal    float64 `json:"subtotal"`
	ShippingFee float64 `json:"shipping_fee"`
	Total       float64 `json:"total"`
}

// OrderPayload is the assembled order handed to the order gateway:
// shipping + payment + the cart snapshot taken at checkout entry.
type OrderPayload struct {
	Shipping      ShippingDetails `json:"shipping"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Items         []CartItem      `json:"items"`
	Summary       OrderSummary    `json:"summary"`
}

// OrderConfirmation is the gateway's acknowledgement of a placed order.
type OrderConfirmation struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	PlacedAt    time.Time `json:"placed_at"`
}
