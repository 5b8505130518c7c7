package models

// CheckoutStep identifies a stage of the checkout flow.
type CheckoutStep string

const (
	StepReview   CheckoutStep = "review"
	StepShipping CheckoutStep = "shipping"
	StepPayment  CheckoutStep = "payment"
	StepComplete CheckoutStep = "complete"
)

// PaymentMethod selects how the order is paid.
type PaymentMethod string

const (
	// PaymentPayNow requires a payment receipt screenshot at checkout.
	PaymentPayNow PaymentMethod = "pay_now"
	// PaymentPayLater is cash/invoice on delivery; no receipt required.
	PaymentPayLater PaymentMethod = "pay_later"
)

// ShippingDetails is the structured address/contact record collected at the
// shipping step. Validation tags carry the mandatory-field contract; the
// email and phone formats are checked separately so violations can be
// reported per field.
type ShippingDetails struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	Phone    string `json:"phone" validate:"required,min=10"`
	Email    string `json:"email" validate:"required,email"`
	Address  string `json:"address" validate:"required,min=10"`
	City     string `json:"city" validate:"required"`
	Province string `json:"province" validate:"required"`
	Notes    string `json:"notes,omitempty"`
}

// PaymentDetails is the payment-step selection plus the optional receipt.
type PaymentDetails struct {
	Method  PaymentMethod `json:"method"`
	Receipt *ReceiptFile  `json:"-"`
}
