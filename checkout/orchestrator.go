// Package checkout drives the three-step checkout flow. Each forward
// transition is gated on a validation guard; a failed guard keeps the
// shopper on the current step with field-level detail, never a silent
// advance.
package checkout

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mmaaza/surgical-mart-sub001/apperrors"
	"github.com/mmaaza/surgical-mart-sub001/cart"
	"github.com/mmaaza/surgical-mart-sub001/models"
	"github.com/mmaaza/surgical-mart-sub001/notify"
	"github.com/mmaaza/surgical-mart-sub001/order"
	"github.com/mmaaza/surgical-mart-sub001/pricing"
)

// ErrCartEmpty rejects checkout entry with no valid lines; callers should
// leave the checkout flow entirely.
var ErrCartEmpty = apperrors.Validation("cart has no purchasable items")

// Policy is the market-specific checkout configuration.
type Policy struct {
	ShippingFee      float64
	PhoneCountryCode string
	ReceiptMaxBytes  int64
}

// Orchestrator is the checkout state machine:
// Review → Shipping → Payment → Complete, with back transitions from
// Shipping and Payment. It snapshots the cart at entry and owns the
// collected shipping and payment data until the order is placed or the
// session is abandoned.
type Orchestrator struct {
	cartMgr   *cart.Manager
	submitter *order.Submitter
	policy    Policy
	shipping  *shippingValidator
	notifier  notify.Notifier
	logger    *zap.Logger

	mu           sync.Mutex
	step         models.CheckoutStep
	items        []models.CartItem
	shippingInfo *models.ShippingDetails
	payment      *models.PaymentDetails
	confirmation *models.OrderConfirmation
}

// NewOrchestrator creates a checkout flow over the given cart.
func NewOrchestrator(cartMgr *cart.Manager, submitter *order.Submitter, policy Policy, notifier notify.Notifier, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cartMgr:   cartMgr,
		submitter: submitter,
		policy:    policy,
		shipping:  newShippingValidator(policy.PhoneCountryCode),
		notifier:  notifier,
		logger:    logger,
		step:      models.StepReview,
	}
}

// Begin enters checkout at the review step with a snapshot of the cart.
// Entering with zero valid lines fails with ErrCartEmpty.
func (o *Orchestrator) Begin() error {
	items := o.cartMgr.Items()
	if len(items) == 0 {
		return ErrCartEmpty
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.step = models.StepReview
	o.items = items
	o.shippingInfo = nil
	o.payment = nil
	o.confirmation = nil
	return nil
}

// Step returns the current checkout step.
func (o *Orchestrator) Step() models.CheckoutStep {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// Items returns the cart snapshot taken at checkout entry.
func (o *Orchestrator) Items() []models.CartItem {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.CartItem, len(o.items))
	copy(out, o.items)
	return out
}

// Shipping returns the collected shipping details, or nil.
func (o *Orchestrator) Shipping() *models.ShippingDetails {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.shippingInfo
}

// Summary returns the itemized totals for the snapshot: subtotal through
// the pricing resolver, the configured flat shipping fee, and the total.
func (o *Orchestrator) Summary() models.OrderSummary {
	o.mu.Lock()
	defer o.mu.Unlock()
	subtotal := 0.0
	for _, item := range o.items {
		subtotal += pricing.LineSubtotal(item)
	}
	return models.OrderSummary{
		Subtotal:    subtotal,
		ShippingFee: o.policy.ShippingFee,
		Total:       subtotal + o.policy.ShippingFee,
	}
}

// ProceedToShipping advances Review → Shipping. Requires the snapshot to
// still contain at least one valid line.
func (o *Orchestrator) ProceedToShipping() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireStep(models.StepReview); err != nil {
		return err
	}
	if len(o.items) == 0 {
		return ErrCartEmpty
	}
	o.step = models.StepShipping
	return nil
}

// SubmitShipping validates the shipping record and advances
// Shipping → Payment. On failure the step does not change and the error
// names every missing or invalid field.
func (o *Orchestrator) SubmitShipping(details models.ShippingDetails) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireStep(models.StepShipping); err != nil {
		return err
	}
	if violations := o.shipping.validate(details); len(violations) > 0 {
		return apperrors.Validation("shipping details are incomplete", violations...)
	}

	o.shippingInfo = &details
	o.step = models.StepPayment
	return nil
}

// Back moves one step backwards: Payment → Shipping or Shipping → Review.
// Collected data survives so nothing is retyped.
func (o *Orchestrator) Back() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.step {
	case models.StepPayment:
		o.step = models.StepShipping
	case models.StepShipping:
		o.step = models.StepReview
	default:
		return apperrors.Validation("cannot go back from " + string(o.step))
	}
	return nil
}

// Complete guards Payment → Complete and runs the side effect: assemble
// the payload, submit it, and on success clear the cart and hand back the
// confirmation. On submission failure the flow stays on Payment and the
// collected data is retained.
func (o *Orchestrator) Complete(ctx context.Context, payment models.PaymentDetails, onProgress order.ProgressFunc) (*models.OrderConfirmation, error) {
	o.mu.Lock()
	if err := o.requireStep(models.StepPayment); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	if err := o.paymentGuard(payment); err != nil {
		o.mu.Unlock()
		return nil, err
	}

	payload := models.OrderPayload{
		Shipping:      *o.shippingInfo,
		PaymentMethod: payment.Method,
		Items:         append([]models.CartItem(nil), o.items...),
	}
	o.payment = &payment
	o.mu.Unlock()

	payload.Summary = o.Summary()

	result, err := o.submitter.Submit(ctx, payload, payment.Receipt, onProgress)
	if err != nil {
		// Stay on Payment; the shopper's data is intact.
		o.notifier.Error("We couldn't place your order. Please try again.")
		return nil, err
	}

	o.mu.Lock()
	o.step = models.StepComplete
	o.confirmation = result.Confirmation
	o.mu.Unlock()

	if err := o.cartMgr.Clear(ctx); err != nil {
		// The order is placed; a failure here only leaves stale cart lines.
		o.logger.Warn("cart clear after order placement failed", zap.Error(err))
	}

	o.notifier.Success("Order placed successfully.")
	return result.Confirmation, nil
}

// paymentGuard enforces the Payment → Complete transition guard: a method
// must be selected, and pay-now orders need a valid receipt screenshot.
func (o *Orchestrator) paymentGuard(payment models.PaymentDetails) error {
	switch payment.Method {
	case models.PaymentPayNow:
		if payment.Receipt == nil {
			return apperrors.Validation("payment receipt required", apperrors.FieldViolation{
				Field: "receipt", Rule: "required",
				Message: "attach the payment screenshot to pay now",
			})
		}
		if violations := order.ValidateReceipt(payment.Receipt, o.policy.ReceiptMaxBytes); len(violations) > 0 {
			return apperrors.Validation("payment receipt rejected", violations...)
		}
	case models.PaymentPayLater:
	default:
		return apperrors.Validation("select a payment method", apperrors.FieldViolation{
			Field: "payment_method", Rule: "oneof",
			Message: "payment method must be pay_now or pay_later",
		})
	}
	return nil
}

func (o *Orchestrator) requireStep(step models.CheckoutStep) error {
	if o.step != step {
		return apperrors.Validation("operation not allowed at step " + string(o.step))
	}
	return nil
}
