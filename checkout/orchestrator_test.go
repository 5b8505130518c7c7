package checkout_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmaaza/surgical-mart-sub001/apperrors"
	"github.com/mmaaza/surgical-mart-sub001/auth"
	"github.com/mmaaza/surgical-mart-sub001/cart"
	"github.com/mmaaza/surgical-mart-sub001/checkout"
	"github.com/mmaaza/surgical-mart-sub001/models"
	"github.com/mmaaza/surgical-mart-sub001/notify"
	"github.com/mmaaza/surgical-mart-sub001/order"
)

// --- Fixtures ---

type fakeCartGateway struct {
	snapshot *models.Cart
	cleared  int
}

func (f *fakeCartGateway) FetchCart(_ context.Context) (*models.Cart, error) {
	return f.snapshot, nil
}

func (f *fakeCartGateway) AddItem(_ context.Context, _ string, _ int, _ map[string]string) (*models.Cart, error) {
	return f.snapshot, nil
}

func (f *fakeCartGateway) UpdateItem(_ context.Context, _ string, _ int) (*models.Cart, error) {
	return f.snapshot, nil
}

func (f *fakeCartGateway) RemoveItem(_ context.Context, _ string) (*models.Cart, error) {
	return f.snapshot, nil
}

func (f *fakeCartGateway) ClearCart(_ context.Context) error {
	f.cleared++
	return nil
}

func (f *fakeCartGateway) CleanupCart(_ context.Context, _ []models.CartItem) error {
	return nil
}

type fakeOrderGateway struct {
	err      error
	payloads []models.OrderPayload
}

func (f *fakeOrderGateway) CreateOrder(_ context.Context, payload models.OrderPayload, _ *models.ReceiptFile) (*models.OrderConfirmation, error) {
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return nil, f.err
	}
	return &models.OrderConfirmation{OrderID: "ord-9", OrderNumber: "SM-2024-0009", PlacedAt: time.Now()}, nil
}

const testSecret = "unit-test-secret"

func signedInSession(t *testing.T) *auth.Session {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1", "name": "Asha", "email": "asha@example.com",
		"typ": "access", "exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	session := auth.NewSession(testSecret)
	_, err = session.Login(signed)
	require.NoError(t, err)
	return session
}

func fptr(f float64) *float64 { return &f }

func stockedCart() *models.Cart {
	return &models.Cart{Items: []models.CartItem{
		{
			ID:       "l1",
			Product:  &models.Product{ID: "p1", Name: "Nitrile Gloves", RegularPrice: fptr(500)},
			Quantity: 2,
		},
	}}
}

type checkoutFixture struct {
	orch    *checkout.Orchestrator
	cartGW  *fakeCartGateway
	orderGW *fakeOrderGateway
	manager *cart.Manager
}

func newFixture(t *testing.T, snapshot *models.Cart) *checkoutFixture {
	t.Helper()
	cartGW := &fakeCartGateway{snapshot: snapshot}
	manager := cart.NewManager(cartGW, signedInSession(t), nil, zap.NewNop())
	require.NoError(t, manager.Fetch(context.Background()))

	orderGW := &fakeOrderGateway{}
	submitter := order.NewSubmitter(orderGW, order.RetryPolicy{
		MaxAttempts: 3, BaseDelay: time.Millisecond, BackoffFactor: 2, MaxDelay: 5 * time.Millisecond,
	}, zap.NewNop())

	policy := checkout.Policy{ShippingFee: 100, PhoneCountryCode: "977"}
	orch := checkout.NewOrchestrator(manager, submitter, policy, notify.Noop{}, zap.NewNop())
	return &checkoutFixture{orch: orch, cartGW: cartGW, orderGW: orderGW, manager: manager}
}

func goodShipping() models.ShippingDetails {
	return models.ShippingDetails{
		FullName: "Asha Shrestha",
		Phone:    "+9779812345678",
		Email:    "asha@example.com",
		Address:  "12 Durbar Marg, near the clock tower",
		City:     "Kathmandu",
		Province: "Bagmati",
	}
}

func advanceToPayment(t *testing.T, fx *checkoutFixture) {
	t.Helper()
	require.NoError(t, fx.orch.Begin())
	require.NoError(t, fx.orch.ProceedToShipping())
	require.NoError(t, fx.orch.SubmitShipping(goodShipping()))
	require.Equal(t, models.StepPayment, fx.orch.Step())
}

// --- Tests ---

func TestBegin_RejectsEmptyCart(t *testing.T) {
	fx := newFixture(t, &models.Cart{})
	err := fx.orch.Begin()
	assert.ErrorIs(t, err, checkout.ErrCartEmpty)
}

func TestBegin_SnapshotsCartAtEntry(t *testing.T) {
	fx := newFixture(t, stockedCart())
	require.NoError(t, fx.orch.Begin())
	assert.Equal(t, models.StepReview, fx.orch.Step())
	assert.Len(t, fx.orch.Items(), 1)
}

func TestSummary_AppliesFlatShippingFee(t *testing.T) {
	fx := newFixture(t, stockedCart())
	require.NoError(t, fx.orch.Begin())

	summary := fx.orch.Summary()
	assert.Equal(t, 1000.0, summary.Subtotal)
	assert.Equal(t, 100.0, summary.ShippingFee)
	assert.Equal(t, 1100.0, summary.Total)
}

func TestSubmitShipping_InvalidDetailsStayOnShipping(t *testing.T) {
	fx := newFixture(t, stockedCart())
	require.NoError(t, fx.orch.Begin())
	require.NoError(t, fx.orch.ProceedToShipping())

	details := goodShipping()
	details.Email = "asha@@example"
	err := fx.orch.SubmitShipping(details)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	appErr := err.(*apperrors.Error)
	require.NotEmpty(t, appErr.Fields)
	assert.Equal(t, "email", appErr.Fields[0].Field)
	assert.Equal(t, models.StepShipping, fx.orch.Step())
}

func TestSubmitShipping_RejectsForeignPhonePrefix(t *testing.T) {
	fx := newFixture(t, stockedCart())
	require.NoError(t, fx.orch.Begin())
	require.NoError(t, fx.orch.ProceedToShipping())

	details := goodShipping()
	details.Phone = "+14155551234"
	err := fx.orch.SubmitShipping(details)

	require.Error(t, err)
	appErr := err.(*apperrors.Error)
	require.NotEmpty(t, appErr.Fields)
	assert.Equal(t, "phone", appErr.Fields[0].Field)
}

func TestBack_RetainsCollectedData(t *testing.T) {
	fx := newFixture(t, stockedCart())
	advanceToPayment(t, fx)

	require.NoError(t, fx.orch.Back())
	assert.Equal(t, models.StepShipping, fx.orch.Step())
	require.NotNil(t, fx.orch.Shipping())
	assert.Equal(t, "Asha Shrestha", fx.orch.Shipping().FullName)

	require.NoError(t, fx.orch.Back())
	assert.Equal(t, models.StepReview, fx.orch.Step())

	err := fx.orch.Back()
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestComplete_OutOfOrderCallRejected(t *testing.T) {
	fx := newFixture(t, stockedCart())
	require.NoError(t, fx.orch.Begin())

	_, err := fx.orch.Complete(context.Background(), models.PaymentDetails{Method: models.PaymentPayLater}, nil)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Empty(t, fx.orderGW.payloads)
}

func TestComplete_PayNowWithoutReceiptRejected(t *testing.T) {
	fx := newFixture(t, stockedCart())
	advanceToPayment(t, fx)

	_, err := fx.orch.Complete(context.Background(), models.PaymentDetails{Method: models.PaymentPayNow}, nil)
	require.Error(t, err)
	appErr := err.(*apperrors.Error)
	require.NotEmpty(t, appErr.Fields)
	assert.Equal(t, "receipt", appErr.Fields[0].Field)
	assert.Equal(t, models.StepPayment, fx.orch.Step())
}

func TestComplete_SuccessClearsCartAndCompletes(t *testing.T) {
	fx := newFixture(t, stockedCart())
	advanceToPayment(t, fx)

	confirmation, err := fx.orch.Complete(context.Background(), models.PaymentDetails{Method: models.PaymentPayLater}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ord-9", confirmation.OrderID)
	assert.Equal(t, models.StepComplete, fx.orch.Step())
	assert.Equal(t, 1, fx.cartGW.cleared)
	assert.Zero(t, fx.manager.ItemCount())

	// The submitted payload carries the snapshot and the computed totals.
	require.Len(t, fx.orderGW.payloads, 1)
	payload := fx.orderGW.payloads[0]
	assert.Len(t, payload.Items, 1)
	assert.Equal(t, 1100.0, payload.Summary.Total)
}

func TestComplete_SubmissionFailureStaysOnPayment(t *testing.T) {
	fx := newFixture(t, stockedCart())
	fx.orderGW.err = &apperrors.Error{Kind: apperrors.KindValidation, Message: "order rejected", Status: 400}
	advanceToPayment(t, fx)

	_, err := fx.orch.Complete(context.Background(), models.PaymentDetails{Method: models.PaymentPayLater}, nil)
	require.Error(t, err)
	assert.Equal(t, models.StepPayment, fx.orch.Step())
	assert.Zero(t, fx.cartGW.cleared, "cart survives a failed submission")
	require.NotNil(t, fx.orch.Shipping())
}
