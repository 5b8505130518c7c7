// Package gateway holds the HTTP clients for the remote cart and order
// APIs. The concrete REST shape is owned by the backend; everything above
// this package talks to the interfaces only.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/mmaaza/surgical-mart-sub001/apperrors"
	"github.com/mmaaza/surgical-mart-sub001/models"
)

// CartGateway is the remote cart API consumed by the cart state manager.
// Every mutation returns the server's authoritative snapshot.
type CartGateway interface {
	FetchCart(ctx context.Context) (*models.Cart, error)
	AddItem(ctx context.Context, productID string, quantity int, attributes map[string]string) (*models.Cart, error)
	UpdateItem(ctx context.Context, lineID string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, lineID string) (*models.Cart, error)
	ClearCart(ctx context.Context) error

	// CleanupCart replaces the server cart with only the given valid items.
	// Best effort; backends without the endpoint are not treated as fatal.
	CleanupCart(ctx context.Context, validItems []models.CartItem) error
}

// OrderGateway is the remote order API consumed by the submission service.
type OrderGateway interface {
	CreateOrder(ctx context.Context, payload models.OrderPayload, receipt *models.ReceiptFile) (*models.OrderConfirmation, error)
}

// TokenSource supplies the bearer token attached to gateway requests.
type TokenSource func() string

// classifyTransportError maps a failed round trip onto the error taxonomy.
// Cancellation is surfaced as Cancelled, never as a network failure.
func classifyTransportError(ctx context.Context, err error) *apperrors.Error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return apperrors.Cancelled()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout(err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return apperrors.Timeout(err)
	}
	return apperrors.Network(err)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// fromStatus classifies a non-2xx gateway response, preferring the API's
// own error message when the body carries one.
func fromStatus(status int, body []byte) *apperrors.Error {
	var wire struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := string(body)
	if err := json.Unmarshal(body, &wire); err == nil {
		if wire.Error != "" {
			msg = wire.Error
		} else if wire.Message != "" {
			msg = wire.Message
		}
	}
	return apperrors.FromStatus(status, msg)
}

func errAsApp(err error) (*apperrors.Error, bool) {
	var e *apperrors.Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
