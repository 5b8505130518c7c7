package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmaaza/surgical-mart-sub001/apperrors"
	"github.com/mmaaza/surgical-mart-sub001/gateway"
	"github.com/mmaaza/surgical-mart-sub001/models"
)

func samplePayload() models.OrderPayload {
	return models.OrderPayload{
		Shipping: models.ShippingDetails{
			FullName: "Asha Shrestha",
			Phone:    "+9779812345678",
			Email:    "asha@example.com",
			Address:  "12 Durbar Marg, near the clock tower",
			City:     "Kathmandu",
			Province: "Bagmati",
		},
		PaymentMethod: models.PaymentPayNow,
		Items:         sampleCart().Items,
		Summary:       models.OrderSummary{Subtotal: 750, ShippingFee: 100, Total: 850},
	}
}

func TestCreateOrder_SendsMultipartWithReceipt(t *testing.T) {
	receiptBytes := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	var (
		gotOrder    string
		gotMethod   string
		gotFilename string
		gotFile     []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))

		gotOrder = r.FormValue("order")
		gotMethod = r.FormValue("payment_method")

		file, header, err := r.FormFile("payment_screenshot")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotFile, err = io.ReadAll(file)
		require.NoError(t, err)

		json.NewEncoder(w).Encode(models.OrderConfirmation{
			OrderID: "ord-55", OrderNumber: "SM-2024-0055", PlacedAt: time.Now(),
		})
	}))
	defer srv.Close()

	gw := gateway.NewHTTPOrderGateway(srv.URL, time.Second, staticToken("tok"))
	receipt := &models.ReceiptFile{
		Filename: "payment.png",
		MIMEType: "image/png",
		Size:     int64(len(receiptBytes)),
		Data:     receiptBytes,
	}

	confirmation, err := gw.CreateOrder(context.Background(), samplePayload(), receipt)
	require.NoError(t, err)
	assert.Equal(t, "ord-55", confirmation.OrderID)

	var decoded models.OrderPayload
	require.NoError(t, json.Unmarshal([]byte(gotOrder), &decoded))
	assert.Equal(t, "Asha Shrestha", decoded.Shipping.FullName)
	assert.Equal(t, 850.0, decoded.Summary.Total)

	assert.Equal(t, string(models.PaymentPayNow), gotMethod)
	assert.Equal(t, "payment.png", gotFilename)
	assert.Equal(t, receiptBytes, gotFile)
}

func TestCreateOrder_PayLaterOmitsReceiptPart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		_, _, err := r.FormFile("payment_screenshot")
		assert.Error(t, err, "no file part for pay-later orders")
		json.NewEncoder(w).Encode(models.OrderConfirmation{OrderID: "ord-56"})
	}))
	defer srv.Close()

	gw := gateway.NewHTTPOrderGateway(srv.URL, time.Second, nil)
	payload := samplePayload()
	payload.PaymentMethod = models.PaymentPayLater

	confirmation, err := gw.CreateOrder(context.Background(), payload, nil)
	require.NoError(t, err)
	assert.Equal(t, "ord-56", confirmation.OrderID)
}

func TestCreateOrder_RejectionCarriesFieldDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"address not serviceable"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	gw := gateway.NewHTTPOrderGateway(srv.URL, time.Second, nil)
	_, err := gw.CreateOrder(context.Background(), samplePayload(), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "address not serviceable")
	assert.False(t, apperrors.Retryable(err))
}

func TestCreateOrder_RateLimitedIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"slow down"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gw := gateway.NewHTTPOrderGateway(srv.URL, time.Second, nil)
	_, err := gw.CreateOrder(context.Background(), samplePayload(), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindRateLimited, apperrors.KindOf(err))
	assert.True(t, apperrors.Retryable(err))
}
