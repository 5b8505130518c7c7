package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/mmaaza/surgical-mart-sub001/models"
)

// HTTPOrderGateway implements OrderGateway against the marketplace order
// API. Orders go up as multipart form data: an "order" JSON part plus the
// optional payment screenshot.
type HTTPOrderGateway struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// NewHTTPOrderGateway creates an order gateway client.
func NewHTTPOrderGateway(baseURL string, timeout time.Duration, token TokenSource) *HTTPOrderGateway {
	return &HTTPOrderGateway{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
		token:      token,
	}
}

func (g *HTTPOrderGateway) CreateOrder(ctx context.Context, payload models.OrderPayload, receipt *models.ReceiptFile) (*models.OrderConfirmation, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	orderJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order payload: %w", err)
	}
	if err := writer.WriteField("order", string(orderJSON)); err != nil {
		return nil, fmt.Errorf("write order part: %w", err)
	}
	if err := writer.WriteField("payment_method", string(payload.PaymentMethod)); err != nil {
		return nil, fmt.Errorf("write payment part: %w", err)
	}

	if receipt != nil {
		part, err := writer.CreatePart(receiptPartHeader(receipt))
		if err != nil {
			return nil, fmt.Errorf("create receipt part: %w", err)
		}
		if _, err := part.Write(receipt.Data); err != nil {
			return nil, fmt.Errorf("write receipt part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/orders", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if g.token != nil {
		if tok := g.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fromStatus(resp.StatusCode, respBytes)
	}

	var confirmation models.OrderConfirmation
	if err := json.Unmarshal(respBytes, &confirmation); err != nil {
		return nil, fmt.Errorf("decode confirmation: %w", err)
	}
	return &confirmation, nil
}

func receiptPartHeader(receipt *models.ReceiptFile) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="payment_screenshot"; filename="%s"`, receipt.Filename))
	h.Set("Content-Type", receipt.MIMEType)
	return h
}
