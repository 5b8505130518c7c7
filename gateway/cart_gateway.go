package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmaaza/surgical-mart-sub001/models"
)

// HTTPCartGateway implements CartGateway against the marketplace cart API.
type HTTPCartGateway struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// NewHTTPCartGateway creates a cart gateway client.
func NewHTTPCartGateway(baseURL string, timeout time.Duration, token TokenSource) *HTTPCartGateway {
	return &HTTPCartGateway{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
		token:      token,
	}
}

type addItemRequest struct {
	ProductID  string            `json:"product_id"`
	Quantity   int               `json:"quantity"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

type cleanupRequest struct {
	Items []models.CartItem `json:"items"`
}

func (g *HTTPCartGateway) FetchCart(ctx context.Context) (*models.Cart, error) {
	var cart models.Cart
	if err := g.doJSON(ctx, http.MethodGet, "/api/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (g *HTTPCartGateway) AddItem(ctx context.Context, productID string, quantity int, attributes map[string]string) (*models.Cart, error) {
	body := addItemRequest{ProductID: productID, Quantity: quantity, Attributes: attributes}
	var cart models.Cart
	if err := g.doJSON(ctx, http.MethodPost, "/api/cart/items", body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (g *HTTPCartGateway) UpdateItem(ctx context.Context, lineID string, quantity int) (*models.Cart, error) {
	var cart models.Cart
	path := "/api/cart/items/" + lineID
	if err := g.doJSON(ctx, http.MethodPatch, path, updateItemRequest{Quantity: quantity}, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (g *HTTPCartGateway) RemoveItem(ctx context.Context, lineID string) (*models.Cart, error) {
	var cart models.Cart
	if err := g.doJSON(ctx, http.MethodDelete, "/api/cart/items/"+lineID, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (g *HTTPCartGateway) ClearCart(ctx context.Context) error {
	return g.doJSON(ctx, http.MethodDelete, "/api/cart", nil, nil)
}

func (g *HTTPCartGateway) CleanupCart(ctx context.Context, validItems []models.CartItem) error {
	err := g.doJSON(ctx, http.MethodPut, "/api/cart/cleanup", cleanupRequest{Items: validItems}, nil)
	if err == nil {
		return nil
	}
	// Older backends do not expose the cleanup endpoint. Absence is not
	// fatal; the caller already holds the filtered cart.
	if e, ok := errAsApp(err); ok && (e.Status == http.StatusNotFound || e.Status == http.StatusMethodNotAllowed) {
		return nil
	}
	return err
}

func (g *HTTPCartGateway) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.token != nil {
		if tok := g.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		appErr := fromStatus(resp.StatusCode, respBytes)
		return appErr
	}

	if out != nil && len(respBytes) > 0 {
		if err := json.Unmarshal(respBytes, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
