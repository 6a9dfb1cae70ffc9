package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client posts order requests to per-supplier fulfillment APIs
type Client struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new supplier API client
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// OrderRequest is the payload pushed to a supplier's order endpoint
type OrderRequest struct {
	Reference       string                 `json:"reference"`
	ShippingAddress map[string]interface{} `json:"shipping_address"`
	Items           []OrderItem            `json:"items"`
}

// OrderItem is one SKU line in a supplier order request
type OrderItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// OrderResponse is the supplier's acknowledgement of a placed order
type OrderResponse struct {
	OrderID string  `json:"order_id"`
	Cost    float64 `json:"cost"`
}

// APIError carries a non-2xx supplier response; the body ends up in the
// queue entry's last_error
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supplier API error: status %d, body: %s", e.StatusCode, e.Body)
}

// PlaceOrder posts an order request to the given supplier endpoint
func (c *Client) PlaceOrder(ctx context.Context, endpoint, apiKey string, order OrderRequest) (*OrderResponse, error) {
	jsonData, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var orderResp OrderResponse
	if err := json.Unmarshal(body, &orderResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	c.logger.Info("Supplier order placed",
		zap.String("reference", order.Reference),
		zap.String("supplier_order_id", orderResp.OrderID),
	)

	return &orderResp, nil
}
