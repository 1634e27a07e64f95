// Package refundgw is the outbound adapter for the payment provider's
// refund endpoint.
package refundgw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// HTTPGateway requests refunds from the payment provider over HTTP.
// Settlement is asynchronous: the provider acknowledges the request here and
// reports the outcome later through the payment webhook.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
}

// NewHTTPGateway creates a refund gateway for the given provider base URL.
func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type refundRequest struct {
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
}

// RequestRefund submits a refund for the captured transaction.
func (g *HTTPGateway) RequestRefund(ctx context.Context, orderID kernel.UUID, transactionID string) error {
	payload, err := json.Marshal(refundRequest{
		OrderID:       orderID.String(),
		TransactionID: transactionID,
	})
	if err != nil {
		return fmt.Errorf("marshal refund request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/refunds", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build refund request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit refund request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("refund request rejected with status %d", resp.StatusCode)
	}

	return nil
}
