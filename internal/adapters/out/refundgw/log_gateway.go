package refundgw

import (
	"context"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
)

// LogGateway records refund requests in the log. It stands in for the real
// provider in environments without refund credentials; refunds issued through
// it stay pending until resolved manually.
type LogGateway struct {
	logger *slog.Logger
}

// NewLogGateway creates a refund gateway that logs instead of calling out.
func NewLogGateway(logger *slog.Logger) *LogGateway {
	return &LogGateway{logger: logger.With("component", "log_refund_gateway")}
}

// RequestRefund logs the refund request.
func (g *LogGateway) RequestRefund(ctx context.Context, orderID kernel.UUID, transactionID string) error {
	g.logger.InfoContext(ctx, "refund requested",
		"order_id", orderID.String(),
		"transaction_id", transactionID)
	return nil
}
