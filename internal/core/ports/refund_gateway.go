package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// RefundGateway asks the payment provider to refund a captured charge.
// The request is fire-and-forget from the order's point of view: the refund
// settles later through a charge-refunded provider event.
type RefundGateway interface {
	RequestRefund(ctx context.Context, orderID kernel.UUID, transactionID string) error
}
