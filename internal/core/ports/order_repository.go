// Package ports defines the contracts between the fulfillment core and
// infrastructure adapters. Interfaces here enable dependency inversion and
// keep the application layer testable with mocks.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The order must exist in the repository and be valid.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByTransactionID retrieves the order whose payment transaction matches
	// the given provider transaction identifier. Returns errs.ObjectNotFoundError
	// when no order references the transaction.
	GetByTransactionID(ctx context.Context, transactionID string) (*order.Order, error)

	// GetAllReadyUnassigned retrieves every order in Ready status with no
	// driver bound. Used by the claim listing and the offer job.
	GetAllReadyUnassigned(ctx context.Context) ([]*order.Order, error)

	// BindDriver atomically assigns a driver to an order with a single
	// conditional write. The assignment succeeds only if the order is still
	// in Ready status with no driver bound at the moment the statement runs.
	// Returns errs.ConflictError when another driver already won the claim,
	// and errs.ObjectNotFoundError when the order does not exist.
	//
	// This is the authority for the claim race: concurrent claims for the
	// same order must resolve to exactly one winner regardless of how many
	// handlers read the order beforehand.
	BindDriver(ctx context.Context, orderID kernel.UUID, driverID kernel.UUID) error
}
