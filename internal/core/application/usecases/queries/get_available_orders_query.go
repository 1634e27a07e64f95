package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetAvailableOrdersQueryIsNotConstructed = errors.New(
	"GetAvailableOrdersQuery must be created via NewGetAvailableOrdersQuery constructor",
)

// GetAvailableOrdersQuery retrieves orders waiting for a driver: Ready status
// with no driver bound. This backs the claim listing drivers poll.
type GetAvailableOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetAvailableOrdersQuery creates a query for claimable orders.
// This is a parameterless query.
func NewGetAvailableOrdersQuery() GetAvailableOrdersQuery {
	return GetAvailableOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetAvailableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableOrdersQueryIsNotConstructed)
}

// GetAvailableOrdersQueryResponse is one claimable order in the listing.
// ReadySince is when the order entered Ready; listings are oldest first so
// long-waiting orders surface at the top.
type GetAvailableOrdersQueryResponse struct {
	OrderID        kernel.UUID
	Number         string
	DestinationLat float64
	DestinationLon float64
	ReadySince     time.Time
}
