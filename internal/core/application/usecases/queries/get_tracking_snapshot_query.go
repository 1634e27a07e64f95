// Package queries contains the read side of the CQRS split. Query handlers
// go straight to the database with raw SQL and return plain response structs;
// they never load aggregates or mutate state.
package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrGetTrackingSnapshotQueryIsNotConstructed = errors.New(
	"GetTrackingSnapshotQuery must be created via NewGetTrackingSnapshotQuery constructor",
)

// GetTrackingSnapshotQuery retrieves the live tracking view of one order:
// lifecycle status, payment state, last known courier position and the
// current arrival estimate.
type GetTrackingSnapshotQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetTrackingSnapshotQuery creates a tracking query for the given order.
func NewGetTrackingSnapshotQuery(orderID kernel.UUID) (GetTrackingSnapshotQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetTrackingSnapshotQuery{}, err
	}

	return GetTrackingSnapshotQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetTrackingSnapshotQuery) Validate() error {
	return q.guard.Validate(ErrGetTrackingSnapshotQueryIsNotConstructed)
}

// OrderID returns the identifier of the tracked order.
func (q GetTrackingSnapshotQuery) OrderID() kernel.UUID {
	return q.orderID
}

// PositionSnapshot is the last reported courier position.
type PositionSnapshot struct {
	Latitude   float64
	Longitude  float64
	Accuracy   float64
	Heading    float64
	Speed      float64
	ReportedAt time.Time
}

// GetTrackingSnapshotQueryResponse is the customer-facing tracking view.
// Position and ETA are nil until the first location report arrives.
type GetTrackingSnapshotQueryResponse struct {
	OrderID            kernel.UUID
	Number             string
	Status             string
	PaymentStatus      string
	DestinationLat     float64
	DestinationLon     float64
	DriverID           *kernel.UUID
	Position           *PositionSnapshot
	ETA                *time.Time
	RemainingDistance  float64
	Cancelled          bool
	CancellationReason string
	StatusTimeline     map[string]time.Time
}
