package queries

import (
	"context"
	"database/sql"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailableOrdersQueryHandler lists claimable orders from the database.
// The ready timestamp comes out of the status-stamp jsonb so ordering happens
// in SQL rather than in memory.
type GetAvailableOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetAvailableOrdersQueryHandler creates a handler for claim listings.
func NewGetAvailableOrdersQueryHandler(db *gorm.DB) GetAvailableOrdersQueryHandler {
	return GetAvailableOrdersQueryHandler{db: db}
}

// Handle executes the listing query. Orders are returned oldest-ready first.
func (h GetAvailableOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableOrdersQuery,
) ([]GetAvailableOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			number,
			destination_lat,
			destination_lon,
			status_stamps->>'ready' AS ready_since
		FROM orders
		WHERE status = ? AND driver_id IS NULL
		ORDER BY status_stamps->>'ready'
	`, int(order.Ready)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]GetAvailableOrdersQueryResponse, 0)

	for rows.Next() {
		var (
			resp       GetAvailableOrdersQueryResponse
			id         uuid.UUID
			readySince sql.NullString
		)

		if err = rows.Scan(
			&id,
			&resp.Number,
			&resp.DestinationLat,
			&resp.DestinationLon,
			&readySince,
		); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.OrderID = orderID

		if readySince.Valid {
			at, parseErr := time.Parse(time.RFC3339Nano, readySince.String)
			if parseErr != nil {
				return nil, parseErr
			}
			resp.ReadySince = at
		}

		listings = append(listings, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return listings, nil
}
