package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetTrackingSnapshotQueryHandler reads the tracking view straight from the
// orders table. It bypasses the aggregate on purpose: tracking polls are the
// hottest read in the system and need none of the domain invariants.
type GetTrackingSnapshotQueryHandler struct {
	db *gorm.DB
}

// NewGetTrackingSnapshotQueryHandler creates a handler for tracking queries.
func NewGetTrackingSnapshotQueryHandler(db *gorm.DB) GetTrackingSnapshotQueryHandler {
	return GetTrackingSnapshotQueryHandler{db: db}
}

// Handle executes the tracking query.
// Returns errs.ObjectNotFoundError when the order does not exist.
func (h GetTrackingSnapshotQueryHandler) Handle(
	ctx context.Context,
	query GetTrackingSnapshotQuery,
) (GetTrackingSnapshotQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetTrackingSnapshotQueryResponse{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			number,
			status,
			payment_status,
			destination_lat,
			destination_lon,
			driver_id,
			position_lat,
			position_lon,
			position_accuracy,
			position_heading,
			position_speed,
			position_reported_at,
			eta,
			remaining_distance,
			cancelled,
			cancellation_reason,
			status_stamps
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	var (
		resp               GetTrackingSnapshotQueryResponse
		status             int
		paymentStatus      int
		driverID           *uuid.UUID
		posLat, posLon     sql.NullFloat64
		posAccuracy        sql.NullFloat64
		posHeading         sql.NullFloat64
		posSpeed           sql.NullFloat64
		posReportedAt      sql.NullTime
		eta                sql.NullTime
		stampsRaw          []byte
	)

	err := row.Scan(
		&resp.Number,
		&status,
		&paymentStatus,
		&resp.DestinationLat,
		&resp.DestinationLon,
		&driverID,
		&posLat,
		&posLon,
		&posAccuracy,
		&posHeading,
		&posSpeed,
		&posReportedAt,
		&eta,
		&resp.RemainingDistance,
		&resp.Cancelled,
		&resp.CancellationReason,
		&stampsRaw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetTrackingSnapshotQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return GetTrackingSnapshotQueryResponse{}, err
	}

	resp.OrderID = query.OrderID()
	resp.Status = order.Status(status).String()
	resp.PaymentStatus = order.PaymentStatus(paymentStatus).String()

	if driverID != nil {
		id, idErr := kernel.UUIDFromBytes((*driverID)[:])
		if idErr != nil {
			return GetTrackingSnapshotQueryResponse{}, idErr
		}
		resp.DriverID = &id
	}

	if posLat.Valid && posLon.Valid {
		resp.Position = &PositionSnapshot{
			Latitude:   posLat.Float64,
			Longitude:  posLon.Float64,
			Accuracy:   posAccuracy.Float64,
			Heading:    posHeading.Float64,
			Speed:      posSpeed.Float64,
			ReportedAt: posReportedAt.Time,
		}
	}

	if eta.Valid {
		at := eta.Time
		resp.ETA = &at
	}

	if len(stampsRaw) > 0 {
		var timeline map[string]time.Time
		if err = json.Unmarshal(stampsRaw, &timeline); err != nil {
			return GetTrackingSnapshotQueryResponse{}, err
		}
		resp.StatusTimeline = timeline
	}

	return resp, nil
}
