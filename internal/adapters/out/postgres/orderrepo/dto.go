// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, converting between domain entities and database rows.
package orderrepo

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The current position is stored in flat nullable columns so tracking queries
// never need to unpack JSON; the bounded position history and the
// status-timestamp map are jsonb payloads that only the aggregate reads back.
type OrderDTO struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Number      string      `gorm:"uniqueIndex"`
	CustomerID  uuid.UUID   `gorm:"type:uuid;index"`
	DriverID    *uuid.UUID  `gorm:"type:uuid;index"`
	PreparerID  *uuid.UUID  `gorm:"type:uuid"`
	Destination GeoPointDTO `gorm:"embedded;embeddedPrefix:destination_"`

	Status       int    `gorm:"index"`
	StatusStamps []byte `gorm:"type:jsonb"`

	PaymentStatus        int
	TransactionID        string `gorm:"index"`
	PaidAt               *time.Time
	RefundedAt           *time.Time
	PaymentFailureReason string

	PositionLat        *float64
	PositionLon        *float64
	PositionAccuracy   *float64
	PositionHeading    *float64
	PositionSpeed      *float64
	PositionReportedAt *time.Time
	PositionHistory    []byte `gorm:"type:jsonb"`

	ETA               *time.Time
	RemainingDistance float64
	DeliveryNotes     string

	Cancelled          bool
	CancellationReason string
	CancellationActor  string

	RefundStatus        int
	RefundAmount        int64
	RefundTransactionID string
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// GeoPointDTO represents the embedded destination coordinates within the order table.
type GeoPointDTO struct {
	Lat float64
	Lon float64
}

// positionJSON is the wire shape of one history entry in the jsonb column.
type positionJSON struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Accuracy   float64   `json:"accuracy"`
	Heading    float64   `json:"heading"`
	Speed      float64   `json:"speed"`
	ReportedAt time.Time `json:"reported_at"`
}

func positionToJSON(pos order.Position) positionJSON {
	return positionJSON{
		Lat:        pos.Point().Latitude(),
		Lon:        pos.Point().Longitude(),
		Accuracy:   pos.Accuracy(),
		Heading:    pos.Heading(),
		Speed:      pos.Speed(),
		ReportedAt: pos.ReportedAt(),
	}
}

func positionFromJSON(p positionJSON) (order.Position, error) {
	point, err := kernel.NewGeoPoint(p.Lat, p.Lon)
	if err != nil {
		return order.Position{}, err
	}
	return order.NewPosition(point, p.Accuracy, p.Heading, p.Speed, p.ReportedAt)
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) (OrderDTO, error) {
	dto := OrderDTO{
		ID:         aggregate.ID().Bytes(),
		Number:     aggregate.Number(),
		CustomerID: aggregate.CustomerID().Bytes(),
		Destination: GeoPointDTO{
			Lat: aggregate.Destination().Latitude(),
			Lon: aggregate.Destination().Longitude(),
		},
		Status:               int(aggregate.Status()),
		PaymentStatus:        int(aggregate.PaymentStatus()),
		TransactionID:        aggregate.TransactionID(),
		PaidAt:               aggregate.PaidAt(),
		RefundedAt:           aggregate.RefundedAt(),
		PaymentFailureReason: aggregate.PaymentFailureReason(),
		ETA:                  aggregate.ETA(),
		RemainingDistance:    aggregate.RemainingDistance(),
		DeliveryNotes:        aggregate.DeliveryNotes(),
		Cancelled:            aggregate.IsCancelled(),
		CancellationReason:   aggregate.CancellationReason(),
		CancellationActor:    aggregate.CancellationActor(),
		RefundStatus:         int(aggregate.RefundStatus()),
		RefundAmount:         aggregate.RefundAmount(),
		RefundTransactionID:  aggregate.RefundTransactionID(),
	}

	if id := aggregate.Driver(); id != nil {
		raw := id.Bytes()
		dto.DriverID = &raw
	}
	if id := aggregate.Preparer(); id != nil {
		raw := id.Bytes()
		dto.PreparerID = &raw
	}

	if pos := aggregate.CurrentPosition(); pos != nil {
		lat, lon := pos.Point().Latitude(), pos.Point().Longitude()
		accuracy, heading, speed := pos.Accuracy(), pos.Heading(), pos.Speed()
		reportedAt := pos.ReportedAt()
		dto.PositionLat = &lat
		dto.PositionLon = &lon
		dto.PositionAccuracy = &accuracy
		dto.PositionHeading = &heading
		dto.PositionSpeed = &speed
		dto.PositionReportedAt = &reportedAt
	}

	stamps := make(map[string]time.Time)
	for status, at := range aggregate.StatusTimestamps() {
		stamps[status.String()] = at
	}
	stampsRaw, err := json.Marshal(stamps)
	if err != nil {
		return OrderDTO{}, err
	}
	dto.StatusStamps = stampsRaw

	history := aggregate.PositionHistory()
	entries := make([]positionJSON, 0, len(history))
	for _, pos := range history {
		entries = append(entries, positionToJSON(pos))
	}
	historyRaw, err := json.Marshal(entries)
	if err != nil {
		return OrderDTO{}, err
	}
	dto.PositionHistory = historyRaw

	return dto, nil
}

// toDomain converts a database row to an order aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	destination, err := kernel.NewGeoPoint(dto.Destination.Lat, dto.Destination.Lon)
	if err != nil {
		return nil, err
	}

	params := order.RestoreOrderParams{
		ID:                   id,
		Number:               dto.Number,
		CustomerID:           customerID,
		Destination:          destination,
		Status:               order.Status(dto.Status),
		PaymentStatus:        order.PaymentStatus(dto.PaymentStatus),
		TransactionID:        dto.TransactionID,
		PaidAt:               dto.PaidAt,
		RefundedAt:           dto.RefundedAt,
		PaymentFailureReason: dto.PaymentFailureReason,
		ETA:                  dto.ETA,
		RemainingDistance:    dto.RemainingDistance,
		DeliveryNotes:        dto.DeliveryNotes,
		Cancelled:            dto.Cancelled,
		CancellationReason:   dto.CancellationReason,
		CancellationActor:    dto.CancellationActor,
		RefundStatus:         order.RefundStatus(dto.RefundStatus),
		RefundAmount:         dto.RefundAmount,
		RefundTransactionID:  dto.RefundTransactionID,
	}

	if dto.DriverID != nil {
		driverID, driverErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if driverErr != nil {
			return nil, driverErr
		}
		params.DriverID = &driverID
	}
	if dto.PreparerID != nil {
		preparerID, preparerErr := kernel.UUIDFromBytes((*dto.PreparerID)[:])
		if preparerErr != nil {
			return nil, preparerErr
		}
		params.PreparerID = &preparerID
	}

	if len(dto.StatusStamps) > 0 {
		var stamps map[string]time.Time
		if err = json.Unmarshal(dto.StatusStamps, &stamps); err != nil {
			return nil, err
		}
		params.StatusStamps = make(map[order.Status]time.Time, len(stamps))
		for name, at := range stamps {
			status, statusErr := order.StatusFromString(name)
			if statusErr != nil {
				return nil, statusErr
			}
			params.StatusStamps[status] = at
		}
	}

	if dto.PositionLat != nil && dto.PositionLon != nil {
		current, posErr := positionFromJSON(positionJSON{
			Lat:        *dto.PositionLat,
			Lon:        *dto.PositionLon,
			Accuracy:   deref(dto.PositionAccuracy),
			Heading:    deref(dto.PositionHeading),
			Speed:      deref(dto.PositionSpeed),
			ReportedAt: derefTime(dto.PositionReportedAt),
		})
		if posErr != nil {
			return nil, posErr
		}
		params.CurrentPosition = &current
	}

	if len(dto.PositionHistory) > 0 {
		var entries []positionJSON
		if err = json.Unmarshal(dto.PositionHistory, &entries); err != nil {
			return nil, err
		}
		params.PositionHistory = make([]order.Position, 0, len(entries))
		for _, entry := range entries {
			pos, posErr := positionFromJSON(entry)
			if posErr != nil {
				return nil, posErr
			}
			params.PositionHistory = append(params.PositionHistory, pos)
		}
	}

	return order.RestoreOrder(params)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func derefTime(v *time.Time) time.Time {
	if v == nil {
		return time.Time{}
	}
	return *v
}
