// Package events defines the domain events raised by the fulfillment core.
// Events are immutable facts about something that already happened; handlers
// must not assume any ordering guarantees beyond per-aggregate publication order.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of a domain event on the wire.
type Type string

const (
	TypeOrderStatusChanged Type = "order.status_changed"
	TypeDriverAssigned     Type = "order.driver_assigned"
	TypeLocationUpdated    Type = "order.location_updated"
	TypePaymentUpdated     Type = "order.payment_updated"
	TypeOrderReady         Type = "order.ready_for_pickup"
)

// Event is implemented by every domain event.
type Event interface {
	EventID() string
	EventType() Type
	OccurredAt() time.Time
	AggregateID() string
}

// BaseEvent carries the fields shared by all events. Embed it in concrete
// event types.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        Type      `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// NewBaseEvent stamps a fresh event envelope for the given aggregate.
func NewBaseEvent(eventType Type, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() Type       { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggregateId }

// OrderStatusChanged is published after every successful lifecycle
// transition, including cancellation.
type OrderStatusChanged struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	Number     string `json:"number"`
	CustomerID string `json:"customer_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	Reason     string `json:"reason,omitempty"`
}

// NewOrderStatusChanged builds the event for a transition that already took place.
func NewOrderStatusChanged(orderID, number, customerID, oldStatus, newStatus, reason string) OrderStatusChanged {
	return OrderStatusChanged{
		BaseEvent:  NewBaseEvent(TypeOrderStatusChanged, orderID),
		OrderID:    orderID,
		Number:     number,
		CustomerID: customerID,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		Reason:     reason,
	}
}

// DriverAssigned is published when a driver wins the claim for an order.
type DriverAssigned struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	Number     string `json:"number"`
	CustomerID string `json:"customer_id"`
	DriverID   string `json:"driver_id"`
}

func NewDriverAssigned(orderID, number, customerID, driverID string) DriverAssigned {
	return DriverAssigned{
		BaseEvent:  NewBaseEvent(TypeDriverAssigned, orderID),
		OrderID:    orderID,
		Number:     number,
		CustomerID: customerID,
		DriverID:   driverID,
	}
}

// LocationUpdated is published for location reports that pass the per-order
// delivery cadence. Reports absorbed by the cadence still update the stored
// tracking state but raise no event.
type LocationUpdated struct {
	BaseEvent
	OrderID           string    `json:"order_id"`
	CustomerID        string    `json:"customer_id"`
	DriverID          string    `json:"driver_id"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	Speed             float64   `json:"speed"`
	ETA               time.Time `json:"eta"`
	RemainingDistance float64   `json:"remaining_distance"`
}

func NewLocationUpdated(orderID, customerID, driverID string, latitude, longitude, speed float64, eta time.Time, remainingDistance float64) LocationUpdated {
	return LocationUpdated{
		BaseEvent:         NewBaseEvent(TypeLocationUpdated, orderID),
		OrderID:           orderID,
		CustomerID:        customerID,
		DriverID:          driverID,
		Latitude:          latitude,
		Longitude:         longitude,
		Speed:             speed,
		ETA:               eta,
		RemainingDistance: remainingDistance,
	}
}

// PaymentUpdated is published after a payment provider event settles on an order.
type PaymentUpdated struct {
	BaseEvent
	OrderID       string `json:"order_id"`
	Number        string `json:"number"`
	CustomerID    string `json:"customer_id"`
	PaymentStatus string `json:"payment_status"`
	RefundStatus  string `json:"refund_status"`
	EventKind     string `json:"event_kind"`
}

func NewPaymentUpdated(orderID, number, customerID, paymentStatus, refundStatus, eventKind string) PaymentUpdated {
	return PaymentUpdated{
		BaseEvent:     NewBaseEvent(TypePaymentUpdated, orderID),
		OrderID:       orderID,
		Number:        number,
		CustomerID:    customerID,
		PaymentStatus: paymentStatus,
		RefundStatus:  refundStatus,
		EventKind:     eventKind,
	}
}

// OrderReady announces an unassigned order waiting for a driver. The offer
// job republishes it periodically until someone claims the order.
type OrderReady struct {
	BaseEvent
	OrderID    string  `json:"order_id"`
	Number     string  `json:"number"`
	CustomerID string  `json:"customer_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

func NewOrderReady(orderID, number, customerID string, latitude, longitude float64) OrderReady {
	return OrderReady{
		BaseEvent:  NewBaseEvent(TypeOrderReady, orderID),
		OrderID:    orderID,
		Number:     number,
		CustomerID: customerID,
		Latitude:   latitude,
		Longitude:  longitude,
	}
}
