package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

// PaymentEventKind identifies the provider webhook event being reconciled.
type PaymentEventKind string

const (
	PaymentCaptureSucceeded PaymentEventKind = "capture_succeeded"
	PaymentCaptureFailed    PaymentEventKind = "capture_failed"
	PaymentCaptureCanceled  PaymentEventKind = "capture_canceled"
	PaymentChargeRefunded   PaymentEventKind = "charge_refunded"
)

var (
	ErrRecordPaymentEventCommandIsNotConstructed = errors.New(
		"RecordPaymentEventCommand must be created via NewRecordPaymentEventCommand constructor",
	)
	ErrPaymentEventKindIsInvalid = errors.New("payment event kind is invalid")
	ErrEventIDIsRequired         = errors.New("event id is required")
	ErrTransactionIDIsRequired   = errors.New("transaction id is required")
	ErrRefundAmountIsInvalid     = errors.New("refund amount must not be negative")
)

// RecordPaymentEventCommand represents one event delivered by the payment
// provider. The order is resolved by its identifier when the provider echoes
// it back, otherwise by the transaction identifier.
type RecordPaymentEventCommand struct { //nolint:recvcheck //using for validation
	eventID       string
	kind          PaymentEventKind
	orderID       kernel.UUID
	transactionID string
	amount        int64
	reason        string

	guard guard.ConstructorGuard
}

// NewRecordPaymentEventCommand creates a reconciliation command. EventID is
// the provider's unique event identifier and is required for traceability.
// OrderID may be the zero UUID when the provider payload carries only the
// transaction reference. Amount is in minor currency units and is meaningful
// for refund events only. Reason carries the provider's failure description.
func NewRecordPaymentEventCommand(
	eventID string,
	kind PaymentEventKind,
	orderID kernel.UUID,
	transactionID string,
	amount int64,
	reason string,
) (RecordPaymentEventCommand, error) {
	cmd := RecordPaymentEventCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setEventID(eventID),
		cmd.setKind(kind),
		cmd.setTransactionID(transactionID),
		cmd.setAmount(amount),
	); err != nil {
		return RecordPaymentEventCommand{}, err
	}

	cmd.orderID = orderID
	cmd.reason = reason
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordPaymentEventCommand) Validate() error {
	return c.guard.Validate(ErrRecordPaymentEventCommandIsNotConstructed)
}

// EventID returns the provider's unique event identifier.
func (c RecordPaymentEventCommand) EventID() string {
	return c.eventID
}

// Kind returns the provider event kind.
func (c RecordPaymentEventCommand) Kind() PaymentEventKind {
	return c.kind
}

// OrderID returns the provider-echoed order identifier, zero when absent.
func (c RecordPaymentEventCommand) OrderID() kernel.UUID {
	return c.orderID
}

// TransactionID returns the provider transaction reference.
func (c RecordPaymentEventCommand) TransactionID() string {
	return c.transactionID
}

// Amount returns the refunded amount in minor currency units.
func (c RecordPaymentEventCommand) Amount() int64 {
	return c.amount
}

// Reason returns the provider failure description, empty when not applicable.
func (c RecordPaymentEventCommand) Reason() string {
	return c.reason
}

func (c *RecordPaymentEventCommand) setEventID(eventID string) error {
	if eventID == "" {
		return ErrEventIDIsRequired
	}

	c.eventID = eventID
	return nil
}

func (c *RecordPaymentEventCommand) setKind(kind PaymentEventKind) error {
	switch kind {
	case PaymentCaptureSucceeded, PaymentCaptureFailed, PaymentCaptureCanceled, PaymentChargeRefunded:
		c.kind = kind
		return nil
	default:
		return ErrPaymentEventKindIsInvalid
	}
}

func (c *RecordPaymentEventCommand) setTransactionID(transactionID string) error {
	if transactionID == "" {
		return ErrTransactionIDIsRequired
	}

	c.transactionID = transactionID
	return nil
}

func (c *RecordPaymentEventCommand) setAmount(amount int64) error {
	if amount < 0 {
		return ErrRefundAmountIsInvalid
	}

	c.amount = amount
	return nil
}
