package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
		"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
	)
	ErrTargetStatusIsInvalid   = errors.New("target status is invalid")
	ErrActorIsRequired         = errors.New("actor is required")
	ErrCancellationNeedsReason = errors.New("cancellation requires a reason")
)

// ChangeOrderStatusCommand represents a request to move an order along its
// lifecycle. Cancellation is expressed as a target of order.Cancelled together
// with a reason; every other target is a plain forward transition.
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  order.Status
	actor   string
	reason  string

	guard guard.ConstructorGuard
}

// NewChangeOrderStatusCommand creates a command to transition an order.
// The actor identifies who requested the change (customer, merchant, system)
// and is recorded on cancellations. A reason is mandatory when the target is
// order.Cancelled and ignored otherwise.
func NewChangeOrderStatusCommand(
	orderID kernel.UUID,
	target order.Status,
	actor string,
	reason string,
) (ChangeOrderStatusCommand, error) {
	cmd := ChangeOrderStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(target),
		cmd.setActor(actor),
	); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	if target == order.Cancelled && reason == "" {
		return ChangeOrderStatusCommand{}, ErrCancellationNeedsReason
	}
	cmd.reason = reason

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

// OrderID returns the identifier of the order to transition.
func (c ChangeOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the requested lifecycle status.
func (c ChangeOrderStatusCommand) Target() order.Status {
	return c.target
}

// Actor returns who requested the change.
func (c ChangeOrderStatusCommand) Actor() string {
	return c.actor
}

// Reason returns the cancellation reason, empty for forward transitions.
func (c ChangeOrderStatusCommand) Reason() string {
	return c.reason
}

func (c *ChangeOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ChangeOrderStatusCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return ErrTargetStatusIsInvalid
	}

	c.target = target
	return nil
}

func (c *ChangeOrderStatusCommand) setActor(actor string) error {
	if actor == "" {
		return ErrActorIsRequired
	}

	c.actor = actor
	return nil
}
