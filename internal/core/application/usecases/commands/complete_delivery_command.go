package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrCompleteDeliveryCommandIsNotConstructed = errors.New(
	"CompleteDeliveryCommand must be created via NewCompleteDeliveryCommand constructor",
)

// CompleteDeliveryCommand represents the bound driver handing the order over.
// Moves the order to Delivered and releases the driver for new claims.
type CompleteDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	driverID kernel.UUID
	notes    string

	guard guard.ConstructorGuard
}

// NewCompleteDeliveryCommand creates a completion for the given order and
// driver. Notes are optional free text from the driver (drop-off details,
// recipient remarks) appended to the order.
func NewCompleteDeliveryCommand(orderID, driverID kernel.UUID, notes string) (CompleteDeliveryCommand, error) {
	cmd := CompleteDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setDriverID(driverID),
	); err != nil {
		return CompleteDeliveryCommand{}, err
	}

	cmd.notes = notes
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CompleteDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveryCommandIsNotConstructed)
}

// OrderID returns the identifier of the order being delivered.
func (c CompleteDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// DriverID returns the identifier of the delivering driver.
func (c CompleteDeliveryCommand) DriverID() kernel.UUID {
	return c.driverID
}

// Notes returns the optional delivery notes.
func (c CompleteDeliveryCommand) Notes() string {
	return c.notes
}

func (c *CompleteDeliveryCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CompleteDeliveryCommand) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	c.driverID = driverID
	return nil
}
