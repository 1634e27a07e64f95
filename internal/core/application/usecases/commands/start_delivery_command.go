package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrStartDeliveryCommandIsNotConstructed = errors.New(
	"StartDeliveryCommand must be created via NewStartDeliveryCommand constructor",
)

// StartDeliveryCommand represents an assigned driver picking the order up
// and heading out. Moves the order from Ready to OutForDelivery.
type StartDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

// NewStartDeliveryCommand creates a command for the given order and driver.
func NewStartDeliveryCommand(orderID, driverID kernel.UUID) (StartDeliveryCommand, error) {
	cmd := StartDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setDriverID(driverID),
	); err != nil {
		return StartDeliveryCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c StartDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrStartDeliveryCommandIsNotConstructed)
}

// OrderID returns the identifier of the order being picked up.
func (c StartDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// DriverID returns the identifier of the driver starting the run.
func (c StartDeliveryCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c *StartDeliveryCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *StartDeliveryCommand) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	c.driverID = driverID
	return nil
}
