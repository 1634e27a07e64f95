package commands

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var ErrReportLocationCommandIsNotConstructed = errors.New(
	"ReportLocationCommand must be created via NewReportLocationCommand constructor",
)

// ReportLocationCommand represents a GPS sample from the bound driver's
// device. Coordinate and kinematics validation happens here, before the
// handler touches storage, so malformed reports never open a transaction.
type ReportLocationCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	driverID kernel.UUID
	position order.Position

	guard guard.ConstructorGuard
}

// NewReportLocationCommand creates a location report.
// Latitude and longitude follow WGS84 ranges, heading is degrees in [0, 360),
// speed is meters per second and must not be negative, accuracy is the sample
// radius in meters. Range violations surface as errs range errors.
func NewReportLocationCommand(
	orderID kernel.UUID,
	driverID kernel.UUID,
	latitude, longitude, accuracy, heading, speed float64,
	reportedAt time.Time,
) (ReportLocationCommand, error) {
	cmd := ReportLocationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setDriverID(driverID),
	); err != nil {
		return ReportLocationCommand{}, err
	}

	point, err := kernel.NewGeoPoint(latitude, longitude)
	if err != nil {
		return ReportLocationCommand{}, err
	}

	position, err := order.NewPosition(point, accuracy, heading, speed, reportedAt)
	if err != nil {
		return ReportLocationCommand{}, err
	}
	cmd.position = position

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReportLocationCommand) Validate() error {
	return c.guard.Validate(ErrReportLocationCommandIsNotConstructed)
}

// OrderID returns the identifier of the tracked order.
func (c ReportLocationCommand) OrderID() kernel.UUID {
	return c.orderID
}

// DriverID returns the identifier of the reporting driver.
func (c ReportLocationCommand) DriverID() kernel.UUID {
	return c.driverID
}

// Position returns the validated GPS sample.
func (c ReportLocationCommand) Position() order.Position {
	return c.position
}

func (c *ReportLocationCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *ReportLocationCommand) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}

	c.driverID = driverID
	return nil
}
