package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// MaxPositionHistory bounds the per-order position history kept for route
// replay. When a report pushes the history past this size the oldest entry is
// dropped.
const MaxPositionHistory = 100

// ErrPositionIsNotConstructed is returned when using an improperly initialized Position.
var ErrPositionIsNotConstructed = errs.NewValueIsRequiredError(
	"position must be created via NewPosition constructor")

// Position is a single driver location report: validated coordinates plus the
// motion attributes the driver app sends with each fix.
type Position struct { //nolint:recvcheck //using for validation
	point      kernel.GeoPoint
	accuracy   float64 // horizontal accuracy in meters
	heading    float64 // degrees clockwise from north, [0, 360)
	speed      float64 // meters per second
	reportedAt time.Time
	guard      guard.ConstructorGuard
}

// NewPosition creates a validated Position.
// Accuracy and speed must be non-negative, heading must lie in [0, 360).
func NewPosition(
	point kernel.GeoPoint,
	accuracy, heading, speed float64,
	reportedAt time.Time,
) (Position, error) {
	pos := Position{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		pos.setPoint(point),
		pos.setAccuracy(accuracy),
		pos.setHeading(heading),
		pos.setSpeed(speed),
		pos.setReportedAt(reportedAt),
	); err != nil {
		return Position{}, err
	}

	return pos, nil
}

// Validate checks that the Position was created through its constructor.
func (p Position) Validate() error {
	return p.guard.Validate(ErrPositionIsNotConstructed)
}

// Point returns the geographic coordinates of the report.
func (p Position) Point() kernel.GeoPoint {
	return p.point
}

// Accuracy returns the horizontal accuracy in meters.
func (p Position) Accuracy() float64 {
	return p.accuracy
}

// Heading returns the heading in degrees clockwise from north.
func (p Position) Heading() float64 {
	return p.heading
}

// Speed returns the reported speed in meters per second.
func (p Position) Speed() float64 {
	return p.speed
}

// ReportedAt returns the instant the driver app recorded the fix.
func (p Position) ReportedAt() time.Time {
	return p.reportedAt
}

func (p *Position) setPoint(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	p.point = point
	return nil
}

func (p *Position) setAccuracy(accuracy float64) error {
	if accuracy < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"accuracy", fmt.Errorf("%f is negative", accuracy))
	}
	p.accuracy = accuracy
	return nil
}

func (p *Position) setHeading(heading float64) error {
	if heading < 0 || heading >= 360 {
		return errs.NewValueIsOutOfRangeError("heading", heading, 0, 360)
	}
	p.heading = heading
	return nil
}

func (p *Position) setSpeed(speed float64) error {
	if speed < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"speed", fmt.Errorf("%f is negative", speed))
	}
	p.speed = speed
	return nil
}

func (p *Position) setReportedAt(reportedAt time.Time) error {
	if reportedAt.IsZero() {
		return errs.NewValueIsRequiredError("reportedAt")
	}
	p.reportedAt = reportedAt
	return nil
}
