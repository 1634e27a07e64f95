package driver

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Domain errors for driver operations.
var (
	// ErrNameIsRequired is returned when attempting to create a driver without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrDriverIsNotConstructed is returned when using an improperly initialized Driver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver or RestoreDriver constructor")
)

// State represents the availability of a driver for new deliveries.
type State int

const (
	// StateUnknown represents an invalid or undefined driver state.
	StateUnknown State = iota

	// Available means the driver is online and may claim ready orders.
	Available

	// OnDelivery means the driver is currently carrying an order.
	OnDelivery

	// Offline means the driver is not accepting work.
	Offline
)

func getStateStrings() map[State]string {
	return map[State]string{
		StateUnknown: "Unknown",
		Available:    "available",
		OnDelivery:   "on_delivery",
		Offline:      "offline",
	}
}

// Validate checks if the State value is one of the defined driver states.
func (s State) Validate() error {
	if s != Available && s != OnDelivery && s != Offline {
		return errs.NewValueIsInvalidErrorWithCause(
			"driver state", fmt.Errorf("%d is not a valid driver state", s))
	}
	return nil
}

// String returns the wire name of the driver state.
func (s State) String() string {
	if str, ok := getStateStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Driver represents a delivery driver. It tracks availability, completed
// delivery statistics, and the device tokens used for push notifications.
//
// Business rules:
//   - a driver starts Available
//   - StartDelivery is only permitted while Available
//   - FinishDelivery returns the driver to Available and increments the
//     completed-delivery counter; the counter is incremented nowhere else
//   - stale device tokens are pruned so future sends stop failing on them
type Driver struct {
	id                  kernel.UUID
	name                string
	state               State
	completedDeliveries int
	deviceTokens        []string
	guard               guard.ConstructorGuard
}

// NewDriver creates a new Driver in the Available state.
func NewDriver(id kernel.UUID, name string) (*Driver, error) {
	d := &Driver{
		state: Available,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDriver reconstructs a Driver aggregate from persistent storage.
func RestoreDriver(
	id kernel.UUID,
	name string,
	state State,
	completedDeliveries int,
	deviceTokens []string,
) (*Driver, error) {
	d := &Driver{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		state.Validate(),
	); err != nil {
		return nil, err
	}

	if completedDeliveries < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"completedDeliveries", fmt.Errorf("%d is negative", completedDeliveries))
	}

	d.state = state
	d.completedDeliveries = completedDeliveries
	d.deviceTokens = append([]string(nil), deviceTokens...)
	return d, nil
}

// Validate ensures the Driver instance was properly constructed.
func (d *Driver) Validate() error {
	if d == nil || d.guard.Validate(ErrDriverIsNotConstructed) != nil {
		return ErrDriverIsNotConstructed
	}
	return nil
}

// IsEqual compares two drivers by their unique identifiers.
func (d *Driver) IsEqual(other *Driver) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the driver's unique identifier.
func (d *Driver) ID() kernel.UUID {
	return d.id
}

// Name returns the driver's display name.
func (d *Driver) Name() string {
	return d.name
}

// State returns the driver's availability state.
func (d *Driver) State() State {
	return d.state
}

// CompletedDeliveries returns the number of deliveries the driver has finished.
func (d *Driver) CompletedDeliveries() int {
	return d.completedDeliveries
}

// DeviceTokens returns a copy of the driver's push notification targets.
func (d *Driver) DeviceTokens() []string {
	return append([]string(nil), d.deviceTokens...)
}

// StartDelivery marks the driver as carrying an order.
// Only permitted while the driver is Available.
func (d *Driver) StartDelivery() error {
	if d.state != Available {
		return errs.NewValueIsInvalidErrorWithCause(
			"driver state", fmt.Errorf("%s is not a valid state to start a delivery", d.state))
	}

	d.state = OnDelivery
	return nil
}

// FinishDelivery returns the driver to Available and increments the
// completed-delivery counter.
func (d *Driver) FinishDelivery() error {
	if d.state != OnDelivery {
		return errs.NewValueIsInvalidErrorWithCause(
			"driver state", fmt.Errorf("%s is not a valid state to finish a delivery", d.state))
	}

	d.state = Available
	d.completedDeliveries++
	return nil
}

// GoOffline marks the driver as not accepting work.
func (d *Driver) GoOffline() error {
	if d.state == OnDelivery {
		return errs.NewValueIsInvalidErrorWithCause(
			"driver state", errors.New("driver cannot go offline while on a delivery"))
	}

	d.state = Offline
	return nil
}

// GoOnline returns an offline driver to Available.
func (d *Driver) GoOnline() {
	if d.state == Offline {
		d.state = Available
	}
}

// AddDeviceToken registers a push notification target. Duplicates are ignored.
func (d *Driver) AddDeviceToken(token string) error {
	if token == "" {
		return errs.NewValueIsRequiredError("device token")
	}
	for _, existing := range d.deviceTokens {
		if existing == token {
			return nil
		}
	}
	d.deviceTokens = append(d.deviceTokens, token)
	return nil
}

// PruneDeviceToken removes a stale push target so future sends do not
// repeatedly fail on it. Unknown tokens are ignored.
func (d *Driver) PruneDeviceToken(token string) {
	for i, existing := range d.deviceTokens {
		if existing == token {
			d.deviceTokens = append(d.deviceTokens[:i], d.deviceTokens[i+1:]...)
			return
		}
	}
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}
