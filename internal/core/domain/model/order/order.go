package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Domain errors for order operations.
var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrDriverAlreadyAssigned is returned when binding a driver to an order that
	// already holds a driver reference.
	ErrDriverAlreadyAssigned = errs.NewConflictError("order already assigned")

	// ErrDriverNotBound is returned when a driver acts on an order bound to a
	// different driver (or to no driver). Reported as an authorization failure so
	// client apps refresh state instead of retrying blindly.
	ErrDriverNotBound = errs.NewNotAuthorizedError("driver is not bound to order")

	// ErrOrderNotReady is returned when a claim targets an order outside the
	// Ready status.
	ErrOrderNotReady = errs.NewValueIsInvalidError("order is not ready for claim")
)

// Order is the central aggregate of the fulfillment core: a customer purchase
// tracked from checkout through preparation, driver handoff, delivery and
// payment settlement.
//
// Invariants maintained by this aggregate:
//   - status only moves along edges of the transition table in status.go;
//     the only backward edge is into Cancelled (via Cancel)
//   - the status-timestamp map is append-only: the instant a state was first
//     entered is never overwritten
//   - at most one driver reference is ever bound; binding requires Ready
//     status and a currently nil reference
//   - paidAt/refundedAt, once set, are never cleared or rewritten
//   - cancelling a paid order never leaves the payment captured: payment
//     status flips to refunded and a refund sub-flow is opened
//   - position history is bounded to MaxPositionHistory entries
//
// The struct uses private fields; all mutation goes through validated methods.
type Order struct {
	id          kernel.UUID
	number      string
	customerID  kernel.UUID
	destination kernel.GeoPoint

	status       Status
	statusStamps map[Status]time.Time

	paymentStatus        PaymentStatus
	transactionID        string
	paidAt               *time.Time
	refundedAt           *time.Time
	paymentFailureReason string

	driverID   *kernel.UUID
	preparerID *kernel.UUID

	currentPosition   *Position
	positionHistory   []Position
	eta               *time.Time
	remainingDistance float64
	deliveryNotes     string

	cancelled           bool
	cancellationReason  string
	cancellationActor   string
	refundStatus        RefundStatus
	refundAmount        int64
	refundTransactionID string

	guard guard.ConstructorGuard
}

// NewOrder creates a new Order in Pending status with payment pending.
// The Pending entry in the status-timestamp map is stamped with createdAt.
//
// Parameters:
//   - id: unique identifier (must be a valid UUID)
//   - number: immutable human-readable order number (must be non-empty)
//   - customerID: owning customer (must be a valid UUID)
//   - destination: delivery coordinates (must be a constructed GeoPoint)
//   - createdAt: checkout instant, stamped as the Pending entry
func NewOrder(
	id kernel.UUID,
	number string,
	customerID kernel.UUID,
	destination kernel.GeoPoint,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		paymentStatus: PaymentPending,
		statusStamps:  make(map[Status]time.Time),
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setNumber(number),
		o.setCustomerID(customerID),
		o.setDestination(destination),
	); err != nil {
		return nil, err
	}

	o.stampStatus(Pending, createdAt)
	return o, nil
}

// RestoreOrderParams carries the persisted state needed to rehydrate an Order.
type RestoreOrderParams struct {
	ID                   kernel.UUID
	Number               string
	CustomerID           kernel.UUID
	Destination          kernel.GeoPoint
	Status               Status
	StatusStamps         map[Status]time.Time
	PaymentStatus        PaymentStatus
	TransactionID        string
	PaidAt               *time.Time
	RefundedAt           *time.Time
	PaymentFailureReason string
	DriverID             *kernel.UUID
	PreparerID           *kernel.UUID
	CurrentPosition      *Position
	PositionHistory      []Position
	ETA                  *time.Time
	RemainingDistance    float64
	DeliveryNotes        string
	Cancelled            bool
	CancellationReason   string
	CancellationActor    string
	RefundStatus         RefundStatus
	RefundAmount         int64
	RefundTransactionID  string
}

// RestoreOrder reconstructs an Order aggregate from persistent storage.
// Unlike NewOrder it preserves the persisted lifecycle state; the restored
// order behaves identically to one mutated through normal domain operations.
func RestoreOrder(p RestoreOrderParams) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(p.ID),
		o.setNumber(p.Number),
		o.setCustomerID(p.CustomerID),
		o.setDestination(p.Destination),
		p.Status.Validate(),
		p.PaymentStatus.Validate(),
	); err != nil {
		return nil, err
	}

	o.status = p.Status
	o.paymentStatus = p.PaymentStatus
	o.transactionID = p.TransactionID
	o.paidAt = p.PaidAt
	o.refundedAt = p.RefundedAt
	o.paymentFailureReason = p.PaymentFailureReason
	o.driverID = p.DriverID
	o.preparerID = p.PreparerID
	o.currentPosition = p.CurrentPosition
	o.positionHistory = p.PositionHistory
	o.eta = p.ETA
	o.remainingDistance = p.RemainingDistance
	o.deliveryNotes = p.DeliveryNotes
	o.cancelled = p.Cancelled
	o.cancellationReason = p.CancellationReason
	o.cancellationActor = p.CancellationActor
	o.refundStatus = p.RefundStatus
	o.refundAmount = p.RefundAmount
	o.refundTransactionID = p.RefundTransactionID

	o.statusStamps = make(map[Status]time.Time, len(p.StatusStamps))
	for status, at := range p.StatusStamps {
		o.statusStamps[status] = at
	}

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || o.guard.Validate(ErrOrderIsNotConstructed) != nil {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Number returns the immutable human-readable order number.
func (o *Order) Number() string {
	return o.number
}

// CustomerID returns the owning customer's identifier.
func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

// Destination returns the delivery coordinates.
func (o *Order) Destination() kernel.GeoPoint {
	return o.destination
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// PaymentStatus returns the current settlement state of the charge.
func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// TransactionID returns the gateway transaction id of the capture, if any.
func (o *Order) TransactionID() string {
	return o.transactionID
}

// PaidAt returns the instant the capture first settled, nil if never paid.
func (o *Order) PaidAt() *time.Time {
	return o.paidAt
}

// RefundedAt returns the instant the refund was first recorded, nil if never refunded.
func (o *Order) RefundedAt() *time.Time {
	return o.refundedAt
}

// PaymentFailureReason returns the gateway's decline reason, if any.
func (o *Order) PaymentFailureReason() string {
	return o.paymentFailureReason
}

// Driver returns the bound driver's ID, nil if no driver is bound.
func (o *Order) Driver() *kernel.UUID {
	return o.driverID
}

// Preparer returns the staff preparer's ID, nil if unassigned.
func (o *Order) Preparer() *kernel.UUID {
	return o.preparerID
}

// CurrentPosition returns the most recent driver location report, nil before
// the first report.
func (o *Order) CurrentPosition() *Position {
	return o.currentPosition
}

// PositionHistory returns a copy of the bounded position history, oldest first.
func (o *Order) PositionHistory() []Position {
	history := make([]Position, len(o.positionHistory))
	copy(history, o.positionHistory)
	return history
}

// ETA returns the estimated arrival instant, nil before the first estimate.
// The value is an absolute timestamp so staleness is externally observable.
func (o *Order) ETA() *time.Time {
	return o.eta
}

// RemainingDistance returns the last computed distance to destination in meters.
func (o *Order) RemainingDistance() float64 {
	return o.remainingDistance
}

// DeliveryNotes returns the accumulated delivery notes.
func (o *Order) DeliveryNotes() string {
	return o.deliveryNotes
}

// StatusTimestamps returns a copy of the append-only map from status to the
// instant it was first entered.
func (o *Order) StatusTimestamps() map[Status]time.Time {
	stamps := make(map[Status]time.Time, len(o.statusStamps))
	for status, at := range o.statusStamps {
		stamps[status] = at
	}
	return stamps
}

// StatusEnteredAt returns the instant the given status was first entered.
func (o *Order) StatusEnteredAt(status Status) (time.Time, bool) {
	at, ok := o.statusStamps[status]
	return at, ok
}

// DeliveredAt returns the actual delivery instant, nil if not delivered.
func (o *Order) DeliveredAt() *time.Time {
	if at, ok := o.statusStamps[Delivered]; ok {
		return &at
	}
	return nil
}

// IsCancelled reports whether the order was cancelled.
func (o *Order) IsCancelled() bool {
	return o.cancelled
}

// CancellationReason returns the recorded reason for cancellation.
func (o *Order) CancellationReason() string {
	return o.cancellationReason
}

// CancellationActor returns who requested the cancellation.
func (o *Order) CancellationActor() string {
	return o.cancellationActor
}

// RefundStatus returns the state of the refund sub-flow, RefundNone if no
// refund was ever owed.
func (o *Order) RefundStatus() RefundStatus {
	return o.refundStatus
}

// RefundAmount returns the refunded amount in minor currency units.
func (o *Order) RefundAmount() int64 {
	return o.refundAmount
}

// RefundTransactionID returns the gateway transaction id of the refund, if any.
func (o *Order) RefundTransactionID() string {
	return o.refundTransactionID
}

// IsBoundTo reports whether the given driver holds the order's driver reference.
func (o *Order) IsBoundTo(driverID kernel.UUID) bool {
	return o.driverID != nil && o.driverID.IsEqual(driverID)
}

// TransitionTo moves the order along a forward edge of the transition table
// and stamps the first-entry timestamp for the target state.
//
// Cancellation is not reachable through this method: Cancel carries the
// payment coupling that a bare status write would silently skip.
func (o *Order) TransitionTo(target Status, at time.Time) error {
	if target == Cancelled {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", errors.New("cancellation must go through Cancel"))
	}

	newStatus, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}

	o.status = newStatus
	o.stampStatus(newStatus, at)
	return nil
}

// Cancel moves the order into the terminal Cancelled state, recording reason
// and actor. When the payment was already captured the payment status flips to
// refunded and a refund sub-flow is opened (RefundPending); an order is never
// left cancelled with a captured payment unresolved.
func (o *Order) Cancel(reason, actor string, at time.Time) error {
	newStatus, err := o.status.TransitionTo(Cancelled)
	if err != nil {
		return err
	}

	o.status = newStatus
	o.stampStatus(Cancelled, at)
	o.cancelled = true
	o.cancellationReason = reason
	o.cancellationActor = actor

	if o.paymentStatus == PaymentPaid {
		o.paymentStatus = PaymentRefunded
		o.refundStatus = RefundPending
		if o.refundedAt == nil {
			stamp := at
			o.refundedAt = &stamp
		}
	}

	return nil
}

// AssignDriver binds a driver to the order. Binding is exclusive and only
// permitted while the order is Ready and the reference is currently nil.
//
// This is the aggregate-level rule; under concurrent claims the persistence
// layer must apply the binding as a single conditional write (see
// ports.OrderRepository.BindDriver), because read-then-write from here cannot
// close the race between two simultaneous claimants.
func (o *Order) AssignDriver(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	if o.status != Ready {
		return ErrOrderNotReady
	}
	if o.driverID != nil {
		return ErrDriverAlreadyAssigned
	}

	o.driverID = &driverID
	return nil
}

// AssignPreparer binds the staff member preparing the order.
// Permitted while the order is Confirmed or Preparing.
func (o *Order) AssignPreparer(staffID kernel.UUID) error {
	if err := staffID.Validate(); err != nil {
		return err
	}
	if o.status != Confirmed && o.status != Preparing {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s is not a valid status to assign a preparer", o.status))
	}

	o.preparerID = &staffID
	return nil
}

// StartDelivery transitions the order to OutForDelivery on behalf of the
// bound driver. A mismatched or missing binding is an authorization failure.
func (o *Order) StartDelivery(driverID kernel.UUID, at time.Time) error {
	if !o.IsBoundTo(driverID) {
		return ErrDriverNotBound
	}

	return o.TransitionTo(OutForDelivery, at)
}

// CompleteDelivery transitions the order to Delivered on behalf of the bound
// driver, stamping the actual delivery time and appending notes.
func (o *Order) CompleteDelivery(driverID kernel.UUID, notes string, at time.Time) error {
	if !o.IsBoundTo(driverID) {
		return ErrDriverNotBound
	}

	if err := o.TransitionTo(Delivered, at); err != nil {
		return err
	}

	if notes != "" {
		if o.deliveryNotes != "" {
			o.deliveryNotes += "\n"
		}
		o.deliveryNotes += notes
	}
	return nil
}

// RecordPosition overwrites the current location and appends the report to the
// bounded history, dropping the oldest entry past MaxPositionHistory.
func (o *Order) RecordPosition(pos Position) error {
	if err := pos.Validate(); err != nil {
		return err
	}

	o.currentPosition = &pos
	o.positionHistory = append(o.positionHistory, pos)
	if len(o.positionHistory) > MaxPositionHistory {
		o.positionHistory = o.positionHistory[len(o.positionHistory)-MaxPositionHistory:]
	}
	return nil
}

// SetETA stores a recomputed arrival estimate and remaining distance.
// Estimates are only meaningful while the order is out for delivery; outside
// that status the last known value is kept for historical display and this
// method rejects the write.
func (o *Order) SetETA(eta time.Time, remainingDistance float64) error {
	if o.status != OutForDelivery {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s is not a valid status to update the arrival estimate", o.status))
	}

	stamp := eta
	o.eta = &stamp
	o.remainingDistance = remainingDistance
	return nil
}

// MarkPaid records a successful capture. The write is idempotent: payment
// status and transaction id are last-value-wins sets, and paidAt is only
// written when unset, so replaying the same gateway event changes nothing.
func (o *Order) MarkPaid(transactionID string, at time.Time) {
	o.paymentStatus = PaymentPaid
	o.transactionID = transactionID
	o.paymentFailureReason = ""
	if o.paidAt == nil {
		stamp := at
		o.paidAt = &stamp
	}
}

// MarkPaymentFailed records a declined capture. Order status is untouched:
// the order stays reserved for a payment retry window.
func (o *Order) MarkPaymentFailed(reason string) {
	o.paymentStatus = PaymentFailed
	o.paymentFailureReason = reason
}

// ResetPaymentToPending records a canceled capture. A cancel is not a decline,
// so the payment returns to pending rather than failed.
func (o *Order) ResetPaymentToPending() {
	o.paymentStatus = PaymentPending
	o.paymentFailureReason = ""
}

// MarkRefunded records a confirmed refund from the gateway. refundedAt is only
// written when unset; an open refund sub-flow is closed as completed.
func (o *Order) MarkRefunded(amount int64, transactionID string, at time.Time) {
	o.paymentStatus = PaymentRefunded
	o.refundAmount = amount
	o.refundTransactionID = transactionID
	if o.refundedAt == nil {
		stamp := at
		o.refundedAt = &stamp
	}
	if o.refundStatus == RefundPending || o.refundStatus == RefundProcessing {
		o.refundStatus = RefundCompleted
	}
}

// MarkRefundProcessing records that the refund was submitted to the gateway.
func (o *Order) MarkRefundProcessing() {
	o.refundStatus = RefundProcessing
}

// MarkRefundFailed records a refund the gateway rejected. The explicit failed
// sub-status keeps the unresolved money visible for manual follow-up.
func (o *Order) MarkRefundFailed() {
	o.refundStatus = RefundFailed
}

// stampStatus records the first instant a status was entered. Later writes for
// the same status are ignored: the map is append-only.
func (o *Order) stampStatus(status Status, at time.Time) {
	if _, ok := o.statusStamps[status]; ok {
		return
	}
	o.statusStamps[status] = at
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setNumber(number string) error {
	if number == "" {
		return errs.NewValueIsRequiredError("order number")
	}
	o.number = number
	return nil
}

func (o *Order) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerID", err)
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setDestination(destination kernel.GeoPoint) error {
	if err := destination.Validate(); err != nil {
		return err
	}
	o.destination = destination
	return nil
}
