package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with an explicit transition table so that
// every status change is checked against defined edges at write time rather
// than inferred from ad hoc conditions in handlers.
//
// State transitions:
//
//	Pending → Confirmed → Preparing → Ready → OutForDelivery → Delivered → Completed
//	    └─────────┴───────────┴─────────┴────────────┴─────────────┴──> Cancelled
//
// Cancelled is terminal and reachable from every non-terminal state.
// Completed is an optional bookkeeping state after Delivered and is terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status assigned at checkout, before payment
	// capture or staff confirmation.
	Pending

	// Confirmed indicates the order was accepted (payment captured or staff
	// confirmed) and is queued for preparation.
	Confirmed

	// Preparing indicates staff are actively preparing the order.
	Preparing

	// Ready indicates the order is prepared and awaiting a driver claim.
	Ready

	// OutForDelivery indicates a bound driver has picked up the order.
	OutForDelivery

	// Delivered indicates the driver completed the handoff to the customer.
	Delivered

	// Completed is an optional post-delivery bookkeeping state.
	Completed

	// Cancelled is the terminal state for aborted orders.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "Unknown",
		Pending:        "pending",
		Confirmed:      "confirmed",
		Preparing:      "preparing",
		Ready:          "ready",
		OutForDelivery: "out_for_delivery",
		Delivered:      "delivered",
		Completed:      "completed",
		Cancelled:      "cancelled",
	}
}

// successors is the transition table: for each state, the set of states it may
// move to. Absence of an edge means the transition is invalid.
func successors() map[Status][]Status {
	return map[Status][]Status{
		Pending:        {Confirmed, Cancelled},
		Confirmed:      {Preparing, Cancelled},
		Preparing:      {Ready, Cancelled},
		Ready:          {OutForDelivery, Cancelled},
		OutForDelivery: {Delivered, Cancelled},
		Delivered:      {Completed, Cancelled},
		Completed:      {},
		Cancelled:      {},
	}
}

// StatusFromString parses the wire representation of a status.
// Returns a ValueIsInvalidError for unknown names, including "Unknown".
func StatusFromString(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is one of the defined lifecycle states.
func (s Status) Validate() error {
	if _, ok := successors()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status. Implements fmt.Stringer and is
// safe to call on any value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	next, ok := successors()[s]
	return ok && len(next) == 0
}

// CanTransitionTo reports whether target is in the successor set of s.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range successors()[s] {
		if next == target {
			return true
		}
	}
	return false
}

// TransitionTo returns target if the edge s→target exists in the transition
// table, or a ValueIsInvalidError naming both states otherwise. This is the
// single authority for status edges; callers never mutate status directly.
func (s Status) TransitionTo(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return Unknown, err
	}

	if !s.CanTransitionTo(target) {
		return Unknown, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("transition from %s to %s is not allowed", s, target),
		)
	}

	return target, nil
}
