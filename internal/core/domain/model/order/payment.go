package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// PaymentStatus represents the settlement state of an order's charge.
// It cross-cuts Status but is not identical to it: an order can be delivered
// and refunded at the same time after a post-hoc cancellation.
type PaymentStatus int

const (
	// PaymentUnknown represents an invalid or undefined payment status.
	PaymentUnknown PaymentStatus = iota

	// PaymentPending means no capture has settled yet. Also the state a
	// canceled (not declined) capture returns to.
	PaymentPending

	// PaymentPaid means the gateway confirmed a successful capture.
	PaymentPaid

	// PaymentFailed means the gateway declined the capture.
	PaymentFailed

	// PaymentRefunded means the captured amount was returned to the customer.
	PaymentRefunded
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentUnknown:  "Unknown",
		PaymentPending:  "pending",
		PaymentPaid:     "paid",
		PaymentFailed:   "failed",
		PaymentRefunded: "refunded",
	}
}

// Validate checks if the PaymentStatus value is one of the defined states.
func (s PaymentStatus) Validate() error {
	if s == PaymentUnknown {
		return errs.NewValueIsInvalidErrorWithCause(
			"payment status", fmt.Errorf("%d is not a valid payment status", s))
	}
	if _, ok := getPaymentStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"payment status", fmt.Errorf("%d is not a valid payment status", s))
	}
	return nil
}

// String returns the wire name of the payment status.
func (s PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// RefundStatus tracks the sub-flow opened when a paid order is cancelled.
type RefundStatus int

const (
	// RefundNone means no refund sub-flow has been opened.
	RefundNone RefundStatus = iota

	// RefundPending means a refund is owed but not yet submitted to the gateway.
	RefundPending

	// RefundProcessing means the refund was submitted and awaits confirmation.
	RefundProcessing

	// RefundCompleted means the gateway confirmed the refund.
	RefundCompleted

	// RefundFailed means the gateway rejected the refund; requires manual follow-up.
	RefundFailed
)

func getRefundStatusStrings() map[RefundStatus]string {
	return map[RefundStatus]string{
		RefundNone:       "none",
		RefundPending:    "pending",
		RefundProcessing: "processing",
		RefundCompleted:  "completed",
		RefundFailed:     "failed",
	}
}

// String returns the wire name of the refund status.
func (s RefundStatus) String() string {
	if str, ok := getRefundStatusStrings()[s]; ok {
		return str
	}
	return "none"
}
