// Package order provides the Order aggregate and its state machines for the
// fulfillment system.
//
// The package includes:
//   - Order: the aggregate root covering lifecycle status, payment settlement,
//     exclusive driver binding, live tracking state and cancellation
//   - Status: an explicit lifecycle state machine with a transition table
//     checked at write time
//   - PaymentStatus / RefundStatus: the settlement state cross-cutting the
//     lifecycle
//   - Position: a single validated driver location report
//
// Key business rules:
//   - pending → confirmed → preparing → ready → out_for_delivery → delivered
//     (→ completed), with cancelled reachable from every non-terminal state
//   - exactly one driver may ever hold the driver reference, bound only while
//     the order is ready
//   - a cancelled order never keeps a captured payment: cancellation of a paid
//     order flips the payment to refunded and opens a refund sub-flow
//   - the status-timestamp map and the paidAt/refundedAt stamps are write-once
package order
