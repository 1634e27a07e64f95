// Package driver provides the Driver aggregate for the fulfillment system.
// A driver claims ready orders, carries at most one at a time, and accumulates
// completed-delivery statistics. Push notification device tokens live on the
// aggregate so stale targets can be pruned when sends fail.
package driver
