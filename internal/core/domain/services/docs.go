// Package services provides stateless domain services for the fulfillment
// system. Domain services host logic that spans value objects without
// belonging to a single aggregate, currently the arrival-time estimation
// from driver position reports.
package services
