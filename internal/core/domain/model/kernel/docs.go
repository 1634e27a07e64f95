// Package kernel provides shared value objects used across the fulfillment
// domain model. These are the building blocks of aggregates: immutable,
// validated at construction, invalid as zero values.
//
// The package includes:
//   - UUID: identifier value object wrapping github.com/google/uuid
//   - GeoPoint: validated geographic coordinates with great-circle distance
package kernel
