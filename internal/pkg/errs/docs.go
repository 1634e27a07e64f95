// Package errs provides standardized error types for the fulfillment application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package defines one sentinel error per failure class plus a struct type
// carrying details. The classes map directly onto the API error taxonomy:
//
//   - ValueIsRequiredError / ValueIsInvalidError / ValueIsOutOfRangeError:
//     validation failures, rejected before any state is mutated
//   - NotAuthorizedError: the acting party does not hold the required binding
//     (wrong driver, wrong owner)
//   - ObjectNotFoundError: the referenced entity does not exist
//   - ConflictError: an optimistic precondition failed because another writer won
//
// Each error type follows the same pattern: a sentinel variable, a struct with
// ParamName and optional Cause, constructors with and without cause, Error()
// for formatting and Unwrap() returning the sentinel so errors.Is works.
package errs
