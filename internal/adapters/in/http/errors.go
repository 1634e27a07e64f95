package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the JSON body returned for every failed request.
// Reason is a stable machine-readable code; Message is for humans and
// may change between releases.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Stable reason codes. Clients branch on these, not on Message.
const (
	ReasonInvalidTransition    = "invalid_transition"
	ReasonOrderAlreadyAssigned = "order_already_assigned"
	ReasonDriverMismatch       = "driver_mismatch"
	ReasonOrderNotFound        = "order_not_found"
	ReasonInvalidCoordinates   = "invalid_coordinates"
	ReasonInvalidRequest       = "invalid_request"
	ReasonConflict             = "conflict"
	ReasonInternal             = "internal_error"
)

// respondError translates a use-case error into the HTTP error taxonomy:
// validation 400, authorization 403, missing object 404, lost race or
// precondition 409. Anything unrecognized is a 500 with a generic message
// so internal detail never leaks to clients.
func respondError(ctx echo.Context, err error) error {
	code, reason := classify(err)

	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal error"
	}

	return ctx.JSON(code, ErrorResponse{
		Code:    code,
		Reason:  reason,
		Message: message,
	})
}

func classify(err error) (int, string) {
	if errors.Is(err, order.ErrDriverAlreadyAssigned) {
		return http.StatusConflict, ReasonOrderAlreadyAssigned
	}

	var notFound *errs.ObjectNotFoundError
	if errors.As(err, &notFound) || errors.Is(err, errs.ErrObjectNotFound) {
		return http.StatusNotFound, ReasonOrderNotFound
	}

	var notAuthorized *errs.NotAuthorizedError
	if errors.As(err, &notAuthorized) || errors.Is(err, errs.ErrNotAuthorized) {
		return http.StatusForbidden, ReasonDriverMismatch
	}

	var outOfRange *errs.ValueIsOutOfRangeError
	if errors.As(err, &outOfRange) {
		return http.StatusBadRequest, ReasonInvalidCoordinates
	}

	var conflict *errs.ConflictError
	if errors.As(err, &conflict) || errors.Is(err, errs.ErrConflict) {
		return http.StatusConflict, ReasonConflict
	}

	var invalid *errs.ValueIsInvalidError
	if errors.As(err, &invalid) || errors.Is(err, errs.ErrValueIsInvalid) {
		return http.StatusBadRequest, ReasonInvalidTransition
	}

	var required *errs.ValueIsRequiredError
	if errors.As(err, &required) || errors.Is(err, errs.ErrValueIsRequired) {
		return http.StatusBadRequest, ReasonInvalidRequest
	}

	return http.StatusInternalServerError, ReasonInternal
}

// respondBadRequest is for malformed payloads that never reach a use case.
func respondBadRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Reason:  ReasonInvalidRequest,
		Message: message,
	})
}
