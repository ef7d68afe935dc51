package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist, or exists but belongs to another user.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. blank name, end date before start date, quantity < 1).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized is returned when a request carries no usable principal.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotEnabled marks a query whose preconditions are not met, such as a
// weather lookup for a trip without coordinates. It is not a failure: the
// operation simply does not start. Handlers map it to HTTP 204.
var ErrNotEnabled = errors.New("query not enabled")
