package domain

import "errors"

// ErrNotFound is returned by service functions when the requested
// resource does not exist.
// Handlers should map this to HTTP 404. Deletes never return it: deleting an
// unknown id is a no-op.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails a required
// field check (e.g. missing destination or start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrProvider is wrapped by every failure of an external data provider:
// transport errors, non-success HTTP statuses and empty result sets.
// Handlers should map this to HTTP 502 and show the remediation hints.
var ErrProvider = errors.New("provider error")

// ErrStorageCorruption marks a persisted payload that could not be decoded.
// Repos recover from it locally by substituting an empty collection; it is
// logged, never returned to a caller.
var ErrStorageCorruption = errors.New("storage corruption")
