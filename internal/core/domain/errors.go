package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrDataUnavailable indicates the upstream catalog or progress source
	// could not be reached; the run aborts before any transmission
	ErrDataUnavailable = errors.New("upstream data unavailable")

	// ErrInvalidConfiguration indicates a malformed channel configuration
	// (bad chunk size, missing credentials); never retried automatically
	ErrInvalidConfiguration = errors.New("invalid channel configuration")

	// ErrAuthFailure indicates the remote channel rejected our credentials
	ErrAuthFailure = errors.New("channel authentication failed")

	// ErrUnsupportedOperation indicates the abstract exporter or client
	// contract was invoked without a channel-specific implementation
	ErrUnsupportedOperation = errors.New("operation not supported by base implementation")

	// ErrRunInProgress indicates a transmission run is already active for
	// the configuration
	ErrRunInProgress = errors.New("run already in progress")

	// ErrChannelNotFound indicates the channel code is not registered
	ErrChannelNotFound = errors.New("channel not found")

	// ErrRunCancelled indicates the run was cancelled between chunks
	ErrRunCancelled = errors.New("run cancelled")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")
)

// SerializationError records a per-unit serialization failure. The unit is
// marked failed-at-export and the export continues with the remaining units.
type SerializationError struct {
	ItemKey string
	Reason  string
}

func (e *SerializationError) Error() string {
	return "serialize " + e.ItemKey + ": " + e.Reason
}
