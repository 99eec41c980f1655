package generation

import "errors"

// Common errors returned by generation providers. The split between
// transient and permanent errors drives the retry wrapper: transient
// failures are retried with backoff, everything else propagates
// immediately.
var (
	// ErrGenerationFailed is returned when generation fails for any
	// general, permanent reason.
	ErrGenerationFailed = errors.New("content generation failed")

	// ErrInvalidResponse is returned when the provider response cannot
	// be parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from generation provider")

	// ErrContentBlocked is returned when the provider blocks the content
	// due to safety filters. Never retried.
	ErrContentBlocked = errors.New("content blocked by provider safety filters")

	// ErrInvalidInput is returned for malformed or unsupported input.
	// Never retried.
	ErrInvalidInput = errors.New("invalid generation input")

	// ErrTransientFailure marks temporary provider errors (timeouts,
	// rate limiting, 5xx-equivalent) that may resolve on retry.
	ErrTransientFailure = errors.New("transient generation provider error")

	// ErrInvalidConfig is returned when the provider configuration is
	// invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// IsTransient reports whether err may resolve on retry. Only errors
// wrapping ErrTransientFailure qualify.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientFailure)
}
