package scoring

import "errors"

// Error kinds reported by remote scoring integrations.
var (
	ErrServiceUnavailable = errors.New("scoring service unavailable")
	ErrRateLimited        = errors.New("scoring service rate limited")
	ErrInvalidResponse    = errors.New("invalid scoring response")
)
