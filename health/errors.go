package health

import "errors"

var (
	// ErrCheckFailed wraps the cause reported by a failing component.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout is reported for a check that outlived its deadline.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrUnknownCheck is returned by Aggregator.Check for an unregistered name.
	ErrUnknownCheck = errors.New("health: unknown check")
)
