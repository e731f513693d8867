package commission

import "errors"

var (
	// ErrNoMatchingRule means no split rule covers the lead-source/threshold
	// combination. Recovered by the engine with the configured fallback split;
	// surfaced here so repositories stay silent about policy.
	ErrNoMatchingRule = errors.New("no matching commission split rule")

	// ErrCumulativeQuery means the as-of-date aggregation could not be
	// computed. Never recovered with a guessed value.
	ErrCumulativeQuery = errors.New("cumulative gci query failed")

	// ErrFrozenBreakdown means a computed breakdown was about to be mutated.
	// This is an invariant violation, not a user error.
	ErrFrozenBreakdown = errors.New("commission breakdown is frozen")

	ErrRecordNotFound = errors.New("commission record not found")
)
