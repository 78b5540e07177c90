package schedule

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound covers both a genuinely missing occurrence and one outside
	// the allowed window for the requested action. Authorization and state
	// failures deliberately look identical to a missing row so the API never
	// leaks which occurrences exist.
	ErrNotFound = errors.New("occurrence not found")

	// ErrEventNotFound is returned when a referenced event doesn't exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrNotAvailable is returned when a pick-up loses the compare-and-set:
	// the slot was claimed, has passed, or was cancelled ahead. Mapped to
	// not-found at the API boundary.
	ErrNotAvailable = errors.New("occurrence not available")
)

// IsNotFound reports whether the error should surface as a 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrNotAvailable)
}
