package payroll

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrStubNotFound is returned when a referenced pay stub doesn't exist.
	ErrStubNotFound = errors.New("pay stub not found")

	// ErrPayableNotFound is returned when a referenced payable doesn't exist.
	ErrPayableNotFound = errors.New("payable not found")

	// ErrProfileNotFound is returned when the payee lacks the profile that
	// supplies the rate inputs (e.g. a salary payment for a user with no
	// regional manager profile).
	ErrProfileNotFound = errors.New("pay profile not found")

	// ErrStubPaid is returned by operations that must not touch a locked
	// stub directly (MarkStubPaid on an already-paid stub is idempotent and
	// does NOT return this; it is for explicit edits against a paid stub).
	ErrStubPaid = errors.New("pay stub already paid")
)

// IsNotFound reports whether the error should surface as a 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStubNotFound) ||
		errors.Is(err, ErrPayableNotFound) ||
		errors.Is(err, ErrProfileNotFound)
}
