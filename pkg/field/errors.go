package field

import "errors"

var (
	// ErrUnsupportedDegree is returned for field degrees outside [1, MaxDegree].
	ErrUnsupportedDegree = errors.New("unsupported field degree")

	// ErrInvalidModulus is returned when an explicit modulus is reducible or
	// does not have the requested degree.
	ErrInvalidModulus = errors.New("invalid modulus")

	// ErrTableTooLarge is returned when the lookup tables for a field would
	// exceed the configured memory limit.
	ErrTableTooLarge = errors.New("field tables exceed memory limit")

	// ErrConflictingDeclaration is returned when a field name is declared
	// twice with different parameters.
	ErrConflictingDeclaration = errors.New("conflicting field declaration")

	// ErrDivisionByZero is the only error an already constructed field can
	// produce.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrNoModulus and ErrNoGenerator mark searches that came up empty.
	// Both searches provably succeed for every supported degree, so either
	// one surfacing means a defect in the polynomial arithmetic, not bad
	// input.
	ErrNoModulus   = errors.New("no irreducible modulus found")
	ErrNoGenerator = errors.New("no generator found")
)

// ErrTableMismatch is returned by Verify when a table lookup disagrees
// with polynomial arithmetic or breaks a field axiom.
var ErrTableMismatch = errors.New("field table mismatch")
