package lift

import (
	"fmt"

	"github.com/a1880/matrix-multiplication/brent"
)

// NoNullSpaceSolutionError is returned when the linearized system leaves
// nothing to search: either it is inconsistent, or its only solution fails
// validation.
type NoNullSpaceSolutionError struct {
	Rank         int
	Variables    int
	Inconsistent bool
	// Failure is the first violated equation of the baseline, if it was checked.
	Failure *brent.Failure
}

func (e *NoNullSpaceSolutionError) Error() string {
	if e.Inconsistent {
		return fmt.Sprintf("no null space solution: sign parity system of rank %d over %d variables is inconsistent", e.Rank, e.Variables)
	}
	msg := fmt.Sprintf("no null space solution: rank %d equals the number of variables and the baseline fails", e.Rank)
	if e.Failure != nil {
		msg += fmt.Sprintf(" at %s (sum %d, expected %d)", e.Failure.Tuple, e.Failure.Sum, e.Failure.Want)
	}
	return msg
}

// SearchExhaustedError is returned when no combination of basis vectors up
// to the deepest configured tier lifts to a valid scheme. It does not prove
// that no ±1 lifting exists.
type SearchExhaustedError struct {
	Deepest int
	Basis   int
	Tried   int
	// Failure is the first violated equation of the baseline.
	Failure *brent.Failure
}

func (e *SearchExhaustedError) Error() string {
	msg := fmt.Sprintf("search exhausted: no valid combination of %d basis vectors up to tier %d (%d candidates)", e.Basis, e.Deepest, e.Tried)
	if e.Failure != nil {
		msg += fmt.Sprintf(", baseline fails at %s", e.Failure.Tuple)
	}
	return msg
}

// ValidationMismatchError is returned when an accepted candidate fails an
// independent re-check. It always denotes a bug.
type ValidationMismatchError struct {
	Tier        int
	Combination []int
	// Linear is set if the candidate does not solve the sign parity system.
	Linear  bool
	Failure *brent.Failure
}

func (e *ValidationMismatchError) Error() string {
	if e.Linear {
		return fmt.Sprintf("validation mismatch: candidate %v of tier %d violates the sign parity system", e.Combination, e.Tier)
	}
	msg := fmt.Sprintf("validation mismatch: candidate %v of tier %d fails Brent validation", e.Combination, e.Tier)
	if e.Failure != nil {
		msg += fmt.Sprintf(" at %s (sum %d, expected %d)", e.Failure.Tuple, e.Failure.Sum, e.Failure.Want)
	}
	return msg
}
