package brent

import "fmt"

// StructuralInconsistencyError is returned when the number of non-zero
// triples of an equation does not have the parity of its right-hand side.
// The input is then not a valid modulo-2 scheme.
type StructuralInconsistencyError struct {
	Tuple   Tuple
	Triples int
}

func (e *StructuralInconsistencyError) Error() string {
	kind := "even"
	if e.Tuple.Odd() {
		kind = "odd"
	}
	return fmt.Sprintf("structural inconsistency: %s equation %s has %d non-zero triples", kind, e.Tuple, e.Triples)
}

// ValidationError is returned when a scheme does not satisfy every Brent equation.
type ValidationError struct {
	Report Report
}

func (e *ValidationError) Error() string {
	f := e.Report.First
	return fmt.Sprintf("%d of %d Brent equations violated, first %s: sum %d, expected %d",
		e.Report.Errors, e.Report.Checked, f.Tuple, f.Sum, f.Want)
}
