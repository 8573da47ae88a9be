package brent

import "github.com/a1880/matrix-multiplication/scheme"

// A Failure describes one violated Brent equation.
type Failure struct {
	Tuple Tuple
	Sum   int
	Want  int
}

// A Report is the outcome of validating a scheme.
type Report struct {
	// Checked is the number of equations evaluated.
	Checked int
	// Errors is the number of violated equations.
	Errors int
	// First is the first violated equation in enumeration order, if any.
	First *Failure
}

// OK is true iff no equation was violated.
func (r Report) OK() bool {
	return r.Errors == 0
}

// Err returns a *ValidationError if r contains errors, nil otherwise.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return &ValidationError{Report: r}
}

// Validate recomputes the sum of every Brent equation from the raw
// coefficients of s and compares it to the Kronecker delta.
func Validate(s *scheme.Scheme) Report {
	return validate(s, false)
}

// ValidateMod2 is like Validate, but compares sums modulo 2.
func ValidateMod2(s *scheme.Scheme) Report {
	return validate(s, true)
}

func validate(s *scheme.Scheme, mod2 bool) Report {
	var rep Report
	d := s.Dims
	for _, t := range Tuples(d) {
		sum := 0
		for k := 0; k < d.Products; k++ {
			a := s.A(t.A.Row, t.A.Col, k)
			if a == 0 {
				continue
			}
			sum += int(a) * int(s.B(t.B.Row, t.B.Col, k)) * int(s.C(t.C.Row, t.C.Col, k))
		}
		if mod2 {
			sum &= 1
		}
		rep.Checked++
		if want := t.Delta(); sum != want {
			rep.Errors++
			if rep.First == nil {
				rep.First = &Failure{Tuple: t, Sum: sum, Want: want}
			}
		}
	}
	return rep
}
