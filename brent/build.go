package brent

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/a1880/matrix-multiplication/scheme"
)

// A System is the set of Brent equations with non-zero triples for a known
// modulo-2 scheme, along with the variables and dyads they reference.
// It is immutable once built.
type System struct {
	Dims scheme.Dimensions
	// Known is the modulo-2 scheme the system was built from.
	Known     *scheme.Scheme
	Vars      *Registry
	Dyads     []Dyad
	Equations []Equation
	// Enumerated is the number of index tuples visited.
	Enumerated int
}

// Build enumerates the Brent equations of known. Coefficients are reduced
// modulo 2 first.
// Every enumerated tuple, including those without any non-zero triple, must
// have a count of non-zero triples with the parity of its delta; otherwise a
// *StructuralInconsistencyError is returned.
func Build(known *scheme.Scheme) (*System, error) {
	mod2 := known.Mod2()
	d := mod2.Dims
	sys := &System{
		Dims:  d,
		Known: mod2,
		Vars:  NewRegistry(d.ProductDigits()),
	}
	tuples := Tuples(d)
	sys.Enumerated = len(tuples)

	// First pass: register literals and count dyad references.
	dyadRefs := make(map[DyadKey]int)
	for _, t := range tuples {
		n := 0
		var last [3]int
		for k := 0; k < d.Products; k++ {
			if !mod2.NonZeroTriple(t.A, t.B, t.C, k) {
				continue
			}
			last[0] = sys.Vars.Register(Literal{scheme.F, t.A.Row, t.A.Col, k}, 1)
			last[1] = sys.Vars.Register(Literal{scheme.G, t.B.Row, t.B.Col, k}, 1)
			last[2] = sys.Vars.Register(Literal{scheme.D, t.C.Row, t.C.Col, k}, 1)
			dyadRefs[DyadKey{A: t.A, B: t.B, Product: k}]++
			n++
		}
		if n%2 != t.Delta() {
			return nil, &StructuralInconsistencyError{Tuple: t, Triples: n}
		}
		if n == 1 {
			sys.Vars.markUnconstrained(last[:]...)
		}
	}

	// Second pass: materialize shared dyads and emit the equations.
	dyadIDs := make(map[DyadKey]int)
	for _, t := range tuples {
		var triples []Triple
		for k := 0; k < d.Products; k++ {
			if !mod2.NonZeroTriple(t.A, t.B, t.C, k) {
				continue
			}
			tr := Triple{
				Product: k,
				F:       sys.mustLookup(Literal{scheme.F, t.A.Row, t.A.Col, k}),
				G:       sys.mustLookup(Literal{scheme.G, t.B.Row, t.B.Col, k}),
				D:       sys.mustLookup(Literal{scheme.D, t.C.Row, t.C.Col, k}),
				Dyad:    -1,
			}
			key := DyadKey{A: t.A, B: t.B, Product: k}
			if dyadRefs[key] >= 2 {
				id, ok := dyadIDs[key]
				if !ok {
					id = len(sys.Dyads)
					dyadIDs[key] = id
					sys.Dyads = append(sys.Dyads, Dyad{
						ID:   id,
						Key:  key,
						Name: dyadName(key, d.ProductDigits()),
						F:    tr.F,
						G:    tr.G,
					})
				}
				sys.Dyads[id].Refs++
				tr.Dyad = id
			}
			triples = append(triples, tr)
		}
		if len(triples) > 0 {
			sys.Equations = append(sys.Equations, Equation{
				ID:      len(sys.Equations),
				Tuple:   t,
				Triples: triples,
			})
		}
	}
	for _, dy := range sys.Dyads {
		if dy.Refs != dyadRefs[dy.Key] {
			return nil, errors.Errorf("dyad %s used %d times, %d references counted", dy.Name, dy.Refs, dyadRefs[dy.Key])
		}
	}
	return sys, nil
}

func (s *System) mustLookup(lit Literal) int {
	id, ok := s.Vars.Lookup(lit)
	if !ok {
		panic(fmt.Sprintf("literal %s referenced but not registered", lit))
	}
	return id
}

// OddEquations counts the equations whose right-hand side is 1.
func (s *System) OddEquations() int {
	n := 0
	for i := range s.Equations {
		if s.Equations[i].Odd() {
			n++
		}
	}
	return n
}

// Triples counts the triples over all equations.
func (s *System) Triples() int {
	n := 0
	for i := range s.Equations {
		n += len(s.Equations[i].Triples)
	}
	return n
}

// Signed returns the scheme obtained by negating every variable for which
// flipped returns true. Coefficients that are zero in the known scheme stay zero.
func (s *System) Signed(flipped func(id int) bool) *scheme.Scheme {
	res := s.Known.Clone()
	for _, v := range s.Vars.vars {
		lit := v.Literal
		if flipped(v.ID) {
			res.Set(lit.Kind, lit.Row, lit.Col, lit.Product, -v.Value)
		}
	}
	return res
}

// A Recorder counts named events.
type Recorder interface {
	Register(event string)
}

// Record reports statistics about the system to rec.
func (s *System) Record(rec Recorder) {
	digits := 1
	for _, v := range s.Vars.vars {
		if n := len(fmt.Sprint(v.Refs)); n > digits {
			digits = n
		}
	}
	for i := range s.Equations {
		e := &s.Equations[i]
		if e.Odd() {
			rec.Register("equations odd")
		} else {
			rec.Register("equations even")
		}
		rec.Register(fmt.Sprintf("equations with %d triples", len(e.Triples)))
		for _, t := range e.Triples {
			rec.Register(fmt.Sprintf("reference counts pattern %0*d_%0*d_%0*d",
				digits, s.Vars.vars[t.F].Refs, digits, s.Vars.vars[t.G].Refs, digits, s.Vars.vars[t.D].Refs))
		}
	}
	for _, v := range s.Vars.vars {
		rec.Register(fmt.Sprintf("%s coefficient referenced %0*dx", v.Literal.Kind, digits, v.Refs))
		if v.Unconstrained {
			rec.Register("unconstrained variables")
		}
	}
	for range s.Dyads {
		rec.Register("shared dyads")
	}
}
