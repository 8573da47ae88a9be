package brent

import (
	"fmt"
	"strings"

	"github.com/a1880/matrix-multiplication/scheme"
)

// A Tuple selects one Brent equation: the coefficient of A[A]·B[B] in C[C].
type Tuple struct {
	A scheme.Index
	B scheme.Index
	C scheme.Index
}

// Odd reports whether the tuple satisfies the Kronecker identity
// a_row=c_row, a_col=b_row and b_col=c_col, i.e. whether its equation
// must sum to 1.
func (t Tuple) Odd() bool {
	return t.A.Row == t.C.Row && t.A.Col == t.B.Row && t.B.Col == t.C.Col
}

// Delta is the expected right-hand side of the tuple's equation.
func (t Tuple) Delta() int {
	if t.Odd() {
		return 1
	}
	return 0
}

func (t Tuple) String() string {
	return fmt.Sprintf("a%s b%s c%s", t.A, t.B, t.C)
}

// Tuples returns every index tuple of d in enumeration order.
func Tuples(d scheme.Dimensions) []Tuple {
	as, bs, cs := d.AIndices(), d.BIndices(), d.CIndices()
	res := make([]Tuple, 0, len(as)*len(bs)*len(cs))
	for _, a := range as {
		for _, b := range bs {
			for _, c := range cs {
				res = append(res, Tuple{A: a, B: b, C: c})
			}
		}
	}
	return res
}

// A Triple is the contribution F·G·D of one product to an equation.
// F, G and D are variable ids. Dyad is the id of the shared F·G dyad,
// or -1 if the sub-product is used by this equation only.
type Triple struct {
	Product int
	F       int
	G       int
	D       int
	Dyad    int
}

// An Equation is one Brent equation with at least one non-zero triple.
type Equation struct {
	ID int
	Tuple
	Triples []Triple
}

// Negatives is the number of triples that must be negative once every
// coefficient is lifted to ±1: the sum of n signed triples equals the
// delta iff exactly (n - delta)/2 = n/2 of them are -1.
func (e *Equation) Negatives() int {
	return len(e.Triples) / 2
}

// Positives is the number of triples that must be positive.
func (e *Equation) Positives() int {
	return len(e.Triples) - e.Negatives()
}

// Name returns a compact identifier such as "e111211".
func (e *Equation) Name() string {
	return "e" + e.A.String() + e.B.String() + e.C.String()
}

// Describe renders the equation using the variable names of reg.
func (e *Equation) Describe(reg *Registry) string {
	var sb strings.Builder
	for i, t := range e.Triples {
		if i > 0 {
			sb.WriteString(" + ")
		}
		fmt.Fprintf(&sb, "%s*%s*%s", reg.Var(t.F).Name, reg.Var(t.G).Name, reg.Var(t.D).Name)
	}
	fmt.Fprintf(&sb, " = %d", e.Delta())
	return sb.String()
}
