package brent

import (
	"fmt"

	"github.com/a1880/matrix-multiplication/scheme"
)

// A Literal identifies one scalar unknown: the coefficient of kind at
// (Row, Col) for product Product.
type Literal struct {
	Kind    scheme.Kind
	Row     int
	Col     int
	Product int
}

// Key returns the canonical name of the literal, e.g. "f12_3" or "d21_07".
// The product number is zero-padded to digits.
func (l Literal) Key(digits int) string {
	return fmt.Sprintf("%s%d%d_%0*d", l.Kind, l.Row+1, l.Col+1, digits, l.Product+1)
}

func (l Literal) String() string {
	return l.Key(1)
}

// A Variable is a literal that was referenced by at least one equation.
type Variable struct {
	ID      int
	Literal Literal
	Name    string
	// Value is the coefficient of the literal in the modulo-2 scheme.
	Value int8
	// Refs counts the equation triples referencing the variable.
	Refs int
	// Unconstrained variables belong to an index tuple with a single
	// non-zero triple: their sign is never shared with another product.
	Unconstrained bool
}

// DyadKey identifies the product of F(A) and G(B) coefficients of a product.
type DyadKey struct {
	A       scheme.Index
	B       scheme.Index
	Product int
}

// A Dyad is an F·G sub-product shared by several equations.
type Dyad struct {
	ID   int
	Key  DyadKey
	Name string
	// F and G are the variable ids of the two factors.
	F int
	G int
	// Refs is the number of equation triples that use the dyad.
	Refs int
}

func dyadName(k DyadKey, digits int) string {
	return fmt.Sprintf("_d%s%s_%0*d", k.A, k.B, digits, k.Product+1)
}
