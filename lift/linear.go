package lift

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/a1880/matrix-multiplication/brent"
	"github.com/a1880/matrix-multiplication/gf2"
)

// Linearize returns the sign parity system of sys.
//
// Bit x_v = 1 means variable v is lifted to -1. A triple is negative iff
// x_f ⊕ x_g ⊕ x_d = 1, and an equation with n triples needs exactly n/2
// negative triples, so the parity of that count must be (n/2) mod 2.
// Every ±1 lifting of sys is a solution of this system, the converse is
// not true once an equation has four triples or more.
func Linearize(sys *brent.System) *gf2.Matrix {
	n := sys.Vars.Len()
	m := gf2.NewMatrix(n)
	for i := range sys.Equations {
		e := &sys.Equations[i]
		row := gf2.NewVector(n)
		for _, t := range e.Triples {
			row.Flip(uint(t.F))
			row.Flip(uint(t.G))
			row.Flip(uint(t.D))
		}
		m.AddRow(row, e.Negatives()%2 == 1)
	}
	return m
}

// Flipped returns the predicate of bits, as used by brent.System.Signed.
func Flipped(bits *bitset.BitSet) func(int) bool {
	return func(id int) bool { return bits.Test(uint(id)) }
}
