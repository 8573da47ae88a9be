// Package direct lifts modulo-2 schemes by handing the sign problem to an
// external SAT, MaxSAT or pseudo-boolean solver instead of searching the
// solution space of the sign parity system.
//
// A Model has one node per Boolean unknown. The first Vars nodes are the
// flip variables of the Brent system, set when the corresponding
// coefficient is -1. Gates define the other nodes as XORs of existing
// nodes, and Cards require an exact number of true nodes.
package direct

import (
	"fmt"
	"math/bits"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"

	"github.com/a1880/matrix-multiplication/brent"
	"github.com/a1880/matrix-multiplication/scheme"
)

// ErrUnsatisfiable is returned when a solver proves that no ±1 lifting exists.
var ErrUnsatisfiable = errors.New("no ±1 lifting exists")

// A Lit is a possibly negated node of a model.
type Lit struct {
	Node    int
	Negated bool
}

// A Gate defines node Out as the XOR of the nodes in In.
type Gate struct {
	Out int
	In  []int
}

// Clauses returns the CNF of the gate. Every assignment of Out and In with
// an odd number of true nodes is excluded by exactly one clause.
func (g Gate) Clauses() [][]Lit {
	nodes := append([]int{g.Out}, g.In...)
	n := len(nodes)
	var res [][]Lit
	for mask := 0; mask < 1<<n; mask++ {
		if bits.OnesCount(uint(mask))%2 == 0 {
			continue
		}
		clause := make([]Lit, n)
		for i, node := range nodes {
			clause[i] = Lit{Node: node, Negated: mask&(1<<i) != 0}
		}
		res = append(res, clause)
	}
	return res
}

// A Card requires exactly Exactly of Terms to be true.
type Card struct {
	Equation int
	Terms    []int
	Exactly  int
}

// A Model is the Boolean encoding of the sign problem of a Brent system.
type Model struct {
	System *brent.System
	// Names holds the name of each node.
	Names []string
	// Vars is the number of flip nodes.
	Vars  int
	Gates []Gate
	Cards []Card
}

// Encode returns the model of sys.
//
// Each shared dyad gets a node holding the XOR of its two factors. Each
// triple gets a node that is true iff the triple is negative, and each
// equation requires exactly Negatives() of them.
func Encode(sys *brent.System) *Model {
	m := &Model{System: sys, Vars: sys.Vars.Len()}
	for _, v := range sys.Vars.Variables() {
		m.Names = append(m.Names, v.Name)
	}
	dyads := make([]int, len(sys.Dyads))
	for i, dy := range sys.Dyads {
		dyads[i] = m.node(dy.Name)
		m.Gates = append(m.Gates, Gate{Out: dyads[i], In: []int{dy.F, dy.G}})
	}
	for _, e := range sys.Equations {
		card := Card{Equation: e.ID, Exactly: e.Negatives()}
		for i, t := range e.Triples {
			term := m.node(fmt.Sprintf("_t%d_%d", e.ID+1, i+1))
			gate := Gate{Out: term, In: []int{t.F, t.G, t.D}}
			if t.Dyad >= 0 {
				gate.In = []int{dyads[t.Dyad], t.D}
			}
			m.Gates = append(m.Gates, gate)
			card.Terms = append(card.Terms, term)
		}
		m.Cards = append(m.Cards, card)
	}
	return m
}

func (m *Model) node(name string) int {
	m.Names = append(m.Names, name)
	return len(m.Names) - 1
}

// Nodes returns the number of nodes of the model.
func (m *Model) Nodes() int {
	return len(m.Names)
}

// Check reports whether the node values satisfy every gate and card of m.
func (m *Model) Check(value func(node int) bool) bool {
	for _, g := range m.Gates {
		x := value(g.Out)
		for _, in := range g.In {
			x = x != value(in)
		}
		if x {
			return false
		}
	}
	for _, c := range m.Cards {
		n := 0
		for _, t := range c.Terms {
			if value(t) {
				n++
			}
		}
		if n != c.Exactly {
			return false
		}
	}
	return true
}

// A Result is a lifted scheme found by a solver.
type Result struct {
	Backend string
	Scheme  *scheme.Scheme
	Flips   *bitset.BitSet
	// Weight is the number of negated coefficients.
	Weight int
	// Optimal is set if the backend proved Weight minimal.
	Optimal bool
}

// result maps node values back to a signed scheme and validates it.
func (m *Model) result(backend string, value func(node int) bool) (*Result, error) {
	if !m.Check(value) {
		return nil, errors.Errorf("%s model violates the encoding", backend)
	}
	flips := bitset.New(uint(m.Vars))
	for i := 0; i < m.Vars; i++ {
		if value(i) {
			flips.Set(uint(i))
		}
	}
	signed := m.System.Signed(func(id int) bool { return flips.Test(uint(id)) })
	if err := brent.Validate(signed).Err(); err != nil {
		return nil, errors.Wrapf(err, "%s model does not lift", backend)
	}
	return &Result{Backend: backend, Scheme: signed, Flips: flips, Weight: int(flips.Count())}, nil
}
