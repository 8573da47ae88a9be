package direct

import (
	"context"
	"io"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// pollInterval is the delay between two checks of a running gini solve.
const pollInterval = 50 * time.Millisecond

// circuit is the gini circuit of a model.
type circuit struct {
	c     *logic.C
	nodes []z.Lit
	// roots must all hold.
	roots []z.Lit
	flips *logic.CardSort
}

func (m *Model) circuit() *circuit {
	c := logic.NewC()
	res := &circuit{c: c, nodes: make([]z.Lit, m.Nodes())}
	for i := 0; i < m.Vars; i++ {
		res.nodes[i] = c.Lit()
	}
	// Gates only read nodes defined before their output.
	for _, g := range m.Gates {
		x := res.nodes[g.In[0]]
		for _, in := range g.In[1:] {
			x = c.Xor(x, res.nodes[in])
		}
		res.nodes[g.Out] = x
	}
	for _, card := range m.Cards {
		terms := make([]z.Lit, len(card.Terms))
		for i, t := range card.Terms {
			terms[i] = res.nodes[t]
		}
		cs := c.CardSort(terms)
		res.roots = append(res.roots, cs.Leq(card.Exactly), cs.Geq(card.Exactly))
	}
	res.flips = c.CardSort(res.nodes[:m.Vars])
	return res
}

// load adds the CNF of the circuit to g and asserts its roots.
func (cc *circuit) load(g *gini.Gini) {
	cc.c.ToCnf(g)
	for _, r := range cc.roots {
		g.Add(r)
		g.Add(0)
	}
}

// solve runs g until it returns or ctx is done.
func solve(ctx context.Context, g *gini.Gini) (int, error) {
	s := g.GoSolve()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if res, done := s.Test(); done {
			return res, nil
		}
		select {
		case <-ctx.Done():
			s.Stop()
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

// SolveGini finds a lifting of minimum weight with the gini SAT solver.
// The flip count is bounded with a sorting network and lowered under
// assumptions until the problem becomes unsatisfiable.
func SolveGini(ctx context.Context, m *Model, log logrus.FieldLogger) (*Result, error) {
	cc := m.circuit()
	g := gini.New()
	cc.load(g)
	log.WithFields(logrus.Fields{
		"nodes": m.Nodes(),
		"gates": cc.c.Len(),
	}).Debug("solving SAT problem")

	res, err := solve(ctx, g)
	if err != nil {
		return nil, err
	}
	if res == unsatisfiable {
		return nil, ErrUnsatisfiable
	}
	var best *Result
	for res == satisfiable {
		best, err = m.result(BackendGini, func(node int) bool { return g.Value(cc.nodes[node]) })
		if err != nil {
			return nil, err
		}
		log.WithField("weight", best.Weight).Debug("lifting found")
		if best.Weight == 0 {
			break
		}
		g.Assume(cc.flips.Leq(best.Weight - 1))
		if res, err = solve(ctx, g); err != nil {
			return nil, err
		}
	}
	best.Optimal = true
	return best, nil
}

// WriteDIMACS writes the CNF of m in DIMACS format to w. The cardinality
// constraints of the equations are encoded with sorting networks and
// asserted as unit clauses.
func WriteDIMACS(w io.Writer, m *Model) error {
	cc := m.circuit()
	g := gini.New()
	cc.load(g)
	if err := g.Write(w); err != nil {
		return errors.Wrap(err, "could not write DIMACS output")
	}
	return nil
}
