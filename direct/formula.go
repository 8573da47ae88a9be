package direct

import (
	"context"

	"github.com/crillab/gophersat/bf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// MaxFormulaTerms is the largest equation the formula backend accepts.
// Cardinalities are expanded into a disjunction of every admissible
// choice of negative triples, which grows as a binomial coefficient.
const MaxFormulaTerms = 12

// Formula returns m as a gophersat boolean formula.
func (m *Model) Formula() (bf.Formula, error) {
	vars := make([]bf.Formula, m.Nodes())
	for i, name := range m.Names {
		vars[i] = bf.Var(name)
	}
	var conj []bf.Formula
	for _, g := range m.Gates {
		x := vars[g.In[0]]
		for _, in := range g.In[1:] {
			x = bf.Xor(x, vars[in])
		}
		conj = append(conj, bf.Eq(vars[g.Out], x))
	}
	for _, c := range m.Cards {
		if len(c.Terms) > MaxFormulaTerms {
			return nil, errors.Errorf("equation %s has %d triples, at most %d supported",
				m.System.Equations[c.Equation].Name(), len(c.Terms), MaxFormulaTerms)
		}
		terms := make([]bf.Formula, len(c.Terms))
		for i, t := range c.Terms {
			terms[i] = vars[t]
		}
		conj = append(conj, exactly(terms, c.Exactly))
	}
	if len(conj) == 0 {
		return bf.True, nil
	}
	return bf.And(conj...), nil
}

// exactly returns a formula true iff exactly k of terms are true.
func exactly(terms []bf.Formula, k int) bf.Formula {
	if k < 0 || k > len(terms) {
		return bf.False
	}
	if len(terms) == 0 {
		return bf.True
	}
	head, tail := terms[0], terms[1:]
	var alts []bf.Formula
	if k > 0 {
		alts = append(alts, bf.And(head, exactly(tail, k-1)))
	}
	if k < len(terms) {
		alts = append(alts, bf.And(bf.Not(head), exactly(tail, k)))
	}
	return bf.Or(alts...)
}

// SolveFormula finds a lifting with the gophersat boolean formula solver.
// The weight of the result is not minimized. Like SolveMaxSAT it cannot be
// interrupted once started.
func SolveFormula(ctx context.Context, m *Model, log logrus.FieldLogger) (*Result, error) {
	f, err := m.Formula()
	if err != nil {
		return nil, err
	}
	log.WithField("nodes", m.Nodes()).Debug("solving boolean formula")
	done := make(chan map[string]bool, 1)
	go func() {
		done <- bf.Solve(f)
	}()
	var model map[string]bool
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case model = <-done:
	}
	if model == nil {
		return nil, ErrUnsatisfiable
	}
	return m.result(BackendFormula, func(node int) bool { return model[m.Names[node]] })
}
