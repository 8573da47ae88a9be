package direct

import (
	"context"

	"github.com/crillab/gophersat/maxsat"
	"github.com/sirupsen/logrus"
)

func (m *Model) maxsatLit(l Lit) maxsat.Lit {
	if l.Negated {
		return maxsat.Not(m.Names[l.Node])
	}
	return maxsat.Var(m.Names[l.Node])
}

// MaxSATConstrs returns the gophersat MaxSAT constraints of m: hard clauses
// for the gates, two hard cardinality constraints per card and one soft
// clause per flip node, so that the optimal cost is the minimum number of
// negative coefficients.
func (m *Model) MaxSATConstrs() []maxsat.Constr {
	var res []maxsat.Constr
	for _, g := range m.Gates {
		for _, clause := range g.Clauses() {
			lits := make([]maxsat.Lit, len(clause))
			for i, l := range clause {
				lits[i] = m.maxsatLit(l)
			}
			res = append(res, maxsat.HardClause(lits...))
		}
	}
	for _, c := range m.Cards {
		pos := make([]maxsat.Lit, len(c.Terms))
		neg := make([]maxsat.Lit, len(c.Terms))
		for i, t := range c.Terms {
			pos[i] = maxsat.Var(m.Names[t])
			neg[i] = pos[i].Negation()
		}
		res = append(res,
			maxsat.HardPBConstr(pos, nil, c.Exactly),
			maxsat.HardPBConstr(neg, nil, len(c.Terms)-c.Exactly))
	}
	for i := 0; i < m.Vars; i++ {
		res = append(res, maxsat.SoftClause(maxsat.Not(m.Names[i])))
	}
	return res
}

// SolveMaxSAT finds a lifting of minimum weight with the gophersat MaxSAT
// solver. The solver cannot be interrupted: if ctx is done first, the
// call returns ctx's error and the solve finishes in the background.
func SolveMaxSAT(ctx context.Context, m *Model, log logrus.FieldLogger) (*Result, error) {
	constrs := m.MaxSATConstrs()
	log.WithFields(logrus.Fields{
		"nodes":   m.Nodes(),
		"constrs": len(constrs),
	}).Debug("solving MaxSAT problem")
	type outcome struct {
		model maxsat.Model
		cost  int
	}
	done := make(chan outcome, 1)
	go func() {
		model, cost := maxsat.New(constrs...).Solve()
		done <- outcome{model, cost}
	}()
	var out outcome
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out = <-done:
	}
	if out.model == nil {
		return nil, ErrUnsatisfiable
	}
	res, err := m.result(BackendMaxSAT, func(node int) bool { return out.model[m.Names[node]] })
	if err != nil {
		return nil, err
	}
	res.Optimal = true
	log.WithField("cost", out.cost).Debug("MaxSAT problem solved")
	return res, nil
}
