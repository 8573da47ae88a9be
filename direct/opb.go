package direct

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/crillab/gophersat/solver"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func opbLit(l Lit) string {
	if l.Negated {
		return fmt.Sprintf("~x%d", l.Node+1)
	}
	return fmt.Sprintf("x%d", l.Node+1)
}

// WriteOPB writes m as a pseudo-boolean optimization problem in OPB format
// to w. Node i is variable x(i+1), and the objective minimizes the number
// of flip nodes set.
func WriteOPB(w io.Writer, m *Model) error {
	bw := bufio.NewWriter(w)
	nbConstrs := len(m.Cards)
	for _, g := range m.Gates {
		nbConstrs += len(g.Clauses())
	}
	fmt.Fprintf(bw, "* #variable= %d #constraint= %d\n", m.Nodes(), nbConstrs)
	fmt.Fprintf(bw, "* %s, %d equations\n", m.System.Dims.Signature(), len(m.System.Equations))
	for i, name := range m.Names {
		fmt.Fprintf(bw, "* x%d %s\n", i+1, name)
	}
	if m.Vars > 0 {
		fmt.Fprint(bw, "min:")
		for i := 0; i < m.Vars; i++ {
			fmt.Fprintf(bw, " +1 %s", opbLit(Lit{Node: i}))
		}
		fmt.Fprintln(bw, " ;")
	}
	for _, g := range m.Gates {
		for _, clause := range g.Clauses() {
			for _, l := range clause {
				fmt.Fprintf(bw, "+1 %s ", opbLit(l))
			}
			fmt.Fprintln(bw, ">= 1 ;")
		}
	}
	for _, c := range m.Cards {
		for _, t := range c.Terms {
			fmt.Fprintf(bw, "+1 %s ", opbLit(Lit{Node: t}))
		}
		fmt.Fprintf(bw, "= %d ;\n", c.Exactly)
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "could not write OPB output")
	}
	return nil
}

// SolvePB finds a lifting of minimum weight with the gophersat
// pseudo-boolean solver, fed with the OPB rendering of m.
// Like SolveMaxSAT it cannot be interrupted once started.
func SolvePB(ctx context.Context, m *Model, log logrus.FieldLogger) (*Result, error) {
	var buf bytes.Buffer
	if err := WriteOPB(&buf, m); err != nil {
		return nil, err
	}
	pb, err := solver.ParseOPB(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse OPB problem")
	}
	log.WithFields(logrus.Fields{
		"variables": pb.NbVars,
		"clauses":   len(pb.Clauses),
	}).Debug("solving pseudo-boolean problem")
	type outcome struct {
		model []bool
		cost  int
	}
	done := make(chan outcome, 1)
	go func() {
		s := solver.New(pb)
		cost := s.Minimize()
		var model []bool
		if cost != -1 {
			model = s.Model()
		}
		done <- outcome{model, cost}
	}()
	var out outcome
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out = <-done:
	}
	if out.cost == -1 {
		return nil, ErrUnsatisfiable
	}
	res, err := m.result(BackendPB, func(node int) bool { return node < len(out.model) && out.model[node] })
	if err != nil {
		return nil, err
	}
	res.Optimal = true
	return res, nil
}
