package direct

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/a1880/matrix-multiplication/brent"
	"github.com/a1880/matrix-multiplication/scheme"
	"github.com/a1880/matrix-multiplication/stats"
)

// Names of the available backends.
const (
	BackendMaxSAT  = "maxsat"
	BackendGini    = "gini"
	BackendPB      = "pb"
	BackendFormula = "bf"
)

// A SolveFunc solves a model.
type SolveFunc func(ctx context.Context, m *Model, log logrus.FieldLogger) (*Result, error)

var backends = map[string]SolveFunc{
	BackendMaxSAT:  SolveMaxSAT,
	BackendGini:    SolveGini,
	BackendPB:      SolvePB,
	BackendFormula: SolveFormula,
}

// Backends returns the names of the available backends, sorted.
func Backends() []string {
	res := make([]string, 0, len(backends))
	for name := range backends {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// A Solver lifts schemes with one of the backends.
type Solver struct {
	Backend string
	Log     logrus.FieldLogger
	Events  *stats.Events
}

// Lift builds the Brent equations of known and solves their model.
func (s *Solver) Lift(ctx context.Context, known *scheme.Scheme) (*Result, error) {
	solve, ok := backends[s.Backend]
	if !ok {
		return nil, errors.Errorf("unknown backend %q", s.Backend)
	}
	log := s.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	events := s.Events
	if events == nil {
		events = stats.New()
	}
	sys, err := brent.Build(known)
	if err != nil {
		return nil, err
	}
	sys.Record(events)
	m := Encode(sys)
	log = log.WithFields(logrus.Fields{
		"problem": sys.Dims.Signature(),
		"backend": s.Backend,
	})
	log.WithFields(logrus.Fields{
		"equations": len(sys.Equations),
		"nodes":     m.Nodes(),
		"gates":     len(m.Gates),
	}).Info("model encoded")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := solve(ctx, m, log)
	if errors.Is(err, ErrUnsatisfiable) {
		events.Register(s.Backend + " unsatisfiable")
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s backend failed", s.Backend)
	}
	events.Register(s.Backend + " lifting found")
	log.WithFields(logrus.Fields{
		"weight":  res.Weight,
		"optimal": res.Optimal,
	}).Info("scheme lifted")
	return res, nil
}
