/*
Package lift turns a modulo-2 matrix multiplication scheme into a scheme
with coefficients in {-1, 0, +1}.

Every non-zero coefficient of the known scheme keeps its position and gets a
sign. Signs are encoded as bits, 1 meaning -1. Brent's equations force the
parity of the number of negative triples of each equation, which gives a
linear system over GF(2) in those bits (see Linearize). The lifter solves
that system, then searches the solution space, tier by tier, for the
solution of minimum weight that satisfies the actual equations.

Typical usage:

	l := lift.New(lift.Options{Tiers: []int{1, 2, 4}, Log: log}, events)
	sol, err := l.Lift(ctx, known)
	if err != nil {
		return err
	}
	scheme.WriteBini(os.Stdout, sol.Scheme)
*/
package lift

import (
	"context"
	"strconv"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/a1880/matrix-multiplication/brent"
	"github.com/a1880/matrix-multiplication/gf2"
	"github.com/a1880/matrix-multiplication/scheme"
	"github.com/a1880/matrix-multiplication/stats"
)

// A Lifter lifts modulo-2 schemes to ±1 schemes.
type Lifter struct {
	opts   Options
	events *stats.Events
	// Beautify enables sign beautification of the lifted scheme.
	Beautify bool
}

// New returns a lifter searching with the given options.
// events may be nil.
func New(opts Options, events *stats.Events) *Lifter {
	opts.normalize()
	if events == nil {
		events = stats.New()
	}
	return &Lifter{opts: opts, events: events}
}

// A Solution is a lifted scheme along with how it was found.
type Solution struct {
	System *brent.System
	Scheme *scheme.Scheme
	// Flips has one bit per variable of System, set if it was negated.
	// It describes the scheme before beautification.
	Flips       *bitset.BitSet
	Tier        int
	Combination []int
	// Weight is the number of negative coefficients of Scheme.
	Weight    int
	Rank      int
	BasisSize int
	Tried     int
	// Beautified is the number of products whose signs were rearranged.
	Beautified int
}

// Lift builds the Brent equations of known and lifts it.
func (l *Lifter) Lift(ctx context.Context, known *scheme.Scheme) (*Solution, error) {
	sys, err := brent.Build(known)
	if err != nil {
		return nil, err
	}
	return l.LiftSystem(ctx, sys)
}

// LiftSystem lifts the known scheme of sys.
func (l *Lifter) LiftSystem(ctx context.Context, sys *brent.System) (*Solution, error) {
	log := l.opts.Log.WithField("problem", sys.Dims.Signature())
	sys.Record(l.events)
	log.WithFields(logrus.Fields{
		"tuples":    sys.Enumerated,
		"equations": len(sys.Equations),
		"odd":       sys.OddEquations(),
		"variables": sys.Vars.Len(),
		"dyads":     len(sys.Dyads),
	}).Info("equations built")

	m := Linearize(sys)
	gs, err := m.Solve()
	if errors.Is(err, gf2.ErrInconsistent) {
		l.events.Register("lift parity system inconsistent")
		return nil, &NoNullSpaceSolutionError{Variables: m.Cols(), Inconsistent: true, Rank: rankOf(m)}
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not solve sign parity system")
	}
	log.WithFields(logrus.Fields{
		"rank":     gs.Rank,
		"basis":    len(gs.Basis),
		"baseline": gs.Particular.Count(),
	}).Info("sign parity system solved")

	accept := func(bits *bitset.BitSet) bool {
		return brent.Validate(sys.Signed(Flipped(bits))).OK()
	}
	opts := l.opts
	opts.Log = log
	res, err := Search(ctx, gs.Particular, gs.Basis, accept, opts)
	if err != nil {
		baseline := brent.Validate(sys.Signed(Flipped(gs.Particular)))
		var exhausted *SearchExhaustedError
		if errors.As(err, &exhausted) {
			l.events.Add("lift candidates tried", exhausted.Tried)
			if len(gs.Basis) == 0 {
				return nil, &NoNullSpaceSolutionError{Rank: gs.Rank, Variables: m.Cols(), Failure: baseline.First}
			}
			exhausted.Failure = baseline.First
			return nil, exhausted
		}
		return nil, err
	}
	l.events.Add("lift candidates tried", res.Tried)
	l.events.Add("lift candidates improving", res.Improved)
	l.events.Register("lift succeeded in tier " + strconv.Itoa(res.Tier))

	if !m.Satisfies(res.Bits) {
		return nil, &ValidationMismatchError{Tier: res.Tier, Combination: res.Combination, Linear: true}
	}
	lifted := sys.Signed(Flipped(res.Bits))
	if rep := brent.Validate(lifted); !rep.OK() {
		return nil, &ValidationMismatchError{Tier: res.Tier, Combination: res.Combination, Failure: rep.First}
	}
	sol := &Solution{
		System:      sys,
		Scheme:      lifted,
		Flips:       res.Bits,
		Tier:        res.Tier,
		Combination: res.Combination,
		Weight:      res.Weight,
		Rank:        gs.Rank,
		BasisSize:   len(gs.Basis),
		Tried:       res.Tried,
	}
	if l.Beautify {
		sol.Beautified = Beautify(lifted)
		sol.Weight = lifted.Negatives()
		if rep := brent.Validate(lifted); !rep.OK() {
			return nil, &ValidationMismatchError{Tier: res.Tier, Combination: res.Combination, Failure: rep.First}
		}
		l.events.Add("products beautified", sol.Beautified)
	}
	log.WithFields(logrus.Fields{
		"tier":   sol.Tier,
		"weight": sol.Weight,
		"tried":  sol.Tried,
		"minus":  lifted.Negatives(),
	}).Info("scheme lifted")
	return sol, nil
}

func rankOf(m *gf2.Matrix) int {
	sol, err := m.Homogeneous().Solve()
	if err != nil {
		return 0
	}
	return sol.Rank
}
