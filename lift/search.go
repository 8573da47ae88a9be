package lift

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultTiers are the combination sizes searched when none are configured.
var DefaultTiers = []int{1, 2, 4}

// Options control the tiered search.
type Options struct {
	// Tiers lists the number of basis vectors combined in each tier,
	// in the order they are searched.
	Tiers []int
	// Workers is the maximum number of concurrent validations. 0 means GOMAXPROCS.
	Workers int
	// ProgressEvery sets how many outer iterations pass between progress
	// logs in tiers combining three or more vectors. 0 disables them.
	ProgressEvery int
	Log           logrus.FieldLogger
}

func (o *Options) normalize() {
	if len(o.Tiers) == 0 {
		o.Tiers = DefaultTiers
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		o.Log = l
	}
}

// A Result is the best candidate found by Search.
type Result struct {
	// Tier is the size of the combinations of the tier that succeeded.
	Tier int
	// Combination holds the indices of the basis vectors XORed into the
	// baseline. It is empty if the baseline itself was retained.
	Combination []int
	// Bits is the baseline XORed with the combination.
	Bits *bitset.BitSet
	// Weight is the number of set bits, i.e. of negated coefficients.
	Weight int
	// Tried counts the candidates over all searched tiers. Improved
	// counts the accepted candidates that were lighter than the best one
	// known when they were tried; heavier candidates are not validated.
	Tried    int
	Improved int
}

// best is the accumulator shared by the workers of a tier.
type best struct {
	mu    sync.Mutex
	found bool
	res   Result
}

// beats reports whether a candidate of the given weight and combination
// would replace the current best. Smaller weights win, ties go to the
// lexicographically smaller combination.
func (b *best) beats(weight int, comb []int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.beatsLocked(weight, comb)
}

func (b *best) beatsLocked(weight int, comb []int) bool {
	if !b.found || weight < b.res.Weight {
		return true
	}
	return weight == b.res.Weight && lexLess(comb, b.res.Combination)
}

func (b *best) offer(weight int, comb []int, bits *bitset.BitSet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.beatsLocked(weight, comb) {
		return
	}
	b.found = true
	b.res.Weight = weight
	b.res.Combination = append([]int(nil), comb...)
	b.res.Bits = bits
}

func lexLess(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// Search looks for the combination of basis vectors that, XORed into
// baseline, gives the valid candidate of minimum weight. A candidate is
// valid iff accept returns true; accept must be safe for concurrent use
// and must not modify its argument.
//
// The tiers of opts are searched in order and the search stops after the
// first tier containing a valid candidate. The baseline itself is part of
// the first tier. Within a tier the returned candidate is minimal, and the
// choice among candidates of equal weight does not depend on scheduling.
func Search(ctx context.Context, baseline *bitset.BitSet, basis []*bitset.BitSet, accept func(*bitset.BitSet) bool, opts Options) (*Result, error) {
	opts.normalize()
	var tried, improved int64
	deepest := 0
	for i, size := range opts.Tiers {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "search interrupted before tier %d", size)
		}
		if size < 1 {
			return nil, errors.Errorf("invalid tier size %d", size)
		}
		deepest = size
		var b best
		if i == 0 {
			tried++
			if accept(baseline) {
				improved++
				b.offer(int(baseline.Count()), nil, baseline)
			}
		}
		if size <= len(basis) {
			log := opts.Log.WithField("tier", size)
			log.WithField("candidates", binomial(len(basis), size)).Debug("searching tier")
			if err := searchTier(ctx, baseline, basis, size, accept, &opts, &b, &tried, &improved, log); err != nil {
				return nil, err
			}
		}
		if b.found {
			res := b.res
			res.Tier = size
			res.Tried = int(tried)
			res.Improved = int(improved)
			return &res, nil
		}
	}
	return nil, &SearchExhaustedError{Deepest: deepest, Basis: len(basis), Tried: int(tried)}
}

// checkEvery is the number of candidates a worker validates between two
// checks of the context.
const checkEvery = 256

// progressCandidates is the number of candidates tried between two
// progress logs in tiers combining three or more vectors.
const progressCandidates = 1 << 20

func searchTier(ctx context.Context, baseline *bitset.BitSet, basis []*bitset.BitSet, size int,
	accept func(*bitset.BitSet) bool, opts *Options, b *best, tried, improved *int64, log logrus.FieldLogger) error {
	outer := len(basis) - size + 1
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	var done int64
	progress := func(n int64) {
		log.WithFields(logrus.Fields{
			"outer": atomic.LoadInt64(&done),
			"of":    outer,
			"tried": n,
		}).Info("search progress")
	}
	for first := 0; first < outer; first++ {
		if gctx.Err() != nil {
			break
		}
		first := first
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			comb := make([]int, size)
			comb[0] = first
			head := baseline.Clone()
			head.InPlaceSymmetricDifference(basis[first])
			local := 0
			forEachCombination(first+1, len(basis), comb[1:], func() bool {
				if local++; local%checkEvery == 0 && gctx.Err() != nil {
					return false
				}
				bits := head.Clone()
				for _, j := range comb[1:] {
					bits.InPlaceSymmetricDifference(basis[j])
				}
				n := atomic.AddInt64(tried, 1)
				if size >= 3 && opts.ProgressEvery > 0 && n%progressCandidates == 0 {
					progress(n)
				}
				w := int(bits.Count())
				if !b.beats(w, comb) {
					return true
				}
				if accept(bits) {
					atomic.AddInt64(improved, 1)
					b.offer(w, comb, bits)
				}
				return true
			})
			if err := gctx.Err(); err != nil {
				return err
			}
			n := atomic.AddInt64(&done, 1)
			if size >= 3 && opts.ProgressEvery > 0 && n%int64(opts.ProgressEvery) == 0 {
				progress(atomic.LoadInt64(tried))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrapf(err, "search interrupted in tier %d", size)
	}
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "search interrupted in tier %d", size)
	}
	return nil
}

// forEachCombination fills comb with every increasing sequence of
// len(comb) indices from [start, n), in lexicographic order, calling fn
// for each one until fn returns false.
func forEachCombination(start, n int, comb []int, fn func() bool) {
	k := len(comb)
	if k == 0 {
		fn()
		return
	}
	if n-start < k {
		return
	}
	for i := range comb {
		comb[i] = start + i
	}
	for {
		if !fn() {
			return
		}
		i := k - 1
		for i >= 0 && comb[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		comb[i]++
		for j := i + 1; j < k; j++ {
			comb[j] = comb[j-1] + 1
		}
	}
}

func binomial(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	res := int64(1)
	for i := 1; i <= k; i++ {
		res = res * int64(n-k+i) / int64(i)
	}
	return res
}
