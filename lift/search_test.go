package lift

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitBasis(n int) []*bitset.BitSet {
	res := make([]*bitset.BitSet, n)
	for i := range res {
		res[i] = bitset.New(uint(n)).Set(uint(i))
	}
	return res
}

func TestForEachCombination(t *testing.T) {
	var got [][]int
	comb := make([]int, 2)
	forEachCombination(1, 4, comb, func() bool {
		got = append(got, append([]int(nil), comb...))
		return true
	})
	assert.Equal(t, [][]int{{1, 2}, {1, 3}, {2, 3}}, got)

	n := 0
	forEachCombination(0, 10, make([]int, 4), func() bool { n++; return true })
	assert.Equal(t, 210, n)
	assert.Equal(t, int64(210), binomial(10, 4))

	n = 0
	forEachCombination(3, 4, make([]int, 2), func() bool { n++; return true })
	assert.Equal(t, 0, n)

	n = 0
	forEachCombination(3, 4, nil, func() bool { n++; return true })
	assert.Equal(t, 1, n)

	n = 0
	forEachCombination(0, 10, make([]int, 4), func() bool { n++; return n < 7 })
	assert.Equal(t, 7, n)
}

func TestSearchBaseline(t *testing.T) {
	baseline := bitset.New(4).Set(1)
	res, err := Search(context.Background(), baseline, nil, func(*bitset.BitSet) bool { return true }, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Tier)
	assert.Empty(t, res.Combination)
	assert.Equal(t, 1, res.Weight)
	assert.Equal(t, 1, res.Tried)
	assert.Equal(t, 1, res.Improved)
}

func TestSearchImprovedCount(t *testing.T) {
	var validated int64
	accept := func(*bitset.BitSet) bool {
		atomic.AddInt64(&validated, 1)
		return true
	}
	res, err := Search(context.Background(), bitset.New(3), unitBasis(3), accept, Options{Tiers: []int{1}})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Weight)
	assert.Equal(t, 4, res.Tried)
	// Singles are heavier than the baseline and never validated.
	assert.Equal(t, 1, res.Improved)
	assert.Equal(t, int64(1), atomic.LoadInt64(&validated))
}

func TestSearchTier2(t *testing.T) {
	// Only pairs containing vector 5 are valid.
	accept := func(b *bitset.BitSet) bool { return b.Count() == 2 && b.Test(5) }
	res, err := Search(context.Background(), bitset.New(6), unitBasis(6), accept, Options{Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Tier)
	assert.Equal(t, []int{0, 5}, res.Combination)
	assert.Equal(t, 2, res.Weight)
	assert.Equal(t, 1+6+15, res.Tried)
}

func TestSearchSkipsToTier4(t *testing.T) {
	accept := func(b *bitset.BitSet) bool { return b.Count() == 4 }
	res, err := Search(context.Background(), bitset.New(7), unitBasis(7), accept, Options{})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Tier)
	assert.Equal(t, []int{0, 1, 2, 3}, res.Combination)

	_, err = Search(context.Background(), bitset.New(7), unitBasis(7), accept, Options{Tiers: []int{1, 2, 3}})
	var se *SearchExhaustedError
	require.True(t, errors.As(err, &se), "unexpected error %v", err)
	assert.Equal(t, 3, se.Deepest)
	assert.Equal(t, 7, se.Basis)
	assert.Equal(t, 1+7+21+35, se.Tried)
}

func TestSearchTierLargerThanBasis(t *testing.T) {
	accept := func(b *bitset.BitSet) bool { return b.Count() == 3 }
	_, err := Search(context.Background(), bitset.New(3), unitBasis(3), accept, Options{Tiers: []int{1, 4}})
	var se *SearchExhaustedError
	require.True(t, errors.As(err, &se), "unexpected error %v", err)
	assert.Equal(t, 4, se.Deepest)

	_, err = Search(context.Background(), bitset.New(3), unitBasis(3), accept, Options{Tiers: []int{0}})
	assert.Error(t, err)
}

// TestSearchMinimal checks the result against a sequential scan of the
// tier, for random bases and validity predicates.
func TestSearchMinimal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		n := 6 + rng.Intn(10)
		basis := make([]*bitset.BitSet, n)
		for i := range basis {
			basis[i] = bitset.New(uint(2 * n))
			for j := 0; j < 2*n; j++ {
				if rng.Intn(3) == 0 {
					basis[i].Set(uint(j))
				}
			}
		}
		baseline := bitset.New(uint(2 * n))
		for j := 0; j < 2*n; j++ {
			if rng.Intn(2) == 0 {
				baseline.Set(uint(j))
			}
		}
		mask := bitset.New(uint(2 * n))
		for j := 0; j < 2*n; j += 3 {
			mask.Set(uint(j))
		}
		// Valid iff the bits under the mask have even parity.
		accept := func(b *bitset.BitSet) bool {
			return b.IntersectionCardinality(mask)%2 == 0
		}

		res, err := Search(context.Background(), baseline, basis, accept, Options{Workers: 4})
		if err != nil {
			var se *SearchExhaustedError
			require.True(t, errors.As(err, &se), "unexpected error %v", err)
			continue
		}
		// Sequential reference over the same tier.
		bestW := -1
		var bestComb []int
		if res.Tier == 1 && accept(baseline) {
			bestW = int(baseline.Count())
			bestComb = []int{}
		}
		comb := make([]int, res.Tier)
		forEachCombination(0, n, comb, func() bool {
			b := baseline.Clone()
			for _, j := range comb {
				b.InPlaceSymmetricDifference(basis[j])
			}
			if !accept(b) {
				return true
			}
			if w := int(b.Count()); bestW == -1 || w < bestW || (w == bestW && lexLess(comb, bestComb)) {
				bestW = w
				bestComb = append([]int{}, comb...)
			}
			return true
		})
		require.NotEqual(t, -1, bestW)
		assert.Equal(t, bestW, res.Weight, "iteration %d", iter)
		if len(bestComb) == 0 {
			assert.Empty(t, res.Combination, "iteration %d", iter)
		} else {
			assert.Equal(t, bestComb, res.Combination, "iteration %d", iter)
		}
		assert.True(t, accept(res.Bits))
		assert.Equal(t, res.Weight, int(res.Bits.Count()))
	}
}

func TestSearchWorkersAgree(t *testing.T) {
	basis := unitBasis(12)
	accept := func(b *bitset.BitSet) bool { return b.Count() >= 2 && (b.Test(3) != b.Test(8)) }
	var results []*Result
	for _, workers := range []int{1, 2, 8} {
		res, err := Search(context.Background(), bitset.New(12), basis, accept, Options{Workers: workers})
		require.NoError(t, err)
		results = append(results, res)
	}
	for _, res := range results[1:] {
		assert.Equal(t, results[0].Combination, res.Combination)
		assert.Equal(t, results[0].Tier, res.Tier)
	}
	assert.Equal(t, []int{0, 3}, results[0].Combination)
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Search(ctx, bitset.New(4), unitBasis(4), func(*bitset.BitSet) bool { return false }, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "unexpected error %v", err)
}

func TestSearchDeadlineInsideTier(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	slow := func(*bitset.BitSet) bool {
		time.Sleep(200 * time.Microsecond)
		return false
	}
	start := time.Now()
	// C(40, 4) candidates would take minutes to validate.
	_, err := Search(ctx, bitset.New(40), unitBasis(40), slow, Options{Tiers: []int{4}, Workers: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "unexpected error %v", err)
	assert.Contains(t, err.Error(), "search interrupted in tier 4")
	assert.Less(t, time.Since(start), 2*time.Second)
}
