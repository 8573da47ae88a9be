package lift

import "github.com/a1880/matrix-multiplication/scheme"

// Negating two of the three factors of a product leaves it unchanged.
var flipPatterns = [...][3]bool{
	{false, false, false},
	{true, true, false},
	{true, false, true},
	{false, true, true},
}

// plusMinus counts the positive and negative coefficients of kind in product.
// The first non-zero coefficient counts twice, to avoid leading minus signs.
func plusMinus(s *scheme.Scheme, kind scheme.Kind, product int) (plus, minus int) {
	first := true
	for _, idx := range s.Dims.Indices(kind) {
		w := 1
		if first {
			w = 2
		}
		switch v := s.At(kind, idx.Row, idx.Col, product); {
		case v > 0:
			plus += w
			first = false
		case v < 0:
			minus += w
			first = false
		}
	}
	return plus, minus
}

// Beautify negates pairs of factors of each product of s so that the
// scheme contains as few minus signs as possible. The resulting scheme
// computes the same products and thus satisfies the same Brent equations.
// It returns the number of products that were changed.
func Beautify(s *scheme.Scheme) int {
	changed := 0
	for k := 0; k < s.Dims.Products; k++ {
		var plus, minus [3]int
		for i, kind := range scheme.Kinds {
			plus[i], minus[i] = plusMinus(s, kind, k)
		}
		best, bestScore := 0, -1
		for p, pat := range flipPatterns {
			score := 0
			for i := range pat {
				if pat[i] {
					score += plus[i]
				} else {
					score += minus[i]
				}
			}
			if bestScore == -1 || score < bestScore {
				best, bestScore = p, score
			}
		}
		if best == 0 {
			continue
		}
		changed++
		for i, kind := range scheme.Kinds {
			if !flipPatterns[best][i] {
				continue
			}
			for _, idx := range s.Dims.Indices(kind) {
				if v := s.At(kind, idx.Row, idx.Col, k); v != 0 {
					s.Set(kind, idx.Row, idx.Col, k, -v)
				}
			}
		}
	}
	return changed
}
