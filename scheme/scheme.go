package scheme

import "fmt"

// Kind selects one of the three coefficient tensors.
type Kind uint8

const (
	// F coefficients (alpha) combine entries of A.
	F Kind = iota
	// G coefficients (beta) combine entries of B.
	G
	// D coefficients (gamma) distribute products over C.
	D
)

// Kinds lists every kind in canonical order.
var Kinds = [...]Kind{F, G, D}

func (k Kind) String() string {
	switch k {
	case F:
		return "f"
	case G:
		return "g"
	case D:
		return "d"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Matrix returns the name of the matrix the kind refers to.
func (k Kind) Matrix() string {
	return [...]string{"A", "B", "C"}[k]
}

// A Scheme is a set of coefficients for the three tensors of a
// matrix multiplication algorithm.
// Coefficients are stored densely, product-major then row-major.
type Scheme struct {
	Dims Dimensions
	vals [3][]int8
}

// New returns an all-zero scheme for the given dimensions.
func New(d Dimensions) *Scheme {
	s := &Scheme{Dims: d}
	for _, k := range Kinds {
		s.vals[k] = make([]int8, d.Size(k)*d.Products)
	}
	return s
}

func (s *Scheme) offset(kind Kind, row, col, product int) int {
	d := s.Dims
	if row < 0 || row >= d.Rows(kind) || col < 0 || col >= d.Cols(kind) || product < 0 || product >= d.Products {
		panic(fmt.Sprintf("%s index (%d,%d,%d) out of range for %s", kind.Matrix(), row, col, product, d.Signature()))
	}
	return product*d.Size(kind) + row*d.Cols(kind) + col
}

// At returns the coefficient of kind at (row, col) for product.
func (s *Scheme) At(kind Kind, row, col, product int) int8 {
	return s.vals[kind][s.offset(kind, row, col, product)]
}

// Set sets the coefficient of kind at (row, col) for product.
func (s *Scheme) Set(kind Kind, row, col, product int, val int8) {
	s.vals[kind][s.offset(kind, row, col, product)] = val
}

// A returns the alpha coefficient of A[row, col] in product.
func (s *Scheme) A(row, col, product int) int8 { return s.At(F, row, col, product) }

// B returns the beta coefficient of B[row, col] in product.
func (s *Scheme) B(row, col, product int) int8 { return s.At(G, row, col, product) }

// C returns the gamma coefficient of product in C[row, col].
func (s *Scheme) C(row, col, product int) int8 { return s.At(D, row, col, product) }

// NonZeroTriple reports whether the three coefficients selected by the index
// triple are all non-zero for product.
func (s *Scheme) NonZeroTriple(a, b, c Index, product int) bool {
	return s.A(a.Row, a.Col, product) != 0 &&
		s.B(b.Row, b.Col, product) != 0 &&
		s.C(c.Row, c.Col, product) != 0
}

// NonZeroPositions returns the positions of kind that are non-zero in product.
func (s *Scheme) NonZeroPositions(kind Kind, product int) []Index {
	var res []Index
	for _, idx := range s.Dims.Indices(kind) {
		if s.At(kind, idx.Row, idx.Col, product) != 0 {
			res = append(res, idx)
		}
	}
	return res
}

// Clone returns a deep copy of s.
func (s *Scheme) Clone() *Scheme {
	res := &Scheme{Dims: s.Dims}
	for _, k := range Kinds {
		res.vals[k] = make([]int8, len(s.vals[k]))
		copy(res.vals[k], s.vals[k])
	}
	return res
}

// Mod2 returns a copy of s with every coefficient reduced modulo 2.
func (s *Scheme) Mod2() *Scheme {
	res := s.Clone()
	for _, k := range Kinds {
		for i, v := range res.vals[k] {
			res.vals[k][i] = v & 1
		}
	}
	return res
}

// IsMod2 is true iff every coefficient is 0 or 1.
func (s *Scheme) IsMod2() bool {
	for _, k := range Kinds {
		for _, v := range s.vals[k] {
			if v != 0 && v != 1 {
				return false
			}
		}
	}
	return true
}

// NonZeros counts the non-zero coefficients over all three tensors.
func (s *Scheme) NonZeros() int {
	n := 0
	for _, k := range Kinds {
		for _, v := range s.vals[k] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Negatives counts the negative coefficients over all three tensors.
func (s *Scheme) Negatives() int {
	n := 0
	for _, k := range Kinds {
		for _, v := range s.vals[k] {
			if v < 0 {
				n++
			}
		}
	}
	return n
}

// Equal reports whether s and o have the same dimensions and coefficients.
func (s *Scheme) Equal(o *Scheme) bool {
	if s.Dims != o.Dims {
		return false
	}
	for _, k := range Kinds {
		for i, v := range s.vals[k] {
			if o.vals[k][i] != v {
				return false
			}
		}
	}
	return true
}
