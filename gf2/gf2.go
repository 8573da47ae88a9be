// Package gf2 solves linear systems over GF(2).
//
// Rows are word-packed bit vectors. Solve reduces a system A·x = b by Gaussian
// elimination and returns one particular solution along with a basis of the
// null space of A, so that every solution is the particular one XORed with a
// combination of basis vectors.
package gf2

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
)

// ErrInconsistent is returned by Solve when the system has no solution.
var ErrInconsistent = errors.New("inconsistent linear system")

// A Matrix is a system of linear equations over GF(2), one row per equation.
type Matrix struct {
	cols int
	rows []*bitset.BitSet
	rhs  []bool
}

// NewMatrix returns a system without equations over cols unknowns.
func NewMatrix(cols int) *Matrix {
	return &Matrix{cols: cols}
}

// NewVector returns a zero vector suitable for a matrix with n columns.
func NewVector(n int) *bitset.BitSet {
	return bitset.New(uint(n))
}

// AddRow appends the equation row·x = rhs. The matrix takes ownership of row.
// Will panic if row has bits set beyond the number of columns.
func (m *Matrix) AddRow(row *bitset.BitSet, rhs bool) {
	if i, ok := row.NextSet(uint(m.cols)); ok {
		panic(fmt.Sprintf("column %d out of range in a %d-column matrix", i, m.cols))
	}
	m.rows = append(m.rows, row)
	m.rhs = append(m.rhs, rhs)
}

// Rows returns the number of equations.
func (m *Matrix) Rows() int { return len(m.rows) }

// Cols returns the number of unknowns.
func (m *Matrix) Cols() int { return m.cols }

// Row returns the i-th equation. The returned vector must not be modified.
func (m *Matrix) Row(i int) (*bitset.BitSet, bool) {
	return m.rows[i], m.rhs[i]
}

// Mul returns A·v.
func (m *Matrix) Mul(v *bitset.BitSet) *bitset.BitSet {
	res := bitset.New(uint(len(m.rows)))
	for i, row := range m.rows {
		if row.IntersectionCardinality(v)&1 == 1 {
			res.Set(uint(i))
		}
	}
	return res
}

// Satisfies reports whether A·v = b.
func (m *Matrix) Satisfies(v *bitset.BitSet) bool {
	for i, row := range m.rows {
		if (row.IntersectionCardinality(v)&1 == 1) != m.rhs[i] {
			return false
		}
	}
	return true
}

// Homogeneous returns a copy of the system with every right-hand side set to 0.
func (m *Matrix) Homogeneous() *Matrix {
	res := &Matrix{cols: m.cols, rows: make([]*bitset.BitSet, len(m.rows)), rhs: make([]bool, len(m.rows))}
	for i, row := range m.rows {
		res.rows[i] = row.Clone()
	}
	return res
}

func (m *Matrix) String() string {
	var sb strings.Builder
	for i, row := range m.rows {
		for c := 0; c < m.cols; c++ {
			if row.Test(uint(c)) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		if m.rhs[i] {
			sb.WriteString(" | 1\n")
		} else {
			sb.WriteString(" | 0\n")
		}
	}
	return sb.String()
}

// A Solution describes the whole solution space of a consistent system.
type Solution struct {
	// Rank of the matrix.
	Rank int
	// Pivots holds the pivot column of each row of the reduced matrix.
	Pivots []int
	// Free lists the columns without a pivot, in ascending order.
	Free []int
	// Particular is a solution where every free unknown is 0.
	Particular *bitset.BitSet
	// Basis spans the null space: one vector per free column.
	Basis []*bitset.BitSet
}

// Solve reduces the system and returns its solution space, or
// ErrInconsistent if it has none. m is not modified.
func (m *Matrix) Solve() (*Solution, error) {
	rows := make([]*bitset.BitSet, len(m.rows))
	for i, row := range m.rows {
		rows[i] = row.Clone()
	}
	rhs := make([]bool, len(m.rhs))
	copy(rhs, m.rhs)

	var pivots []int
	rank := 0
	for col := 0; col < m.cols && rank < len(rows); col++ {
		p := -1
		for r := rank; r < len(rows); r++ {
			if rows[r].Test(uint(col)) {
				p = r
				break
			}
		}
		if p == -1 {
			continue
		}
		rows[rank], rows[p] = rows[p], rows[rank]
		rhs[rank], rhs[p] = rhs[p], rhs[rank]
		for r := range rows {
			if r != rank && rows[r].Test(uint(col)) {
				rows[r].InPlaceSymmetricDifference(rows[rank])
				rhs[r] = rhs[r] != rhs[rank]
			}
		}
		pivots = append(pivots, col)
		rank++
	}
	// Rows below the rank are all zero now.
	for r := rank; r < len(rows); r++ {
		if rhs[r] {
			return nil, ErrInconsistent
		}
	}

	sol := &Solution{Rank: rank, Pivots: pivots, Particular: bitset.New(uint(m.cols))}
	isPivot := make([]bool, m.cols)
	for r, col := range pivots {
		isPivot[col] = true
		if rhs[r] {
			sol.Particular.Set(uint(col))
		}
	}
	for col := 0; col < m.cols; col++ {
		if isPivot[col] {
			continue
		}
		sol.Free = append(sol.Free, col)
		v := bitset.New(uint(m.cols))
		v.Set(uint(col))
		for r, pc := range pivots {
			if rows[r].Test(uint(col)) {
				v.Set(uint(pc))
			}
		}
		sol.Basis = append(sol.Basis, v)
	}
	return sol, nil
}

// NullSpace returns a basis of the null space of the matrix.
func (m *Matrix) NullSpace() []*bitset.BitSet {
	sol, err := m.Homogeneous().Solve()
	if err != nil {
		// A homogeneous system always has the zero solution.
		panic(err)
	}
	return sol.Basis
}
