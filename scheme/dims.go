package scheme

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Dimensions describes a matrix multiplication problem: an ARows×ACols matrix
// times an ACols×BCols matrix, computed with Products scalar products.
type Dimensions struct {
	ARows    int
	ACols    int
	BCols    int
	Products int
}

// Index is a (row, col) position inside one of the coefficient matrices.
type Index struct {
	Row int
	Col int
}

func (i Index) String() string {
	return fmt.Sprintf("%d%d", i.Row+1, i.Col+1)
}

// NewDimensions returns validated dimensions.
func NewDimensions(aRows, aCols, bCols, products int) (Dimensions, error) {
	d := Dimensions{ARows: aRows, ACols: aCols, BCols: bCols, Products: products}
	if err := d.Validate(); err != nil {
		return Dimensions{}, err
	}
	return d, nil
}

// ParseSignature parses a problem signature such as "2x2x2_07".
// The product suffix may be omitted, in which case Products is 0 and
// must be set by the caller before use.
func ParseSignature(sig string) (Dimensions, error) {
	var d Dimensions
	s := strings.TrimSpace(strings.ToLower(sig))
	i := strings.IndexByte(s, '_')
	if i >= 0 {
		n, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return d, errors.Errorf("invalid product count in signature %q", sig)
		}
		d.Products = n
		s = s[:i]
	}
	fields := strings.Split(s, "x")
	if len(fields) != 3 {
		return d, errors.Errorf("invalid signature %q: 3 dimensions expected", sig)
	}
	vals := make([]int, 3)
	for j, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 {
			return d, errors.Errorf("invalid dimension %q in signature %q", f, sig)
		}
		vals[j] = n
	}
	d.ARows, d.ACols, d.BCols = vals[0], vals[1], vals[2]
	if i >= 0 {
		if err := d.Validate(); err != nil {
			return d, err
		}
	}
	return d, nil
}

// Validate checks every dimension is positive.
func (d Dimensions) Validate() error {
	if d.ARows < 1 || d.ACols < 1 || d.BCols < 1 {
		return errors.Errorf("invalid dimensions %dx%dx%d", d.ARows, d.ACols, d.BCols)
	}
	if d.Products < 1 {
		return errors.Errorf("invalid number of products %d", d.Products)
	}
	return nil
}

func (d Dimensions) BRows() int { return d.ACols }
func (d Dimensions) CRows() int { return d.ARows }
func (d Dimensions) CCols() int { return d.BCols }

// Rows returns the number of rows of the matrix addressed by kind.
func (d Dimensions) Rows(kind Kind) int {
	switch kind {
	case F:
		return d.ARows
	case G:
		return d.BRows()
	default:
		return d.CRows()
	}
}

// Cols returns the number of columns of the matrix addressed by kind.
func (d Dimensions) Cols(kind Kind) int {
	switch kind {
	case F:
		return d.ACols
	case G:
		return d.BCols
	default:
		return d.CCols()
	}
}

// Size is the number of coefficients of kind for a single product.
func (d Dimensions) Size(kind Kind) int {
	return d.Rows(kind) * d.Cols(kind)
}

func indices(rows, cols int) []Index {
	res := make([]Index, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			res = append(res, Index{Row: r, Col: c})
		}
	}
	return res
}

// AIndices returns the positions of A in row-major order.
func (d Dimensions) AIndices() []Index { return indices(d.ARows, d.ACols) }

// BIndices returns the positions of B in row-major order.
func (d Dimensions) BIndices() []Index { return indices(d.BRows(), d.BCols) }

// CIndices returns the positions of C in row-major order.
func (d Dimensions) CIndices() []Index { return indices(d.CRows(), d.CCols()) }

// Indices returns the positions of the matrix addressed by kind.
func (d Dimensions) Indices(kind Kind) []Index {
	return indices(d.Rows(kind), d.Cols(kind))
}

// Tuples is the number of (a, b, c) index combinations, i.e. the number of
// Brent equations in index space.
func (d Dimensions) Tuples() int {
	return d.ARows * d.ACols * d.BRows() * d.BCols * d.CRows() * d.CCols()
}

// ProductDigits is the width product numbers are zero-padded to in literal names.
func (d Dimensions) ProductDigits() int {
	return len(strconv.Itoa(d.Products))
}

// Signature renders the dimensions as "AxBxC_NN".
func (d Dimensions) Signature() string {
	return fmt.Sprintf("%dx%dx%d_%02d", d.ARows, d.ACols, d.BCols, d.Products)
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d times %dx%d with %d products",
		d.ARows, d.ACols, d.BRows(), d.BCols, d.Products)
}
