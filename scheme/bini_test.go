package scheme

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBiniStrassen(t *testing.T) {
	s, err := LoadBini("../testdata/strassen.bini")
	require.NoError(t, err)
	assert.Equal(t, Dimensions{ARows: 2, ACols: 2, BCols: 2, Products: 7}, s.Dims)

	// M2 = (A21 + A22)·B11 contributes to C21 and, negated, to C22.
	assert.Equal(t, int8(1), s.A(1, 0, 1))
	assert.Equal(t, int8(1), s.A(1, 1, 1))
	assert.Equal(t, int8(0), s.A(0, 0, 1))
	assert.Equal(t, int8(1), s.B(0, 0, 1))
	assert.Equal(t, int8(1), s.C(1, 0, 1))
	assert.Equal(t, int8(-1), s.C(1, 1, 1))
	assert.False(t, s.IsMod2())
	assert.Equal(t, 36, s.NonZeros())
	assert.Equal(t, 6, s.Negatives())

	assert.True(t, s.NonZeroTriple(Index{1, 0}, Index{0, 0}, Index{1, 1}, 1))
	assert.False(t, s.NonZeroTriple(Index{0, 0}, Index{0, 0}, Index{1, 1}, 1))
	assert.Equal(t, []Index{{1, 0}, {1, 1}}, s.NonZeroPositions(F, 1))
}

func TestBiniRoundTrip(t *testing.T) {
	s, err := LoadBini("../testdata/strassen.bini")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteBini(&buf, s, "round trip"))
	assert.Contains(t, buf.String(), "# round trip\n")
	assert.Contains(t, buf.String(), "Bini 2 2 2 7\n")
	got, err := ReadBini(&buf)
	require.NoError(t, err)
	assert.True(t, s.Equal(got), "schemes differ after round trip")

	mod2 := s.Mod2()
	assert.True(t, mod2.IsMod2())
	assert.Contains(t, string(MarshalBini(mod2)), "(mod 2!)")
	var sb strings.Builder
	require.NoError(t, WriteBini(&sb, mod2))
	assert.Equal(t, sb.String(), string(MarshalBini(mod2)))
	want, err := LoadBini("../testdata/strassen_mod2.bini")
	require.NoError(t, err)
	assert.True(t, want.Equal(mod2), "reduction modulo 2 differs from the modulo 2 scheme")
}

func TestReadBiniErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		msg  string
	}{
		{"no header", "  1 ; 1 ; 1 ; 1\n", "before Bini header"},
		{"short header", "Bini 1 1 1\n", "4 fields expected"},
		{"bad dimension", "Bini 1 0 1 1\n", "invalid dimensions"},
		{"bad caption", "Bini 1 1 1 1\nproduct Alpha Beta Gamma\n", "product Gamma Alpha Beta"},
		{"bad product", "Bini 1 1 1 1\n  2 ; 1 ; 1 ; 1\n", "inconsistent product index 2"},
		{"missing section", "Bini 1 1 1 1\n  1 ; 1 ; 1\n", "4 sections"},
		{"wrong count", "Bini 1 1 1 1\n  1 ; 1 1 ; 1 ; 1\n", "1 C values expected, got 2"},
		{"duplicate", "Bini 1 1 1 1\n  1 ; 1 ; 1 ; 1\n  1 ; 1 ; 1 ; 1\n", "duplicate product 1"},
		{"missing product", "Bini 1 1 1 2\n  1 ; 1 ; 1 ; 1\n", "missing value line for product 2"},
		{"garbage", "Bini 1 1 1 1\nhello world\n", "unexpected line"},
		{"empty", "# nothing\n", "missing Bini header"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadBini(strings.NewReader(test.text))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.msg)
		})
	}
}
