package brent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a1880/matrix-multiplication/scheme"
)

func TestValidate(t *testing.T) {
	rep := Validate(load(t, "strassen.bini"))
	assert.True(t, rep.OK())
	assert.Equal(t, 64, rep.Checked)
	assert.Nil(t, rep.First)
	assert.NoError(t, rep.Err())

	rep = Validate(load(t, "naive_2x2x2.bini"))
	assert.True(t, rep.OK())
}

func TestValidateMod2SchemeOverIntegers(t *testing.T) {
	rep := Validate(load(t, "strassen_mod2.bini"))
	assert.Equal(t, 12, rep.Errors)
	require.NotNil(t, rep.First)
	want := Failure{
		Tuple: Tuple{A: scheme.Index{}, B: scheme.Index{}, C: scheme.Index{Row: 1, Col: 1}},
		Sum:   2,
		Want:  0,
	}
	assert.Equal(t, want, *rep.First)

	err := rep.Err()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.EqualError(t, err, "12 of 64 Brent equations violated, first a11 b11 c22: sum 2, expected 0")
}

func TestValidateMod2(t *testing.T) {
	assert.True(t, ValidateMod2(load(t, "strassen_mod2.bini")).OK())
	assert.True(t, ValidateMod2(load(t, "strassen.bini")).OK())

	rep := ValidateMod2(load(t, "broken_mod2.bini"))
	assert.Equal(t, 4, rep.Errors)
	require.NotNil(t, rep.First)
	assert.Equal(t, 1, rep.First.Want)
	assert.Equal(t, 0, rep.First.Sum)
}

func TestSigned(t *testing.T) {
	sys, err := Build(load(t, "strassen_mod2.bini"))
	require.NoError(t, err)
	none := sys.Signed(func(int) bool { return false })
	assert.True(t, none.Equal(sys.Known))
	all := sys.Signed(func(int) bool { return true })
	assert.Equal(t, 36, all.Negatives())
	// Negating every coefficient negates every triple sum.
	rep := Validate(all)
	assert.Equal(t, 20, rep.Errors)
	require.NotNil(t, rep.First)
	assert.Equal(t, -1, rep.First.Sum)
}
