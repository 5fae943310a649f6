package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuralHashDeterminism(t *testing.T) {
	e := Add(Mul(Int(2), Variable("x")), Sin(ConstOf(Pi)))

	h1, err := StructuralHash(e)
	require.NoError(t, err)
	h2, err := StructuralHash(Clone(e))
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "structurally equal expressions must hash equal")
}

func TestStructuralHashDistinguishesVariants(t *testing.T) {
	assert.NotEqual(t, MustStructuralHash(Int(1)), MustStructuralHash(Rat(1, 1)))
	assert.NotEqual(t, MustStructuralHash(Int(1)), MustStructuralHash(Flt(1)))
	assert.NotEqual(t, MustStructuralHash(Add(Int(1), Int(2))), MustStructuralHash(Add(Int(2), Int(1))))
	assert.NotEqual(t, MustStructuralHash(Variable("x")), MustStructuralHash(Variable("y")))
	assert.NotEqual(t,
		MustStructuralHash(NewInterval(Int(0), Int(1), true, true)),
		MustStructuralHash(NewInterval(Int(0), Int(1), false, true)))
}

func TestStructuralHashDomainSeparation(t *testing.T) {
	// The same canonical bytes hashed under different domains differ.
	exprHash := MustStructuralHash(NumOf(NewInteger(5)))
	numHash, err := NumberHash(NewInteger(5))
	require.NoError(t, err)
	assert.NotEqual(t, exprHash, numHash)
}

func TestContentDigest(t *testing.T) {
	d1, err := ContentDigest(Variable("x"))
	require.NoError(t, err)
	d2, err := ContentDigest(Variable("x"))
	require.NoError(t, err)

	assert.Equal(t, d1, d2)
	assert.Len(t, d1, 64, "SHA-256 hex is 64 characters")
}

func TestStructuralHashError(t *testing.T) {
	_, err := StructuralHash(nil)
	assert.Error(t, err)
	assert.Panics(t, func() { MustStructuralHash(nil) })
}
