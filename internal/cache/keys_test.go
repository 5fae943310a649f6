package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symcore/internal/ir"
)

func TestFastKeys(t *testing.T) {
	assert.Equal(t, BinaryKey(1, 2, ir.OpAdd), BinaryKey(1, 2, ir.OpAdd))
	assert.NotEqual(t, BinaryKey(1, 2, ir.OpAdd), BinaryKey(2, 1, ir.OpAdd))
	assert.NotEqual(t, BinaryKey(1, 2, ir.OpAdd), BinaryKey(1, 2, ir.OpMul))
	assert.NotEqual(t, UnaryKey(1, ir.OpNeg), BinaryKey(1, 0, ir.OpAdd))
	assert.NotEqual(t, FuncKey("f", 1, 23), FuncKey("f", 12, 3))

	assert.Equal(t, "1 + 2", BinaryKey(1, 2, ir.OpAdd).String())
	assert.Equal(t, "sqrt(16)", UnaryKey(16, ir.OpSqrt).String())
	assert.Equal(t, "gcd(12,18)", FuncKey("gcd", 12, 18).String())
}

func TestExactKeyDistinguishesKinds(t *testing.T) {
	a, err := NewExactKey(ir.NewInteger(1), nil, "evaluate_neg")
	require.NoError(t, err)
	b, err := NewExactKey(ir.NewRational(1, 1), nil, "evaluate_neg")
	require.NoError(t, err)
	c, err := NewExactKey(ir.NewInteger(1), ir.NewInteger(1), "evaluate_neg")
	require.NoError(t, err)
	d, err := NewExactKey(ir.NewInteger(1), nil, "evaluate_neg")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, d)

	_, err = NewExactKey(nil, nil, "x")
	assert.Error(t, err)
}

func TestSymbolicKeyVariable(t *testing.T) {
	x := "x"
	withVar, err := NewSymbolicKey(ir.Pow(ir.Variable("x"), ir.Int(2)), "derivative", &x)
	require.NoError(t, err)
	without, err := NewSymbolicKey(ir.Pow(ir.Variable("x"), ir.Int(2)), "derivative", nil)
	require.NoError(t, err)
	empty := ""
	withEmpty, err := NewSymbolicKey(ir.Pow(ir.Variable("x"), ir.Int(2)), "derivative", &empty)
	require.NoError(t, err)

	assert.NotEqual(t, withVar, without)
	assert.NotEqual(t, without, withEmpty, "an empty variable name is not the same as none")
}
