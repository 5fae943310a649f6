package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpressionString(t *testing.T) {
	tests := []struct {
		name string
		e    Expression
		want string
	}{
		{"binary", Add(Int(1), Variable("x")), "(1 + x)"},
		{"nested", Mul(Add(Variable("x"), Int(1)), Sin(Variable("y"))), "((x + 1) * sin(y))"},
		{"negate", Negate(Variable("x")), "-x"},
		{"factorial", Factorial(Int(5)), "5!"},
		{"call", Call("f", Variable("x"), Int(2)), "f(x, 2)"},
		{"constant", ConstOf(Pi), "pi"},
		{"rational", Rat(1, 2), "1/2"},
		{"complex", NumOf(NewComplex(NewInteger(1), NewInteger(2))), "(1 + 2i)"},
		{"vector", Vector{Elems: []Expression{Int(1), Int(2)}}, "[1, 2]"},
		{"matrix", Matrix{Rows: [][]Expression{{Int(1), Int(2)}, {Int(3), Int(4)}}}, "[[1, 2], [3, 4]]"},
		{"set", NewSet(Variable("a"), Variable("b")), "{a, b}"},
		{"half open interval", NewInterval(Int(0), Int(1), true, false), "[0, 1)"},
		{"comparison", BinaryOf(OpLe, Variable("x"), Int(3)), "(x <= 3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.e.String())
		})
	}
}

func TestEqual(t *testing.T) {
	a := Add(Mul(Int(2), Variable("x")), Call("f", Variable("y")))
	b := Add(Mul(Int(2), Variable("x")), Call("f", Variable("y")))
	assert.True(t, Equal(a, b))

	assert.False(t, Equal(Add(Int(1), Int(2)), Add(Int(2), Int(1))), "equality is structural, not semantic")
	assert.False(t, Equal(Int(1), Rat(1, 1)))
	assert.False(t, Equal(Vector{Elems: []Expression{Int(1)}}, Set{Elems: []Expression{Int(1)}}))
	assert.False(t, Equal(NewInterval(Int(0), Int(1), true, true), NewInterval(Int(0), Int(1), true, false)))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(Int(1), nil))
}

func TestEqualNormalizesNames(t *testing.T) {
	composed := Var{Name: "\u00e9"}
	decomposed := Var{Name: "e\u0301"}
	assert.True(t, Equal(composed, decomposed))
	assert.True(t, Equal(Call("f\u0301", Int(1)), Func{Name: "f\u0301", Args: []Expression{Int(1)}}))
	assert.False(t, Equal(composed, Var{Name: "e"}))

	assert.Equal(t, "\u00e9", Variable("e\u0301").(Var).Name)

	a, err := MarshalCanonical(composed)
	require.NoError(t, err)
	b, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, a, b, "equal names encode identically")
}

func TestCloneIsIndependent(t *testing.T) {
	orig := Call("f", Variable("x"), Int(1))
	cp := Clone(orig).(Func)
	cp.Args[0] = Variable("changed")

	assert.Equal(t, "f(x, 1)", orig.String())
	assert.Equal(t, "f(changed, 1)", cp.String())

	m := Matrix{Rows: [][]Expression{{Int(1), Int(2)}}}
	mc := Clone(m).(Matrix)
	mc.Rows[0][0] = Int(9)
	assert.True(t, Equal(Int(1), m.Rows[0][0]))
}

func TestNewMatrixValidation(t *testing.T) {
	_, err := NewMatrix(nil)
	assert.ErrorIs(t, err, ErrEmptyMatrix)

	_, err = NewMatrix([][]Expression{{}})
	assert.ErrorIs(t, err, ErrEmptyRow)

	_, err = NewMatrix([][]Expression{{Int(1), Int(2)}, {Int(3)}})
	assert.ErrorIs(t, err, ErrRaggedMatrix)

	m, err := NewMatrix([][]Expression{{Int(1), Int(2)}, {Int(3), Int(4)}})
	require.NoError(t, err)
	assert.Len(t, m.Rows, 2)

	_, err = NewVector(nil)
	assert.ErrorIs(t, err, ErrEmptyVector)
}

func TestBuilder(t *testing.T) {
	t.Run("valid chain", func(t *testing.T) {
		b := NewBuilder()
		m := b.Matrix([][]Expression{{Int(1), Int(2)}, {Int(3), Int(4)}})
		e, err := b.Build(b.Unary(OpDeterminant, m))
		require.NoError(t, err)
		assert.Equal(t, "det([[1, 2], [3, 4]])", e.String())
	})

	t.Run("first error wins", func(t *testing.T) {
		b := NewBuilder()
		v := b.Vector()
		m := b.Matrix(nil)
		_, err := b.Build(b.Binary(OpAdd, v, m))
		assert.ErrorIs(t, err, ErrEmptyVector)
	})

	t.Run("validation runs on build", func(t *testing.T) {
		b := NewBuilder()
		m := b.Matrix([][]Expression{{Int(1), Int(2)}})
		_, err := b.Build(b.Unary(OpTrace, m))
		assert.ErrorIs(t, err, ErrNotSquare)
	})
}
