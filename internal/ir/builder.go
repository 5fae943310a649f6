package ir

import (
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Validation errors returned by the collection constructors and Validate.
var (
	ErrEmptyMatrix   = errors.New("matrix must have at least one row")
	ErrEmptyRow      = errors.New("matrix rows must not be empty")
	ErrRaggedMatrix  = errors.New("matrix rows must have equal length")
	ErrEmptyVector   = errors.New("vector must have at least one element")
	ErrNotSquare     = errors.New("operator requires a square matrix")
	ErrNotMatrix     = errors.New("operator requires a matrix operand")
	ErrDimension     = errors.New("operand dimensions do not match")
	ErrFactorialType = errors.New("factorial requires an integer operand")
)

// NewMatrix builds a matrix, rejecting empty and ragged row sets.
func NewMatrix(rows [][]Expression) (Matrix, error) {
	if err := checkRows(rows); err != nil {
		return Matrix{}, err
	}
	return Matrix{Rows: rows}, nil
}

func checkRows(rows [][]Expression) error {
	if len(rows) == 0 {
		return ErrEmptyMatrix
	}
	cols := len(rows[0])
	if cols == 0 {
		return ErrEmptyRow
	}
	for i, row := range rows {
		if len(row) != cols {
			return fmt.Errorf("row %d has %d columns, want %d: %w", i+1, len(row), cols, ErrRaggedMatrix)
		}
	}
	return nil
}

// NewVector builds a vector, rejecting an empty element list.
func NewVector(elems []Expression) (Vector, error) {
	if len(elems) == 0 {
		return Vector{}, ErrEmptyVector
	}
	return Vector{Elems: elems}, nil
}

// NewSet builds a set. Sets may be empty.
func NewSet(elems ...Expression) Set {
	return Set{Elems: elems}
}

// NewInterval builds an interval between start and end.
func NewInterval(start, end Expression, startInclusive, endInclusive bool) Interval {
	return Interval{Start: start, End: end, StartInclusive: startInclusive, EndInclusive: endInclusive}
}

func Int(n int64) Expression            { return Num{Value: NewInteger(n)} }
func Rat(num, den int64) Expression     { return Num{Value: NewRational(num, den)} }
func Flt(f float64) Expression          { return Num{Value: Float(f)} }
func NumOf(n Number) Expression         { return Num{Value: n} }
func Variable(name string) Expression   { return Var{Name: norm.NFC.String(name)} }
func ConstOf(c MathConstant) Expression { return Const{Value: c} }

func BinaryOf(op BinaryOp, l, r Expression) Expression { return Binary{Op: op, Left: l, Right: r} }
func UnaryOf(op UnaryOp, x Expression) Expression      { return Unary{Op: op, Operand: x} }

func Add(l, r Expression) Expression { return Binary{Op: OpAdd, Left: l, Right: r} }
func Sub(l, r Expression) Expression { return Binary{Op: OpSub, Left: l, Right: r} }
func Mul(l, r Expression) Expression { return Binary{Op: OpMul, Left: l, Right: r} }
func Div(l, r Expression) Expression { return Binary{Op: OpDiv, Left: l, Right: r} }
func Pow(b, e Expression) Expression { return Binary{Op: OpPow, Left: b, Right: e} }
func Mod(l, r Expression) Expression { return Binary{Op: OpMod, Left: l, Right: r} }

func Negate(x Expression) Expression    { return Unary{Op: OpNeg, Operand: x} }
func Sqrt(x Expression) Expression      { return Unary{Op: OpSqrt, Operand: x} }
func Abs(x Expression) Expression       { return Unary{Op: OpAbs, Operand: x} }
func Sin(x Expression) Expression       { return Unary{Op: OpSin, Operand: x} }
func Cos(x Expression) Expression       { return Unary{Op: OpCos, Operand: x} }
func Tan(x Expression) Expression       { return Unary{Op: OpTan, Operand: x} }
func Ln(x Expression) Expression        { return Unary{Op: OpLn, Operand: x} }
func Exp(x Expression) Expression       { return Unary{Op: OpExp, Operand: x} }
func Factorial(x Expression) Expression { return Unary{Op: OpFactorial, Operand: x} }

// Call applies a named function to args. Names are NFC normalized, as in
// Variable.
func Call(name string, args ...Expression) Expression {
	return Func{Name: norm.NFC.String(name), Args: args}
}

// Builder constructs expressions fluently and remembers the first
// validation error, so a chain of constructions can be checked once.
//
//	b := ir.NewBuilder()
//	m := b.Matrix([][]ir.Expression{{ir.Int(1), ir.Int(2)}, {ir.Int(3), ir.Int(4)}})
//	expr, err := b.Build(b.Unary(ir.OpDeterminant, m))
type Builder struct {
	err error
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Err returns the first recorded error.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) record(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

// Matrix records an error for invalid rows and returns the matrix as given.
func (b *Builder) Matrix(rows [][]Expression) Expression {
	b.record(checkRows(rows))
	return Matrix{Rows: rows}
}

// Vector records an error for an empty element list.
func (b *Builder) Vector(elems ...Expression) Expression {
	v, err := NewVector(elems)
	b.record(err)
	if err != nil {
		return Vector{Elems: elems}
	}
	return v
}

func (b *Builder) Set(elems ...Expression) Expression { return NewSet(elems...) }

func (b *Builder) Interval(start, end Expression, startInclusive, endInclusive bool) Expression {
	return NewInterval(start, end, startInclusive, endInclusive)
}

func (b *Builder) Binary(op BinaryOp, l, r Expression) Expression {
	if !op.Valid() {
		b.record(fmt.Errorf("invalid binary operator %d", int(op)))
	}
	return Binary{Op: op, Left: l, Right: r}
}

func (b *Builder) Unary(op UnaryOp, x Expression) Expression {
	if !op.Valid() {
		b.record(fmt.Errorf("invalid unary operator %d", int(op)))
	}
	return Unary{Op: op, Operand: x}
}

// Build validates root and returns it with the first error seen during
// construction or validation.
func (b *Builder) Build(root Expression) (Expression, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}
