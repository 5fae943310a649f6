package ir

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Expression is a sealed sum type over the expression tree nodes.
// Only Num, Var, Const, Binary, Unary, Func, Matrix, Vector, Set and
// Interval implement it. Trees are treated as immutable values once built;
// use Clone before changing slices in place.
type Expression interface {
	String() string
	expression() // Sealed
}

// Num is a numeric leaf.
type Num struct {
	Value Number
}

// Var is a named variable.
type Var struct {
	Name string
}

// Const is a named mathematical constant.
type Const struct {
	Value MathConstant
}

// Binary applies a binary operator.
type Binary struct {
	Op    BinaryOp
	Left  Expression
	Right Expression
}

// Unary applies a unary operator.
type Unary struct {
	Op      UnaryOp
	Operand Expression
}

// Func is an application of a named function.
type Func struct {
	Name string
	Args []Expression
}

// Matrix is a rectangular grid of expressions. Construct with NewMatrix.
type Matrix struct {
	Rows [][]Expression
}

// Vector is a non-empty ordered list. Construct with NewVector.
type Vector struct {
	Elems []Expression
}

// Set is an unordered collection; element order is preserved as given.
type Set struct {
	Elems []Expression
}

// Interval is a range with independently open or closed ends.
type Interval struct {
	Start          Expression
	End            Expression
	StartInclusive bool
	EndInclusive   bool
}

func (Num) expression()      {}
func (Var) expression()      {}
func (Const) expression()    {}
func (Binary) expression()   {}
func (Unary) expression()    {}
func (Func) expression()     {}
func (Matrix) expression()   {}
func (Vector) expression()   {}
func (Set) expression()      {}
func (Interval) expression() {}

func (n Num) String() string {
	if n.Value == nil {
		return "<nil>"
	}
	if c, ok := n.Value.(Complex); ok && !IsZero(c.Re) {
		return "(" + c.String() + ")"
	}
	return n.Value.String()
}

func (v Var) String() string   { return v.Name }
func (c Const) String() string { return c.Value.String() }

func (b Binary) String() string {
	return "(" + b.Left.String() + " " + b.Op.String() + " " + b.Right.String() + ")"
}

func (u Unary) String() string {
	switch u.Op {
	case OpNeg, OpPlus:
		return u.Op.String() + u.Operand.String()
	case OpFactorial:
		return u.Operand.String() + "!"
	}
	return u.Op.String() + "(" + u.Operand.String() + ")"
}

func (f Func) String() string {
	return f.Name + "(" + joinExprs(f.Args) + ")"
}

func (m Matrix) String() string {
	rows := make([]string, len(m.Rows))
	for i, row := range m.Rows {
		rows[i] = "[" + joinExprs(row) + "]"
	}
	return "[" + strings.Join(rows, ", ") + "]"
}

func (v Vector) String() string { return "[" + joinExprs(v.Elems) + "]" }
func (s Set) String() string    { return "{" + joinExprs(s.Elems) + "}" }

func (iv Interval) String() string {
	open, close := "(", ")"
	if iv.StartInclusive {
		open = "["
	}
	if iv.EndInclusive {
		close = "]"
	}
	return open + iv.Start.String() + ", " + iv.End.String() + close
}

func joinExprs(es []Expression) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// Equal reports deep structural equality of two expressions.
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Num:
		y, ok := b.(Num)
		return ok && EqualNumbers(x.Value, y.Value)
	case Var:
		y, ok := b.(Var)
		return ok && sameName(x.Name, y.Name)
	case Const:
		y, ok := b.(Const)
		return ok && x.Value == y.Value
	case Binary:
		y, ok := b.(Binary)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case Unary:
		y, ok := b.(Unary)
		return ok && x.Op == y.Op && Equal(x.Operand, y.Operand)
	case Func:
		y, ok := b.(Func)
		return ok && sameName(x.Name, y.Name) && equalSlices(x.Args, y.Args)
	case Matrix:
		y, ok := b.(Matrix)
		if !ok || len(x.Rows) != len(y.Rows) {
			return false
		}
		for i := range x.Rows {
			if !equalSlices(x.Rows[i], y.Rows[i]) {
				return false
			}
		}
		return true
	case Vector:
		y, ok := b.(Vector)
		return ok && equalSlices(x.Elems, y.Elems)
	case Set:
		y, ok := b.(Set)
		return ok && equalSlices(x.Elems, y.Elems)
	case Interval:
		y, ok := b.(Interval)
		return ok && x.StartInclusive == y.StartInclusive && x.EndInclusive == y.EndInclusive &&
			Equal(x.Start, y.Start) && Equal(x.End, y.End)
	}
	return false
}

// sameName compares names the way the canonical encoding sees them, after
// NFC normalization.
func sameName(a, b string) bool {
	return a == b || norm.NFC.String(a) == norm.NFC.String(b)
}

func equalSlices(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of e. Numbers are immutable and shared.
func Clone(e Expression) Expression {
	switch x := e.(type) {
	case Binary:
		return Binary{Op: x.Op, Left: Clone(x.Left), Right: Clone(x.Right)}
	case Unary:
		return Unary{Op: x.Op, Operand: Clone(x.Operand)}
	case Func:
		return Func{Name: x.Name, Args: cloneSlice(x.Args)}
	case Matrix:
		rows := make([][]Expression, len(x.Rows))
		for i, row := range x.Rows {
			rows[i] = cloneSlice(row)
		}
		return Matrix{Rows: rows}
	case Vector:
		return Vector{Elems: cloneSlice(x.Elems)}
	case Set:
		return Set{Elems: cloneSlice(x.Elems)}
	case Interval:
		return Interval{Start: Clone(x.Start), End: Clone(x.End), StartInclusive: x.StartInclusive, EndInclusive: x.EndInclusive}
	case Num:
		if s, ok := x.Value.(Symbolic); ok {
			return Num{Value: Symbolic{Expr: Clone(s.Expr)}}
		}
	}
	return e
}

func cloneSlice(es []Expression) []Expression {
	if es == nil {
		return nil
	}
	out := make([]Expression, len(es))
	for i, e := range es {
		out[i] = Clone(e)
	}
	return out
}
