package ir

import (
	"fmt"
	"math"
	"slices"
)

// IsConstant reports whether e contains no variables.
func IsConstant(e Expression) bool {
	constant := true
	walk(e, func(n Expression) bool {
		if _, ok := n.(Var); ok {
			constant = false
		}
		return constant
	})
	return constant
}

// Variables returns the distinct variable names in e, sorted.
func Variables(e Expression) []string {
	seen := make(map[string]struct{})
	walk(e, func(n Expression) bool {
		if v, ok := n.(Var); ok {
			seen[v.Name] = struct{}{}
		}
		return true
	})
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// walk visits e depth-first, parents before children. Returning false from
// visit stops the traversal.
func walk(e Expression, visit func(Expression) bool) bool {
	if e == nil {
		return true
	}
	if !visit(e) {
		return false
	}
	for _, child := range children(e) {
		if !walk(child, visit) {
			return false
		}
	}
	return true
}

func children(e Expression) []Expression {
	switch x := e.(type) {
	case Binary:
		return []Expression{x.Left, x.Right}
	case Unary:
		return []Expression{x.Operand}
	case Func:
		return x.Args
	case Matrix:
		var out []Expression
		for _, row := range x.Rows {
			out = append(out, row...)
		}
		return out
	case Vector:
		return x.Elems
	case Set:
		return x.Elems
	case Interval:
		return []Expression{x.Start, x.End}
	case Num:
		if s, ok := x.Value.(Symbolic); ok {
			return []Expression{s.Expr}
		}
	}
	return nil
}

// Complexity counts nodes: 1 per leaf, 1 plus the children for composites.
func Complexity(e Expression) int {
	switch x := e.(type) {
	case Num:
		if s, ok := x.Value.(Symbolic); ok {
			return Complexity(s.Expr)
		}
		return 1
	case Var, Const:
		return 1
	}
	total := 1
	for _, child := range children(e) {
		total += Complexity(child)
	}
	return total
}

// CacheCost weighs Complexity by how expensive each node is to rewrite:
// powers, divisions, transcendental operators and function calls count
// more than additions. The result is used as the cache compute cost.
func CacheCost(e Expression) uint32 {
	cost := cacheCost(e)
	if cost > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(cost)
}

func cacheCost(e Expression) uint64 {
	var self uint64 = 1
	switch x := e.(type) {
	case Binary:
		switch x.Op {
		case OpPow:
			self = 3
		case OpDiv, OpMod, OpMatMul, OpCross:
			self = 2
		}
	case Unary:
		switch x.Op {
		case OpNeg, OpPlus, OpAbs:
		default:
			self = 3
		}
	case Func:
		self = 3
	}
	for _, child := range children(e) {
		self += cacheCost(child)
	}
	return self
}

// Substitute replaces every variable bound in vars. Unbound variables are
// left in place.
func Substitute(e Expression, vars map[string]Expression) Expression {
	if len(vars) == 0 {
		return e
	}
	switch x := e.(type) {
	case Var:
		if r, ok := vars[x.Name]; ok {
			return r
		}
		return x
	case Binary:
		return Binary{Op: x.Op, Left: Substitute(x.Left, vars), Right: Substitute(x.Right, vars)}
	case Unary:
		return Unary{Op: x.Op, Operand: Substitute(x.Operand, vars)}
	case Func:
		return Func{Name: x.Name, Args: substituteAll(x.Args, vars)}
	case Matrix:
		rows := make([][]Expression, len(x.Rows))
		for i, row := range x.Rows {
			rows[i] = substituteAll(row, vars)
		}
		return Matrix{Rows: rows}
	case Vector:
		return Vector{Elems: substituteAll(x.Elems, vars)}
	case Set:
		return Set{Elems: substituteAll(x.Elems, vars)}
	case Interval:
		return Interval{
			Start:          Substitute(x.Start, vars),
			End:            Substitute(x.End, vars),
			StartInclusive: x.StartInclusive,
			EndInclusive:   x.EndInclusive,
		}
	case Num:
		if s, ok := x.Value.(Symbolic); ok {
			return Num{Value: Symbolic{Expr: Substitute(s.Expr, vars)}}
		}
	}
	return e
}

func substituteAll(es []Expression, vars map[string]Expression) []Expression {
	out := make([]Expression, len(es))
	for i, e := range es {
		out[i] = Substitute(e, vars)
	}
	return out
}

// Validate checks structural well-formedness: rectangular non-empty
// matrices, non-empty vectors, matching operand dimensions for matrix and
// vector products, square operands for det/inv/trace and integral factorial
// arguments. Operands whose shape is unknown (variables, calls) pass.
func Validate(e Expression) error {
	switch x := e.(type) {
	case Matrix:
		if err := checkRows(x.Rows); err != nil {
			return err
		}
	case Vector:
		if len(x.Elems) == 0 {
			return ErrEmptyVector
		}
	case Binary:
		if err := validateBinary(x); err != nil {
			return err
		}
	case Unary:
		if err := validateUnary(x); err != nil {
			return err
		}
	}
	for _, child := range children(e) {
		if err := Validate(child); err != nil {
			return err
		}
	}
	return nil
}

func validateBinary(b Binary) error {
	switch b.Op {
	case OpMatMul:
		l, lok := b.Left.(Matrix)
		r, rok := b.Right.(Matrix)
		if lok && rok && len(l.Rows) > 0 && len(l.Rows[0]) != len(r.Rows) {
			return fmt.Errorf("%d columns times %d rows: %w", len(l.Rows[0]), len(r.Rows), ErrDimension)
		}
	case OpDot:
		l, lok := b.Left.(Vector)
		r, rok := b.Right.(Vector)
		if lok && rok && len(l.Elems) != len(r.Elems) {
			return fmt.Errorf("dot product of %d and %d elements: %w", len(l.Elems), len(r.Elems), ErrDimension)
		}
	case OpCross:
		for _, side := range []Expression{b.Left, b.Right} {
			if v, ok := side.(Vector); ok && len(v.Elems) != 3 {
				return fmt.Errorf("cross product needs 3 elements, got %d: %w", len(v.Elems), ErrDimension)
			}
		}
	}
	return nil
}

func validateUnary(u Unary) error {
	if u.Op.RequiresSquareMatrix() {
		switch x := u.Operand.(type) {
		case Matrix:
			if len(x.Rows) > 0 && len(x.Rows) != len(x.Rows[0]) {
				return fmt.Errorf("%s of %dx%d: %w", u.Op, len(x.Rows), len(x.Rows[0]), ErrNotSquare)
			}
		case Num, Vector, Set, Interval:
			return fmt.Errorf("%s: %w", u.Op, ErrNotMatrix)
		}
	}
	if u.Op == OpFactorial {
		if n, ok := u.Operand.(Num); ok && n.Value.Kind() != KindSymbolic && !IsInteger(n.Value) {
			return ErrFactorialType
		}
	}
	return nil
}
