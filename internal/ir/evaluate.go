package ir

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// Evaluation errors. Number arithmetic itself never fails; these surface
// only when a whole expression is evaluated.
var (
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrDomain            = errors.New("argument outside operator domain")
	ErrUnsupported       = errors.New("unsupported operation")
)

// maxFactorial bounds exact factorials; larger arguments stay symbolic.
const maxFactorial = 10000

// EvaluateExact substitutes vars into e and folds it with exact Number
// arithmetic. Transcendental operators, function calls and collections are
// kept as Symbolic values over their evaluated operands.
func EvaluateExact(e Expression, vars map[string]Number) (Number, error) {
	switch x := e.(type) {
	case Num:
		return x.Value, nil
	case Var:
		if v, ok := vars[x.Name]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUndefinedVariable, x.Name)
	case Const:
		if x.Value == I {
			return ImaginaryUnit(), nil
		}
		return Constant{C: x.Value}, nil
	case Binary:
		l, err := EvaluateExact(x.Left, vars)
		if err != nil {
			return nil, err
		}
		r, err := EvaluateExact(x.Right, vars)
		if err != nil {
			return nil, err
		}
		return EvaluateBinary(x.Op, l, r)
	case Unary:
		v, err := EvaluateExact(x.Operand, vars)
		if err != nil {
			return nil, err
		}
		return EvaluateUnary(x.Op, v)
	case Func:
		args, err := evaluateAll(x.Args, vars)
		if err != nil {
			return nil, err
		}
		return Symbolic{Expr: Func{Name: x.Name, Args: args}}, nil
	case Matrix:
		rows := make([][]Expression, len(x.Rows))
		for i, row := range x.Rows {
			r, err := evaluateAll(row, vars)
			if err != nil {
				return nil, err
			}
			rows[i] = r
		}
		return Symbolic{Expr: Matrix{Rows: rows}}, nil
	case Vector:
		elems, err := evaluateAll(x.Elems, vars)
		if err != nil {
			return nil, err
		}
		return Symbolic{Expr: Vector{Elems: elems}}, nil
	case Set:
		elems, err := evaluateAll(x.Elems, vars)
		if err != nil {
			return nil, err
		}
		return Symbolic{Expr: Set{Elems: elems}}, nil
	case Interval:
		start, err := EvaluateExact(x.Start, vars)
		if err != nil {
			return nil, err
		}
		end, err := EvaluateExact(x.End, vars)
		if err != nil {
			return nil, err
		}
		return Symbolic{Expr: Interval{
			Start:          NumberExpr(start),
			End:            NumberExpr(end),
			StartInclusive: x.StartInclusive,
			EndInclusive:   x.EndInclusive,
		}}, nil
	}
	return nil, fmt.Errorf("%w: expression %T", ErrUnsupported, e)
}

func evaluateAll(es []Expression, vars map[string]Number) ([]Expression, error) {
	out := make([]Expression, len(es))
	for i, e := range es {
		v, err := EvaluateExact(e, vars)
		if err != nil {
			return nil, err
		}
		out[i] = NumberExpr(v)
	}
	return out, nil
}

// EvaluateBinary applies op to two evaluated operands.
func EvaluateBinary(op BinaryOp, l, r Number) (Number, error) {
	switch op {
	case OpAdd:
		return NumAdd(l, r), nil
	case OpSub:
		return NumSub(l, r), nil
	case OpMul:
		return NumMul(l, r), nil
	case OpDiv:
		if IsZero(r) {
			return nil, ErrDivisionByZero
		}
		return NumDiv(l, r), nil
	case OpPow:
		if IsZero(l) && IsNegative(r) {
			return nil, ErrDivisionByZero
		}
		return NumPow(l, r), nil
	case OpMod:
		return evaluateMod(l, r)
	case OpEq, OpNe:
		eq := EqualNumbers(l, r)
		if c, ok := Compare(l, r); ok {
			eq = c == 0
		}
		return boolNumber(eq == (op == OpEq)), nil
	case OpLt, OpLe, OpGt, OpGe:
		c, ok := Compare(l, r)
		if !ok {
			return nil, fmt.Errorf("%w: %s on %s and %s", ErrUnsupported, op, l.Kind(), r.Kind())
		}
		switch op {
		case OpLt:
			return boolNumber(c < 0), nil
		case OpLe:
			return boolNumber(c <= 0), nil
		case OpGt:
			return boolNumber(c > 0), nil
		}
		return boolNumber(c >= 0), nil
	case OpAnd, OpOr:
		if l.Kind() == KindSymbolic || r.Kind() == KindSymbolic {
			return symbolicBinary(op, l, r), nil
		}
		if op == OpAnd {
			return boolNumber(!IsZero(l) && !IsZero(r)), nil
		}
		return boolNumber(!IsZero(l) || !IsZero(r)), nil
	}
	return symbolicBinary(op, l, r), nil
}

func evaluateMod(l, r Number) (Number, error) {
	if IsZero(r) {
		return nil, ErrDivisionByZero
	}
	li, lok := l.(Integer)
	ri, rok := r.(Integer)
	if lok && rok {
		return Integer{v: new(big.Int).Rem(li.bigint(), ri.bigint())}, nil
	}
	if lf, ok := l.(Float); ok {
		if rf, ok := r.(Float); ok {
			return Float(math.Mod(float64(lf), float64(rf))), nil
		}
	}
	return symbolicBinary(OpMod, l, r), nil
}

func boolNumber(b bool) Number {
	if b {
		return One()
	}
	return Zero()
}

// EvaluateUnary applies op to an evaluated operand.
func EvaluateUnary(op UnaryOp, v Number) (Number, error) {
	switch op {
	case OpNeg:
		return NumNeg(v), nil
	case OpPlus:
		return v, nil
	case OpAbs:
		return NumAbs(v), nil
	case OpSqrt:
		return evaluateSqrt(v), nil
	case OpFactorial:
		return evaluateFactorial(v)
	case OpNot:
		if v.Kind() == KindSymbolic {
			return symbolicUnary(op, v), nil
		}
		return boolNumber(IsZero(v)), nil
	case OpReal:
		if c, ok := v.(Complex); ok {
			return c.Re, nil
		}
		if IsReal(v) {
			return v, nil
		}
	case OpImag:
		if c, ok := v.(Complex); ok {
			return c.Im, nil
		}
		if IsReal(v) {
			return Zero(), nil
		}
	case OpConjugate:
		if c, ok := v.(Complex); ok {
			return complexResult(c.Re, NumNeg(c.Im)), nil
		}
		if IsReal(v) {
			return v, nil
		}
	case OpExp:
		if IsZero(v) && IsExact(v) {
			return One(), nil
		}
	case OpLn:
		if IsOne(v) && IsExact(v) {
			return Zero(), nil
		}
	case OpSin, OpTan:
		if IsZero(v) && IsExact(v) {
			return Zero(), nil
		}
	case OpCos:
		if IsZero(v) && IsExact(v) {
			return One(), nil
		}
	}
	return symbolicUnary(op, v), nil
}

func evaluateSqrt(v Number) Number {
	if IsNegative(v) && IsExact(v) {
		if root, ok := ExactSqrt(NumNeg(v)); ok {
			return complexResult(Zero(), root)
		}
		return symbolicUnary(OpSqrt, v)
	}
	if root, ok := ExactSqrt(v); ok {
		return root
	}
	if f, ok := v.(Float); ok && f >= 0 {
		return Float(math.Sqrt(float64(f)))
	}
	return symbolicUnary(OpSqrt, v)
}

func evaluateFactorial(v Number) (Number, error) {
	switch v.Kind() {
	case KindSymbolic, KindConstant:
		return symbolicUnary(OpFactorial, v), nil
	}
	n, ok := ToBigInt(v)
	if !ok || !IsExact(v) {
		return nil, fmt.Errorf("%w: factorial of %s", ErrDomain, v)
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("%w: factorial of negative %s", ErrDomain, n)
	}
	if !n.IsInt64() || n.Int64() > maxFactorial {
		return symbolicUnary(OpFactorial, v), nil
	}
	if n.Sign() == 0 {
		return One(), nil
	}
	return Integer{v: new(big.Int).MulRange(1, n.Int64())}, nil
}
