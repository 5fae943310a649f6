package simplify

import (
	"github.com/roach88/symcore/internal/ir"
)

// rewriteBinary applies one rule to a binary node whose children are
// already simplified.
func rewriteBinary(op ir.BinaryOp, l, r ir.Expression) ir.Expression {
	if ln, ok := number(l); ok {
		if rn, ok := number(r); ok {
			if v, ok := foldBinary(op, ln, rn); ok {
				return ir.Num{Value: v}
			}
		}
	}
	switch op {
	case ir.OpAdd:
		return rewriteAdd(l, r)
	case ir.OpSub:
		return rewriteSub(l, r)
	case ir.OpMul:
		return rewriteMul(l, r)
	case ir.OpDiv:
		if isOne(r) {
			return l
		}
	case ir.OpPow:
		return rewritePow(l, r)
	}
	return ir.Binary{Op: op, Left: l, Right: r}
}

// foldBinary evaluates a numeric node. Results that would only wrap the
// operation symbolically, and operations that fail (division by zero),
// leave the node as written.
func foldBinary(op ir.BinaryOp, l, r ir.Number) (ir.Number, bool) {
	v, err := ir.EvaluateBinary(op, l, r)
	if err != nil || v.Kind() == ir.KindSymbolic {
		return nil, false
	}
	return v, true
}

func rewriteAdd(l, r ir.Expression) ir.Expression {
	switch {
	case isZero(l):
		return r
	case isZero(r):
		return l
	case isPythagorean(l, r):
		return ir.Num{Value: ir.One()}
	}
	if e, ok := combineLikeTerms(l, r, ir.NumAdd); ok {
		return e
	}
	return ordered(ir.OpAdd, l, r)
}

func rewriteSub(l, r ir.Expression) ir.Expression {
	switch {
	case isZero(r):
		return l
	case isZero(l):
		return ir.Negate(r)
	case ir.Equal(l, r):
		return ir.Num{Value: ir.Zero()}
	}
	if e, ok := combineLikeTerms(l, r, ir.NumSub); ok {
		return e
	}
	return ir.Sub(l, r)
}

func rewriteMul(l, r ir.Expression) ir.Expression {
	switch {
	case isZero(l):
		return l
	case isZero(r):
		return r
	case isOne(l):
		return r
	case isOne(r):
		return l
	case isNegOne(l):
		return ir.Negate(r)
	case isNegOne(r):
		return ir.Negate(l)
	}
	// c1 * (c2 * x) = (c1*c2) * x
	if c1, ok := number(l); ok {
		if inner, ok := r.(ir.Binary); ok && inner.Op == ir.OpMul {
			if c2, ok := number(inner.Left); ok {
				if c, ok := foldBinary(ir.OpMul, c1, c2); ok {
					return ir.Mul(ir.Num{Value: c}, inner.Right)
				}
			}
		}
	}
	if e, ok := combinePowers(l, r); ok {
		return e
	}
	return ordered(ir.OpMul, l, r)
}

func rewritePow(base, exp ir.Expression) ir.Expression {
	switch {
	case isZero(exp):
		return ir.Num{Value: ir.One()}
	case isOne(exp):
		return base
	case isOne(base):
		return base
	}
	// (x^a)^b = x^(a*b) for integer a and b.
	if inner, ok := base.(ir.Binary); ok && inner.Op == ir.OpPow {
		a, aok := integerNumber(inner.Right)
		b, bok := integerNumber(exp)
		if aok && bok {
			return ir.Pow(inner.Left, ir.Num{Value: ir.NumMul(a, b)})
		}
	}
	return ir.Pow(base, exp)
}

// rewriteUnary applies one rule to a unary node whose operand is already
// simplified.
func rewriteUnary(op ir.UnaryOp, x ir.Expression) ir.Expression {
	if n, ok := number(x); ok {
		if v, err := ir.EvaluateUnary(op, n); err == nil && v.Kind() != ir.KindSymbolic {
			return ir.Num{Value: v}
		}
	}
	inner, _ := x.(ir.Unary)

	switch op {
	case ir.OpPlus:
		return x
	case ir.OpNeg:
		if inner.Operand != nil && inner.Op == ir.OpNeg {
			return inner.Operand
		}
	case ir.OpAbs:
		if inner.Operand != nil && (inner.Op == ir.OpAbs || inner.Op == ir.OpNeg) {
			return ir.Abs(inner.Operand)
		}
		if isEvenPower(x) {
			return x
		}
	case ir.OpLn:
		if inner.Operand != nil && inner.Op == ir.OpExp {
			return inner.Operand
		}
		if isConst(x, ir.E) {
			return ir.Num{Value: ir.One()}
		}
	case ir.OpExp:
		if inner.Operand != nil && inner.Op == ir.OpLn {
			return inner.Operand
		}
	case ir.OpSin:
		if isConst(x, ir.Pi) {
			return ir.Num{Value: ir.Zero()}
		}
		if inner.Operand != nil && inner.Op == ir.OpNeg {
			return ir.Negate(ir.Sin(inner.Operand))
		}
	case ir.OpCos:
		if isConst(x, ir.Pi) {
			return ir.Num{Value: ir.NegOne()}
		}
		if inner.Operand != nil && inner.Op == ir.OpNeg {
			return ir.Cos(inner.Operand)
		}
	}
	return ir.Unary{Op: op, Operand: x}
}
