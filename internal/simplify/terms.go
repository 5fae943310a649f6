package simplify

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/symcore/internal/ir"
)

func number(e ir.Expression) (ir.Number, bool) {
	n, ok := e.(ir.Num)
	if !ok || n.Value == nil {
		return nil, false
	}
	return n.Value, true
}

func isZero(e ir.Expression) bool {
	n, ok := number(e)
	return ok && ir.IsZero(n)
}

func isOne(e ir.Expression) bool {
	n, ok := number(e)
	return ok && ir.IsOne(n)
}

func isNegOne(e ir.Expression) bool {
	n, ok := number(e)
	return ok && ir.IsExact(n) && ir.IsOne(ir.NumNeg(n))
}

func integerNumber(e ir.Expression) (ir.Number, bool) {
	n, ok := number(e)
	if !ok || n.Kind() != ir.KindInteger {
		return nil, false
	}
	return n, true
}

func isConst(e ir.Expression, c ir.MathConstant) bool {
	k, ok := e.(ir.Const)
	return ok && k.Value == c
}

// isEvenPower reports x^n for an even integer n, which is never negative
// for real x.
func isEvenPower(e ir.Expression) bool {
	b, ok := e.(ir.Binary)
	if !ok || b.Op != ir.OpPow {
		return false
	}
	n, ok := integerNumber(b.Right)
	return ok && ir.IsEven(n)
}

// squareOf matches op(a)^2 and returns a.
func squareOf(e ir.Expression, op ir.UnaryOp) (ir.Expression, bool) {
	b, ok := e.(ir.Binary)
	if !ok || b.Op != ir.OpPow {
		return nil, false
	}
	n, ok := integerNumber(b.Right)
	if !ok || !ir.IsTwo(n) {
		return nil, false
	}
	u, ok := b.Left.(ir.Unary)
	if !ok || u.Op != op {
		return nil, false
	}
	return u.Operand, true
}

// isPythagorean matches sin(a)^2 + cos(a)^2 in either order.
func isPythagorean(l, r ir.Expression) bool {
	if a, ok := squareOf(l, ir.OpSin); ok {
		b, ok := squareOf(r, ir.OpCos)
		return ok && ir.Equal(a, b)
	}
	if a, ok := squareOf(l, ir.OpCos); ok {
		b, ok := squareOf(r, ir.OpSin)
		return ok && ir.Equal(a, b)
	}
	return false
}

// splitCoefficient views a non-numeric term as c * base.
func splitCoefficient(e ir.Expression) (ir.Number, ir.Expression, bool) {
	if _, ok := e.(ir.Num); ok {
		return nil, nil, false
	}
	if b, ok := e.(ir.Binary); ok && b.Op == ir.OpMul {
		if n, ok := number(b.Left); ok {
			return n, b.Right, true
		}
		if n, ok := number(b.Right); ok {
			return n, b.Left, true
		}
	}
	return ir.One(), e, true
}

// combineLikeTerms rewrites a*x (op) b*x to (a op b)*x.
func combineLikeTerms(l, r ir.Expression, op func(a, b ir.Number) ir.Number) (ir.Expression, bool) {
	ca, base, ok := splitCoefficient(l)
	if !ok {
		return nil, false
	}
	cb, other, ok := splitCoefficient(r)
	if !ok || !ir.Equal(base, other) {
		return nil, false
	}
	c := op(ca, cb)
	if c.Kind() == ir.KindSymbolic {
		return nil, false
	}
	return ir.Mul(ir.Num{Value: c}, base), true
}

// splitPower views a non-numeric factor as base^n.
func splitPower(e ir.Expression) (ir.Expression, ir.Number, bool) {
	if _, ok := e.(ir.Num); ok {
		return nil, nil, false
	}
	if b, ok := e.(ir.Binary); ok && b.Op == ir.OpPow {
		if n, ok := number(b.Right); ok {
			return b.Left, n, true
		}
	}
	return e, ir.One(), true
}

// combinePowers rewrites x^a * x^b to x^(a+b).
func combinePowers(l, r ir.Expression) (ir.Expression, bool) {
	bl, el, ok := splitPower(l)
	if !ok {
		return nil, false
	}
	br, er, ok := splitPower(r)
	if !ok || !ir.Equal(bl, br) {
		return nil, false
	}
	sum := ir.NumAdd(el, er)
	if sum.Kind() == ir.KindSymbolic {
		return nil, false
	}
	return ir.Pow(bl, ir.Num{Value: sum}), true
}

// ordered puts the operands of a commutative node in canonical order:
// numbers first, then constants, then variables by name. Everything else
// keeps its order. Numbers are never reordered among themselves.
func ordered(op ir.BinaryOp, l, r ir.Expression) ir.Expression {
	if shouldSwap(l, r) {
		l, r = r, l
	}
	return ir.Binary{Op: op, Left: l, Right: r}
}

func shouldSwap(l, r ir.Expression) bool {
	_, lNum := l.(ir.Num)
	_, rNum := r.(ir.Num)
	if rNum && !lNum {
		return true
	}
	lv, lVar := l.(ir.Var)
	switch rv := r.(type) {
	case ir.Const:
		return lVar
	case ir.Var:
		return lVar && norm.NFC.String(lv.Name) > norm.NFC.String(rv.Name)
	}
	return false
}
