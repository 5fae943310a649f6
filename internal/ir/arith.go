package ir

import (
	"math"
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// maxPowBits bounds the estimated bit length of an exact power. Larger
// results stay symbolic.
const maxPowBits = 1 << 20

// exactRank orders the exact real kinds for promotion.
func exactRank(n Number) (int, bool) {
	switch n.(type) {
	case Integer:
		return 0, true
	case Rational:
		return 1, true
	case Real:
		return 2, true
	}
	return 0, false
}

// PromoteTypes lifts a pair of numbers to a common representation.
// The exact lattice is Integer < Rational < Real < Complex. A Float paired
// with an exact real or a real constant absorbs it (the one lossy edge).
// A Complex paired with a real number lifts that number to Complex{x, 0}.
// Pairs with no common representation are returned unchanged.
// PromoteTypes(b, a) always yields the swapped result of PromoteTypes(a, b).
func PromoteTypes(a, b Number) (Number, Number) {
	if a.Kind() == b.Kind() {
		return a, b
	}
	if ra, ok := exactRank(a); ok {
		if rb, ok := exactRank(b); ok {
			if ra < rb {
				return liftExact(a, rb), b
			}
			return a, liftExact(b, ra)
		}
	}
	_, aComplex := a.(Complex)
	_, bComplex := b.(Complex)
	switch {
	case aComplex && liftsToComplex(b):
		return a, Complex{Re: b, Im: Zero()}
	case bComplex && liftsToComplex(a):
		return Complex{Re: a, Im: Zero()}, b
	}
	if _, ok := a.(Float); ok && absorbedByFloat(b) {
		return a, Float(Approximate(b))
	}
	if _, ok := b.(Float); ok && absorbedByFloat(a) {
		return Float(Approximate(a)), b
	}
	return a, b
}

func liftsToComplex(n Number) bool {
	switch n.(type) {
	case Integer, Rational, Real, Float:
		return true
	}
	return false
}

func absorbedByFloat(n Number) bool {
	switch x := n.(type) {
	case Integer, Rational, Real:
		return true
	case Constant:
		return x.C.IsReal()
	}
	return false
}

// liftExact converts an exact number to the representation of the given rank.
func liftExact(n Number, rank int) Number {
	switch rank {
	case 1:
		if i, ok := n.(Integer); ok {
			return Rational{v: new(big.Rat).SetInt(i.bigint())}
		}
	case 2:
		switch x := n.(type) {
		case Integer:
			return Real{d: intToDecimal(x.bigint())}
		case Rational:
			if d, ok := ratToDecimal(x.rat()); ok {
				return Real{d: d}
			}
		}
	}
	return n
}

// shrinkRat returns an Integer when r is integral, otherwise a Rational.
func shrinkRat(r *big.Rat) Number {
	if r.IsInt() {
		return Integer{v: new(big.Int).Set(r.Num())}
	}
	return Rational{v: r}
}

// NumberExpr lifts a number into expression position, unwrapping
// symbolic values and constants instead of nesting them.
func NumberExpr(n Number) Expression {
	switch x := n.(type) {
	case Symbolic:
		return x.Expr
	case Constant:
		return Const{Value: x.C}
	}
	return Num{Value: n}
}

func symbolicBinary(op BinaryOp, a, b Number) Number {
	return Symbolic{Expr: Binary{Op: op, Left: NumberExpr(a), Right: NumberExpr(b)}}
}

func symbolicUnary(op UnaryOp, a Number) Number {
	return Symbolic{Expr: Unary{Op: op, Operand: NumberExpr(a)}}
}

// NumAdd returns a + b.
func NumAdd(a, b Number) Number {
	return arith(OpAdd, a, b)
}

// NumSub returns a - b.
func NumSub(a, b Number) Number {
	return arith(OpSub, a, b)
}

// NumMul returns a * b. A zero operand yields Integer 0 and a unit operand
// yields the other operand unchanged.
func NumMul(a, b Number) Number {
	if IsZero(a) || IsZero(b) {
		return Zero()
	}
	if IsOne(a) {
		return b
	}
	if IsOne(b) {
		return a
	}
	return arith(OpMul, a, b)
}

// NumDiv returns a / b. Division by zero never fails: it yields the
// Symbolic expression a / b. Integer division yields an Integer when the
// divisor divides evenly, otherwise a Rational.
func NumDiv(a, b Number) Number {
	if IsZero(b) {
		return symbolicBinary(OpDiv, a, b)
	}
	if IsZero(a) {
		return Zero()
	}
	if IsOne(b) {
		return a
	}
	return arith(OpDiv, a, b)
}

func arith(op BinaryOp, a, b Number) Number {
	pa, pb := PromoteTypes(a, b)
	switch x := pa.(type) {
	case Integer:
		if y, ok := pb.(Integer); ok {
			return integerArith(op, x.bigint(), y.bigint())
		}
	case Rational:
		if y, ok := pb.(Rational); ok {
			return rationalArith(op, x.rat(), y.rat())
		}
	case Real:
		if y, ok := pb.(Real); ok {
			if r, ok := decimalArith(op, x.dec(), y.dec()); ok {
				return r
			}
		}
	case Float:
		if y, ok := pb.(Float); ok {
			return floatArith(op, float64(x), float64(y))
		}
	case Complex:
		if y, ok := pb.(Complex); ok {
			if r, ok := complexArith(op, x, y); ok {
				return r
			}
		}
	}
	return symbolicBinary(op, a, b)
}

func integerArith(op BinaryOp, x, y *big.Int) Number {
	switch op {
	case OpAdd:
		return Integer{v: new(big.Int).Add(x, y)}
	case OpSub:
		return Integer{v: new(big.Int).Sub(x, y)}
	case OpMul:
		return Integer{v: new(big.Int).Mul(x, y)}
	case OpDiv:
		q, r := new(big.Int).QuoRem(x, y, new(big.Int))
		if r.Sign() == 0 {
			return Integer{v: q}
		}
		return Rational{v: new(big.Rat).SetFrac(x, y)}
	}
	return symbolicBinary(op, Integer{v: x}, Integer{v: y})
}

func rationalArith(op BinaryOp, x, y *big.Rat) Number {
	switch op {
	case OpAdd:
		return shrinkRat(new(big.Rat).Add(x, y))
	case OpSub:
		return shrinkRat(new(big.Rat).Sub(x, y))
	case OpMul:
		return shrinkRat(new(big.Rat).Mul(x, y))
	case OpDiv:
		return shrinkRat(new(big.Rat).Quo(x, y))
	}
	return symbolicBinary(op, Rational{v: x}, Rational{v: y})
}

func floatArith(op BinaryOp, x, y float64) Number {
	switch op {
	case OpAdd:
		return Float(x + y)
	case OpSub:
		return Float(x - y)
	case OpMul:
		return Float(x * y)
	case OpDiv:
		return Float(x / y)
	}
	return symbolicBinary(op, Float(x), Float(y))
}

// complexArith applies the component formulas. It reports false when a
// component could not be computed exactly, in which case the caller falls
// back to a symbolic result for the whole operation.
func complexArith(op BinaryOp, x, y Complex) (Number, bool) {
	var re, im Number
	switch op {
	case OpAdd:
		re, im = NumAdd(x.Re, y.Re), NumAdd(x.Im, y.Im)
	case OpSub:
		re, im = NumSub(x.Re, y.Re), NumSub(x.Im, y.Im)
	case OpMul:
		re = NumSub(NumMul(x.Re, y.Re), NumMul(x.Im, y.Im))
		im = NumAdd(NumMul(x.Re, y.Im), NumMul(x.Im, y.Re))
	case OpDiv:
		denom := NumAdd(NumMul(y.Re, y.Re), NumMul(y.Im, y.Im))
		if IsZero(denom) {
			return nil, false
		}
		re = NumDiv(NumAdd(NumMul(x.Re, y.Re), NumMul(x.Im, y.Im)), denom)
		im = NumDiv(NumSub(NumMul(x.Im, y.Re), NumMul(x.Re, y.Im)), denom)
	default:
		return nil, false
	}
	if re.Kind() == KindSymbolic || im.Kind() == KindSymbolic {
		return nil, false
	}
	return complexResult(re, im), true
}

// complexResult drops an exactly-zero imaginary part.
func complexResult(re, im Number) Number {
	if IsExact(im) && IsZero(im) {
		return re
	}
	return Complex{Re: re, Im: im}
}

// NumNeg returns -a.
func NumNeg(a Number) Number {
	switch x := a.(type) {
	case Integer:
		return Integer{v: new(big.Int).Neg(x.bigint())}
	case Rational:
		return Rational{v: new(big.Rat).Neg(x.rat())}
	case Real:
		return Real{d: new(apd.Decimal).Neg(x.dec())}
	case Float:
		return -x
	case Complex:
		return Complex{Re: NumNeg(x.Re), Im: NumNeg(x.Im)}
	}
	return symbolicUnary(OpNeg, a)
}

// NumAbs returns |a|. The modulus of a Complex is exact when the sum of
// squared components is a perfect square, otherwise symbolic.
func NumAbs(a Number) Number {
	switch x := a.(type) {
	case Integer:
		return Integer{v: new(big.Int).Abs(x.bigint())}
	case Rational:
		return Rational{v: new(big.Rat).Abs(x.rat())}
	case Real:
		return Real{d: new(apd.Decimal).Abs(x.dec())}
	case Float:
		return Float(math.Abs(float64(x)))
	case Complex:
		sum := NumAdd(NumMul(x.Re, x.Re), NumMul(x.Im, x.Im))
		if root, ok := ExactSqrt(sum); ok {
			return root
		}
		if f, ok := sum.(Float); ok {
			return Float(math.Sqrt(float64(f)))
		}
		return symbolicUnary(OpSqrt, sum)
	}
	return symbolicUnary(OpAbs, a)
}

// ExactSqrt returns the exact square root of a non-negative Integer or
// Rational whose numerator and denominator are perfect squares.
func ExactSqrt(n Number) (Number, bool) {
	switch x := n.(type) {
	case Integer:
		r, ok := isqrt(x.bigint())
		if !ok {
			return nil, false
		}
		return Integer{v: r}, true
	case Rational:
		num, ok := isqrt(x.rat().Num())
		if !ok {
			return nil, false
		}
		den, ok := isqrt(x.rat().Denom())
		if !ok {
			return nil, false
		}
		return shrinkRat(new(big.Rat).SetFrac(num, den)), true
	}
	return nil, false
}

func isqrt(x *big.Int) (*big.Int, bool) {
	if x.Sign() < 0 {
		return nil, false
	}
	r := new(big.Int).Sqrt(x)
	if new(big.Int).Mul(r, r).Cmp(x) != 0 {
		return nil, false
	}
	return r, true
}

// NumPow returns base^exp. Integer and Rational bases raised to Integer
// exponents are exact; Real and Complex bases support Integer exponents;
// Float pairs use math.Pow. Everything else, and exponents whose result
// would be unreasonably large, stays symbolic.
func NumPow(base, exp Number) Number {
	if e, ok := exp.(Integer); ok {
		if r, ok := powInteger(base, e.bigint()); ok {
			return r
		}
		return symbolicBinary(OpPow, base, exp)
	}
	if _, ok := exp.(Float); ok || base.Kind() == KindFloat {
		pb, pe := PromoteTypes(base, exp)
		fb, okb := pb.(Float)
		fe, oke := pe.(Float)
		if okb && oke {
			r := math.Pow(float64(fb), float64(fe))
			if !math.IsNaN(r) || math.IsNaN(float64(fb)) || math.IsNaN(float64(fe)) {
				return Float(r)
			}
		}
	}
	return symbolicBinary(OpPow, base, exp)
}

func powInteger(base Number, e *big.Int) (Number, bool) {
	if e.Sign() == 0 {
		return One(), true
	}
	if !e.IsInt64() {
		return nil, false
	}
	n := e.Int64()
	neg := n < 0
	if neg {
		n = -n
		if IsZero(base) {
			return nil, false
		}
	}
	if !withinPowBound(base, n) {
		return nil, false
	}
	exp := big.NewInt(n)
	switch x := base.(type) {
	case Integer:
		p := new(big.Int).Exp(x.bigint(), exp, nil)
		if neg {
			return shrinkRat(new(big.Rat).SetFrac(big.NewInt(1), p)), true
		}
		return Integer{v: p}, true
	case Rational:
		num := new(big.Int).Exp(x.rat().Num(), exp, nil)
		den := new(big.Int).Exp(x.rat().Denom(), exp, nil)
		if neg {
			num, den = den, num
		}
		return shrinkRat(new(big.Rat).SetFrac(num, den)), true
	case Real:
		d := new(apd.Decimal)
		if neg {
			n = -n
		}
		if _, err := decimalContext.Pow(d, x.dec(), apd.New(n, 0)); err != nil || d.Form != apd.Finite {
			return nil, false
		}
		return Real{d: d}, true
	case Float:
		if neg {
			n = -n
		}
		return Float(math.Pow(float64(x), float64(n))), true
	case Complex:
		result := Number(Complex{Re: One(), Im: Zero()})
		sq := Number(x)
		for k := n; k > 0; k >>= 1 {
			if k&1 == 1 {
				result = NumMul(result, sq)
			}
			if k > 1 {
				sq = NumMul(sq, sq)
			}
		}
		if neg {
			result = NumDiv(One(), result)
		}
		if result.Kind() == KindSymbolic {
			return nil, false
		}
		return result, true
	}
	return nil, false
}

func withinPowBound(base Number, n int64) bool {
	var bits int
	switch x := base.(type) {
	case Integer:
		bits = x.bigint().BitLen()
	case Rational:
		bits = max(x.rat().Num().BitLen(), x.rat().Denom().BitLen())
	case Real:
		bits = x.dec().Coeff.MathBigInt().BitLen() + 4*int(abs32(x.dec().Exponent))
	default:
		bits = 64
	}
	if bits <= 1 {
		return true
	}
	return int64(bits)*n <= maxPowBits
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// Compare orders two real numbers. It reports ok=false when either side
// has no position on the real line (Complex, Symbolic, non-real constants)
// or is NaN; no order is invented for those.
func Compare(a, b Number) (int, bool) {
	if !hasRealOrder(a) || !hasRealOrder(b) {
		return 0, false
	}
	ra, okA := exactValue(a)
	rb, okB := exactValue(b)
	if okA && okB {
		return ra.Cmp(rb), true
	}
	fa, fb := Approximate(a), Approximate(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return 0, false
	}
	switch {
	case fa < fb:
		return -1, true
	case fa > fb:
		return 1, true
	}
	return 0, true
}

func hasRealOrder(n Number) bool {
	switch x := n.(type) {
	case Integer, Rational, Real, Float:
		return true
	case Constant:
		return x.C.IsReal()
	}
	return false
}

func exactValue(n Number) (*big.Rat, bool) {
	switch n.(type) {
	case Integer, Rational, Real:
		return ToRat(n)
	}
	return nil, false
}
