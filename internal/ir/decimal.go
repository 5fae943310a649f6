package ir

import (
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// DecimalPrecision is the number of significant digits carried by Real
// arithmetic.
const DecimalPrecision = 50

// maxDecimalExponent bounds the exponents converted to exact fractions.
const maxDecimalExponent = 4096

var decimalContext = apd.BaseContext.WithPrecision(DecimalPrecision)

func reducedDecimal(d *apd.Decimal) *apd.Decimal {
	if d.IsZero() {
		return apd.New(0, 0)
	}
	r, _ := new(apd.Decimal).Reduce(d)
	return r
}

func intToDecimal(x *big.Int) *apd.Decimal {
	return apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(x), 0)
}

func ratToDecimal(r *big.Rat) (*apd.Decimal, bool) {
	if r.IsInt() {
		return intToDecimal(r.Num()), true
	}
	d := new(apd.Decimal)
	if _, err := decimalContext.Quo(d, intToDecimal(r.Num()), intToDecimal(r.Denom())); err != nil {
		return nil, false
	}
	return d, true
}

func decimalToRat(d *apd.Decimal) (*big.Rat, bool) {
	if d.Form != apd.Finite {
		return nil, false
	}
	d = reducedDecimal(d)
	exp := int64(d.Exponent)
	if exp > maxDecimalExponent || exp < -maxDecimalExponent {
		return nil, false
	}
	coeff := d.Coeff.MathBigInt()
	if d.Negative {
		coeff.Neg(coeff)
	}
	if exp >= 0 {
		scale := new(big.Int).Exp(bigTen, big.NewInt(exp), nil)
		return new(big.Rat).SetInt(coeff.Mul(coeff, scale)), true
	}
	scale := new(big.Int).Exp(bigTen, big.NewInt(-exp), nil)
	return new(big.Rat).SetFrac(coeff, scale), true
}

func decimalArith(op BinaryOp, x, y *apd.Decimal) (Number, bool) {
	d := new(apd.Decimal)
	var err error
	switch op {
	case OpAdd:
		_, err = decimalContext.Add(d, x, y)
	case OpSub:
		_, err = decimalContext.Sub(d, x, y)
	case OpMul:
		_, err = decimalContext.Mul(d, x, y)
	case OpDiv:
		_, err = decimalContext.Quo(d, x, y)
	default:
		return nil, false
	}
	if err != nil || d.Form != apd.Finite {
		return nil, false
	}
	return Real{d: d}, true
}
