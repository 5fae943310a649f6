package ir

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// NumericKind discriminates the Number variants.
type NumericKind int

const (
	KindInteger NumericKind = iota
	KindRational
	KindReal
	KindComplex
	KindConstant
	KindSymbolic
	KindFloat
)

var kindNames = [...]string{
	KindInteger:  "integer",
	KindRational: "rational",
	KindReal:     "real",
	KindComplex:  "complex",
	KindConstant: "constant",
	KindSymbolic: "symbolic",
	KindFloat:    "float",
}

func (k NumericKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("NumericKind(%d)", int(k))
	}
	return kindNames[k]
}

// Number is a sealed sum type over the numeric representations.
// Only Integer, Rational, Real, Complex, Constant, Symbolic and Float
// implement it. Values are immutable once constructed; accessors that
// expose big values return copies.
type Number interface {
	Kind() NumericKind
	String() string
	number() // Sealed
}

// Integer is an arbitrary-precision integer.
type Integer struct{ v *big.Int }

// Rational is an exact fraction, always kept in lowest terms.
type Rational struct{ v *big.Rat }

// Real is a high-precision decimal evaluated under a 50 digit context.
type Real struct{ d *apd.Decimal }

// Complex holds a real and an imaginary component, each itself a Number.
type Complex struct {
	Re Number
	Im Number
}

// Constant is a named mathematical constant in numeric position.
type Constant struct {
	C MathConstant
}

// Symbolic wraps a computation that could not be carried out exactly.
type Symbolic struct {
	Expr Expression
}

// Float is an IEEE-754 double. It is the only inexact variant.
type Float float64

func (Integer) number()  {}
func (Rational) number() {}
func (Real) number()     {}
func (Complex) number()  {}
func (Constant) number() {}
func (Symbolic) number() {}
func (Float) number()    {}

func (Integer) Kind() NumericKind  { return KindInteger }
func (Rational) Kind() NumericKind { return KindRational }
func (Real) Kind() NumericKind     { return KindReal }
func (Complex) Kind() NumericKind  { return KindComplex }
func (Constant) Kind() NumericKind { return KindConstant }
func (Symbolic) Kind() NumericKind { return KindSymbolic }
func (Float) Kind() NumericKind    { return KindFloat }

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
	bigTen  = big.NewInt(10)
)

// NewInteger returns an Integer holding n.
func NewInteger(n int64) Integer {
	return Integer{v: big.NewInt(n)}
}

// NewIntegerFromBig returns an Integer holding a copy of x.
func NewIntegerFromBig(x *big.Int) Integer {
	return Integer{v: new(big.Int).Set(x)}
}

// ParseInteger parses a base-10 integer literal.
func ParseInteger(s string) (Integer, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Integer{}, fmt.Errorf("invalid integer literal %q", s)
	}
	return Integer{v: v}, nil
}

// NewRational returns num/den in lowest terms. It panics if den is zero,
// matching big.NewRat.
func NewRational(num, den int64) Rational {
	return Rational{v: big.NewRat(num, den)}
}

// NewRationalFromBig returns a Rational holding a copy of r.
func NewRationalFromBig(r *big.Rat) Rational {
	return Rational{v: new(big.Rat).Set(r)}
}

// ParseRational parses "a/b" or a plain integer literal.
func ParseRational(s string) (Rational, error) {
	v, ok := new(big.Rat).SetString(s)
	if !ok {
		return Rational{}, fmt.Errorf("invalid rational literal %q", s)
	}
	return Rational{v: v}, nil
}

// NewReal returns a Real holding a copy of d. Non-finite decimals are
// rejected by ParseReal; callers constructing directly must pass finite values.
func NewReal(d *apd.Decimal) Real {
	return Real{d: new(apd.Decimal).Set(d)}
}

// ParseReal parses a decimal literal such as "3.14159" or "1.5E-3".
func ParseReal(s string) (Real, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Real{}, fmt.Errorf("invalid decimal literal %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return Real{}, fmt.Errorf("invalid decimal literal %q: not finite", s)
	}
	return Real{d: d}, nil
}

// NewComplex returns re + im*i.
func NewComplex(re, im Number) Complex {
	return Complex{Re: re, Im: im}
}

// NewFloat returns an approximate number.
func NewFloat(f float64) Float {
	return Float(f)
}

// NewConstantNumber returns a named constant in numeric position.
func NewConstantNumber(c MathConstant) Constant {
	return Constant{C: c}
}

// NewSymbolic wraps an expression that could not be reduced to a number.
func NewSymbolic(e Expression) Symbolic {
	return Symbolic{Expr: e}
}

func Zero() Number          { return NewInteger(0) }
func One() Number           { return NewInteger(1) }
func NegOne() Number        { return NewInteger(-1) }
func ImaginaryUnit() Number { return Complex{Re: NewInteger(0), Im: NewInteger(1)} }

func (n Integer) bigint() *big.Int {
	if n.v == nil {
		return bigZero
	}
	return n.v
}

// Big returns a copy of the integer value.
func (n Integer) Big() *big.Int {
	return new(big.Int).Set(n.bigint())
}

func (r Rational) rat() *big.Rat {
	if r.v == nil {
		return new(big.Rat)
	}
	return r.v
}

// Rat returns a copy of the fraction.
func (r Rational) Rat() *big.Rat {
	return new(big.Rat).Set(r.rat())
}

func (r Real) dec() *apd.Decimal {
	if r.d == nil {
		return apd.New(0, 0)
	}
	return r.d
}

// Decimal returns a copy of the decimal value.
func (r Real) Decimal() *apd.Decimal {
	return new(apd.Decimal).Set(r.dec())
}

func (n Integer) String() string  { return n.bigint().String() }
func (r Rational) String() string { return r.rat().String() }
func (r Real) String() string     { return reducedDecimal(r.dec()).Text('f') }
func (c Constant) String() string { return c.C.String() }
func (f Float) String() string    { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

func (s Symbolic) String() string {
	if s.Expr == nil {
		return "<nil>"
	}
	return s.Expr.String()
}

func (c Complex) String() string {
	if IsZero(c.Re) {
		return imaginaryString(c.Im)
	}
	if IsNegative(c.Im) {
		return c.Re.String() + " - " + imaginaryString(NumNeg(c.Im))
	}
	return c.Re.String() + " + " + imaginaryString(c.Im)
}

func imaginaryString(n Number) string {
	switch {
	case IsOne(n):
		return "i"
	case EqualNumbers(n, NegOne()):
		return "-i"
	}
	switch n.(type) {
	case Integer, Real, Float:
		return n.String() + "i"
	}
	return "(" + n.String() + ")i"
}

// IsExact reports whether n carries no rounding error. Only Float is inexact.
func IsExact(n Number) bool {
	_, isFloat := n.(Float)
	return !isFloat
}

// IsZero reports whether n is the additive identity.
func IsZero(n Number) bool {
	switch x := n.(type) {
	case Integer:
		return x.bigint().Sign() == 0
	case Rational:
		return x.rat().Sign() == 0
	case Real:
		return x.dec().IsZero()
	case Float:
		return x == 0
	case Complex:
		return IsZero(x.Re) && IsZero(x.Im)
	}
	return false
}

// IsOne reports whether n is the multiplicative identity.
func IsOne(n Number) bool {
	switch x := n.(type) {
	case Integer:
		return x.bigint().Cmp(bigOne) == 0
	case Rational:
		return x.rat().IsInt() && x.rat().Num().Cmp(bigOne) == 0
	case Real:
		return x.dec().Cmp(apd.New(1, 0)) == 0
	case Float:
		return x == 1
	case Complex:
		return IsOne(x.Re) && IsZero(x.Im)
	}
	return false
}

// IsTwo reports whether n equals 2.
func IsTwo(n Number) bool {
	switch x := n.(type) {
	case Integer:
		return x.bigint().Cmp(bigTwo) == 0
	case Rational:
		return x.rat().IsInt() && x.rat().Num().Cmp(bigTwo) == 0
	case Real:
		return x.dec().Cmp(apd.New(2, 0)) == 0
	case Float:
		return x == 2
	}
	return false
}

// IsNegative reports whether n is strictly below zero. Complex and Symbolic
// values have no sign and always report false.
func IsNegative(n Number) bool {
	switch x := n.(type) {
	case Integer:
		return x.bigint().Sign() < 0
	case Rational:
		return x.rat().Sign() < 0
	case Real:
		return x.dec().Sign() < 0
	case Float:
		return x < 0
	case Constant:
		return x.C.Approximate() < 0
	}
	return false
}

// IsPositive reports whether n is strictly above zero. Complex and Symbolic
// values have no sign and always report false.
func IsPositive(n Number) bool {
	switch x := n.(type) {
	case Integer:
		return x.bigint().Sign() > 0
	case Rational:
		return x.rat().Sign() > 0
	case Real:
		return x.dec().Sign() > 0
	case Float:
		return x > 0
	case Constant:
		return x.C.Approximate() > 0
	}
	return false
}

// IsInteger reports whether n has an integral value.
func IsInteger(n Number) bool {
	switch x := n.(type) {
	case Integer:
		return true
	case Rational:
		return x.rat().IsInt()
	case Real:
		return reducedDecimal(x.dec()).Exponent >= 0
	case Float:
		f := float64(x)
		return !math.IsInf(f, 0) && !math.IsNaN(f) && math.Trunc(f) == f
	}
	return false
}

// IsRational reports whether n is stored as an exact fraction (Integer or Rational).
func IsRational(n Number) bool {
	switch n.(type) {
	case Integer, Rational:
		return true
	}
	return false
}

// IsReal reports whether n lies on the real line.
func IsReal(n Number) bool {
	switch x := n.(type) {
	case Complex, Symbolic:
		return false
	case Constant:
		return x.C.IsReal()
	}
	return true
}

// IsComplex reports whether n is a Complex value.
func IsComplex(n Number) bool {
	_, ok := n.(Complex)
	return ok
}

// IsEven reports whether n is an even integer.
func IsEven(n Number) bool {
	i, ok := ToBigInt(n)
	if !ok {
		return false
	}
	return i.Bit(0) == 0
}

// ToBigInt returns the integral value of n, if it has one.
func ToBigInt(n Number) (*big.Int, bool) {
	switch x := n.(type) {
	case Integer:
		return x.Big(), true
	case Rational:
		if x.rat().IsInt() {
			return new(big.Int).Set(x.rat().Num()), true
		}
	case Real:
		if r, ok := decimalToRat(x.dec()); ok && r.IsInt() {
			return new(big.Int).Set(r.Num()), true
		}
	case Float:
		if IsInteger(x) {
			i, _ := big.NewFloat(float64(x)).Int(nil)
			return i, true
		}
	}
	return nil, false
}

// ToRat returns the exact fractional value of n, if it has one. Floats
// convert exactly (binary fraction), not through decimal rounding.
func ToRat(n Number) (*big.Rat, bool) {
	switch x := n.(type) {
	case Integer:
		return new(big.Rat).SetInt(x.bigint()), true
	case Rational:
		return x.Rat(), true
	case Real:
		return decimalToRat(x.dec())
	case Float:
		f := float64(x)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, false
		}
		return new(big.Rat).SetFloat64(f), true
	}
	return nil, false
}

// ToInt64 returns n as an int64 when it is integral and fits.
func ToInt64(n Number) (int64, bool) {
	i, ok := ToBigInt(n)
	if !ok || !i.IsInt64() {
		return 0, false
	}
	return i.Int64(), true
}

// ToFloat64 is an alias for Approximate.
func ToFloat64(n Number) float64 {
	return Approximate(n)
}

// Approximate returns the nearest float64. Complex values yield their
// modulus; symbolic values other than a bare constant yield NaN.
func Approximate(n Number) float64 {
	switch x := n.(type) {
	case Integer:
		f, _ := new(big.Float).SetInt(x.bigint()).Float64()
		return f
	case Rational:
		f, _ := x.rat().Float64()
		return f
	case Real:
		f, err := x.dec().Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case Float:
		return float64(x)
	case Complex:
		return math.Hypot(Approximate(x.Re), Approximate(x.Im))
	case Constant:
		return x.C.Approximate()
	case Symbolic:
		if c, ok := x.Expr.(Const); ok {
			return c.Value.Approximate()
		}
	}
	return math.NaN()
}

// ToExact converts a Float to the Rational denoted by its shortest
// round-tripping decimal form, so 0.1 becomes 1/10 and 2.0 becomes the
// Integer 2. Non-finite floats and every other variant are returned
// unchanged.
func ToExact(n Number) Number {
	f, ok := n.(Float)
	if !ok {
		return n
	}
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return n
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'g', -1, 64))
	if !ok {
		return n
	}
	return shrinkRat(r)
}

// EqualNumbers reports deep structural equality: same variant, same value.
// Integer 1 and Rational 1/1 are different variants and not equal.
func EqualNumbers(a, b Number) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Integer:
		return x.bigint().Cmp(b.(Integer).bigint()) == 0
	case Rational:
		return x.rat().Cmp(b.(Rational).rat()) == 0
	case Real:
		return x.dec().Cmp(b.(Real).dec()) == 0
	case Float:
		return math.Float64bits(float64(x)) == math.Float64bits(float64(b.(Float)))
	case Complex:
		y := b.(Complex)
		return EqualNumbers(x.Re, y.Re) && EqualNumbers(x.Im, y.Im)
	case Constant:
		return x.C == b.(Constant).C
	case Symbolic:
		return Equal(x.Expr, b.(Symbolic).Expr)
	}
	return false
}
