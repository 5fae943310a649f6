package ir

import (
	"fmt"
	"math"
)

// MathConstant is a named mathematical constant.
type MathConstant int

const (
	Pi MathConstant = iota
	E
	I
	EulerGamma
	GoldenRatio
	Catalan
	PositiveInfinity
	NegativeInfinity
	Undefined
)

var constantNames = [...]string{
	Pi:               "pi",
	E:                "e",
	I:                "i",
	EulerGamma:       "euler_gamma",
	GoldenRatio:      "golden_ratio",
	Catalan:          "catalan",
	PositiveInfinity: "+inf",
	NegativeInfinity: "-inf",
	Undefined:        "undefined",
}

func (c MathConstant) String() string {
	if c < 0 || int(c) >= len(constantNames) {
		return fmt.Sprintf("MathConstant(%d)", int(c))
	}
	return constantNames[c]
}

// Valid reports whether c is a known constant.
func (c MathConstant) Valid() bool {
	return c >= 0 && int(c) < len(constantNames)
}

// Approximate returns the float64 value of the constant. The imaginary unit
// and Undefined have no real value and return NaN.
func (c MathConstant) Approximate() float64 {
	switch c {
	case Pi:
		return math.Pi
	case E:
		return math.E
	case EulerGamma:
		return 0.5772156649015329
	case GoldenRatio:
		return math.Phi
	case Catalan:
		return 0.915965594177219
	case PositiveInfinity:
		return math.Inf(1)
	case NegativeInfinity:
		return math.Inf(-1)
	default:
		return math.NaN()
	}
}

// IsReal reports whether the constant denotes a real value.
func (c MathConstant) IsReal() bool {
	return c != I && c != Undefined
}

// ParseMathConstant maps a name back to its constant.
func ParseMathConstant(s string) (MathConstant, error) {
	for i, name := range constantNames {
		if name == s {
			return MathConstant(i), nil
		}
	}
	return 0, fmt.Errorf("unknown constant %q", s)
}
