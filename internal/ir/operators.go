package ir

import "fmt"

// BinaryOp identifies a binary operator.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpUnion
	OpIntersection
	OpSetDifference
	OpMatMul
	OpCross
	OpDot
)

var binarySymbols = [...]string{
	OpAdd:           "+",
	OpSub:           "-",
	OpMul:           "*",
	OpDiv:           "/",
	OpPow:           "^",
	OpMod:           "%",
	OpEq:            "==",
	OpNe:            "!=",
	OpLt:            "<",
	OpLe:            "<=",
	OpGt:            ">",
	OpGe:            ">=",
	OpAnd:           "&&",
	OpOr:            "||",
	OpUnion:         "∪",
	OpIntersection:  "∩",
	OpSetDifference: "\\",
	OpMatMul:        "@",
	OpCross:         "×",
	OpDot:           "·",
}

// String returns the operator symbol.
func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binarySymbols) {
		return fmt.Sprintf("BinaryOp(%d)", int(op))
	}
	return binarySymbols[op]
}

// Valid reports whether op is a known operator.
func (op BinaryOp) Valid() bool {
	return op >= 0 && int(op) < len(binarySymbols)
}

// IsCommutative reports whether swapping operands preserves the value.
func (op BinaryOp) IsCommutative() bool {
	switch op {
	case OpAdd, OpMul, OpEq, OpNe, OpAnd, OpOr, OpUnion, OpIntersection, OpDot:
		return true
	}
	return false
}

// ParseBinaryOp maps a symbol back to its operator.
func ParseBinaryOp(s string) (BinaryOp, error) {
	for i, sym := range binarySymbols {
		if sym == s {
			return BinaryOp(i), nil
		}
	}
	return 0, fmt.Errorf("unknown binary operator %q", s)
}

// UnaryOp identifies a unary operator.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpPlus
	OpSqrt
	OpAbs
	OpSin
	OpCos
	OpTan
	OpAsin
	OpAcos
	OpAtan
	OpSinh
	OpCosh
	OpTanh
	OpAsinh
	OpAcosh
	OpAtanh
	OpLn
	OpLog10
	OpLog2
	OpExp
	OpFactorial
	OpGamma
	OpNot
	OpReal
	OpImag
	OpConjugate
	OpArg
	OpTranspose
	OpDeterminant
	OpInverse
	OpTrace
)

var unaryNames = [...]string{
	OpNeg:         "-",
	OpPlus:        "+",
	OpSqrt:        "sqrt",
	OpAbs:         "abs",
	OpSin:         "sin",
	OpCos:         "cos",
	OpTan:         "tan",
	OpAsin:        "asin",
	OpAcos:        "acos",
	OpAtan:        "atan",
	OpSinh:        "sinh",
	OpCosh:        "cosh",
	OpTanh:        "tanh",
	OpAsinh:       "asinh",
	OpAcosh:       "acosh",
	OpAtanh:       "atanh",
	OpLn:          "ln",
	OpLog10:       "log10",
	OpLog2:        "log2",
	OpExp:         "exp",
	OpFactorial:   "!",
	OpGamma:       "gamma",
	OpNot:         "not",
	OpReal:        "re",
	OpImag:        "im",
	OpConjugate:   "conj",
	OpArg:         "arg",
	OpTranspose:   "transpose",
	OpDeterminant: "det",
	OpInverse:     "inv",
	OpTrace:       "trace",
}

// String returns the operator name.
func (op UnaryOp) String() string {
	if op < 0 || int(op) >= len(unaryNames) {
		return fmt.Sprintf("UnaryOp(%d)", int(op))
	}
	return unaryNames[op]
}

// Valid reports whether op is a known operator.
func (op UnaryOp) Valid() bool {
	return op >= 0 && int(op) < len(unaryNames)
}

// RequiresSquareMatrix reports whether the operator is only defined on
// square matrices.
func (op UnaryOp) RequiresSquareMatrix() bool {
	return op == OpDeterminant || op == OpInverse || op == OpTrace
}

// ParseUnaryOp maps a name back to its operator.
func ParseUnaryOp(s string) (UnaryOp, error) {
	for i, name := range unaryNames {
		if name == s {
			return UnaryOp(i), nil
		}
	}
	return 0, fmt.Errorf("unknown unary operator %q", s)
}
