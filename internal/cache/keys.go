package cache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/symcore/internal/ir"
)

type fastKind uint8

const (
	fastBinary fastKind = iota + 1
	fastUnary
	fastFunc
)

// FastKey identifies a small-integer operation. Build it with BinaryKey,
// UnaryKey or FuncKey.
type FastKey struct {
	kind   fastKind
	A, B   int64
	Binary ir.BinaryOp
	Unary  ir.UnaryOp
	Func   string
	Args   string // comma separated operands of a function call
}

// BinaryKey keys a binary operation on two integers.
func BinaryKey(a, b int64, op ir.BinaryOp) FastKey {
	return FastKey{kind: fastBinary, A: a, B: b, Binary: op}
}

// UnaryKey keys a unary operation on an integer.
func UnaryKey(a int64, op ir.UnaryOp) FastKey {
	return FastKey{kind: fastUnary, A: a, Unary: op}
}

// FuncKey keys a named function applied to integer arguments.
func FuncKey(name string, args ...int64) FastKey {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = strconv.FormatInt(a, 10)
	}
	return FastKey{kind: fastFunc, Func: name, Args: strings.Join(parts, ",")}
}

func (k FastKey) String() string {
	switch k.kind {
	case fastBinary:
		return fmt.Sprintf("%d %s %d", k.A, k.Binary, k.B)
	case fastUnary:
		return fmt.Sprintf("%s(%d)", k.Unary, k.A)
	case fastFunc:
		return fmt.Sprintf("%s(%s)", k.Func, k.Args)
	}
	return "invalid"
}

// ExactKey identifies an operation on one or two Numbers. Operands are
// stored in canonical form, so numerically equal values of different kinds
// (Integer 1 and Rational 1/1) get different keys.
type ExactKey struct {
	Operand1    string
	Operand2    string
	HasOperand2 bool
	Operation   string
}

// NewExactKey keys operation applied to a and, when b is non-nil, b.
func NewExactKey(a ir.Number, b ir.Number, operation string) (ExactKey, error) {
	ca, err := ir.MarshalCanonicalNumber(a)
	if err != nil {
		return ExactKey{}, fmt.Errorf("exact key operand1: %w", err)
	}
	k := ExactKey{Operand1: string(ca), Operation: operation}
	if b != nil {
		cb, err := ir.MarshalCanonicalNumber(b)
		if err != nil {
			return ExactKey{}, fmt.Errorf("exact key operand2: %w", err)
		}
		k.Operand2, k.HasOperand2 = string(cb), true
	}
	return k, nil
}

// SymbolicKey identifies an expression rewrite, optionally with respect to
// a variable.
type SymbolicKey struct {
	Expr        string
	Operation   string
	Variable    string
	HasVariable bool
}

// NewSymbolicKey keys operation applied to e. variable may be nil.
func NewSymbolicKey(e ir.Expression, operation string, variable *string) (SymbolicKey, error) {
	ce, err := ir.MarshalCanonical(e)
	if err != nil {
		return SymbolicKey{}, fmt.Errorf("symbolic key: %w", err)
	}
	k := SymbolicKey{Expr: string(ce), Operation: operation}
	if variable != nil {
		k.Variable, k.HasVariable = *variable, true
	}
	return k, nil
}
