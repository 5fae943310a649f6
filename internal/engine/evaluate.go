package engine

import (
	"errors"

	"github.com/roach88/symcore/internal/cache"
	"github.com/roach88/symcore/internal/ir"
)

// Fast tier bounds. Operands must be below fastOperandLimit in magnitude
// and results below fastResultLimit to be cached as int64.
const (
	fastOperandLimit = 1_000_000
	fastResultLimit  = 10_000_000
)

// exactCost is the priority weight of an exact-tier entry.
const exactCost = 5

// fastCost weights fast-tier entries by how much work a hit avoids.
func fastCost(op ir.BinaryOp) uint32 {
	switch op {
	case ir.OpAdd, ir.OpSub:
		return 1
	case ir.OpMul:
		return 2
	case ir.OpDiv:
		return 5
	case ir.OpPow:
		return 10
	}
	return 3
}

// smallInt returns n as an int64 when it is an Integer inside the fast
// operand bound.
func smallInt(n ir.Number) (int64, bool) {
	if n.Kind() != ir.KindInteger {
		return 0, false
	}
	v, ok := ir.ToInt64(n)
	if !ok || v <= -fastOperandLimit || v >= fastOperandLimit {
		return 0, false
	}
	return v, true
}

// fastResult returns r as an int64 when it fits the fast tier.
func fastResult(r ir.Number) (int64, bool) {
	if r.Kind() != ir.KindInteger {
		return 0, false
	}
	v, ok := ir.ToInt64(r)
	if !ok || v <= -fastResultLimit || v >= fastResultLimit {
		return 0, false
	}
	return v, true
}

func exactOperation(op interface{ String() string }) string {
	return "evaluate_" + op.String()
}

func (e *Engine) binary(op ir.BinaryOp, l, r ir.Number) (ir.Number, error) {
	a, aok := smallInt(l)
	b, bok := smallInt(r)
	fast := aok && bok
	var fk cache.FastKey
	if fast {
		fk = cache.BinaryKey(a, b, op)
		if v, ok := e.cache.GetFast(fk); ok {
			return ir.NewInteger(v), nil
		}
	}

	name := exactOperation(op)
	ek, keyErr := cache.NewExactKey(l, r, name)
	if keyErr == nil {
		if v, ok := e.cache.GetExact(ek); ok {
			return v, nil
		}
	}

	res, err := ir.EvaluateBinary(op, l, r)
	if err != nil {
		if errors.Is(err, ir.ErrDivisionByZero) {
			return nil, NewDivisionByZeroError(op.String())
		}
		return nil, classify(err, op.String())
	}

	if fast {
		if v, ok := fastResult(res); ok {
			e.cache.PutFast(fk, v, fastCost(op))
			return res, nil
		}
	}
	if keyErr == nil && res.Kind() != ir.KindSymbolic {
		e.cache.PutExact(ek, res, exactCost)
	}
	return res, nil
}

func (e *Engine) unary(op ir.UnaryOp, v ir.Number) (ir.Number, error) {
	a, fast := smallInt(v)
	var fk cache.FastKey
	if fast {
		fk = cache.UnaryKey(a, op)
		if r, ok := e.cache.GetFast(fk); ok {
			return ir.NewInteger(r), nil
		}
	}

	name := exactOperation(op)
	ek, keyErr := cache.NewExactKey(v, nil, name)
	if keyErr == nil {
		if r, ok := e.cache.GetExact(ek); ok {
			return r, nil
		}
	}

	res, err := ir.EvaluateUnary(op, v)
	if err != nil {
		return nil, classify(err, op.String())
	}

	if fast {
		if r, ok := fastResult(res); ok {
			e.cache.PutFast(fk, r, 3)
			return res, nil
		}
	}
	if keyErr == nil && res.Kind() != ir.KindSymbolic {
		e.cache.PutExact(ek, res, exactCost)
	}
	return res, nil
}
