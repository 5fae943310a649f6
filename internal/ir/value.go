package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// MarshalExpression encodes e in the JSON wire form. The wire form is the
// canonical encoding, so it is deterministic and suitable for golden files.
func MarshalExpression(e Expression) ([]byte, error) {
	return MarshalCanonical(e)
}

// MarshalNumber encodes n in the JSON wire form.
func MarshalNumber(n Number) ([]byte, error) {
	return MarshalCanonicalNumber(n)
}

// UnmarshalExpression decodes the JSON wire form. In addition to the
// canonical node objects it accepts shorthands for hand-written input:
//
//	5            integer
//	2.5          float
//	"x"          variable
//	{"num": 5}   number node holding a shorthand number
//	{"float": 0.5} / {"float": "0.5"} / {"float": "0x3fe0000000000000"}
func UnmarshalExpression(data []byte) (Expression, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	return convertExpr(raw)
}

// UnmarshalNumber decodes a number in the JSON wire form.
func UnmarshalNumber(data []byte) (Number, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}
	return convertNumber(raw)
}

func decodeRaw(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode expression: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode expression: trailing data")
	}
	return raw, nil
}

func convertExpr(v any) (Expression, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is not an expression")
	case json.Number:
		n, err := convertJSONNumber(val)
		if err != nil {
			return nil, err
		}
		return Num{Value: n}, nil
	case string:
		return Var{Name: val}, nil
	case map[string]any:
		return convertExprObject(val)
	default:
		return nil, fmt.Errorf("unsupported expression value %T", v)
	}
}

func convertExprObject(obj map[string]any) (Expression, error) {
	switch {
	case has(obj, "num"):
		n, err := convertNumber(obj["num"])
		if err != nil {
			return nil, fmt.Errorf("num: %w", err)
		}
		return Num{Value: n}, nil
	case has(obj, "var"):
		name, err := stringField(obj, "var")
		if err != nil {
			return nil, err
		}
		return Var{Name: name}, nil
	case has(obj, "const"):
		name, err := stringField(obj, "const")
		if err != nil {
			return nil, err
		}
		c, err := ParseMathConstant(name)
		if err != nil {
			return nil, err
		}
		return Const{Value: c}, nil
	case has(obj, "bin"):
		sym, err := stringField(obj, "bin")
		if err != nil {
			return nil, err
		}
		op, err := ParseBinaryOp(sym)
		if err != nil {
			return nil, err
		}
		l, err := convertExpr(obj["l"])
		if err != nil {
			return nil, fmt.Errorf("%s left: %w", sym, err)
		}
		r, err := convertExpr(obj["r"])
		if err != nil {
			return nil, fmt.Errorf("%s right: %w", sym, err)
		}
		return Binary{Op: op, Left: l, Right: r}, nil
	case has(obj, "un"):
		name, err := stringField(obj, "un")
		if err != nil {
			return nil, err
		}
		op, err := ParseUnaryOp(name)
		if err != nil {
			return nil, err
		}
		arg, err := convertExpr(obj["arg"])
		if err != nil {
			return nil, fmt.Errorf("%s operand: %w", name, err)
		}
		return Unary{Op: op, Operand: arg}, nil
	case has(obj, "fn"):
		name, err := stringField(obj, "fn")
		if err != nil {
			return nil, err
		}
		var args []Expression
		if raw, ok := obj["args"]; ok {
			args, err = convertExprList(raw)
			if err != nil {
				return nil, fmt.Errorf("%s args: %w", name, err)
			}
		}
		return Func{Name: name, Args: args}, nil
	case has(obj, "matrix"):
		rawRows, ok := obj["matrix"].([]any)
		if !ok {
			return nil, fmt.Errorf("matrix: expected array of rows")
		}
		rows := make([][]Expression, len(rawRows))
		for i, rawRow := range rawRows {
			row, err := convertExprList(rawRow)
			if err != nil {
				return nil, fmt.Errorf("matrix row %d: %w", i, err)
			}
			rows[i] = row
		}
		m, err := NewMatrix(rows)
		if err != nil {
			return nil, err
		}
		return m, nil
	case has(obj, "vector"):
		elems, err := convertExprList(obj["vector"])
		if err != nil {
			return nil, fmt.Errorf("vector: %w", err)
		}
		v, err := NewVector(elems)
		if err != nil {
			return nil, err
		}
		return v, nil
	case has(obj, "set"):
		elems, err := convertExprList(obj["set"])
		if err != nil {
			return nil, fmt.Errorf("set: %w", err)
		}
		return Set{Elems: elems}, nil
	case has(obj, "interval"):
		return convertInterval(obj)
	}
	// A bare number object ({"int": "5"}, {"rat": "1/3"}, ...) is accepted
	// in expression position.
	n, err := convertNumber(obj)
	if err != nil {
		return nil, fmt.Errorf("unrecognized expression object: %w", err)
	}
	return Num{Value: n}, nil
}

func convertInterval(obj map[string]any) (Expression, error) {
	bounds, ok := obj["interval"].([]any)
	if !ok || len(bounds) != 2 {
		return nil, fmt.Errorf("interval: expected [start, end]")
	}
	start, err := convertExpr(bounds[0])
	if err != nil {
		return nil, fmt.Errorf("interval start: %w", err)
	}
	end, err := convertExpr(bounds[1])
	if err != nil {
		return nil, fmt.Errorf("interval end: %w", err)
	}
	iv := Interval{Start: start, End: end, StartInclusive: true, EndInclusive: true}
	if raw, ok := obj["closed"]; ok {
		closed, ok := raw.([]any)
		if !ok || len(closed) != 2 {
			return nil, fmt.Errorf("interval closed: expected [bool, bool]")
		}
		s, sok := closed[0].(bool)
		e, eok := closed[1].(bool)
		if !sok || !eok {
			return nil, fmt.Errorf("interval closed: expected [bool, bool]")
		}
		iv.StartInclusive, iv.EndInclusive = s, e
	}
	return iv, nil
}

func convertExprList(v any) ([]Expression, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	out := make([]Expression, len(arr))
	for i, elem := range arr {
		e, err := convertExpr(elem)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

func convertNumber(v any) (Number, error) {
	switch val := v.(type) {
	case json.Number:
		return convertJSONNumber(val)
	case map[string]any:
		return convertNumberObject(val)
	case nil:
		return nil, fmt.Errorf("null is not a number")
	default:
		return nil, fmt.Errorf("unsupported number value %T", v)
	}
}

func convertNumberObject(obj map[string]any) (Number, error) {
	switch {
	case has(obj, "int"):
		s, err := literalField(obj, "int")
		if err != nil {
			return nil, err
		}
		return ParseInteger(s)
	case has(obj, "rat"):
		s, err := literalField(obj, "rat")
		if err != nil {
			return nil, err
		}
		r, err := ParseRational(s)
		if err != nil {
			return nil, err
		}
		return r, nil
	case has(obj, "real"):
		s, err := literalField(obj, "real")
		if err != nil {
			return nil, err
		}
		return ParseReal(s)
	case has(obj, "float"):
		s, err := literalField(obj, "float")
		if err != nil {
			return nil, err
		}
		f, err := ParseFloatLiteral(s)
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case has(obj, "complex"):
		parts, ok := obj["complex"].([]any)
		if !ok || len(parts) != 2 {
			return nil, fmt.Errorf("complex: expected [re, im]")
		}
		re, err := convertNumber(parts[0])
		if err != nil {
			return nil, fmt.Errorf("complex re: %w", err)
		}
		im, err := convertNumber(parts[1])
		if err != nil {
			return nil, fmt.Errorf("complex im: %w", err)
		}
		return Complex{Re: re, Im: im}, nil
	case has(obj, "nconst"):
		name, err := stringField(obj, "nconst")
		if err != nil {
			return nil, err
		}
		c, err := ParseMathConstant(name)
		if err != nil {
			return nil, err
		}
		return Constant{C: c}, nil
	case has(obj, "sym"):
		e, err := convertExpr(obj["sym"])
		if err != nil {
			return nil, fmt.Errorf("sym: %w", err)
		}
		return Symbolic{Expr: e}, nil
	}
	return nil, fmt.Errorf("unrecognized number object with keys %v", keysOf(obj))
}

// convertJSONNumber maps a bare JSON number: integral literals become
// Integer, anything with a fraction or exponent becomes Float.
func convertJSONNumber(n json.Number) (Number, error) {
	s := string(n)
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float literal %q: %w", s, err)
		}
		return Float(f), nil
	}
	return ParseInteger(s)
}

// ParseFloatLiteral parses either a decimal float literal or the 0x-prefixed
// bit pattern written by the canonical encoding.
func ParseFloatLiteral(s string) (float64, error) {
	if strings.HasPrefix(s, "0x") && !strings.ContainsAny(s, ".pP") {
		bits, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float bits %q: %w", s, err)
		}
		return math.Float64frombits(bits), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float literal %q: %w", s, err)
	}
	return f, nil
}

func has(obj map[string]any, key string) bool {
	_, ok := obj[key]
	return ok
}

func stringField(obj map[string]any, key string) (string, error) {
	s, ok := obj[key].(string)
	if !ok {
		return "", fmt.Errorf("%s: expected string, got %T", key, obj[key])
	}
	return s, nil
}

// literalField accepts a string or a bare JSON number.
func literalField(obj map[string]any, key string) (string, error) {
	switch v := obj[key].(type) {
	case string:
		return v, nil
	case json.Number:
		return string(v), nil
	}
	return "", fmt.Errorf("%s: expected string or number, got %T", key, obj[key])
}

func keysOf(obj map[string]any) []string {
	return slices.Sorted(maps.Keys(obj))
}
