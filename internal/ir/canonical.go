package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces the canonical JSON encoding of an expression.
// It is the only serialization used for structural hashing and cache keys.
//
// Properties:
//  1. Every node is an object whose keys are written in sorted order
//  2. Each variant carries a distinct discriminating key
//  3. Names are NFC normalized; < > & are not HTML escaped
//  4. Floats are written as their IEEE-754 bit pattern, so -0, NaN and
//     infinities stay distinct and round-trip exactly
//
// Structurally equal expressions always encode to identical bytes, and
// distinct expressions never do.
func MarshalCanonical(e Expression) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeExpr(&buf, e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalCanonicalNumber produces the canonical JSON encoding of a number.
func MarshalCanonicalNumber(n Number) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeNumber(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MustMarshalCanonical is like MarshalCanonical but panics on error.
// Use only when the expression is known to be well formed.
func MustMarshalCanonical(e Expression) []byte {
	b, err := MarshalCanonical(e)
	if err != nil {
		panic(err)
	}
	return b
}

// MustMarshalCanonicalNumber is like MarshalCanonicalNumber but panics on error.
func MustMarshalCanonicalNumber(n Number) []byte {
	b, err := MarshalCanonicalNumber(n)
	if err != nil {
		panic(err)
	}
	return b
}

func writeExpr(buf *bytes.Buffer, e Expression) error {
	switch x := e.(type) {
	case nil:
		return fmt.Errorf("nil expression")
	case Num:
		buf.WriteString(`{"num":`)
		if err := writeNumber(buf, x.Value); err != nil {
			return err
		}
		buf.WriteByte('}')
	case Var:
		buf.WriteString(`{"var":`)
		writeString(buf, x.Name)
		buf.WriteByte('}')
	case Const:
		if !x.Value.Valid() {
			return fmt.Errorf("invalid constant %d", int(x.Value))
		}
		buf.WriteString(`{"const":`)
		writeString(buf, x.Value.String())
		buf.WriteByte('}')
	case Binary:
		if !x.Op.Valid() {
			return fmt.Errorf("invalid binary operator %d", int(x.Op))
		}
		buf.WriteString(`{"bin":`)
		writeString(buf, x.Op.String())
		buf.WriteString(`,"l":`)
		if err := writeExpr(buf, x.Left); err != nil {
			return fmt.Errorf("left: %w", err)
		}
		buf.WriteString(`,"r":`)
		if err := writeExpr(buf, x.Right); err != nil {
			return fmt.Errorf("right: %w", err)
		}
		buf.WriteByte('}')
	case Unary:
		if !x.Op.Valid() {
			return fmt.Errorf("invalid unary operator %d", int(x.Op))
		}
		buf.WriteString(`{"arg":`)
		if err := writeExpr(buf, x.Operand); err != nil {
			return fmt.Errorf("operand: %w", err)
		}
		buf.WriteString(`,"un":`)
		writeString(buf, x.Op.String())
		buf.WriteByte('}')
	case Func:
		buf.WriteString(`{"args":`)
		if err := writeExprArray(buf, x.Args); err != nil {
			return fmt.Errorf("%s: %w", x.Name, err)
		}
		buf.WriteString(`,"fn":`)
		writeString(buf, x.Name)
		buf.WriteByte('}')
	case Matrix:
		buf.WriteString(`{"matrix":[`)
		for i, row := range x.Rows {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeExprArray(buf, row); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		buf.WriteString(`]}`)
	case Vector:
		buf.WriteString(`{"vector":`)
		if err := writeExprArray(buf, x.Elems); err != nil {
			return err
		}
		buf.WriteByte('}')
	case Set:
		buf.WriteString(`{"set":`)
		if err := writeExprArray(buf, x.Elems); err != nil {
			return err
		}
		buf.WriteByte('}')
	case Interval:
		fmt.Fprintf(buf, `{"closed":[%t,%t],"interval":[`, x.StartInclusive, x.EndInclusive)
		if err := writeExpr(buf, x.Start); err != nil {
			return fmt.Errorf("start: %w", err)
		}
		buf.WriteByte(',')
		if err := writeExpr(buf, x.End); err != nil {
			return fmt.Errorf("end: %w", err)
		}
		buf.WriteString(`]}`)
	default:
		return fmt.Errorf("unsupported expression type %T", e)
	}
	return nil
}

func writeExprArray(buf *bytes.Buffer, es []Expression) error {
	buf.WriteByte('[')
	for i, e := range es {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeExpr(buf, e); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeNumber(buf *bytes.Buffer, n Number) error {
	switch x := n.(type) {
	case nil:
		return fmt.Errorf("nil number")
	case Integer:
		buf.WriteString(`{"int":"`)
		buf.WriteString(x.String())
		buf.WriteString(`"}`)
	case Rational:
		buf.WriteString(`{"rat":"`)
		buf.WriteString(x.rat().Num().String())
		buf.WriteByte('/')
		buf.WriteString(x.rat().Denom().String())
		buf.WriteString(`"}`)
	case Real:
		buf.WriteString(`{"real":"`)
		buf.WriteString(reducedDecimal(x.dec()).String())
		buf.WriteString(`"}`)
	case Float:
		buf.WriteString(`{"float":"`)
		buf.WriteString(FloatBits(float64(x)))
		buf.WriteString(`"}`)
	case Complex:
		buf.WriteString(`{"complex":[`)
		if err := writeNumber(buf, x.Re); err != nil {
			return fmt.Errorf("re: %w", err)
		}
		buf.WriteByte(',')
		if err := writeNumber(buf, x.Im); err != nil {
			return fmt.Errorf("im: %w", err)
		}
		buf.WriteString(`]}`)
	case Constant:
		if !x.C.Valid() {
			return fmt.Errorf("invalid constant %d", int(x.C))
		}
		buf.WriteString(`{"nconst":`)
		writeString(buf, x.C.String())
		buf.WriteByte('}')
	case Symbolic:
		buf.WriteString(`{"sym":`)
		if err := writeExpr(buf, x.Expr); err != nil {
			return fmt.Errorf("symbolic: %w", err)
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported number type %T", n)
	}
	return nil
}

// FloatBits renders f as the hexadecimal form of its IEEE-754 bit pattern.
func FloatBits(f float64) string {
	return "0x" + strconv.FormatUint(math.Float64bits(f), 16)
}

// writeString writes a JSON string with NFC normalization and without
// HTML escaping. U+2028 and U+2029 are written literally.
func writeString(buf *bytes.Buffer, s string) {
	normalized := norm.NFC.String(s)

	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(normalized)

	out := tmp.Bytes()
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	buf.Write(unescapeLineSeparators(out))
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters. An escape preceded by an odd
// number of backslashes is literal text and stays as written.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if i+6 <= len(data) && data[i] == '\\' && bytes.HasPrefix(data[i+1:], []byte("u202")) &&
			(data[i+5] == '8' || data[i+5] == '9') {
			backslashes := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}
