package value

import (
	"bytes"
	"fmt"
	"strings"
)

// Comparison selects a relational test.
type Comparison uint8

const (
	Equal Comparison = iota
	NotEqual
	LessThan
	LessThanEqual
	GreaterThan
	GreaterThanEqual
)

var comparisonNames = []string{"eq", "ne", "lt", "le", "gt", "ge"}

// String returns the short operator name.
func (c Comparison) String() string {
	if int(c) < len(comparisonNames) {
		return comparisonNames[c]
	}
	return fmt.Sprintf("comparison(%d)", uint8(c))
}

// ParseComparison accepts short names (eq, lt, ...) and symbols (==, <, ...).
func ParseComparison(s string) (Comparison, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eq", "==", "equal":
		return Equal, nil
	case "ne", "!=", "not_equal":
		return NotEqual, nil
	case "lt", "<", "less_than":
		return LessThan, nil
	case "le", "<=", "less_than_equal":
		return LessThanEqual, nil
	case "gt", ">", "greater_than":
		return GreaterThan, nil
	case "ge", ">=", "greater_than_equal":
		return GreaterThanEqual, nil
	}
	return 0, fmt.Errorf("unknown comparison %q", s)
}

// Compare evaluates "a c b". Both values must share a kind and that kind
// must be numeric, Bool or String; anything else fails with StatusFail.
// Equal and NotEqual compare payload bytes. The ordered tests use unsigned
// order for Char/UInt/Bool, signed for Int, numeric for Float/Double and
// lexicographic for String.
func Compare(a, b *Value, c Comparison) (bool, error) {
	const op = "Compare"
	if a == nil || b == nil {
		return false, newError(StatusNoInput, op, "nil operand")
	}
	if a.Kind() != b.Kind() {
		return false, newError(StatusFail, op, "kind mismatch %s vs %s", a.Kind(), b.Kind())
	}
	if !a.Kind().IsComparable() {
		return false, newError(StatusFail, op, "%s is not comparable", a.Kind())
	}

	eq := func() (bool, error) { return payloadEqual(a, b) }
	lt := func() (bool, error) { return less(a, b) }

	switch c {
	case Equal:
		return eq()
	case NotEqual:
		r, err := eq()
		return !r && err == nil, err
	case LessThan:
		return lt()
	case LessThanEqual:
		l, err := lt()
		if err != nil {
			return false, err
		}
		e, err := eq()
		return l || e, err
	case GreaterThan:
		l, err := lt()
		if err != nil {
			return false, err
		}
		e, err := eq()
		return !l && !e, err
	case GreaterThanEqual:
		l, err := lt()
		return !l && err == nil, err
	default:
		return false, newError(StatusInvalidInput, op, "unknown comparison %d", uint8(c))
	}
}

func payloadEqual(a, b *Value) (bool, error) {
	ab, err := a.AsBinary()
	if err != nil {
		return false, err
	}
	bb, err := b.AsBinary()
	if err != nil {
		return false, err
	}
	return bytes.Equal(ab, bb), nil
}

func less(a, b *Value) (bool, error) {
	const op = "Compare"
	switch a.Kind() {
	case KindChar, KindUInt, KindBool:
		x, _ := a.AsUInt()
		y, _ := b.AsUInt()
		return x < y, nil
	case KindInt:
		x, _ := a.AsInt()
		y, _ := b.AsInt()
		return x < y, nil
	case KindFloat, KindDouble:
		x, _ := a.number(op)
		y, _ := b.number(op)
		return x < y, nil
	case KindString:
		return string(a.p.(String)) < string(b.p.(String)), nil
	default:
		return false, unsupported(op, a.Kind())
	}
}
