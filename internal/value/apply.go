package value

import (
	"fmt"
	"strings"
)

// Operator is an arithmetic operation applied by Apply.
type Operator uint8

const (
	Add Operator = iota
	Sub
	Mul
	Div
)

// String returns the operator name.
func (o Operator) String() string {
	switch o {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case Div:
		return "div"
	default:
		return fmt.Sprintf("operator(%d)", uint8(o))
	}
}

// ParseOperator accepts names (add, sub, mul, div) and symbols (+ - * /).
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "+":
		return Add, nil
	case "sub", "-", "subtract":
		return Sub, nil
	case "mul", "*", "multiply":
		return Mul, nil
	case "div", "/", "divide":
		return Div, nil
	}
	return 0, fmt.Errorf("unknown operator %q", s)
}

// Apply computes "src o operand" into dst, keeping src's kind. For integer
// kinds the operand is truncated to that kind first. Integer division by
// zero fails with StatusFail and leaves dst untouched. dst and src may be
// the same Value.
func Apply(dst *Value, o Operator, operand float32, src *Value) error {
	const op = "Apply"
	if dst == nil || src == nil {
		return newError(StatusNoInput, op, "nil value")
	}
	if o > Div {
		return newError(StatusInvalidInput, op, "unknown operator %d", uint8(o))
	}

	switch p := src.p.(type) {
	case Char:
		r, err := applyInt(o, int64(p), int64(byte(int32(operand))))
		if err != nil {
			return err
		}
		return CreateChar(dst, byte(r))
	case Int:
		r, err := applyInt(o, int64(p), int64(int32(operand)))
		if err != nil {
			return err
		}
		return CreateInt(dst, int32(r))
	case UInt:
		r, err := applyUint(o, uint32(p), uint32(int64(operand)))
		if err != nil {
			return err
		}
		return CreateUInt(dst, r)
	case Float:
		return CreateFloat(dst, float32(applyFloat(o, float64(p), float64(operand))))
	case Double:
		return CreateDouble(dst, applyFloat(o, float64(p), float64(operand)))
	case nil:
		return newError(StatusFail, op, "void value")
	default:
		return newError(StatusFail, op, "%s is not numeric", src.Kind())
	}
}

func applyInt(o Operator, a, b int64) (int64, error) {
	switch o {
	case Add:
		return a + b, nil
	case Sub:
		return a - b, nil
	case Mul:
		return a * b, nil
	default:
		if b == 0 {
			return 0, newError(StatusFail, "Apply", "integer division by zero")
		}
		return a / b, nil
	}
}

func applyUint(o Operator, a, b uint32) (uint32, error) {
	switch o {
	case Add:
		return a + b, nil
	case Sub:
		return a - b, nil
	case Mul:
		return a * b, nil
	default:
		if b == 0 {
			return 0, newError(StatusFail, "Apply", "integer division by zero")
		}
		return a / b, nil
	}
}

func applyFloat(o Operator, a, b float64) float64 {
	switch o {
	case Add:
		return a + b
	case Sub:
		return a - b
	case Mul:
		return a * b
	default:
		return a / b
	}
}
