package value

import (
	"fmt"
	"strings"
)

// Payload is the sealed interface for the data a Value carries.
// Only types declared in this package implement it.
type Payload interface {
	payload()
}

// Char is a single byte.
type Char byte

// Bool is a boolean stored in one byte.
type Bool bool

// Int is a signed 32-bit integer.
type Int int32

// UInt is an unsigned 32-bit integer.
type UInt uint32

// Float is a 32-bit float.
type Float float32

// Double is a 64-bit float.
type Double float64

// String is text. Its reported size includes a terminating NUL.
type String string

// Binary is an owned byte buffer.
type Binary []byte

// Vector3F is a 3-component single-precision vector.
type Vector3F struct{ X, Y, Z float32 }

// Vector3D is a 3-component double-precision vector.
type Vector3D struct{ X, Y, Z float64 }

// List is an ordered sequence of owned Values.
type List struct {
	items []Value
}

func (Char) payload()     {}
func (Bool) payload()     {}
func (Int) payload()      {}
func (UInt) payload()     {}
func (Float) payload()    {}
func (Double) payload()   {}
func (String) payload()   {}
func (Binary) payload()   {}
func (Vector3F) payload() {}
func (Vector3D) payload() {}
func (*List) payload()    {}

// Value is a dynamically typed datum. The zero Value is Void.
type Value struct {
	p Payload
}

// Kind returns the kind of the stored payload. A nil Value reports Void.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindVoid
	}
	return kindOf(v.p)
}

// Payload returns the raw payload, nil for Void.
func (v *Value) Payload() Payload {
	if v == nil {
		return nil
	}
	return v.p
}

// Size returns the payload size in bytes. Strings count their terminating
// NUL and Lists report their element count.
func (v *Value) Size() int {
	if v == nil {
		return 0
	}
	switch p := v.p.(type) {
	case String:
		return len(p) + 1
	case Binary:
		return len(p)
	case *List:
		return len(p.items)
	case nil:
		return 0
	default:
		return kindOf(p).Width()
	}
}

// IsVoid reports whether v holds no payload.
func (v *Value) IsVoid() bool {
	return v == nil || v.p == nil
}

// Free releases the payload and leaves v as Void. Lists free each element.
// Free on a nil or Void value is a no-op.
func (v *Value) Free() {
	if v == nil {
		return
	}
	if l, ok := v.p.(*List); ok {
		for i := range l.items {
			l.items[i].Free()
		}
		l.items = nil
	}
	v.p = nil
}

// String renders v for logs, e.g. Int(42) or List[Char('a'), Bool(true)].
func (v *Value) String() string {
	if v == nil || v.p == nil {
		return "Void"
	}
	switch p := v.p.(type) {
	case Char:
		return fmt.Sprintf("Char(%q)", rune(p))
	case Bool:
		return fmt.Sprintf("Bool(%t)", bool(p))
	case Int:
		return fmt.Sprintf("Int(%d)", int32(p))
	case UInt:
		return fmt.Sprintf("UInt(%d)", uint32(p))
	case Float:
		return fmt.Sprintf("Float(%g)", float32(p))
	case Double:
		return fmt.Sprintf("Double(%g)", float64(p))
	case String:
		return fmt.Sprintf("String(%q)", string(p))
	case Binary:
		return fmt.Sprintf("Binary(% X)", []byte(p))
	case Vector3F:
		return fmt.Sprintf("Vector3F(%g, %g, %g)", p.X, p.Y, p.Z)
	case Vector3D:
		return fmt.Sprintf("Vector3D(%g, %g, %g)", p.X, p.Y, p.Z)
	case *List:
		parts := make([]string, len(p.items))
		for i := range p.items {
			parts[i] = p.items[i].String()
		}
		return "List[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("Unknown(%T)", p)
	}
}

func kindOf(p Payload) Kind {
	switch p.(type) {
	case nil:
		return KindVoid
	case Char:
		return KindChar
	case Bool:
		return KindBool
	case Int:
		return KindInt
	case UInt:
		return KindUInt
	case Float:
		return KindFloat
	case Double:
		return KindDouble
	case String:
		return KindString
	case Binary:
		return KindBinary
	case Vector3F:
		return KindVector3F
	case Vector3D:
		return KindVector3D
	case *List:
		return KindList
	default:
		return KindVoid
	}
}

// Convenience constructors for fixed-width kinds.

// NewChar returns a Char value.
func NewChar(c byte) Value { return Value{p: Char(c)} }

// NewBool returns a Bool value.
func NewBool(b bool) Value { return Value{p: Bool(b)} }

// NewInt returns an Int value.
func NewInt(i int32) Value { return Value{p: Int(i)} }

// NewUInt returns a UInt value.
func NewUInt(u uint32) Value { return Value{p: UInt(u)} }

// NewFloat returns a Float value.
func NewFloat(f float32) Value { return Value{p: Float(f)} }

// NewDouble returns a Double value.
func NewDouble(d float64) Value { return Value{p: Double(d)} }

// NewVector3F returns a Vector3F value.
func NewVector3F(x, y, z float32) Value { return Value{p: Vector3F{X: x, Y: y, Z: z}} }

// NewVector3D returns a Vector3D value.
func NewVector3D(x, y, z float64) Value { return Value{p: Vector3D{X: x, Y: y, Z: z}} }
