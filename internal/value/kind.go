package value

import (
	"fmt"
	"strings"
)

// Kind identifies the payload type stored in a Value.
// Numbering matches the on-device datatype table (Void = 0x01).
type Kind uint8

const (
	KindVoid Kind = iota + 1
	KindChar
	KindBool
	KindInt
	KindUInt
	KindFloat
	KindDouble
	KindString
	KindBinary
	KindVector3F
	KindVector3D
	KindList
)

var kindNames = map[Kind]string{
	KindVoid:     "void",
	KindChar:     "char",
	KindBool:     "bool",
	KindInt:      "int",
	KindUInt:     "uint",
	KindFloat:    "float",
	KindDouble:   "double",
	KindString:   "string",
	KindBinary:   "binary",
	KindVector3F: "vector3f",
	KindVector3D: "vector3d",
	KindList:     "list",
}

// String returns the lower-case kind name used in wiring files and the CLI.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind resolves a kind name (case-insensitive). "unsigned_int" and
// "unsigned" are accepted as aliases for uint.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "unsigned", "unsigned_int":
		return KindUInt, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown value kind %q", s)
}

// IsNumeric reports whether k supports arithmetic.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindChar, KindInt, KindUInt, KindFloat, KindDouble:
		return true
	default:
		return false
	}
}

// IsComparable reports whether two values of kind k can be ordered.
func (k Kind) IsComparable() bool {
	return k.IsNumeric() || k == KindBool || k == KindString
}

// Width returns the fixed payload width in bytes, or 0 for variable-size
// and empty kinds.
func (k Kind) Width() int {
	switch k {
	case KindChar, KindBool:
		return 1
	case KindInt, KindUInt, KindFloat:
		return 4
	case KindDouble:
		return 8
	case KindVector3F:
		return 12
	case KindVector3D:
		return 24
	default:
		return 0
	}
}
