package value

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
)

// Getters read v as a particular kind. Each returns the zero result with:
//   - StatusNoInput when v is nil
//   - StatusInvalidInput when v is Void or a Binary of the wrong width
//   - StatusMissingSupport when the kind pair has no conversion

func (v *Value) check(op string) error {
	if v == nil {
		return newError(StatusNoInput, op, "nil value")
	}
	if v.p == nil {
		return newError(StatusInvalidInput, op, "void value")
	}
	return nil
}

func unsupported(op string, k Kind) error {
	return newError(StatusMissingSupport, op, "no conversion from %s", k)
}

func wrongWidth(op string, got, want int) error {
	return newError(StatusInvalidInput, op, "binary width %d, want %d", got, want)
}

// AsChar reads v as a byte. Numbers reduce modulo 255.
func (v *Value) AsChar() (byte, error) {
	const op = "AsChar"
	if err := v.check(op); err != nil {
		return 0, err
	}
	switch p := v.p.(type) {
	case Char:
		return byte(p), nil
	case Bool:
		if p {
			return 1, nil
		}
		return 0, nil
	case Int:
		return byte(int32(p) % 255), nil
	case UInt:
		return byte(uint32(p) % 255), nil
	case Float:
		return byte(int32(p) % 255), nil
	case Double:
		return byte(int32(p) % 255), nil
	case String:
		if len(p) == 0 {
			return 0, nil
		}
		return p[0], nil
	case Binary:
		if len(p) != 1 {
			return 0, wrongWidth(op, len(p), 1)
		}
		return p[0], nil
	case Vector3F, Vector3D:
		return byte(int32(magnitude(p)) % 255), nil
	default:
		return 0, unsupported(op, v.Kind())
	}
}

// AsBool reads v as a boolean. Strings are true unless they start with
// "false" or are empty; a "true" prefix is true.
func (v *Value) AsBool() (bool, error) {
	const op = "AsBool"
	if err := v.check(op); err != nil {
		return false, err
	}
	switch p := v.p.(type) {
	case Char:
		return p != 0, nil
	case Bool:
		return bool(p), nil
	case Int:
		return p != 0, nil
	case UInt:
		return p != 0, nil
	case Float:
		return int32(p) != 0, nil
	case Double:
		return int32(p) != 0, nil
	case String:
		return parseBool(string(p)), nil
	case Binary:
		if len(p) != 1 {
			return false, wrongWidth(op, len(p), 1)
		}
		return p[0] != 0, nil
	case Vector3F, Vector3D:
		return int32(magnitude(p)) != 0, nil
	default:
		return false, unsupported(op, v.Kind())
	}
}

// AsInt reads v as int32. Strings parse their leading decimal integer;
// anything unparseable yields 0.
func (v *Value) AsInt() (int32, error) {
	const op = "AsInt"
	if err := v.check(op); err != nil {
		return 0, err
	}
	switch p := v.p.(type) {
	case Char:
		return int32(p), nil
	case Bool:
		if p {
			return 1, nil
		}
		return 0, nil
	case Int:
		return int32(p), nil
	case UInt:
		return int32(p), nil
	case Float:
		return int32(p), nil
	case Double:
		return int32(p), nil
	case String:
		return int32(parseIntPrefix(string(p))), nil
	case Binary:
		if len(p) != 4 {
			return 0, wrongWidth(op, len(p), 4)
		}
		return int32(binary.LittleEndian.Uint32(p)), nil
	case Vector3F, Vector3D:
		return int32(magnitude(p)), nil
	default:
		return 0, unsupported(op, v.Kind())
	}
}

// AsUInt reads v as uint32. Negative numbers wrap.
func (v *Value) AsUInt() (uint32, error) {
	const op = "AsUInt"
	if err := v.check(op); err != nil {
		return 0, err
	}
	switch p := v.p.(type) {
	case Char:
		return uint32(p), nil
	case Bool:
		if p {
			return 1, nil
		}
		return 0, nil
	case Int:
		return uint32(p), nil
	case UInt:
		return uint32(p), nil
	case Float:
		return uint32(int64(p)), nil
	case Double:
		return uint32(int64(p)), nil
	case String:
		return uint32(parseIntPrefix(string(p))), nil
	case Binary:
		if len(p) != 4 {
			return 0, wrongWidth(op, len(p), 4)
		}
		return binary.LittleEndian.Uint32(p), nil
	case Vector3F, Vector3D:
		return uint32(int64(magnitude(p))), nil
	default:
		return 0, unsupported(op, v.Kind())
	}
}

// AsFloat reads v as float32.
func (v *Value) AsFloat() (float32, error) {
	const op = "AsFloat"
	if !floatSupported {
		return 0, newError(StatusMissingSupport, op, "float support disabled")
	}
	if err := v.check(op); err != nil {
		return 0, err
	}
	switch p := v.p.(type) {
	case Binary:
		if len(p) != 4 {
			return 0, wrongWidth(op, len(p), 4)
		}
		return math.Float32frombits(binary.LittleEndian.Uint32(p)), nil
	case Float:
		return float32(p), nil
	}
	d, err := v.number(op)
	return float32(d), err
}

// AsDouble reads v as float64.
func (v *Value) AsDouble() (float64, error) {
	const op = "AsDouble"
	if !doubleSupported {
		return 0, newError(StatusMissingSupport, op, "double support disabled")
	}
	if err := v.check(op); err != nil {
		return 0, err
	}
	if p, ok := v.p.(Binary); ok {
		if len(p) != 8 {
			return 0, wrongWidth(op, len(p), 8)
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(p)), nil
	}
	return v.number(op)
}

// number widens any scalar or vector payload to float64.
func (v *Value) number(op string) (float64, error) {
	switch p := v.p.(type) {
	case Char:
		return float64(p), nil
	case Bool:
		if p {
			return 1, nil
		}
		return 0, nil
	case Int:
		return float64(p), nil
	case UInt:
		return float64(p), nil
	case Float:
		return float64(p), nil
	case Double:
		return float64(p), nil
	case String:
		return parseFloatPrefix(string(p)), nil
	case Vector3F, Vector3D:
		return magnitude(p), nil
	default:
		return 0, unsupported(op, v.Kind())
	}
}

// AsString renders v as text. Floats, doubles and vector components use
// two decimal places; vectors render as {"x": 1.00, "y": 2.00, "z": 3.00}.
func (v *Value) AsString() (string, error) {
	const op = "AsString"
	if err := v.check(op); err != nil {
		return "", err
	}
	switch p := v.p.(type) {
	case String:
		return string(p), nil
	case Binary:
		if i := indexNUL(p); i >= 0 {
			return string(p[:i]), nil
		}
		return string(p), nil
	case Char:
		if p == 0 {
			return "", nil
		}
		return string([]byte{byte(p)}), nil
	case *List:
		return "", unsupported(op, KindList)
	}
	if !formatSupported {
		return "", newError(StatusMissingSupport, op, "number formatting disabled")
	}
	switch p := v.p.(type) {
	case Bool:
		return strconv.FormatBool(bool(p)), nil
	case Int:
		return strconv.FormatInt(int64(p), 10), nil
	case UInt:
		return strconv.FormatUint(uint64(p), 10), nil
	case Float:
		return formatFixed(float64(p)), nil
	case Double:
		return formatFixed(float64(p)), nil
	case Vector3F:
		return formatVector(float64(p.X), float64(p.Y), float64(p.Z)), nil
	case Vector3D:
		return formatVector(p.X, p.Y, p.Z), nil
	default:
		return "", unsupported(op, v.Kind())
	}
}

// AsBinary returns the raw little-endian encoding of v. Strings include
// their terminating NUL. The returned slice is a fresh copy.
func (v *Value) AsBinary() ([]byte, error) {
	const op = "AsBinary"
	if err := v.check(op); err != nil {
		return nil, err
	}
	switch p := v.p.(type) {
	case Char:
		return []byte{byte(p)}, nil
	case Bool:
		if p {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case Int:
		return binary.LittleEndian.AppendUint32(nil, uint32(p)), nil
	case UInt:
		return binary.LittleEndian.AppendUint32(nil, uint32(p)), nil
	case Float:
		return binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(p))), nil
	case Double:
		return binary.LittleEndian.AppendUint64(nil, math.Float64bits(float64(p))), nil
	case String:
		return append([]byte(p), 0), nil
	case Binary:
		out := make([]byte, len(p))
		copy(out, p)
		return out, nil
	case Vector3F:
		out := make([]byte, 0, 12)
		for _, c := range [3]float32{p.X, p.Y, p.Z} {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(c))
		}
		return out, nil
	case Vector3D:
		out := make([]byte, 0, 24)
		for _, c := range [3]float64{p.X, p.Y, p.Z} {
			out = binary.LittleEndian.AppendUint64(out, math.Float64bits(c))
		}
		return out, nil
	default:
		return nil, unsupported(op, v.Kind())
	}
}

// AsVector3F reads v as a single-precision vector. Scalars set X only.
func (v *Value) AsVector3F() (Vector3F, error) {
	const op = "AsVector3F"
	if err := v.check(op); err != nil {
		return Vector3F{}, err
	}
	switch p := v.p.(type) {
	case Vector3F:
		return p, nil
	case Vector3D:
		return Vector3F{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}, nil
	case Binary:
		if len(p) != 12 {
			return Vector3F{}, wrongWidth(op, len(p), 12)
		}
		return Vector3F{
			X: math.Float32frombits(binary.LittleEndian.Uint32(p[0:])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(p[4:])),
			Z: math.Float32frombits(binary.LittleEndian.Uint32(p[8:])),
		}, nil
	case Char, Bool, Int, UInt, Float, Double:
		x, _ := v.number(op)
		return Vector3F{X: float32(x)}, nil
	default:
		return Vector3F{}, unsupported(op, v.Kind())
	}
}

// AsVector3D reads v as a double-precision vector. Scalars set X only.
func (v *Value) AsVector3D() (Vector3D, error) {
	const op = "AsVector3D"
	if err := v.check(op); err != nil {
		return Vector3D{}, err
	}
	switch p := v.p.(type) {
	case Vector3D:
		return p, nil
	case Vector3F:
		return Vector3D{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}, nil
	case Binary:
		if len(p) != 24 {
			return Vector3D{}, wrongWidth(op, len(p), 24)
		}
		return Vector3D{
			X: math.Float64frombits(binary.LittleEndian.Uint64(p[0:])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(p[8:])),
			Z: math.Float64frombits(binary.LittleEndian.Uint64(p[16:])),
		}, nil
	case Char, Bool, Int, UInt, Float, Double:
		x, _ := v.number(op)
		return Vector3D{X: x}, nil
	default:
		return Vector3D{}, unsupported(op, v.Kind())
	}
}

func magnitude(p Payload) float64 {
	switch vec := p.(type) {
	case Vector3F:
		x, y, z := float64(vec.X), float64(vec.Y), float64(vec.Z)
		return math.Sqrt(x*x + y*y + z*z)
	case Vector3D:
		return math.Sqrt(vec.X*vec.X + vec.Y*vec.Y + vec.Z*vec.Z)
	default:
		return 0
	}
}

func parseBool(s string) bool {
	switch {
	case strings.HasPrefix(s, "true"):
		return true
	case strings.HasPrefix(s, "false"):
		return false
	case s == "":
		return false
	default:
		return true
	}
}

// parseIntPrefix reads an optionally signed decimal integer after leading
// whitespace, stopping at the first non-digit. It saturates at int64 bounds
// before the caller narrows.
func parseIntPrefix(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n int64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int64(s[i] - '0')
		if n > (math.MaxInt64-d)/10 {
			n = math.MaxInt64
			break
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}

// parseFloatPrefix parses the longest leading decimal float in s.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		start := exp
		for exp < len(s) && s[exp] >= '0' && s[exp] <= '9' {
			exp++
		}
		if exp > start {
			end = exp
		}
	}
	// out-of-range input still yields ±Inf or 0 alongside the error
	f, _ := strconv.ParseFloat(s[:end], 64)
	return f
}

func indexNUL(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

func formatFixed(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatVector(x, y, z float64) string {
	return `{"x": ` + formatFixed(x) + `, "y": ` + formatFixed(y) + `, "z": ` + formatFixed(z) + `}`
}
