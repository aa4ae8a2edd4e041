package value

// Create* functions release whatever v held before storing the new
// payload. A nil v is rejected with StatusNoInput.

func set(op string, v *Value, p Payload) error {
	if v == nil {
		return newError(StatusNoInput, op, "nil value")
	}
	v.Free()
	v.p = p
	return nil
}

// Init resets v to Void without releasing its payload. Use it only on
// freshly declared storage.
func Init(v *Value) error {
	if v == nil {
		return newError(StatusNoInput, "Init", "nil value")
	}
	v.p = nil
	return nil
}

// CreateVoid stores Void.
func CreateVoid(v *Value) error { return set("CreateVoid", v, nil) }

// CreateChar stores a Char.
func CreateChar(v *Value, c byte) error { return set("CreateChar", v, Char(c)) }

// CreateBool stores a Bool.
func CreateBool(v *Value, b bool) error { return set("CreateBool", v, Bool(b)) }

// CreateInt stores an Int.
func CreateInt(v *Value, i int32) error { return set("CreateInt", v, Int(i)) }

// CreateUInt stores a UInt.
func CreateUInt(v *Value, u uint32) error { return set("CreateUInt", v, UInt(u)) }

// CreateFloat stores a Float.
func CreateFloat(v *Value, f float32) error { return set("CreateFloat", v, Float(f)) }

// CreateDouble stores a Double.
func CreateDouble(v *Value, d float64) error { return set("CreateDouble", v, Double(d)) }

// CreateString stores s. Its size is len(s)+1. In the atmo_static profile
// a size that does not fit the static buffer fails with OutOfMemory and
// leaves v Void.
func CreateString(v *Value, s string) error {
	const op = "CreateString"
	if v == nil {
		return newError(StatusNoInput, op, "nil value")
	}
	if staticSize > 0 && len(s)+1 >= staticSize {
		v.Free()
		return newError(StatusOutOfMemory, op, "%d bytes exceeds static bound %d", len(s)+1, staticSize)
	}
	return set(op, v, String(s))
}

// CreateBinary stores a copy of data. A nil slice fails with StatusFail;
// an empty non-nil slice yields an empty Binary. Failures leave v Void.
func CreateBinary(v *Value, data []byte) error {
	const op = "CreateBinary"
	if v == nil {
		return newError(StatusNoInput, op, "nil value")
	}
	if data == nil {
		v.Free()
		return newError(StatusFail, op, "nil data")
	}
	if staticSize > 0 && len(data) > staticSize {
		v.Free()
		return newError(StatusOutOfMemory, op, "%d bytes exceeds static bound %d", len(data), staticSize)
	}
	buf := make(Binary, len(data))
	copy(buf, data)
	return set(op, v, buf)
}

// CreateVector3F stores a single-precision vector.
func CreateVector3F(v *Value, vec Vector3F) error { return set("CreateVector3F", v, vec) }

// CreateVector3D stores a double-precision vector.
func CreateVector3D(v *Value, vec Vector3D) error { return set("CreateVector3D", v, vec) }

// CreateList stores an empty List.
func CreateList(v *Value) error {
	const op = "CreateList"
	if !listSupported {
		if v != nil {
			v.Free()
		}
		return newError(StatusMissingSupport, op, "list kind disabled")
	}
	return set(op, v, &List{})
}

// CreateConverted builds dst as kind k from src using the getter matrix.
// dst is always constructed with the target kind; when the conversion is
// unsupported or malformed it holds the zero value of k and the getter's
// error is returned. dst and src may be the same Value.
func CreateConverted(dst *Value, k Kind, src *Value) error {
	const op = "CreateConverted"
	if dst == nil {
		return newError(StatusNoInput, op, "nil destination")
	}

	var (
		p   Payload
		err error
	)
	switch k {
	case KindVoid:
		p = nil
	case KindChar:
		var c byte
		c, err = src.AsChar()
		p = Char(c)
	case KindBool:
		var b bool
		b, err = src.AsBool()
		p = Bool(b)
	case KindInt:
		var i int32
		i, err = src.AsInt()
		p = Int(i)
	case KindUInt:
		var u uint32
		u, err = src.AsUInt()
		p = UInt(u)
	case KindFloat:
		var f float32
		f, err = src.AsFloat()
		p = Float(f)
	case KindDouble:
		var d float64
		d, err = src.AsDouble()
		p = Double(d)
	case KindString:
		var s string
		s, err = src.AsString()
		if cerr := CreateString(dst, s); cerr != nil {
			return cerr
		}
		return err
	case KindBinary:
		var b []byte
		b, err = src.AsBinary()
		if b == nil {
			b = []byte{}
		}
		if cerr := CreateBinary(dst, b); cerr != nil {
			return cerr
		}
		return err
	case KindVector3F:
		var vec Vector3F
		vec, err = src.AsVector3F()
		p = vec
	case KindVector3D:
		var vec Vector3D
		vec, err = src.AsVector3D()
		p = vec
	case KindList:
		return convertList(dst, src)
	default:
		return newError(StatusInvalidInput, op, "unknown kind %d", uint8(k))
	}
	if serr := set(op, dst, p); serr != nil {
		return serr
	}
	return err
}

// Copy makes dst an independent deep copy of src. Payloads are cloned
// directly, so a kind whose getter is disabled by a build profile still
// copies.
func Copy(dst, src *Value) error {
	const op = "Copy"
	if src == nil {
		return newError(StatusNoInput, op, "nil source")
	}
	switch p := src.p.(type) {
	case String:
		return CreateString(dst, string(p))
	case Binary:
		return CreateBinary(dst, p)
	case *List:
		return convertList(dst, src)
	default:
		return set(op, dst, p)
	}
}

func convertList(dst, src *Value) error {
	const op = "CreateConverted"
	if err := src.check(op); err != nil {
		if cerr := CreateList(dst); cerr != nil {
			return cerr
		}
		return err
	}
	l, ok := src.p.(*List)
	if !ok {
		if err := CreateList(dst); err != nil {
			return err
		}
		return newError(StatusMissingSupport, op, "%s to list", src.Kind())
	}
	items := make([]Value, len(l.items))
	for i := range l.items {
		if err := Copy(&items[i], &l.items[i]); err != nil {
			return err
		}
	}
	if err := CreateList(dst); err != nil {
		return err
	}
	dst.p.(*List).items = items
	return nil
}
