// Package bleuuid parses and formats Bluetooth LE UUIDs in their 16-, 32-
// and 128-bit forms. Radios expect little-endian byte order on the wire,
// so a UUID remembers the order its Data was stored in.
package bleuuid

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Type is the UUID width.
type Type uint8

const (
	Invalid Type = iota
	Bits16
	Bits32
	Bits128
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case Bits16:
		return "16-bit"
	case Bits32:
		return "32-bit"
	case Bits128:
		return "128-bit"
	default:
		return "invalid"
	}
}

// Len returns the width in bytes.
func (t Type) Len() int {
	switch t {
	case Bits16:
		return 2
	case Bits32:
		return 4
	case Bits128:
		return 16
	default:
		return 0
	}
}

// Endianness is the byte order of UUID.Data.
type Endianness uint8

const (
	LittleEndian Endianness = iota
	BigEndian
)

// Base is the Bluetooth base UUID that 16- and 32-bit UUIDs expand into.
var Base = uuid.MustParse("00000000-0000-1000-8000-00805f9b34fb")

// UUID is a BLE UUID. Only the first Type.Len() bytes of Data are used.
type UUID struct {
	Type       Type
	Endianness Endianness
	Data       [16]byte
}

// Parse reads a hex UUID string. Hyphens are skipped anywhere. The digit
// count selects the type: 4 for 16-bit, 8 for 32-bit, 32 for 128-bit.
// With LittleEndian the bytes are stored reversed. An unsupported length
// returns a UUID of type Invalid together with an error.
func Parse(s string, e Endianness) (UUID, error) {
	u := UUID{Endianness: e}
	digits := strings.ReplaceAll(s, "-", "")
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return u, fmt.Errorf("bleuuid: parse %q: %w", s, err)
	}

	switch len(raw) {
	case 2:
		u.Type = Bits16
	case 4:
		u.Type = Bits32
	case 16:
		u.Type = Bits128
	default:
		return u, fmt.Errorf("bleuuid: parse %q: %d bytes is not a 16, 32 or 128-bit uuid", s, len(raw))
	}

	if e == LittleEndian {
		for i := range raw {
			u.Data[i] = raw[len(raw)-1-i]
		}
	} else {
		copy(u.Data[:], raw)
	}
	return u, nil
}

// MustParse is Parse that panics on error. For constants.
func MustParse(s string, e Endianness) UUID {
	u, err := Parse(s, e)
	if err != nil {
		panic(err)
	}
	return u
}

// Bytes returns the used portion of Data in storage order.
func (u UUID) Bytes() []byte {
	return append([]byte(nil), u.Data[:u.Type.Len()]...)
}

// bigEndian returns the used bytes most significant first.
func (u UUID) bigEndian() []byte {
	b := u.Bytes()
	if u.Endianness == LittleEndian {
		for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
	}
	return b
}

// String renders the UUID in lower-case hex, most significant byte first:
// "180d", "0000180d" or the hyphenated 8-4-4-4-12 form. Invalid UUIDs
// render as "".
func (u UUID) String() string {
	switch u.Type {
	case Bits16, Bits32:
		return hex.EncodeToString(u.bigEndian())
	case Bits128:
		var id uuid.UUID
		copy(id[:], u.bigEndian())
		return id.String()
	default:
		return ""
	}
}

// Expand returns the full 128-bit form. Short UUIDs are placed into the
// Bluetooth base UUID.
func (u UUID) Expand() (uuid.UUID, error) {
	be := u.bigEndian()
	switch u.Type {
	case Bits16:
		id := Base
		copy(id[2:4], be)
		return id, nil
	case Bits32:
		id := Base
		copy(id[0:4], be)
		return id, nil
	case Bits128:
		var id uuid.UUID
		copy(id[:], be)
		return id, nil
	default:
		return uuid.Nil, fmt.Errorf("bleuuid: cannot expand invalid uuid")
	}
}

// FromUUID wraps a standard UUID as a 128-bit BLE UUID in order e.
func FromUUID(id uuid.UUID, e Endianness) UUID {
	u := UUID{Type: Bits128, Endianness: e}
	if e == LittleEndian {
		for i := range id {
			u.Data[i] = id[len(id)-1-i]
		}
	} else {
		copy(u.Data[:], id[:])
	}
	return u
}
