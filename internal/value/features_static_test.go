//go:build atmo_static

package value

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_StringBound(t *testing.T) {
	v := NewInt(1)
	err := CreateString(&v, strings.Repeat("a", StaticSize-1))
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.True(t, v.IsVoid(), "failed construction leaves void")

	require.NoError(t, CreateString(&v, strings.Repeat("a", StaticSize-2)))
}

func TestStatic_BinaryBound(t *testing.T) {
	var v Value
	assert.ErrorIs(t, CreateBinary(&v, make([]byte, StaticSize+1)), ErrOutOfMemory)
	require.NoError(t, CreateBinary(&v, make([]byte, StaticSize)))
}
