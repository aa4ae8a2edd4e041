package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_Ordering(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		cond Comparison
		want bool
	}{
		{"int signed lt", NewInt(-1), NewInt(1), LessThan, true},
		{"uint lt", NewUInt(1), NewUInt(4000000000), LessThan, true},
		{"char unsigned", NewChar(200), NewChar(100), GreaterThan, true},
		{"bool", NewBool(false), NewBool(true), LessThan, true},
		{"float", NewFloat(1.5), NewFloat(1.25), GreaterThanEqual, true},
		{"double eq", NewDouble(2), NewDouble(2), Equal, true},
		{"le on equal", NewInt(3), NewInt(3), LessThanEqual, true},
		{"gt on equal", NewInt(3), NewInt(3), GreaterThan, false},
		{"ge on less", NewInt(2), NewInt(3), GreaterThanEqual, false},
		{"ne", NewInt(2), NewInt(3), NotEqual, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(&tt.a, &tt.b, tt.cond)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare_Strings(t *testing.T) {
	a := mustString(t, "abc")
	b := mustString(t, "abd")

	lt, err := Compare(&a, &b, LessThan)
	require.NoError(t, err)
	assert.True(t, lt)

	eq, err := Compare(&a, &a, Equal)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestCompare_Failures(t *testing.T) {
	i := NewInt(1)
	u := NewUInt(1)
	_, err := Compare(&i, &u, Equal)
	assert.ErrorIs(t, err, ErrFail, "mismatched kinds")

	v1 := NewVector3F(1, 0, 0)
	v2 := NewVector3F(1, 0, 0)
	_, err = Compare(&v1, &v2, Equal)
	assert.ErrorIs(t, err, ErrFail, "vectors are not comparable")

	b1 := mustBinary(t, []byte{1})
	b2 := mustBinary(t, []byte{1})
	_, err = Compare(&b1, &b2, LessThan)
	assert.ErrorIs(t, err, ErrFail)

	var void Value
	_, err = Compare(&void, &void, Equal)
	assert.ErrorIs(t, err, ErrFail)

	_, err = Compare(nil, &i, Equal)
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestParseComparison(t *testing.T) {
	for _, s := range []string{"<", "lt", "LESS_THAN"} {
		c, err := ParseComparison(s)
		require.NoError(t, err)
		assert.Equal(t, LessThan, c)
	}
	_, err := ParseComparison("~")
	assert.Error(t, err)
	assert.Equal(t, "ge", GreaterThanEqual.String())
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		src     Value
		op      Operator
		operand float32
		want    Value
	}{
		{"int div truncates", NewInt(7), Div, 2, NewInt(3)},
		{"int operand truncated", NewInt(10), Add, 2.9, NewInt(12)},
		{"char wraps", NewChar(250), Add, 10, NewChar(4)},
		{"uint sub", NewUInt(5), Sub, 1.9, NewUInt(4)},
		{"float mul", NewFloat(1.5), Mul, 2, NewFloat(3)},
		{"double div", NewDouble(1), Div, 4, NewDouble(0.25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst Value
			require.NoError(t, Apply(&dst, tt.op, tt.operand, &tt.src))
			assert.Equal(t, tt.want.Kind(), dst.Kind())
			assert.Equal(t, tt.want.Payload(), dst.Payload())
		})
	}
}

func TestApply_InPlace(t *testing.T) {
	v := NewInt(5)
	require.NoError(t, Apply(&v, Mul, 3, &v))
	got, _ := v.AsInt()
	assert.Equal(t, int32(15), got)
}

func TestApply_Failures(t *testing.T) {
	dst := NewInt(99)
	src := NewInt(1)
	err := Apply(&dst, Div, 0, &src)
	assert.ErrorIs(t, err, ErrFail)
	got, _ := dst.AsInt()
	assert.Equal(t, int32(99), got, "dst untouched on failure")

	vec := NewVector3F(1, 1, 1)
	s := mustString(t, "1")
	b := NewBool(true)
	var void Value
	for _, src := range []*Value{&vec, &s, &b, &void} {
		err = Apply(&dst, Add, 1, src)
		assert.ErrorIs(t, err, ErrFail, "%s source", src.Kind())
		got, _ = dst.AsInt()
		assert.Equal(t, int32(99), got, "dst untouched for %s", src.Kind())
	}

	f := NewFloat(1)
	require.NoError(t, Apply(&dst, Div, 0, &f), "float division by zero is IEEE")
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator("*")
	require.NoError(t, err)
	assert.Equal(t, Mul, op)
	assert.Equal(t, "sub", Sub.String())

	_, err = ParseOperator("%")
	assert.Error(t, err)
}

func TestCompare_IntAgainstFloatFails(t *testing.T) {
	i := NewInt(1)
	f := NewFloat(1)
	for _, c := range []Comparison{Equal, LessThan, GreaterThanEqual} {
		_, err := Compare(&i, &f, c)
		assert.ErrorIs(t, err, ErrFail)
	}

	a := mustString(t, "abc")
	b := mustString(t, "abd")
	eq, err := Compare(&a, &b, Equal)
	require.NoError(t, err)
	assert.False(t, eq)
}
