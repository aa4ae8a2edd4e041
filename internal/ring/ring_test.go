package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNonPositiveCapacity(t *testing.T) {
	_, err := New[int](0, nil)
	assert.Error(t, err)

	_, err = NewWithBuffer[int](nil, nil)
	assert.Error(t, err)
}

func TestBuffer_FIFO(t *testing.T) {
	b, err := New[int](3, nil)
	require.NoError(t, err)

	assert.True(t, b.Empty())
	b.Push(1)
	b.Push(2)
	b.Push(3)
	assert.True(t, b.Full())
	assert.Equal(t, 3, b.Len())

	for want := 1; want <= 3; want++ {
		got, ok := b.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := b.Pop()
	assert.False(t, ok, "pop on empty")
}

func TestBuffer_PushWhenFullEvictsOldest(t *testing.T) {
	var freed []int
	b, err := New[int](3, func(v int) { freed = append(freed, v) })
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		assert.False(t, b.Push(i))
	}
	assert.True(t, b.Push(4))

	assert.Equal(t, []int{1}, freed)
	assert.Equal(t, 3, b.Len(), "count never exceeds capacity")

	var got []int
	for !b.Empty() {
		v, _ := b.Pop()
		got = append(got, v)
	}
	assert.Equal(t, []int{2, 3, 4}, got)
}

func TestBuffer_SustainedOverload(t *testing.T) {
	evictions := 0
	b, err := New[int](4, func(int) { evictions++ })
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		b.Push(i)
		assert.LessOrEqual(t, b.Len(), b.Cap())
	}
	assert.Equal(t, 96, evictions)

	head, ok := b.Head()
	require.True(t, ok)
	assert.Equal(t, 96, head)
	tail, ok := b.Tail()
	require.True(t, ok)
	assert.Equal(t, 99, tail)
}

func TestBuffer_IndexIsHeadRelative(t *testing.T) {
	b, err := New[string](3, nil)
	require.NoError(t, err)

	b.Push("a")
	b.Push("b")
	b.Pop()
	b.Push("c")
	b.Push("d") // wraps past the end of storage

	for i, want := range []string{"b", "c", "d"} {
		got, ok := b.Index(i)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := b.Index(3)
	assert.False(t, ok)
	_, ok = b.Index(-1)
	assert.False(t, ok)
}

func TestBuffer_HeadTailEmpty(t *testing.T) {
	b, err := New[int](2, nil)
	require.NoError(t, err)

	_, ok := b.Head()
	assert.False(t, ok)
	_, ok = b.Tail()
	assert.False(t, ok)
}

func TestNewWithBuffer_UsesCallerStorage(t *testing.T) {
	storage := make([]int, 2)
	b, err := NewWithBuffer(storage, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Cap())

	b.Push(7)
	assert.Equal(t, 7, storage[0], "elements live in the supplied slice")
}

func TestBuffer_Each(t *testing.T) {
	b, err := New[int](3, nil)
	require.NoError(t, err)
	b.Push(1)
	b.Push(2)

	var seen []int
	b.Each(func(v int) {
		seen = append(seen, v)
	})
	assert.Equal(t, []int{1, 2}, seen)
}
