// Package ring implements a fixed-capacity circular queue.
//
// When full, Push evicts the oldest element (passing it to the free
// function) before writing the new one, so a Buffer never blocks and never
// grows. A Buffer is not safe for concurrent use; callers that share one
// across goroutines hold their own lock.
package ring

import "fmt"

// FreeFunc releases an element dropped by eviction.
type FreeFunc[T any] func(T)

// Buffer is a circular FIFO over T.
type Buffer[T any] struct {
	data  []T
	head  int
	tail  int
	count int
	free  FreeFunc[T]
}

// New allocates a Buffer holding up to capacity elements. free may be nil.
func New[T any](capacity int, free FreeFunc[T]) (*Buffer[T], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ring: capacity must be positive, got %d", capacity)
	}
	return &Buffer[T]{data: make([]T, capacity), free: free}, nil
}

// NewWithBuffer uses caller-provided storage; its length is the capacity.
// The Buffer does not allocate.
func NewWithBuffer[T any](storage []T, free FreeFunc[T]) (*Buffer[T], error) {
	if len(storage) == 0 {
		return nil, fmt.Errorf("ring: storage must be non-empty")
	}
	var zero T
	for i := range storage {
		storage[i] = zero
	}
	return &Buffer[T]{data: storage, free: free}, nil
}

// Push appends elem at the tail. If the buffer is full the head element is
// evicted first and reported through the free function. It reports whether
// an eviction happened.
func (b *Buffer[T]) Push(elem T) (evicted bool) {
	if b.count == len(b.data) {
		old := b.data[b.head]
		var zero T
		b.data[b.head] = zero
		b.head = (b.head + 1) % len(b.data)
		b.count--
		evicted = true
		if b.free != nil {
			b.free(old)
		}
	}
	b.data[b.tail] = elem
	b.tail = (b.tail + 1) % len(b.data)
	b.count++
	return evicted
}

// Pop removes and returns the head element.
func (b *Buffer[T]) Pop() (T, bool) {
	var zero T
	if b.count == 0 {
		return zero, false
	}
	elem := b.data[b.head]
	b.data[b.head] = zero
	b.head = (b.head + 1) % len(b.data)
	b.count--
	return elem, true
}

// Head returns the oldest element without removing it.
func (b *Buffer[T]) Head() (T, bool) {
	return b.Index(0)
}

// Tail returns the newest element without removing it.
func (b *Buffer[T]) Tail() (T, bool) {
	return b.Index(b.count - 1)
}

// Index returns the i-th element counting from the head.
func (b *Buffer[T]) Index(i int) (T, bool) {
	var zero T
	if i < 0 || i >= b.count {
		return zero, false
	}
	return b.data[(b.head+i)%len(b.data)], true
}

// Each calls fn for every element from head to tail. Elements pushed by fn
// are not visited.
func (b *Buffer[T]) Each(fn func(T)) {
	n := b.count
	for i := 0; i < n && i < b.count; i++ {
		fn(b.data[(b.head+i)%len(b.data)])
	}
}

// Full reports whether the next Push would evict.
func (b *Buffer[T]) Full() bool { return b.count == len(b.data) }

// Empty reports whether the buffer holds no elements.
func (b *Buffer[T]) Empty() bool { return b.count == 0 }

// Len returns the number of stored elements.
func (b *Buffer[T]) Len() int { return b.count }

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int { return len(b.data) }
