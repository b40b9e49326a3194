package utils

import "sync"

// RingBuffer is a fixed-size buffer of elements of type T. Pushing into a full
// buffer overwrites the oldest element. Elements are kept oldest first.
// All methods are safe for concurrent use.
//
// Example:
//
//	rb := NewRingBuffer[int](3)
//	rb.Push(1)
//	rb.Push(2)
//	rb.Push(3)
//	rb.Push(4) // 1 is overwritten
//	fmt.Println(rb.ToSlice()) // [2 3 4]
type RingBuffer[T any] struct {
	data  []T // backing array
	size  int // capacity
	count int // number of stored elements
	head  int // index of the oldest element
	tail  int // index of the next write
	mu    sync.RWMutex
}

// NewRingBuffer creates a ring buffer of the given size. Panics if size is not positive.
func NewRingBuffer[T any](size int) *RingBuffer[T] {
	if size <= 0 {
		panic("ring buffer size must be positive")
	}
	return &RingBuffer[T]{
		data: make([]T, size),
		size: size,
	}
}

// Push appends item, overwriting the oldest element when the buffer is full.
func (rb *RingBuffer[T]) Push(item T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.data[rb.tail] = item
	rb.tail = (rb.tail + 1) % rb.size

	if rb.count < rb.size {
		rb.count++
	} else {
		rb.head = (rb.head + 1) % rb.size
	}
}

// Len returns the number of stored elements, always within [0, Cap()].
func (rb *RingBuffer[T]) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.count
}

// Cap returns the capacity of the buffer.
func (rb *RingBuffer[T]) Cap() int {
	return rb.size
}

// At returns the i-th element, 0 being the oldest. Panics if i is outside [0, Len()).
func (rb *RingBuffer[T]) At(i int) T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.at(i)
}

func (rb *RingBuffer[T]) at(i int) T {
	if i < 0 || i >= rb.count {
		panic("index out of range")
	}
	return rb.data[(rb.head+i)%rb.size]
}

// ToSlice returns a copy of the elements, oldest first.
func (rb *RingBuffer[T]) ToSlice() []T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	result := make([]T, rb.count)
	for i := 0; i < rb.count; i++ {
		result[i] = rb.at(i)
	}
	return result
}
