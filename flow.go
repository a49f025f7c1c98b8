package leansdr

import "fmt"

// Buffer is a fixed-capacity single-producer/single-consumer store of T.
// Storage is a linear window: unread elements slide to the front when the
// writer runs out of tail space, so readers and writers always see
// contiguous slices. Capacity never changes after construction.
type Buffer[T any] struct {
	name string
	data []T
	rd   int
	wr   int
	min  int // guaranteed writable room once the reader drains

	read    uint64 // cumulative consumed elements
	written uint64 // cumulative committed elements
}

// buffer is the type-erased view the scheduler keeps for progress
// accounting and the shutdown dump.
type buffer interface {
	label() string
	transferred() uint64
	committed() uint64
}

// NewBuffer allocates a buffer of the given capacity and registers it with
// the scheduler. Capacity must be positive.
func NewBuffer[T any](s *Scheduler, name string, size int) *Buffer[T] {
	if size <= 0 {
		panic(fmt.Sprintf("flow: buffer %q: invalid capacity %d", name, size))
	}
	b := &Buffer[T]{
		name: name,
		data: make([]T, size),
		min:  1,
	}
	s.addBuffer(b)
	return b
}

// Reserve guarantees that Writable reports at least n once the reader has
// drained. Stages with an expanding rate call this at construction so that
// one full output unit always fits. Panics if the capacity is too small.
func (b *Buffer[T]) Reserve(n int) {
	if n > len(b.data) {
		panic(fmt.Sprintf("flow: buffer %q: capacity %d below reserved unit %d", b.name, len(b.data), n))
	}
	if n > b.min {
		b.min = n
	}
}

// Capacity returns the fixed element capacity.
func (b *Buffer[T]) Capacity() int { return len(b.data) }

// Readable returns the number of fully written, not yet consumed elements.
func (b *Buffer[T]) Readable() int { return b.wr - b.rd }

// Writable returns the free capacity available to the writer. Unread
// elements are packed to the front of the storage when the tail cannot hold
// the writer's reserved unit.
func (b *Buffer[T]) Writable() int {
	if len(b.data)-b.wr < b.min && b.rd > 0 {
		n := copy(b.data, b.data[b.rd:b.wr])
		b.rd = 0
		b.wr = n
	}
	return len(b.data) - b.wr
}

// Rd returns the readable region. The slice is valid for Readable()
// elements and only until the next Read or Writable call.
func (b *Buffer[T]) Rd() []T { return b.data[b.rd:b.wr] }

// Wr returns the writable region. The slice is valid for Writable()
// elements; call Writable first so packing has happened.
func (b *Buffer[T]) Wr() []T { return b.data[b.wr:] }

// Read consumes n elements. Consuming more than Readable is a contract
// violation and panics.
func (b *Buffer[T]) Read(n int) {
	if n < 0 || n > b.wr-b.rd {
		panic(fmt.Sprintf("flow: buffer %q: read %d with %d readable", b.name, n, b.wr-b.rd))
	}
	b.rd += n
	b.read += uint64(n)
}

// Written commits n elements, making them visible to the reader. This is
// the sole synchronization point between producer and consumer. Committing
// more than the free tail space is a contract violation and panics.
func (b *Buffer[T]) Written(n int) {
	if n < 0 || n > len(b.data)-b.wr {
		panic(fmt.Sprintf("flow: buffer %q: committed %d with %d writable", b.name, n, len(b.data)-b.wr))
	}
	b.wr += n
	b.written += uint64(n)
}

func (b *Buffer[T]) label() string { return b.name }

func (b *Buffer[T]) transferred() uint64 { return b.read + b.written }

func (b *Buffer[T]) committed() uint64 { return b.written }
