// Package membuf provides a bounded byte buffer for payload data of
// untrusted length.
//
// A Buffer never grows on write. Bytes that do not fit are dropped and
// counted; callers that need every byte check the returned count and call
// Expand (grow-then-retry) or flush and Reset. Storage always holds a zero
// sentinel right after the last written byte, so capacity-1 bytes are
// usable.
//
// A Buffer has a single owner and no internal locking. The intended use is
// one buffer per worker, reused across records with Reset.
package membuf

import (
	"math"

	"github.com/pkg/errors"
)

// MaxCapacity bounds the storage size of a single buffer.
const MaxCapacity = math.MaxInt32

// Buffer is a fixed-capacity byte store with a monotonic length.
type Buffer struct {
	data    []byte // len(data) is the capacity
	n       int    // written bytes; data[n] == 0
	dropped int
	alloc   Allocator
}

// New allocates a buffer of capacity bytes from the heap.
func New(capacity int) (*Buffer, error) {
	return NewWithAllocator(capacity, nil)
}

// NewWithAllocator allocates a buffer whose storage is obtained from a.
// A nil allocator means the heap.
func NewWithAllocator(capacity int, a Allocator) (*Buffer, error) {
	if capacity <= 0 || capacity > MaxCapacity {
		return nil, errors.Wrapf(ErrInvalidArgument, "capacity %d", capacity)
	}
	if a == nil {
		a = HeapAllocator{}
	}
	data, err := a.Allocate(capacity)
	if err != nil {
		return nil, errors.WithMessagef(err, "new buffer of %d bytes", capacity)
	}
	data[0] = 0
	return &Buffer{data: data, alloc: a}, nil
}

// Expand grows the capacity by growBy bytes and returns the buffer that now
// owns the data. The receiver is released on success and must not be used
// again. On failure the receiver is unchanged and remains usable.
func (b *Buffer) Expand(growBy int) (*Buffer, error) {
	if b.Released() {
		return nil, errors.Wrap(ErrReleased, "expand")
	}
	if growBy <= 0 || growBy > MaxCapacity-len(b.data) {
		return nil, errors.Wrapf(ErrInvalidArgument, "grow %d bytes past capacity %d", growBy, len(b.data))
	}
	data, err := b.alloc.Allocate(len(b.data) + growBy)
	if err != nil {
		return nil, errors.WithMessagef(err, "expand by %d bytes", growBy)
	}
	copy(data, b.data[:b.n+1])

	nb := &Buffer{data: data, n: b.n, dropped: b.dropped, alloc: b.alloc}
	b.release()
	return nb, nil
}

// WriteRaw copies as much of p as fits and returns the number of bytes
// copied. The rest of p is dropped.
func (b *Buffer) WriteRaw(p []byte) int {
	if b.data == nil {
		b.dropped += len(p)
		return 0
	}
	n := copy(b.data[b.n:len(b.data)-1], p)
	b.advance(n, len(p))
	return n
}

// WriteString is WriteRaw for strings.
func (b *Buffer) WriteString(s string) int {
	if b.data == nil {
		b.dropped += len(s)
		return 0
	}
	n := copy(b.data[b.n:len(b.data)-1], s)
	b.advance(n, len(s))
	return n
}

// PutByte appends c when there is room and reports 1, otherwise 0.
func (b *Buffer) PutByte(c byte) int {
	if b.data == nil || b.n >= len(b.data)-1 {
		b.dropped++
		return 0
	}
	b.data[b.n] = c
	b.advance(1, 1)
	return 1
}

func (b *Buffer) advance(n, want int) {
	b.n += n
	b.data[b.n] = 0
	b.dropped += want - n
}

// Reset empties the buffer and keeps its storage.
func (b *Buffer) Reset() {
	if b.data == nil {
		return
	}
	b.n = 0
	b.dropped = 0
	b.data[0] = 0
}

// Destroy hands the storage back to its allocator. The buffer must not be
// used afterwards.
func (b *Buffer) Destroy() {
	if b == nil || b.data == nil {
		return
	}
	b.release()
}

func (b *Buffer) release() {
	b.alloc.Release(b.data)
	b.data = nil
	b.n = 0
}

// Cap returns the allocated size, sentinel slot included.
func (b *Buffer) Cap() int { return len(b.data) }

// Len returns the number of written bytes.
func (b *Buffer) Len() int { return b.n }

// Available returns how many more bytes fit.
func (b *Buffer) Available() int {
	if b.data == nil {
		return 0
	}
	return len(b.data) - 1 - b.n
}

// Bytes returns the written bytes. The slice aliases the storage and is
// valid until the next write, Reset, Expand or Destroy; its capacity is
// clipped so appending to it never touches the buffer.
func (b *Buffer) Bytes() []byte {
	if b.data == nil {
		return nil
	}
	return b.data[:b.n:b.n]
}

// String returns a copy of the written bytes.
func (b *Buffer) String() string { return string(b.Bytes()) }

// Dropped returns the number of bytes discarded by writes since the last
// Reset.
func (b *Buffer) Dropped() int { return b.dropped }

// Truncated reports whether any write since the last Reset was cut short.
func (b *Buffer) Truncated() bool { return b.dropped > 0 }

// Released reports whether the buffer was destroyed or replaced by Expand.
func (b *Buffer) Released() bool { return b == nil || b.data == nil }
