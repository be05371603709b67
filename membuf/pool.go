package membuf

import (
	"sync"

	"github.com/pkg/errors"
)

// Pool recycles heap buffers between records. Buffers taken from a Pool
// are still single-owner; the Pool itself is safe for concurrent use.
type Pool struct {
	p         sync.Pool
	capacity  int
	maxRetain int
}

// NewPool returns a pool handing out buffers of at least capacity bytes.
// Buffers that grew beyond maxRetain are left to the GC on Put.
func NewPool(capacity, maxRetain int) (*Pool, error) {
	if capacity <= 0 || capacity > MaxCapacity {
		return nil, errors.Wrapf(ErrInvalidArgument, "pool capacity %d", capacity)
	}
	if maxRetain < capacity {
		maxRetain = capacity
	}
	return &Pool{capacity: capacity, maxRetain: maxRetain}, nil
}

// Get returns an empty buffer.
func (p *Pool) Get() *Buffer {
	if b, ok := p.p.Get().(*Buffer); ok && !b.Released() {
		b.Reset()
		return b
	}
	return &Buffer{data: make([]byte, p.capacity), alloc: HeapAllocator{}}
}

// Put returns b to the pool. Released or oversized buffers are dropped.
func (p *Pool) Put(b *Buffer) {
	if b.Released() || b.Cap() > p.maxRetain {
		return
	}
	if _, heap := b.alloc.(HeapAllocator); !heap {
		return
	}
	p.p.Put(b)
}
