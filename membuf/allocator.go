package membuf

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Allocator supplies buffer storage. Allocate must return a slice of exactly
// size bytes. Implementations shared between workers must be safe for
// concurrent use.
type Allocator interface {
	Allocate(size int) ([]byte, error)
	Release(p []byte)
}

// HeapAllocator takes storage from the Go heap.
type HeapAllocator struct{}

func (HeapAllocator) Allocate(size int) ([]byte, error) {
	if size <= 0 || size > MaxCapacity {
		return nil, errors.Wrapf(ErrAllocation, "heap: size %d", size)
	}
	return make([]byte, size), nil
}

func (HeapAllocator) Release([]byte) {}

// Budget caps the total storage held by all buffers allocated through it.
// An allocation that would exceed the limit fails with ErrAllocation.
type Budget struct {
	limit int64
	used  atomic.Int64
}

// NewBudget returns an allocator that hands out at most limit bytes at once.
func NewBudget(limit int64) *Budget {
	return &Budget{limit: limit}
}

func (b *Budget) Allocate(size int) ([]byte, error) {
	if size <= 0 || size > MaxCapacity {
		return nil, errors.Wrapf(ErrAllocation, "budget: size %d", size)
	}
	for {
		cur := b.used.Load()
		if cur+int64(size) > b.limit {
			return nil, errors.Wrapf(ErrAllocation, "budget: %d bytes requested, %d of %d in use", size, cur, b.limit)
		}
		if b.used.CompareAndSwap(cur, cur+int64(size)) {
			break
		}
	}
	return make([]byte, size), nil
}

func (b *Budget) Release(p []byte) { b.used.Add(-int64(len(p))) }

// InUse returns the bytes currently held by live buffers.
func (b *Budget) InUse() int64 { return b.used.Load() }
