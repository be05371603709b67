package olog

import (
	"sync"

	root "github.com/trickstertwo/pktlog"
)

// Pooled field slices to minimize async allocation churn.

var fieldsPool = sync.Pool{
	New: func() any { return make([]root.Field, 0, 8) },
}

// copyFieldsOwned copies src for use on another goroutine. Payload and
// byte fields get their own storage: the caller's buffers are reset and
// refilled as soon as Log returns.
func copyFieldsOwned(src []root.Field) []root.Field {
	dst := fieldsPool.Get().([]root.Field)
	if cap(dst) < len(src) {
		dst = make([]root.Field, 0, max(8, len(src)))
	}
	dst = dst[:len(src)]
	for i := range src {
		dst[i] = root.CloneField(src[i])
	}
	return dst
}

func releaseFields(s []root.Field) {
	// avoid retaining very large backing arrays
	if cap(s) > 1024 {
		return
	}
	clear(s)
	fieldsPool.Put(s[:0])
}
