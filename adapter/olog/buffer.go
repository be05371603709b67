package olog

import (
	"sync/atomic"

	"github.com/trickstertwo/pktlog/membuf"
)

// lines hands out bounded record buffers. A record is formatted into a
// pooled membuf.Buffer; when the output is cut short the buffer is doubled
// (up to max) and the record formatted again.
type lines struct {
	pool       *membuf.Pool
	max        int
	expansions atomic.Uint64
}

func newLines(initCap, max int) *lines {
	if initCap > max {
		initCap = max
	}
	pool, err := membuf.NewPool(initCap, max)
	if err != nil {
		// initCap and max are normalized by the adapter constructor
		panic(err)
	}
	return &lines{pool: pool, max: max}
}

// format runs fn until its output fits or the buffer reached max. The
// returned buffer may still be truncated; release it with put.
func (l *lines) format(fn func(b *membuf.Buffer)) *membuf.Buffer {
	b := l.pool.Get()
	fn(b)
	for b.Truncated() && b.Cap() < l.max {
		nb, err := b.Expand(min(b.Cap(), l.max-b.Cap()))
		if err != nil {
			break
		}
		l.expansions.Add(1)
		b = nb
		b.Reset()
		fn(b)
	}
	return b
}

func (l *lines) put(b *membuf.Buffer) { l.pool.Put(b) }

// bufWriter lets render stream into a record buffer. It always reports a
// full write; bytes that did not fit are counted by the buffer itself.
type bufWriter struct{ b *membuf.Buffer }

func (w bufWriter) Write(p []byte) (int, error) {
	w.b.WriteRaw(p)
	return len(p), nil
}

// quoteWriter escapes '"' and '\' on the way into the buffer. Rendered
// mixed and hex output is printable ASCII, so these are the only bytes a
// quoted context needs escaped.
type quoteWriter struct{ b *membuf.Buffer }

func (w quoteWriter) Write(p []byte) (int, error) {
	start := 0
	for i, c := range p {
		if c != '"' && c != '\\' {
			continue
		}
		w.b.WriteRaw(p[start:i])
		w.b.PutByte('\\')
		w.b.PutByte(c)
		start = i + 1
	}
	w.b.WriteRaw(p[start:])
	return len(p), nil
}
