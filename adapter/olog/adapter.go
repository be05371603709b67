package olog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	root "github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/membuf"
)

// Adapter is a high-throughput logger whose records are formatted into
// bounded, pooled membuf buffers.
type Adapter struct {
	// immutable after construction
	writerFactory WriterFactory
	opts          Options
	formatter     Formatter
	lines         *lines

	// write path
	mu         *sync.Mutex
	metrics    atomic.Pointer[metricsHolder]
	minLevel   atomic.Int64
	wg         *sync.WaitGroup
	asyncQueue chan asyncLogEntry
	stopped    *atomic.Bool
	measureDur atomic.Bool

	// counters, shared across clones
	st *stats

	// bound fields (immutable)
	bound        []root.Field
	preBoundText []byte // ' key=value' slices
	preBoundJSON []byte // ',"key":value' slices

	// fast path for single writer
	singleWriter bool
	w            io.Writer
}

type asyncLogEntry struct {
	level  root.Level
	msg    string
	at     time.Time
	fields []root.Field
	bound  *Adapter
}

var errAsyncQueueFull = errors.New("olog: async queue full, dropping log entry")

func defaultErrorHandler(err error) { fmt.Fprintf(os.Stderr, "olog error: %v\n", err) }

// New creates a new Adapter with the given writer and options
func New(w io.Writer, opts Options) *Adapter {
	return NewWithWriterFactory(&DefaultWriterFactory{Writer: w}, opts)
}

func NewWithWriterFactory(factory WriterFactory, opts Options) *Adapter {
	if factory == nil {
		factory = &DefaultWriterFactory{Writer: os.Stdout}
	}
	if opts.Format == 0 {
		opts.Format = FormatText
	}
	if opts.AsyncPolicy == 0 {
		opts.AsyncPolicy = DropNewest
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = defaultErrorHandler
	}
	if opts.JSONTime == 0 {
		opts.JSONTime = JSONTimeRFC3339Nano
	}
	if opts.JSONDuration == 0 {
		opts.JSONDuration = JSONDurationString
	}
	if opts.MaxRecordSize <= 0 || opts.MaxRecordSize > membuf.MaxCapacity {
		opts.MaxRecordSize = defaultMaxRecordSize
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultBufferSize
	}

	var formatter Formatter
	if opts.Format == FormatJSON {
		formatter = &JSONFormatter{}
	} else {
		formatter = &TextFormatter{}
	}

	a := &Adapter{
		writerFactory: factory,
		opts:          opts,
		formatter:     formatter,
		lines:         newLines(opts.BufferSize, opts.MaxRecordSize),
		mu:            &sync.Mutex{},
		wg:            &sync.WaitGroup{},
		stopped:       &atomic.Bool{},
		st:            &stats{},
	}
	a.metrics.Store(&metricsHolder{mc: &NoopMetricsCollector{}})
	a.minLevel.Store(int64(opts.MinLevel))

	if df, ok := factory.(*DefaultWriterFactory); ok {
		a.singleWriter = true
		a.w = df.Writer
	}

	if opts.Async {
		q := opts.AsyncQueueSize
		if q <= 0 {
			q = 1024
		}
		a.asyncQueue = make(chan asyncLogEntry, q)
		a.wg.Add(1)
		go a.asyncProcessor()
	}
	return a
}

// SetMetricsCollector installs a collector; when not Noop, we also measure durations.
func (a *Adapter) SetMetricsCollector(collector MetricsCollector) {
	if collector == nil {
		collector = &NoopMetricsCollector{}
	}
	a.metrics.Store(&metricsHolder{mc: collector})
	_, isNoop := collector.(*NoopMetricsCollector)
	a.measureDur.Store(!isNoop)
}

// Stats returns a snapshot of internal counters.
func (a *Adapter) Stats() StatsSnapshot {
	s := a.st.snapshot()
	s.Expansions = a.lines.expansions.Load()
	return s
}

// ResetStats resets internal counters.
func (a *Adapter) ResetStats() {
	a.st.reset()
	a.lines.expansions.Store(0)
}

// Close drains the async queue. Safe to call more than once.
func (a *Adapter) Close() error {
	if a.asyncQueue != nil && a.stopped.CompareAndSwap(false, true) {
		close(a.asyncQueue)
		a.wg.Wait()
	}
	return nil
}

// With clones the adapter and pre-encodes bound fields into immutable prefixes.
func (a *Adapter) With(fs []root.Field) root.Adapter {
	child := &Adapter{
		writerFactory: a.writerFactory,
		opts:          a.opts,
		formatter:     a.formatter,
		lines:         a.lines,
		mu:            a.mu,
		wg:            a.wg,
		asyncQueue:    a.asyncQueue,
		stopped:       a.stopped,
		st:            a.st,
		singleWriter:  a.singleWriter,
		w:             a.w,
	}
	child.metrics.Store(a.metrics.Load())
	child.measureDur.Store(a.measureDur.Load())
	child.minLevel.Store(a.minLevel.Load())

	child.bound = make([]root.Field, 0, len(a.bound)+len(fs))
	child.bound = append(child.bound, a.bound...)
	for i := range fs {
		child.bound = append(child.bound, root.CloneField(fs[i]))
	}
	if len(child.bound) > 0 {
		child.preBoundText = child.encodeBound(child.bound, appendTextField)
		opts := child.opts
		child.preBoundJSON = child.encodeBound(child.bound, func(b *membuf.Buffer, f *root.Field) {
			appendJSONField(b, f, opts)
		})
	}
	return child
}

func (a *Adapter) Log(level root.Level, msg string, at time.Time, fields []root.Field) {
	if int64(level) < a.minLevel.Load() {
		return
	}
	if a.asyncQueue != nil && !a.stopped.Load() {
		a.enqueue(asyncLogEntry{level: level, msg: msg, at: at, fields: copyFieldsOwned(fields), bound: a})
		return
	}
	a.logDirect(level, msg, at, fields)
}

func (a *Adapter) enqueue(entry asyncLogEntry) {
	select {
	case a.asyncQueue <- entry:
		return
	default:
	}
	switch a.opts.AsyncPolicy {
	case DropOldest:
		select {
		case ev := <-a.asyncQueue:
			releaseFields(ev.fields)
			a.st.dropped.Add(1)
		default:
		}
		select {
		case a.asyncQueue <- entry:
			return
		default:
		}
	case Block:
		a.asyncQueue <- entry
		return
	}
	a.st.dropped.Add(1)
	a.st.loggedErrors.Add(1)
	releaseFields(entry.fields)
	a.opts.ErrorHandler(errAsyncQueueFull)
}

func (a *Adapter) logDirect(level root.Level, msg string, at time.Time, fields []root.Field) {
	measure := a.measureDur.Load()
	mc := a.metrics.Load().mc

	var start time.Time
	if measure {
		start = time.Now()
	}

	defer func() {
		if r := recover(); r != nil {
			a.st.loggedErrors.Add(1)
			err := errors.Errorf("panic during log formatting: %v", r)
			a.opts.ErrorHandler(err)
			mc.LoggedMessage(level, 0, 0, false, err)
		}
	}()

	boundPrefix := a.preBoundText
	if a.opts.Format == FormatJSON {
		boundPrefix = a.preBoundJSON
	}
	buf := a.lines.format(func(b *membuf.Buffer) {
		a.formatter.FormatLogLine(b, level, msg, at, boundPrefix, fields, a.opts)
	})
	defer a.lines.put(buf)

	var w io.Writer
	if a.singleWriter {
		w = a.w
	} else {
		w = a.writerFactory.GetWriter(level)
	}
	if w == nil {
		return
	}

	truncated := buf.Truncated()
	a.mu.Lock()
	n, err := w.Write(buf.Bytes())
	if err == nil && truncated {
		// the newline was among the dropped bytes
		var m int
		m, err = w.Write(newline)
		n += m
	}
	a.mu.Unlock()

	if truncated {
		a.st.truncated.Add(1)
	}
	var durMS float64
	if measure {
		durMS = float64(time.Since(start)) / float64(time.Millisecond)
	}
	if err != nil {
		a.st.loggedErrors.Add(1)
		a.opts.ErrorHandler(errors.Wrap(err, "olog: write record"))
	}
	mc.LoggedMessage(level, durMS, n, truncated, err)
}

var newline = []byte{'\n'}

func (a *Adapter) asyncProcessor() {
	defer a.wg.Done()
	for e := range a.asyncQueue {
		e.bound.logDirect(e.level, e.msg, e.at, e.fields)
		releaseFields(e.fields)
	}
}

// SetMinLevel changes the threshold of this adapter only; clones made by
// With keep the level they were created with.
func (a *Adapter) SetMinLevel(l root.Level) { a.minLevel.Store(int64(l)) }
