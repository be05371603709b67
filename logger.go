package pktlog

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"
)

type Logger struct {
	adapter    Adapter
	minLevel   Level
	baseFields []Field
	now        func() time.Time

	// Observers: lock-free reads via atomic.Value; synchronized updates via obsMu.
	// Stored value is []Observer and MUST be treated as immutable by readers.
	observers atomic.Value // holds []Observer
	obsMu     sync.Mutex
}

func newLogger(cfg Config) *Logger {
	l := &Logger{
		adapter:  cfg.Adapter,
		minLevel: cfg.MinLevel,
		now:      xclock.Now,
	}
	if cfg.Clock != nil {
		l.now = cfg.Clock.Now
	}
	if len(cfg.Observers) > 0 {
		obs := make([]Observer, len(cfg.Observers))
		copy(obs, cfg.Observers)
		l.observers.Store(obs)
	} else {
		l.observers.Store(([]Observer)(nil))
	}
	return l
}

var global atomic.Pointer[Logger]

// SetGlobal sets the process-wide Logger used by the facade helpers.
func SetGlobal(l *Logger) { global.Store(l) }

// L returns the global Logger; panic if unset to surface misconfig early.
func L() *Logger {
	l := global.Load()
	if l == nil {
		panic("pktlog: global logger not set. Build one and call pktlog.SetGlobal(...)")
	}
	return l
}

// Enabled reports whether logs at 'level' would be emitted by this logger.
// Use to avoid rendering payloads in hot paths when disabled.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.minLevel
}

// Level entry points return nil when the level is disabled; every Event
// method is safe on nil.

func (l *Logger) Trace() *Event { return getEvent(l, LevelTrace) }
func (l *Logger) Debug() *Event { return getEvent(l, LevelDebug) }
func (l *Logger) Info() *Event  { return getEvent(l, LevelInfo) }
func (l *Logger) Warn() *Event  { return getEvent(l, LevelWarn) }
func (l *Logger) Error() *Event { return getEvent(l, LevelError) }
func (l *Logger) Fatal() *Event { return getEvent(l, LevelFatal) }

// With returns a child logger with bound fields. Payload and byte fields
// are copied because bound fields outlive the caller's buffers.
func (l *Logger) With(fs ...Field) *Logger {
	owned := make([]Field, len(fs))
	for i := range fs {
		owned[i] = CloneField(fs[i])
	}
	child := &Logger{
		adapter:    l.adapter.With(owned),
		minLevel:   l.minLevel,
		baseFields: append(copyFields(nil, l.baseFields), owned...),
		now:        l.now,
	}
	child.observers.Store(l.snapshotObservers())
	return child
}

func (l *Logger) snapshotObservers() []Observer {
	v := l.observers.Load()
	if v == nil {
		return nil
	}
	cur := v.([]Observer)
	if len(cur) == 0 {
		return nil
	}
	out := make([]Observer, len(cur))
	copy(out, cur)
	return out
}

func (l *Logger) AddObserver(o Observer) {
	l.obsMu.Lock()
	defer l.obsMu.Unlock()
	cur := l.snapshotObservers()
	cur = append(cur, o)
	l.observers.Store(cur)
}

func (l *Logger) emit(level Level, msg string, evFields []Field) {
	if level < l.minLevel {
		return
	}
	at := l.now()

	// Adapter handles bound fields internally; pass only event fields.
	l.adapter.Log(level, msg, at, evFields)

	v := l.observers.Load()
	if v == nil {
		return
	}
	obs := v.([]Observer)
	if len(obs) == 0 {
		return
	}

	// Observers may keep the entry; give them their own payload bytes.
	merged := make([]Field, 0, len(l.baseFields)+len(evFields))
	merged = append(merged, l.baseFields...)
	for i := range evFields {
		merged = append(merged, CloneField(evFields[i]))
	}

	entry := Entry{
		At:      at,
		Level:   level,
		Message: msg,
		Fields:  merged,
	}
	for _, o := range obs {
		o.OnLog(entry)
	}
}

func copyFields(dst, src []Field) []Field {
	if len(src) == 0 {
		return dst
	}
	return append(dst, src...)
}
