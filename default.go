package pktlog

import (
	"io"
	"os"
	"time"
)

// defaultAdapterFactory is set by an adapter package in its init() to avoid
// import cycles. Default() uses it to build a logger.
var defaultAdapterFactory func(w io.Writer) Adapter

// RegisterDefaultAdapterFactory registers the constructor used by Default().
// Adapters call this from init():
//
//	func init() {
//	  pktlog.RegisterDefaultAdapterFactory(func(w io.Writer) pktlog.Adapter {
//	    return New(zerolog.New(w))
//	  })
//	}
func RegisterDefaultAdapterFactory(f func(io.Writer) Adapter) {
	defaultAdapterFactory = f
}

// Default creates a logger writing to w (os.Stderr when nil) through the
// registered adapter factory. Panics if no factory is registered; side
// import adapter/zerolog to get one.
func Default(w io.Writer) *Logger {
	if defaultAdapterFactory == nil {
		panic("pktlog: no default adapter registered. Import adapter/zerolog or call pktlog.RegisterDefaultAdapterFactory")
	}
	if w == nil {
		w = os.Stderr
	}
	return newLogger(Config{
		Adapter:  defaultAdapterFactory(w),
		MinLevel: LevelDebug,
	})
}

// New creates a default logger and sets it as global.
func New(w io.Writer) *Logger {
	l := Default(w)
	SetGlobal(l)
	return l
}

// UseAdapter sets the given adapter as the global logger with the provided min level.
func UseAdapter(a Adapter, min Level, observers ...Observer) *Logger {
	l, _ := NewBuilder().
		WithAdapter(a).
		WithMinLevel(min).
		Build()
	for _, o := range observers {
		l.AddObserver(o)
	}
	SetGlobal(l)
	return l
}

type nopAdapter struct{}

func (nopAdapter) Log(Level, string, time.Time, []Field) {}

func (a nopAdapter) With([]Field) Adapter { return a }

// Nop returns a logger that discards everything. Every level entry point
// returns a nil Event, so callers pay nothing for disabled diagnostics.
func Nop() *Logger {
	return newLogger(Config{Adapter: nopAdapter{}, MinLevel: LevelFatal + 1})
}
