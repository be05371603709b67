package pktlog

import (
	"sync"
	"time"

	"github.com/trickstertwo/pktlog/render"
)

// Event is a fluent builder for a single log entry.
// API: Logger().Info().Str("flow", id).Uint64("tx", n).Payload("data", buf, render.EncodingMixed).Msg("tx logged")
type Event struct {
	l      *Logger
	level  Level
	fields []Field
}

var eventPool = sync.Pool{
	New: func() any { return &Event{fields: make([]Field, 0, 8)} },
}

func getEvent(l *Logger, level Level) *Event {
	if level < l.minLevel {
		return nil
	}
	ev := eventPool.Get().(*Event)
	ev.l = l
	ev.level = level
	ev.fields = ev.fields[:0]
	return ev
}

func (e *Event) putBack() {
	// allow GC of large backing arrays by capping
	if cap(e.fields) > 128 {
		e.fields = make([]Field, 0, 8)
	}
	// drop payload references so pooled events do not pin worker buffers
	clear(e.fields)
	e.l = nil
	e.level = 0
	eventPool.Put(e)
}

// Field builders. All of them are no-ops on a nil Event, which is what a
// disabled level returns.

func (e *Event) Str(k, v string) *Event {
	if e == nil {
		return e
	}
	e.fields = append(e.fields, FStr(k, v))
	return e
}

func (e *Event) Int(k string, v int) *Event { return e.Int64(k, int64(v)) }

func (e *Event) Int64(k string, v int64) *Event {
	if e == nil {
		return e
	}
	e.fields = append(e.fields, FInt(k, v))
	return e
}

func (e *Event) Uint64(k string, v uint64) *Event {
	if e == nil {
		return e
	}
	e.fields = append(e.fields, FUint(k, v))
	return e
}

func (e *Event) Float64(k string, v float64) *Event {
	if e == nil {
		return e
	}
	e.fields = append(e.fields, FFloat(k, v))
	return e
}

func (e *Event) Bool(k string, v bool) *Event {
	if e == nil {
		return e
	}
	e.fields = append(e.fields, FBool(k, v))
	return e
}

func (e *Event) Dur(k string, v time.Duration) *Event {
	if e == nil {
		return e
	}
	e.fields = append(e.fields, FDur(k, v))
	return e
}

func (e *Event) Time(k string, v time.Time) *Event {
	if e == nil {
		return e
	}
	e.fields = append(e.fields, FTime(k, v))
	return e
}

func (e *Event) Bytes(k string, v []byte) *Event {
	if e == nil {
		return e
	}
	e.fields = append(e.fields, FBytes(k, v))
	return e
}

// Payload attaches the current contents of src, printed with enc.
func (e *Event) Payload(k string, src render.Source, enc render.Encoding) *Event {
	if e == nil {
		return e
	}
	e.fields = append(e.fields, FPayload(k, src, enc))
	return e
}

func (e *Event) Err(err error) *Event {
	if e == nil || err == nil {
		return e
	}
	e.fields = append(e.fields, FErr("error", err))
	return e
}

func (e *Event) Any(k string, v any) *Event {
	if e == nil {
		return e
	}
	e.fields = append(e.fields, FAny(k, v))
	return e
}

// Msg terminates the builder and emits the event.
func (e *Event) Msg(msg string) {
	if e == nil {
		return
	}
	e.l.emit(e.level, msg, e.fields)
	e.putBack()
}
