package zerolog

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	root "github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/render"
)

// Adapter bridges pktlog to rs/zerolog.
//
//   - With() binds fields onto a child zerolog.Logger once, not per call.
//   - GetLevel() is checked before an Event is allocated.
//   - Payload fields are rendered into a pooled scratch slice and handed to
//     zerolog as bytes, which it escapes into a JSON string.
type Adapter struct {
	l zerolog.Logger
}

func New(l zerolog.Logger) *Adapter {
	return &Adapter{l: l}
}

// With returns a child adapter by binding fields onto a child zerolog.Logger.
func (a *Adapter) With(fs []root.Field) root.Adapter {
	if len(fs) == 0 {
		child := *a
		return &child
	}
	ctx := a.l.With()
	for i := range fs {
		ctx = appendCtxField(ctx, &fs[i])
	}
	child := *a
	child.l = ctx.Logger()
	return &child
}

// Log emits a single entry with the logger's timestamp as "ts".
// Fatal is written at error level; zerolog's Fatal would exit the process.
func (a *Adapter) Log(level root.Level, msg string, at time.Time, fields []root.Field) {
	zlvl := mapLevel(level)
	if zlvl < a.l.GetLevel() {
		return
	}

	ev := a.l.WithLevel(zlvl)
	ev.Str("ts", at.UTC().Format(time.RFC3339Nano))
	for i := range fields {
		appendEventField(ev, &fields[i])
	}
	ev.Msg(msg)
}

// SetMinLevel lets pktlog.Builder propagate the min level into zerolog.
func (a *Adapter) SetMinLevel(l root.Level) {
	a.l = a.l.Level(mapLevel(l))
}

func mapLevel(l root.Level) zerolog.Level {
	switch {
	case l <= root.LevelTrace:
		return zerolog.TraceLevel
	case l <= root.LevelDebug:
		return zerolog.DebugLevel
	case l <= root.LevelInfo:
		return zerolog.InfoLevel
	case l <= root.LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

var scratchPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 1024)
		return &b
	},
}

// appendPayload renders p with enc and adds it as a string field. zerolog
// copies the bytes into the event before returning.
func appendPayload(e *zerolog.Event, k string, p []byte, enc render.Encoding) {
	sp := scratchPool.Get().(*[]byte)
	out := render.Append((*sp)[:0], p, enc)
	e.Bytes(k, out)
	if cap(out) <= 64*1024 {
		*sp = out[:0]
		scratchPool.Put(sp)
	}
}

func appendEventField(e *zerolog.Event, f *root.Field) {
	switch f.Kind {
	case root.KindString:
		e.Str(f.K, f.Str)
	case root.KindInt64:
		e.Int64(f.K, f.Int64)
	case root.KindUint64:
		e.Uint64(f.K, f.Uint64)
	case root.KindFloat64:
		e.Float64(f.K, f.Float64)
	case root.KindBool:
		e.Bool(f.K, f.Bool)
	case root.KindDuration:
		e.Dur(f.K, f.Dur)
	case root.KindTime:
		e.Time(f.K, f.Time)
	case root.KindError:
		if f.Err != nil {
			if f.K == "" || f.K == "error" {
				e.Err(f.Err)
			} else {
				e.AnErr(f.K, f.Err)
			}
		}
	case root.KindBytes:
		e.Bytes(f.K, f.Bytes)
	case root.KindPayload:
		appendPayload(e, f.K, f.Bytes, f.Enc)
	case root.KindAny:
		e.Interface(f.K, f.Any)
	default:
		e.Interface(f.K, nil)
	}
}

// appendCtxField binds a field to zerolog.Context (used by With()).
func appendCtxField(ctx zerolog.Context, f *root.Field) zerolog.Context {
	switch f.Kind {
	case root.KindString:
		return ctx.Str(f.K, f.Str)
	case root.KindInt64:
		return ctx.Int64(f.K, f.Int64)
	case root.KindUint64:
		return ctx.Uint64(f.K, f.Uint64)
	case root.KindFloat64:
		return ctx.Float64(f.K, f.Float64)
	case root.KindBool:
		return ctx.Bool(f.K, f.Bool)
	case root.KindDuration:
		return ctx.Dur(f.K, f.Dur)
	case root.KindTime:
		return ctx.Time(f.K, f.Time)
	case root.KindError:
		// Context has no named-error variant.
		if f.Err == nil {
			return ctx
		}
		if f.K == "" || f.K == "error" {
			return ctx.Err(f.Err)
		}
		return ctx.Str(f.K, f.Err.Error())
	case root.KindBytes:
		return ctx.Bytes(f.K, f.Bytes)
	case root.KindPayload:
		return ctx.Str(f.K, f.RenderPayload())
	case root.KindAny:
		return ctx.Interface(f.K, f.Any)
	default:
		return ctx.Interface(f.K, nil)
	}
}
