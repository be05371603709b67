package slog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	root "github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/render"
)

// Adapter adapts pktlog to the Go slog API. It builds slog.Attrs directly
// and uses LogAttrs.
type Adapter struct {
	l     *slog.Logger
	lv    *slog.LevelVar // optional, enables SetMinLevel
	tsKey string
	bound []root.Field
}

func New(l *slog.Logger) *Adapter {
	return NewWithTimestampKey(l, nil, "")
}

// NewWithTimestampKey wires an optional LevelVar and overrides the
// timestamp key (default "ts").
func NewWithTimestampKey(l *slog.Logger, lv *slog.LevelVar, tsKey string) *Adapter {
	if l == nil {
		l = slog.Default()
	}
	if tsKey == "" {
		tsKey = "ts"
	}
	return &Adapter{l: l, lv: lv, tsKey: tsKey}
}

func (a *Adapter) With(fs []root.Field) root.Adapter {
	child := *a
	child.bound = make([]root.Field, 0, len(a.bound)+len(fs))
	child.bound = append(child.bound, a.bound...)
	for i := range fs {
		child.bound = append(child.bound, root.CloneField(fs[i]))
	}
	return &child
}

func (a *Adapter) Log(level root.Level, msg string, at time.Time, fields []root.Field) {
	ctx := context.Background()
	if !a.l.Enabled(ctx, slog.Level(level)) {
		return
	}
	attrs := make([]slog.Attr, 0, len(a.bound)+len(fields)+1)
	attrs = append(attrs, slog.Time(a.tsKey, at))
	for i := range a.bound {
		attrs = append(attrs, toAttr(&a.bound[i]))
	}
	for i := range fields {
		attrs = append(attrs, toAttr(&fields[i]))
	}
	a.l.LogAttrs(ctx, slog.Level(level), msg, attrs...)
}

// SetMinLevel updates the handler level when a LevelVar was supplied.
func (a *Adapter) SetMinLevel(l root.Level) {
	if a.lv != nil {
		a.lv.Set(slog.Level(l))
	}
}

// payload is resolved by the handler during LogAttrs.
type payload struct {
	p   []byte
	enc render.Encoding
}

func (v payload) LogValue() slog.Value {
	return slog.StringValue(string(render.Append(nil, v.p, v.enc)))
}

func toAttr(f *root.Field) slog.Attr {
	switch f.Kind {
	case root.KindString:
		return slog.String(f.K, f.Str)
	case root.KindInt64:
		return slog.Int64(f.K, f.Int64)
	case root.KindUint64:
		return slog.Uint64(f.K, f.Uint64)
	case root.KindFloat64:
		return slog.Float64(f.K, f.Float64)
	case root.KindBool:
		return slog.Bool(f.K, f.Bool)
	case root.KindDuration:
		return slog.Duration(f.K, f.Dur)
	case root.KindTime:
		return slog.Time(f.K, f.Time)
	case root.KindError:
		return slog.Any(f.K, f.Err)
	case root.KindBytes:
		return slog.Any(f.K, f.Bytes)
	case root.KindPayload:
		return slog.Any(f.K, payload{p: f.Bytes, enc: f.Enc})
	case root.KindAny:
		return slog.Any(f.K, f.Any)
	default:
		return slog.Any(f.K, nil)
	}
}

// NewJSONLogger builds a Logger wired to a slog JSON handler.
func NewJSONLogger(w io.Writer, minLevel root.Level, opts *slog.HandlerOptions, observers ...root.Observer) (*root.Logger, error) {
	return newLogger(w, minLevel, opts, FormatJSON, observers)
}

// NewTextLogger builds a Logger wired to a slog text handler.
func NewTextLogger(w io.Writer, minLevel root.Level, opts *slog.HandlerOptions, observers ...root.Observer) (*root.Logger, error) {
	return newLogger(w, minLevel, opts, FormatText, observers)
}

func newLogger(w io.Writer, minLevel root.Level, opts *slog.HandlerOptions, format Format, observers []root.Observer) (*root.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	b := root.NewBuilder().
		WithAdapter(Build(Config{Writer: w, MinLevel: minLevel, Format: format, HandlerOptions: opts})).
		WithMinLevel(minLevel)
	for _, o := range observers {
		b = b.AddObserver(o)
	}
	return b.Build()
}
