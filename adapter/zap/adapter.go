package zap

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	root "github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/render"
)

// Adapter bridges pktlog to go.uber.org/zap.
//
// Bound fields are baked into a child zap.Logger by With(). Log uses
// Logger.Check so nothing is converted for disabled levels. Payload fields
// are rendered lazily by the encoder, inside the Write call, so they never
// outlive the caller's buffer.
type Adapter struct {
	l     *zap.Logger
	al    *zap.AtomicLevel // optional, enables SetMinLevel
	tsKey string
}

// New creates an adapter for the provided zap logger.
func New(l *zap.Logger) *Adapter {
	return NewWithTimestampKey(l, nil, "")
}

// NewWithAtomicLevel wires a zap.AtomicLevel so SetMinLevel can adjust the
// backend's filter.
func NewWithAtomicLevel(l *zap.Logger, al *zap.AtomicLevel) *Adapter {
	return NewWithTimestampKey(l, al, "")
}

// NewWithTimestampKey overrides the timestamp field key (default "ts").
func NewWithTimestampKey(l *zap.Logger, al *zap.AtomicLevel, tsKey string) *Adapter {
	if l == nil {
		l = zap.NewNop()
	}
	if tsKey == "" {
		tsKey = "ts"
	}
	return &Adapter{l: l, al: al, tsKey: tsKey}
}

// With returns a child adapter by binding fields onto a child zap.Logger.
func (a *Adapter) With(fs []root.Field) root.Adapter {
	child := *a
	if len(fs) == 0 {
		return &child
	}
	out := make([]zap.Field, len(fs))
	for i := range fs {
		if fs[i].Kind == root.KindPayload {
			// bound for the child's lifetime, so render now
			out[i] = zap.String(fs[i].K, fs[i].RenderPayload())
			continue
		}
		out[i] = toZapField(&fs[i])
	}
	child.l = a.l.With(out...)
	return &child
}

// Log emits a single entry with the logger's timestamp under tsKey.
// LevelFatal maps to Error; zap's Fatal would exit the process.
func (a *Adapter) Log(level root.Level, msg string, at time.Time, fields []root.Field) {
	ce := a.l.Check(toZapLevel(level), msg)
	if ce == nil {
		return
	}

	zfs := make([]zap.Field, 0, 1+len(fields))
	zfs = append(zfs, zap.String(a.tsKey, at.UTC().Format(time.RFC3339Nano)))
	for i := range fields {
		zfs = append(zfs, toZapField(&fields[i]))
	}
	ce.Write(zfs...)
}

// SetMinLevel updates the backend filter when an AtomicLevel was supplied.
func (a *Adapter) SetMinLevel(l root.Level) {
	if a.al == nil {
		return
	}
	a.al.SetLevel(toZapLevel(l))
}

func toZapLevel(l root.Level) zapcore.Level {
	switch {
	case l <= root.LevelDebug:
		return zapcore.DebugLevel // zap has no trace
	case l <= root.LevelInfo:
		return zapcore.InfoLevel
	case l <= root.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// payload renders on demand through fmt.Stringer.
type payload struct {
	p   []byte
	enc render.Encoding
}

func (v payload) String() string {
	return (&root.Field{Kind: root.KindPayload, Bytes: v.p, Enc: v.enc}).RenderPayload()
}

func toZapField(f *root.Field) zap.Field {
	switch f.Kind {
	case root.KindString:
		return zap.String(f.K, f.Str)
	case root.KindInt64:
		return zap.Int64(f.K, f.Int64)
	case root.KindUint64:
		return zap.Uint64(f.K, f.Uint64)
	case root.KindFloat64:
		return zap.Float64(f.K, f.Float64)
	case root.KindBool:
		return zap.Bool(f.K, f.Bool)
	case root.KindDuration:
		return zap.Duration(f.K, f.Dur)
	case root.KindTime:
		return zap.Time(f.K, f.Time)
	case root.KindError:
		if f.Err == nil {
			return zap.Skip()
		}
		if f.K == "" || f.K == "error" {
			return zap.Error(f.Err)
		}
		return zap.NamedError(f.K, f.Err)
	case root.KindBytes:
		return zap.ByteString(f.K, f.Bytes)
	case root.KindPayload:
		return zap.Stringer(f.K, payload{p: f.Bytes, enc: f.Enc})
	case root.KindAny:
		return zap.Any(f.K, f.Any)
	default:
		return zap.Skip()
	}
}
