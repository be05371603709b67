package olog

import (
	"time"

	root "github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/membuf"
)

// Formatter writes one full line with the given, already pre-encoded bound prefix.
type Formatter interface {
	FormatLogLine(buf *membuf.Buffer, level root.Level, msg string, at time.Time, boundPrefix []byte, fields []root.Field, opts Options)
}

type TextFormatter struct{}

const (
	textTsPrefix    = "ts="
	textLevelPrefix = " level="
	textMsgPrefix   = " msg="
	textLenPrefix   = "len:"
)

func (f *TextFormatter) FormatLogLine(buf *membuf.Buffer, level root.Level, msg string, at time.Time, boundPrefix []byte, fields []root.Field, opts Options) {
	buf.WriteString(textTsPrefix)
	if opts.TimeFormat != "" {
		appendTimeLayout(buf, at, opts.TimeFormat)
	} else {
		appendRFC3339Nano(buf, at)
	}

	buf.WriteString(textLevelPrefix)
	buf.WriteString(level.String())

	buf.WriteString(textMsgPrefix)
	appendTextString(buf, msg)

	buf.WriteRaw(boundPrefix)
	for i := range fields {
		appendTextField(buf, &fields[i])
	}
	buf.PutByte('\n')
}

func appendTextField(buf *membuf.Buffer, f *root.Field) {
	buf.PutByte(' ')
	buf.WriteString(f.K)
	buf.PutByte('=')
	appendTextValue(buf, f)
}

func appendTextValue(buf *membuf.Buffer, f *root.Field) {
	switch f.Kind {
	case root.KindString:
		appendTextString(buf, f.Str)
	case root.KindInt64:
		appendInt64(buf, f.Int64)
	case root.KindUint64:
		appendUint64(buf, f.Uint64)
	case root.KindFloat64:
		appendFloat64(buf, f.Float64)
	case root.KindBool:
		appendBool(buf, f.Bool)
	case root.KindDuration:
		appendDuration(buf, f.Dur)
	case root.KindTime:
		appendRFC3339Nano(buf, f.Time)
	case root.KindError:
		if f.Err != nil {
			appendQuoted(buf, f.Err.Error())
		} else {
			buf.WriteRaw(jsonNull)
		}
	case root.KindBytes:
		buf.WriteString(textLenPrefix)
		appendInt64(buf, int64(len(f.Bytes)))
	case root.KindPayload:
		appendTextPayload(buf, f.Bytes, f.Enc)
	case root.KindAny:
		appendTextAny(buf, f.Any)
	default:
		buf.WriteRaw(jsonNull)
	}
}

func appendBool(buf *membuf.Buffer, v bool) {
	if v {
		buf.WriteRaw(jsonTrue)
	} else {
		buf.WriteRaw(jsonFalse)
	}
}

func appendTextAny(buf *membuf.Buffer, v any) {
	switch vv := v.(type) {
	case nil:
		buf.WriteRaw(jsonNull)
	case string:
		appendTextString(buf, vv)
	case []byte:
		buf.WriteString(textLenPrefix)
		appendInt64(buf, int64(len(vv)))
	case bool:
		appendBool(buf, vv)
	case int:
		appendInt64(buf, int64(vv))
	case int32:
		appendInt64(buf, int64(vv))
	case int64:
		appendInt64(buf, vv)
	case uint:
		appendUint64(buf, uint64(vv))
	case uint8:
		appendUint64(buf, uint64(vv))
	case uint16:
		appendUint64(buf, uint64(vv))
	case uint32:
		appendUint64(buf, uint64(vv))
	case uint64:
		appendUint64(buf, vv)
	case float64:
		appendFloat64(buf, vv)
	case time.Time:
		appendRFC3339Nano(buf, vv)
	case time.Duration:
		appendDuration(buf, vv)
	default:
		buf.WriteString("unknown")
	}
}
