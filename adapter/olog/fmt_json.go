package olog

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	root "github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/membuf"
)

type JSONFormatter struct{}

func (f *JSONFormatter) FormatLogLine(buf *membuf.Buffer, level root.Level, msg string, at time.Time, boundPrefix []byte, fields []root.Field, opts Options) {
	buf.PutByte('{')

	buf.WriteString(`"ts":`)
	appendJSONTime(buf, at, opts)

	buf.WriteString(`,"level":"`)
	buf.WriteString(level.String())
	buf.PutByte('"')

	buf.WriteString(`,"msg":`)
	appendQuoted(buf, msg)

	buf.WriteRaw(boundPrefix)
	for i := range fields {
		appendJSONField(buf, &fields[i], opts)
	}

	buf.WriteString("}\n")
}

func appendJSONTime(buf *membuf.Buffer, t time.Time, opts Options) {
	switch opts.JSONTime {
	case JSONTimeUnixMillis:
		appendInt64(buf, t.UnixMilli())
	case JSONTimeUnixNanos:
		appendInt64(buf, t.UnixNano())
	default:
		buf.PutByte('"')
		appendRFC3339Nano(buf, t)
		buf.PutByte('"')
	}
}

func appendJSONDuration(buf *membuf.Buffer, d time.Duration, opts Options) {
	switch opts.JSONDuration {
	case JSONDurationMillis:
		appendInt64(buf, int64(d/time.Millisecond))
	case JSONDurationNanos:
		appendInt64(buf, d.Nanoseconds())
	default:
		buf.PutByte('"')
		appendDuration(buf, d)
		buf.PutByte('"')
	}
}

func appendJSONFloat(buf *membuf.Buffer, f float64, bitSize int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		buf.WriteRaw(jsonNull)
		return
	}
	var tmp [32]byte
	buf.WriteRaw(strconv.AppendFloat(tmp[:0], f, 'g', -1, bitSize))
}

func appendJSONField(buf *membuf.Buffer, f *root.Field, opts Options) {
	buf.PutByte(',')
	appendQuoted(buf, f.K)
	buf.PutByte(':')

	switch f.Kind {
	case root.KindString:
		appendQuoted(buf, f.Str)
	case root.KindInt64:
		appendInt64(buf, f.Int64)
	case root.KindUint64:
		appendUint64(buf, f.Uint64)
	case root.KindFloat64:
		appendJSONFloat(buf, f.Float64, 64)
	case root.KindBool:
		appendBool(buf, f.Bool)
	case root.KindDuration:
		appendJSONDuration(buf, f.Dur, opts)
	case root.KindTime:
		appendJSONTime(buf, f.Time, opts)
	case root.KindError:
		if f.Err != nil {
			appendQuoted(buf, f.Err.Error())
		} else {
			buf.WriteRaw(jsonNull)
		}
	case root.KindBytes:
		appendBase64(buf, f.Bytes)
	case root.KindPayload:
		appendJSONPayload(buf, f.Bytes, f.Enc)
	case root.KindAny:
		appendJSONAny(buf, f.Any, opts)
	default:
		buf.WriteRaw(jsonNull)
	}
}

func appendJSONAny(buf *membuf.Buffer, v any, opts Options) {
	switch v := v.(type) {
	case nil:
		buf.WriteRaw(jsonNull)
	case RawJSON:
		if len(v) == 0 {
			buf.WriteString(`""`)
		} else {
			buf.WriteRaw(v)
		}
	case time.Time:
		appendJSONTime(buf, v, opts)
	case time.Duration:
		appendJSONDuration(buf, v, opts)
	case json.Marshaler:
		if data, err := v.MarshalJSON(); err == nil {
			buf.WriteRaw(data)
		} else {
			buf.WriteRaw(jsonNull)
		}
	case string:
		appendQuoted(buf, v)
	case []byte:
		appendBase64(buf, v)
	case bool:
		appendBool(buf, v)
	case int:
		appendInt64(buf, int64(v))
	case int32:
		appendInt64(buf, int64(v))
	case int64:
		appendInt64(buf, v)
	case uint:
		appendUint64(buf, uint64(v))
	case uint32:
		appendUint64(buf, uint64(v))
	case uint64:
		appendUint64(buf, v)
	case float32:
		appendJSONFloat(buf, float64(v), 32)
	case float64:
		appendJSONFloat(buf, v, 64)
	default:
		if data, err := json.Marshal(v); err == nil {
			buf.WriteRaw(data)
		} else {
			buf.WriteRaw(jsonNull)
		}
	}
}
