package olog

import (
	"encoding/base64"
	"math"
	"strconv"
	"time"

	"github.com/trickstertwo/pktlog/membuf"
)

const digits = "0123456789abcdef"

var (
	jsonTrue  = []byte("true")
	jsonFalse = []byte("false")
	jsonNull  = []byte("null")
)

func appendInt64(buf *membuf.Buffer, v int64) {
	var tmp [20]byte
	buf.WriteRaw(strconv.AppendInt(tmp[:0], v, 10))
}

func appendUint64(buf *membuf.Buffer, v uint64) {
	var tmp [20]byte
	buf.WriteRaw(strconv.AppendUint(tmp[:0], v, 10))
}

func appendFloat64(buf *membuf.Buffer, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		if math.IsNaN(f) {
			buf.WriteString("NaN")
		} else if math.IsInf(f, 1) {
			buf.WriteString("+Inf")
		} else {
			buf.WriteString("-Inf")
		}
		return
	}
	var tmp [32]byte
	buf.WriteRaw(strconv.AppendFloat(tmp[:0], f, 'g', -1, 64))
}

func appendDuration(buf *membuf.Buffer, d time.Duration) { buf.Compose(membuf.Dur(d)) }

func appendRFC3339Nano(buf *membuf.Buffer, t time.Time) {
	var tmp [64]byte
	buf.WriteRaw(t.AppendFormat(tmp[:0], time.RFC3339Nano))
}

func appendTimeLayout(buf *membuf.Buffer, t time.Time, layout string) {
	var tmp [64]byte
	buf.WriteRaw(t.AppendFormat(tmp[:0], layout))
}

// appendBase64 encodes in fixed blocks so no scratch grows with the input.
func appendBase64(buf *membuf.Buffer, data []byte) {
	buf.PutByte('"')
	var out [64]byte
	for len(data) >= 48 {
		base64.StdEncoding.Encode(out[:], data[:48])
		buf.WriteRaw(out[:])
		data = data[48:]
	}
	if len(data) > 0 {
		n := base64.StdEncoding.EncodedLen(len(data))
		base64.StdEncoding.Encode(out[:n], data)
		buf.WriteRaw(out[:n])
	}
	buf.PutByte('"')
}
