package membuf

import (
	"math"
	"strconv"
	"time"
)

const upperHex = "0123456789ABCDEF"

type partKind uint8

const (
	partStr partKind = iota + 1
	partBytes
	partInt
	partUint
	partHex
	partByte
	partBool
	partFloat
	partDur
	partTime
)

// Part is one typed piece of a Compose call.
type Part struct {
	kind partKind
	s    string
	b    []byte
	i    int64
	u    uint64
	f    float64
	t    time.Time
}

func Str(s string) Part        { return Part{kind: partStr, s: s} }
func Bytes(p []byte) Part      { return Part{kind: partBytes, b: p} }
func Int(v int) Part           { return Part{kind: partInt, i: int64(v)} }
func Int64(v int64) Part       { return Part{kind: partInt, i: v} }
func Uint(v uint64) Part       { return Part{kind: partUint, u: v} }
func Byte(c byte) Part         { return Part{kind: partByte, u: uint64(c)} }
func Bool(v bool) Part         { return Part{kind: partBool, u: boolBit(v)} }
func Float(v float64) Part     { return Part{kind: partFloat, f: v} }
func Dur(d time.Duration) Part { return Part{kind: partDur, i: int64(d)} }
func Time(t time.Time) Part    { return Part{kind: partTime, t: t} }

// Hex renders v in uppercase hexadecimal without a prefix.
func Hex(v uint64) Part { return Part{kind: partHex, u: v} }

func boolBit(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// Compose renders parts into the remaining space, in order, and returns
// the number of bytes written. It truncates exactly like WriteRaw.
func (b *Buffer) Compose(parts ...Part) int {
	var scratch [64]byte
	total := 0
	for i := range parts {
		p := &parts[i]
		switch p.kind {
		case partStr:
			total += b.WriteString(p.s)
		case partBytes:
			total += b.WriteRaw(p.b)
		case partByte:
			total += b.PutByte(byte(p.u))
		default:
			total += b.WriteRaw(p.appendTo(scratch[:0]))
		}
	}
	return total
}

func (p *Part) appendTo(dst []byte) []byte {
	switch p.kind {
	case partInt:
		return strconv.AppendInt(dst, p.i, 10)
	case partUint:
		return strconv.AppendUint(dst, p.u, 10)
	case partHex:
		return appendUpperHex(dst, p.u)
	case partBool:
		return strconv.AppendBool(dst, p.u == 1)
	case partFloat:
		if math.IsNaN(p.f) {
			return append(dst, "NaN"...)
		}
		if math.IsInf(p.f, 0) {
			if p.f > 0 {
				return append(dst, "+Inf"...)
			}
			return append(dst, "-Inf"...)
		}
		return strconv.AppendFloat(dst, p.f, 'g', -1, 64)
	case partDur:
		return appendDuration(dst, time.Duration(p.i))
	case partTime:
		return p.t.AppendFormat(dst, time.RFC3339Nano)
	}
	return dst
}

func appendUpperHex(dst []byte, v uint64) []byte {
	if v == 0 {
		return append(dst, '0')
	}
	var tmp [16]byte
	i := len(tmp)
	for v > 0 {
		i--
		tmp[i] = upperHex[v&0xF]
		v >>= 4
	}
	return append(dst, tmp[i:]...)
}

// appendDuration appends d in the form time.Duration.String uses, without
// building an intermediate string.
func appendDuration(dst []byte, d time.Duration) []byte {
	if d == 0 {
		return append(dst, "0s"...)
	}
	var buf [32]byte
	w := len(buf)

	u := uint64(d)
	neg := d < 0
	if neg {
		u = -u
	}

	if u < uint64(time.Second) {
		var prec int
		w--
		buf[w] = 's'
		w--
		switch {
		case u < uint64(time.Microsecond):
			buf[w] = 'n'
		case u < uint64(time.Millisecond):
			prec = 3
			// micro sign is two bytes
			w--
			copy(buf[w:], "µ")
		default:
			prec = 6
			buf[w] = 'm'
		}
		w, u = fracDigits(buf[:w], u, prec)
		w = intDigits(buf[:w], u)
	} else {
		w--
		buf[w] = 's'
		w, u = fracDigits(buf[:w], u, 9)
		w = intDigits(buf[:w], u%60)
		u /= 60
		if u > 0 {
			w--
			buf[w] = 'm'
			w = intDigits(buf[:w], u%60)
			u /= 60
			if u > 0 {
				w--
				buf[w] = 'h'
				w = intDigits(buf[:w], u)
			}
		}
	}
	if neg {
		w--
		buf[w] = '-'
	}
	return append(dst, buf[w:]...)
}

// fracDigits writes the low prec digits of v as a fraction, dropping
// trailing zeros, at the end of buf. It returns the new start and v/10^prec.
func fracDigits(buf []byte, v uint64, prec int) (int, uint64) {
	w := len(buf)
	nonzero := false
	for i := 0; i < prec; i++ {
		digit := v % 10
		nonzero = nonzero || digit != 0
		if nonzero {
			w--
			buf[w] = byte(digit) + '0'
		}
		v /= 10
	}
	if nonzero {
		w--
		buf[w] = '.'
	}
	return w, v
}

func intDigits(buf []byte, v uint64) int {
	w := len(buf)
	if v == 0 {
		w--
		buf[w] = '0'
		return w
	}
	for v > 0 {
		w--
		buf[w] = byte(v%10) + '0'
		v /= 10
	}
	return w
}
