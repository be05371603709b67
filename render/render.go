// Package render streams buffer contents to a sink in one of three textual
// encodings: mixed (printable bytes literal, everything else as |XX|),
// string (verbatim) and hex.
//
// Every encoder makes a single pass over the source and stages output in
// a fixed-size chunk, so memory use does not depend on the input length.
// A failing sink ends the pass at once; what was already written stays
// written.
package render

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Source is anything exposing a read-only byte view, such as
// *membuf.Buffer.
type Source interface {
	Bytes() []byte
}

// Raw adapts a plain byte slice to Source.
type Raw []byte

func (r Raw) Bytes() []byte { return r }

// Encoding selects the output form.
type Encoding uint8

const (
	EncodingMixed Encoding = iota + 1
	EncodingString
	EncodingHex
)

var ErrEncoding = errors.New("render: unknown encoding")

func (e Encoding) String() string {
	switch e {
	case EncodingMixed:
		return "mixed"
	case EncodingString:
		return "string"
	case EncodingHex:
		return "hex"
	default:
		return "unknown"
	}
}

// ParseEncoding maps "mixed", "string" or "hex" (any case) to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mixed", "":
		return EncodingMixed, nil
	case "string", "str":
		return EncodingString, nil
	case "hex":
		return EncodingHex, nil
	}
	return 0, errors.Wrapf(ErrEncoding, "%q", s)
}

// Render writes src to w using enc and returns the bytes the sink accepted.
func Render(w io.Writer, src Source, enc Encoding) (int64, error) {
	switch enc {
	case EncodingMixed:
		return Mixed(w, src)
	case EncodingString:
		n, err := String(w, src)
		return int64(n), err
	case EncodingHex:
		return Hex(w, src)
	}
	return 0, errors.Wrapf(ErrEncoding, "%d", enc)
}

// Append appends the encoding of p to dst.
func Append(dst, p []byte, enc Encoding) []byte {
	switch enc {
	case EncodingHex:
		return AppendHex(dst, p)
	case EncodingString:
		return append(dst, p...)
	default:
		return AppendMixed(dst, p)
	}
}

// EncodedLen returns the exact output size of p under enc.
func EncodedLen(p []byte, enc Encoding) int {
	switch enc {
	case EncodingHex:
		return 2 * len(p)
	case EncodingString:
		return len(p)
	default:
		return MixedLen(p)
	}
}
