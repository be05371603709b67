package render

import (
	"io"

	"github.com/pkg/errors"
)

// Delimiter opens and closes an escape token in mixed output.
const Delimiter = '|'

const upperHex = "0123456789ABCDEF"

// ErrMalformed is returned by DecodeMixed for input no encoder produces.
var ErrMalformed = errors.New("render: malformed mixed encoding")

// IsPrintable reports whether mixed output carries c literally: visible
// ASCII and space, except the delimiter. DEL, control bytes and bytes
// >= 0x80 are escaped.
func IsPrintable(c byte) bool {
	return c >= 0x20 && c <= 0x7E && c != Delimiter
}

// Mixed writes src with printable bytes as-is and every other byte as
// |XX| (uppercase hex).
func Mixed(w io.Writer, src Source) (int64, error) {
	p := src.Bytes()
	s := sink{w: w}

	var chunk [chunkSize]byte
	k := 0
	for _, c := range p {
		if k+4 > len(chunk) {
			if err := s.write(chunk[:k]); err != nil {
				return s.n, err
			}
			k = 0
		}
		if IsPrintable(c) {
			chunk[k] = c
			k++
			continue
		}
		chunk[k] = Delimiter
		chunk[k+1] = upperHex[c>>4]
		chunk[k+2] = upperHex[c&0xF]
		chunk[k+3] = Delimiter
		k += 4
	}
	if err := s.write(chunk[:k]); err != nil {
		return s.n, err
	}
	return s.n, nil
}

// AppendMixed appends the mixed encoding of p to dst.
func AppendMixed(dst, p []byte) []byte {
	start := 0
	for i, c := range p {
		if IsPrintable(c) {
			continue
		}
		dst = append(dst, p[start:i]...)
		dst = AppendEscape(dst, c)
		start = i + 1
	}
	return append(dst, p[start:]...)
}

// AppendEscape appends c as an |XX| token whether or not it is printable.
func AppendEscape(dst []byte, c byte) []byte {
	return append(dst, Delimiter, upperHex[c>>4], upperHex[c&0xF], Delimiter)
}

// MixedLen returns the length of the mixed encoding of p.
func MixedLen(p []byte) int {
	n := len(p)
	for _, c := range p {
		if !IsPrintable(c) {
			n += 3
		}
	}
	return n
}

// DecodeMixed appends the bytes encoded by src to dst. Only canonical
// input is accepted: literal bytes must be printable and tokens must be
// |XX| with two hex digits.
func DecodeMixed(dst, src []byte) ([]byte, error) {
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != Delimiter {
			if !IsPrintable(c) {
				return dst, errors.Wrapf(ErrMalformed, "unescaped byte 0x%02X at offset %d", c, i)
			}
			dst = append(dst, c)
			continue
		}
		if i+3 >= len(src) || src[i+3] != Delimiter {
			return dst, errors.Wrapf(ErrMalformed, "unterminated escape at offset %d", i)
		}
		hi, ok1 := unhex(src[i+1])
		lo, ok2 := unhex(src[i+2])
		if !ok1 || !ok2 {
			return dst, errors.Wrapf(ErrMalformed, "bad hex digits at offset %d", i+1)
		}
		dst = append(dst, hi<<4|lo)
		i += 3
	}
	return dst, nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
