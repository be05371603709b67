package render

import "io"

// Hex writes every byte of src as two uppercase hex digits.
func Hex(w io.Writer, src Source) (int64, error) {
	p := src.Bytes()
	s := sink{w: w}

	var chunk [chunkSize]byte
	k := 0
	for _, c := range p {
		if k+2 > len(chunk) {
			if err := s.write(chunk[:k]); err != nil {
				return s.n, err
			}
			k = 0
		}
		chunk[k] = upperHex[c>>4]
		chunk[k+1] = upperHex[c&0xF]
		k += 2
	}
	if err := s.write(chunk[:k]); err != nil {
		return s.n, err
	}
	return s.n, nil
}

func AppendHex(dst, p []byte) []byte {
	for _, c := range p {
		dst = append(dst, upperHex[c>>4], upperHex[c&0xF])
	}
	return dst
}

// String writes src verbatim and returns the count the sink accepted.
// Use it only for content already known to be printable.
func String(w io.Writer, src Source) (int, error) {
	s := sink{w: w}
	err := s.write(src.Bytes())
	return int(s.n), err
}
