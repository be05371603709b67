package olog

import (
	"unicode/utf8"

	"github.com/trickstertwo/pktlog/membuf"
	"github.com/trickstertwo/pktlog/render"
)

func appendQuoted(buf *membuf.Buffer, s string) {
	buf.PutByte('"')
	appendQuotedContent(buf, s)
	buf.PutByte('"')
}

func appendQuotedContent(buf *membuf.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c >= 0x20 && c != '\\' && c != '"' && c < 0x80 {
			i++
			continue
		}
		if start < i {
			buf.WriteString(s[start:i])
		}
		if c < 0x80 {
			switch c {
			case '\\', '"':
				buf.PutByte('\\')
				buf.PutByte(c)
			case '\n':
				buf.WriteString(`\n`)
			case '\r':
				buf.WriteString(`\r`)
			case '\t':
				buf.WriteString(`\t`)
			case '\b':
				buf.WriteString(`\b`)
			case '\f':
				buf.WriteString(`\f`)
			default:
				buf.WriteString(`\u00`)
				buf.PutByte(digits[c>>4])
				buf.PutByte(digits[c&0xF])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf.WriteString(`\uFFFD`)
			i++
			start = i
			continue
		}
		if r == '\u2028' || r == '\u2029' {
			if r == '\u2028' {
				buf.WriteString(`\u2028`)
			} else {
				buf.WriteString(`\u2029`)
			}
			i += size
			start = i
			continue
		}
		i += size
	}
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

func appendTextString(buf *membuf.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x1F || c == ' ' || c == '"' {
			appendQuoted(buf, s)
			return
		}
	}
	buf.WriteString(s)
}

// appendTextPayload prints a payload as a bare token when it has no
// spaces or quotes, otherwise quoted. Mixed and hex output never contain
// control bytes, so quoting only has to deal with '"' and '\'.
func appendTextPayload(buf *membuf.Buffer, p []byte, enc render.Encoding) {
	switch enc {
	case render.EncodingHex:
		_, _ = render.Hex(bufWriter{buf}, render.Raw(p))
	case render.EncodingString:
		appendTextString(buf, string(p))
	default:
		if !needsTextQuote(p) {
			_, _ = render.Mixed(bufWriter{buf}, render.Raw(p))
			return
		}
		buf.PutByte('"')
		_, _ = render.Mixed(quoteWriter{buf}, render.Raw(p))
		buf.PutByte('"')
	}
}

// appendJSONPayload always emits a JSON string.
func appendJSONPayload(buf *membuf.Buffer, p []byte, enc render.Encoding) {
	switch enc {
	case render.EncodingHex:
		buf.PutByte('"')
		_, _ = render.Hex(bufWriter{buf}, render.Raw(p))
		buf.PutByte('"')
	case render.EncodingString:
		appendQuoted(buf, string(p))
	default:
		buf.PutByte('"')
		_, _ = render.Mixed(quoteWriter{buf}, render.Raw(p))
		buf.PutByte('"')
	}
}

func needsTextQuote(p []byte) bool {
	for _, c := range p {
		if c == ' ' || c == '"' || c == '\\' {
			return true
		}
	}
	return false
}
