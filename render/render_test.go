package render

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trickstertwo/pktlog/membuf"
)

var errBoom = errors.New("boom")

// limitWriter accepts up to limit bytes, then fails.
type limitWriter struct {
	buf       bytes.Buffer
	limit     int
	calls     int
	failed    bool
	afterFail int
}

func (w *limitWriter) Write(p []byte) (int, error) {
	w.calls++
	if w.failed {
		w.afterFail++
	}
	room := w.limit - w.buf.Len()
	if room >= len(p) {
		return w.buf.Write(p)
	}
	if room > 0 {
		w.buf.Write(p[:room])
	}
	w.failed = true
	return max(room, 0), errBoom
}

// shortWriter accepts half of every write without reporting an error.
type shortWriter struct{ bytes.Buffer }

func (w *shortWriter) Write(p []byte) (int, error) {
	return w.Buffer.Write(p[:len(p)/2])
}

func fill(t *testing.T, capacity int, p []byte) *membuf.Buffer {
	t.Helper()
	b, err := membuf.New(capacity)
	require.NoError(t, err)
	require.Equal(t, len(p), b.WriteRaw(p))
	return b
}

func allBytes() []byte {
	p := make([]byte, 256)
	for i := range p {
		p[i] = byte(i)
	}
	return p
}

func TestMixed_Scenario(t *testing.T) {
	b := fill(t, 64, []byte("onetwo\xEFthree\xEDfive"))

	var out bytes.Buffer
	n, err := Mixed(&out, b)
	require.NoError(t, err)
	assert.Equal(t, "onetwo|EF|three|ED|five", out.String())
	assert.Equal(t, int64(out.Len()), n)
}

func TestMixed_PrintableBoundary(t *testing.T) {
	cases := map[byte]string{
		0x00: "|00|",
		0x1F: "|1F|",
		0x20: " ",
		'A':  "A",
		0x7C: "|7C|",
		0x7E: "~",
		0x7F: "|7F|",
		0x80: "|80|",
		0xFF: "|FF|",
	}
	for c, want := range cases {
		var out bytes.Buffer
		_, err := Mixed(&out, Raw{c})
		require.NoError(t, err)
		assert.Equal(t, want, out.String(), "byte 0x%02X", c)
	}
}

func TestMixed_RoundTrip(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("plain text"),
		[]byte("|"),
		[]byte("a|7C|b"),
		[]byte("||EF||"),
		allBytes(),
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		p := make([]byte, rng.Intn(2000))
		rng.Read(p)
		inputs = append(inputs, p)
	}

	for _, in := range inputs {
		var out bytes.Buffer
		_, err := Mixed(&out, Raw(in))
		require.NoError(t, err)
		assert.Equal(t, MixedLen(in), out.Len())
		assert.Equal(t, out.Bytes(), AppendMixed(nil, in))

		got, err := DecodeMixed(nil, out.Bytes())
		require.NoError(t, err)
		assert.True(t, bytes.Equal(in, got), "round trip of %q", in)
	}
}

func TestDecodeMixed_Malformed(t *testing.T) {
	for _, in := range []string{"|", "|E", "|EF", "|EFX", "|GG|", "a\nb", "\xEF"} {
		_, err := DecodeMixed(nil, []byte(in))
		assert.ErrorIs(t, err, ErrMalformed, "input %q", in)
	}
	got, err := DecodeMixed(nil, []byte("|ef|"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF}, got)
}

func TestHex_LengthAndAlphabet(t *testing.T) {
	in := allBytes()
	var out bytes.Buffer
	n, err := Hex(&out, Raw(in))
	require.NoError(t, err)
	assert.Equal(t, int64(2*len(in)), n)
	assert.Equal(t, 2*len(in), out.Len())
	for _, c := range out.Bytes() {
		assert.True(t, (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F'), "char %q", c)
	}
	assert.Equal(t, out.Bytes(), AppendHex(nil, in))

	out.Reset()
	_, err = Hex(&out, Raw("onetwo\xEF"))
	require.NoError(t, err)
	assert.Equal(t, "6F6E6574776FEF", out.String())
}

func TestString_Verbatim(t *testing.T) {
	b := fill(t, 32, []byte("GET /index.html"))
	var out bytes.Buffer
	n, err := String(&out, b)
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Equal(t, "GET /index.html", out.String())
}

func TestRender_SinkFailureStopsPass(t *testing.T) {
	in := bytes.Repeat([]byte{0x01}, 1000) // 4000 bytes of mixed output

	for _, enc := range []Encoding{EncodingMixed, EncodingString, EncodingHex} {
		w := &limitWriter{limit: 700}
		n, err := Render(w, Raw(in), enc)
		require.Error(t, err, enc.String())
		assert.ErrorIs(t, err, ErrSink)
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, int64(w.buf.Len()), n)

		var se *SinkError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, n, se.Written)
		assert.Zero(t, w.afterFail, "no writes after the sink failed")

		full := Append(nil, in, enc)
		assert.Equal(t, full[:w.buf.Len()], w.buf.Bytes(), "partial output must be a prefix")
	}
}

func TestRender_ShortWriteIsError(t *testing.T) {
	w := &shortWriter{}
	_, err := Render(w, Raw("abcdef"), EncodingString)
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.ErrorIs(t, err, ErrSink)
}

func TestRender_EmptyBufferWritesNothing(t *testing.T) {
	b, err := membuf.New(4)
	require.NoError(t, err)
	for _, enc := range []Encoding{EncodingMixed, EncodingString, EncodingHex} {
		w := &limitWriter{limit: 0}
		n, err := Render(w, b, enc)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Zero(t, w.calls)
	}
}

func TestRender_DoesNotMutateBuffer(t *testing.T) {
	b := fill(t, 32, []byte("a\x00b|c"))
	before := append([]byte(nil), b.Bytes()...)
	for _, enc := range []Encoding{EncodingMixed, EncodingString, EncodingHex} {
		_, err := Render(io.Discard, b, enc)
		require.NoError(t, err)
	}
	assert.Equal(t, before, b.Bytes())
	assert.Equal(t, 5, b.Len())
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{
		"mixed": EncodingMixed, "": EncodingMixed, "HEX": EncodingHex, " string ": EncodingString, "str": EncodingString,
	} {
		got, err := ParseEncoding(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseEncoding("base64")
	assert.ErrorIs(t, err, ErrEncoding)

	_, err = Render(io.Discard, Raw("x"), Encoding(9))
	assert.ErrorIs(t, err, ErrEncoding)
	assert.Equal(t, "unknown", Encoding(9).String())
}

func TestEncodedLen(t *testing.T) {
	in := []byte("ab\xFF|")
	assert.Equal(t, 10, EncodedLen(in, EncodingMixed))
	assert.Equal(t, 8, EncodedLen(in, EncodingHex))
	assert.Equal(t, 4, EncodedLen(in, EncodingString))
}

func BenchmarkMixed(b *testing.B) {
	p := make([]byte, 4096)
	rand.New(rand.NewSource(3)).Read(p)
	src := Raw(p)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Mixed(io.Discard, src)
	}
}
