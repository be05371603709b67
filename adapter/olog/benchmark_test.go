package olog

import (
	"io"
	"testing"
	"time"

	root "github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/render"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Text mode benchmarks

func BenchmarkAdapter_Text_5Fields(b *testing.B) {
	a := New(discardWriter{}, Options{Format: FormatText})
	at := time.Date(2024, 12, 31, 23, 59, 59, 1, time.UTC)
	fields := []root.Field{
		root.FStr("a", "b"),
		root.FInt("i", 42),
		root.FBool("ok", true),
		root.FDur("dur", time.Millisecond),
		root.FFloat("f", 3.14),
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Log(root.LevelInfo, "bench", at, fields)
	}
}

func BenchmarkAdapter_Text_WithBound(b *testing.B) {
	a := New(discardWriter{}, Options{Format: FormatText})
	a2 := a.With([]root.Field{
		root.FStr("svc", "api"),
		root.FStr("ver", "1.0.0"),
	})
	at := time.Unix(0, 0).UTC()
	fields := []root.Field{
		root.FStr("flow", "f-0001"),
		root.FInt("tx", 200),
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a2.Log(root.LevelInfo, "tx logged", at, fields)
	}
}

func BenchmarkAdapter_Text_NoFields(b *testing.B) {
	a := New(io.Discard, Options{Format: FormatText})
	at := time.Now()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Log(root.LevelInfo, "ok", at, nil)
	}
}

// JSON mode benchmarks

func BenchmarkAdapter_JSON_5Fields(b *testing.B) {
	a := New(discardWriter{}, Options{Format: FormatJSON})
	at := time.Date(2024, 12, 31, 23, 59, 59, 1, time.UTC)
	fields := []root.Field{
		root.FStr("a", "b"),
		root.FInt("i", 42),
		root.FBool("ok", true),
		root.FDur("dur", time.Millisecond),
		root.FFloat("f", 3.14),
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Log(root.LevelInfo, "bench", at, fields)
	}
}

func BenchmarkAdapter_JSON_WithBound(b *testing.B) {
	a := New(discardWriter{}, Options{Format: FormatJSON})
	a2 := a.With([]root.Field{
		root.FStr("svc", "api"),
		root.FStr("ver", "1.0.0"),
	})
	at := time.Unix(0, 0).UTC()
	fields := []root.Field{
		root.FStr("flow", "f-0001"),
		root.FInt("tx", 200),
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a2.Log(root.LevelInfo, "tx logged", at, fields)
	}
}

func BenchmarkAdapter_JSON_NoFields(b *testing.B) {
	a := New(io.Discard, Options{Format: FormatJSON})
	at := time.Now()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Log(root.LevelInfo, "ok", at, nil)
	}
}

// Payload benchmarks

func benchPayload(b *testing.B, format Format, enc render.Encoding) {
	a := New(discardWriter{}, Options{Format: format})
	at := time.Unix(0, 0).UTC()
	p := make([]byte, 512)
	for i := range p {
		p[i] = byte(i * 7)
	}
	fields := []root.Field{
		root.FStr("flow", "f-0001"),
		root.FPayload("data", render.Raw(p), enc),
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Log(root.LevelInfo, "tx logged", at, fields)
	}
}

func BenchmarkAdapter_Text_PayloadMixed(b *testing.B) { benchPayload(b, FormatText, render.EncodingMixed) }
func BenchmarkAdapter_Text_PayloadHex(b *testing.B)   { benchPayload(b, FormatText, render.EncodingHex) }
func BenchmarkAdapter_JSON_PayloadMixed(b *testing.B) { benchPayload(b, FormatJSON, render.EncodingMixed) }
