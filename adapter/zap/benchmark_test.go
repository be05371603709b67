package zap

import (
	"io"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	root "github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/render"
)

func newBenchZap() *zap.Logger {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		LevelKey:       "level",
		MessageKey:     "message",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(io.Discard), zapcore.InfoLevel)
	return zap.New(core)
}

func benchAdapter(b *testing.B, zl *zap.Logger, fields []root.Field, bound []root.Field) {
	var a root.Adapter = New(zl)
	if len(bound) > 0 {
		a = a.With(bound)
	}

	at := time.Date(2024, 12, 31, 23, 59, 59, 123456789, time.UTC)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Log(root.LevelInfo, "bench", at, fields)
	}
}

func BenchmarkZapAdapter_JSON_5Fields(b *testing.B) {
	zl := newBenchZap()
	fields := []root.Field{
		root.FStr("a", "b"),
		root.FInt("i", 42),
		root.FBool("ok", true),
		root.FDur("dur", time.Millisecond),
		root.FFloat("f", 3.14),
	}
	benchAdapter(b, zl, fields, nil)
}

func BenchmarkZapAdapter_JSON_WithBound(b *testing.B) {
	zl := newBenchZap()
	fields := []root.Field{
		root.FStr("a", "b"),
		root.FInt("i", 42),
	}
	bound := []root.Field{
		root.FStr("svc", "api"),
		root.FStr("ver", "1.0.0"),
		root.FStr("region", "eu-west-1"),
	}
	benchAdapter(b, zl, fields, bound)
}

func BenchmarkZapAdapter_JSON_PayloadMixed(b *testing.B) {
	p := make([]byte, 512)
	for i := range p {
		p[i] = byte(i * 7)
	}
	fields := []root.Field{
		root.FStr("flow", "f-0001"),
		root.FPayload("data", render.Raw(p), render.EncodingMixed),
	}
	benchAdapter(b, newBenchZap(), fields, nil)
}
