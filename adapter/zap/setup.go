package zap

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trickstertwo/xclock"

	root "github.com/trickstertwo/pktlog"
)

// Config is an explicit, code-first configuration for zap + pktlog.
type Config struct {
	Writer             io.Writer // default: os.Stderr
	MinLevel           root.Level
	Console            bool                  // zapcore.NewConsoleEncoder instead of JSON
	EncoderConfig      zapcore.EncoderConfig // zero value selects the defaults below
	Caller             bool
	CallerSkip         int    // default 2
	TimestampFieldName string // default "ts"
}

func defaultEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		LevelKey:       "level",
		MessageKey:     "message",
		CallerKey:      "caller",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// Build returns the zap adapter described by cfg.
func Build(cfg Config) *Adapter {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	if cfg.Caller && cfg.CallerSkip <= 0 {
		cfg.CallerSkip = 2
	}

	encCfg := cfg.EncoderConfig
	if encCfg.LevelKey == "" && encCfg.MessageKey == "" && encCfg.EncodeTime == nil {
		encCfg = defaultEncoderConfig()
	}
	// pktlog supplies the timestamp
	encCfg.TimeKey = ""

	var enc zapcore.Encoder
	if cfg.Console {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	al := zap.NewAtomicLevelAt(toZapLevel(cfg.MinLevel))
	core := zapcore.NewCore(enc, zapcore.AddSync(w), al)

	opts := []zap.Option{zap.AddStacktrace(zapcore.FatalLevel + 1)}
	if cfg.Caller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(cfg.CallerSkip))
	}
	return NewWithTimestampKey(zap.New(core, opts...), &al, cfg.TimestampFieldName)
}

// Use builds a zap-backed logger bound to xclock.Default(), sets it as the
// global logger and returns it.
func Use(cfg Config) *root.Logger {
	logger, err := root.NewBuilder().
		WithAdapter(Build(cfg)).
		WithMinLevel(cfg.MinLevel).
		WithClock(xclock.Default()).
		Build()
	if err != nil {
		panic(err)
	}
	root.SetGlobal(logger)
	return logger
}
