package zerolog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/trickstertwo/xclock"

	root "github.com/trickstertwo/pktlog"
)

// Config is an explicit, code-first configuration for zerolog + pktlog.
type Config struct {
	Writer             io.Writer // default: os.Stderr
	MinLevel           root.Level
	Console            bool   // pretty console output instead of JSON
	ConsoleTimeFormat  string // only used if Console==true; default time.RFC3339Nano
	NoColor            bool   // console only
	Caller             bool
	CallerSkip         int    // default 5
	TimestampFieldName string // default "ts"
}

// Build returns the zerolog adapter described by cfg.
func Build(cfg Config) *Adapter {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	if cfg.TimestampFieldName == "" {
		cfg.TimestampFieldName = "ts"
	}
	if cfg.Caller && cfg.CallerSkip <= 0 {
		cfg.CallerSkip = 5
	}

	var zl zerolog.Logger
	if cfg.Console {
		// the console's leading time column reads our ts key
		zerolog.TimestampFieldName = cfg.TimestampFieldName
		cw := zerolog.ConsoleWriter{Out: w, NoColor: cfg.NoColor, TimeFormat: cfg.ConsoleTimeFormat}
		if cw.TimeFormat == "" {
			cw.TimeFormat = time.RFC3339Nano
		}
		if !cfg.Caller {
			cw.PartsExclude = append(cw.PartsExclude, zerolog.CallerFieldName)
		}
		zl = zerolog.New(cw)
	} else {
		zl = zerolog.New(w)
	}

	if cfg.Caller {
		zerolog.CallerSkipFrameCount = cfg.CallerSkip
		zl = zl.With().Caller().Logger()
	}

	ad := New(zl)
	ad.SetMinLevel(cfg.MinLevel)
	return ad
}

// Use builds a zerolog-backed logger bound to xclock.Default(), sets it as
// the global logger and returns it.
func Use(cfg Config) *root.Logger {
	logger, err := root.NewBuilder().
		WithAdapter(Build(cfg)).
		WithMinLevel(cfg.MinLevel).
		WithClock(xclock.Default()).
		Build()
	if err != nil {
		// Build only fails on a nil adapter
		panic(err)
	}
	root.SetGlobal(logger)
	return logger
}
