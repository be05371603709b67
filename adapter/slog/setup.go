package slog

import (
	"io"
	"log/slog"
	"os"

	root "github.com/trickstertwo/pktlog"
)

// Format selects the slog handler format.
type Format uint8

const (
	FormatJSON Format = iota + 1
	FormatText
)

// Config is an explicit, code-first configuration for slog + pktlog.
type Config struct {
	Writer             io.Writer            // default: os.Stderr
	MinLevel           root.Level           // shared by pktlog and the handler
	Format             Format               // JSON (default) or Text
	HandlerOptions     *slog.HandlerOptions // Level is managed through a LevelVar
	TimestampFieldName string               // default "ts"
}

// Build returns the slog adapter described by cfg.
func Build(cfg Config) *Adapter {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	var opts slog.HandlerOptions
	if cfg.HandlerOptions != nil {
		opts = *cfg.HandlerOptions
	}
	lv := new(slog.LevelVar)
	lv.Set(slog.Level(cfg.MinLevel))
	opts.Level = lv

	var h slog.Handler
	if cfg.Format == FormatText {
		h = slog.NewTextHandler(w, &opts)
	} else {
		h = slog.NewJSONHandler(w, &opts)
	}
	return NewWithTimestampKey(slog.New(h), lv, cfg.TimestampFieldName)
}

// Use builds a slog-backed logger, sets it as global and returns it.
func Use(cfg Config) *root.Logger {
	return root.UseAdapter(Build(cfg), cfg.MinLevel)
}
