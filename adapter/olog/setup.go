package olog

import (
	"io"
	"os"

	root "github.com/trickstertwo/pktlog"
)

// Config is an explicit, code-first configuration for the built-in adapter.
// Use provides a single-call setup with no envs or side-imports.
type Config struct {
	// Writer routes all logs to this writer when WriterFactory is nil.
	// Defaults to os.Stdout.
	Writer io.Writer

	// WriterFactory optionally routes logs by level or destination.
	// When set, it takes precedence over Writer.
	WriterFactory WriterFactory

	MinLevel       root.Level
	Format         Format
	ErrorHandler   ErrorHandler
	Async          bool
	AsyncQueueSize int
	AsyncPolicy    AsyncDropPolicy
	TimeFormat     string
	JSONTime       JSONTimeEncoding
	JSONDuration   JSONDurationEncoding
	BufferSize     int
	MaxRecordSize  int

	Metrics MetricsCollector
}

// Build returns the adapter described by cfg without touching the global logger.
func Build(cfg Config) *Adapter {
	opts := Options{
		Format:         cfg.Format,
		MinLevel:       cfg.MinLevel,
		ErrorHandler:   cfg.ErrorHandler,
		Async:          cfg.Async,
		AsyncQueueSize: cfg.AsyncQueueSize,
		AsyncPolicy:    cfg.AsyncPolicy,
		TimeFormat:     cfg.TimeFormat,
		JSONTime:       cfg.JSONTime,
		JSONDuration:   cfg.JSONDuration,
		BufferSize:     cfg.BufferSize,
		MaxRecordSize:  cfg.MaxRecordSize,
	}

	var ad *Adapter
	if cfg.WriterFactory != nil {
		ad = NewWithWriterFactory(cfg.WriterFactory, opts)
	} else {
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		ad = New(w, opts)
	}
	if cfg.Metrics != nil {
		ad.SetMetricsCollector(cfg.Metrics)
	}
	return ad
}

// Use builds a Logger backed by the built-in adapter, sets it as the
// global logger and returns it.
func Use(cfg Config) *root.Logger {
	// keep the facade filter and the adapter filter aligned
	return root.UseAdapter(Build(cfg), cfg.MinLevel)
}
