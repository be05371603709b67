package pipeline

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/trickstertwo/pktlog"
	"github.com/trickstertwo/pktlog/membuf"
	"github.com/trickstertwo/pktlog/render"
)

const (
	DefaultInitialCapacity = 4 * 1024
	DefaultGrowBy          = 4 * 1024
	DefaultMaxCapacity     = 1024 * 1024

	headerCapacity = 256
	// headerFixed bounds every header byte except the flow name.
	headerFixed = 96
)

// Config is an explicit, code-first configuration for a Pool. Zero fields
// take the defaults noted below.
type Config struct {
	Workers         int             // default 1
	InitialCapacity int             // default DefaultInitialCapacity
	GrowBy          int             // minimum growth step; default DefaultGrowBy
	MaxCapacity     int             // hard cap per payload; default DefaultMaxCapacity
	Encoding        render.Encoding // default render.EncodingMixed
	Sink            io.Writer       // default os.Stdout
	Logger          *pktlog.Logger  // diagnostics; default pktlog.Nop()

	// Allocator backs every worker buffer. A shared *membuf.Budget bounds
	// the pool's total payload memory. Default: heap.
	Allocator membuf.Allocator
}

var ErrConfig = errors.New("pipeline: invalid config")

func (c *Config) normalize() error {
	if c.Workers < 0 || c.InitialCapacity < 0 || c.GrowBy < 0 || c.MaxCapacity < 0 {
		return errors.Wrap(ErrConfig, "negative size")
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.InitialCapacity == 0 {
		c.InitialCapacity = DefaultInitialCapacity
	}
	if c.GrowBy == 0 {
		c.GrowBy = DefaultGrowBy
	}
	if c.MaxCapacity == 0 {
		c.MaxCapacity = max(DefaultMaxCapacity, c.InitialCapacity)
	}
	if c.MaxCapacity > membuf.MaxCapacity {
		return errors.Wrapf(ErrConfig, "max capacity %d exceeds %d", c.MaxCapacity, membuf.MaxCapacity)
	}
	if c.InitialCapacity > c.MaxCapacity {
		return errors.Wrapf(ErrConfig, "initial capacity %d above max %d", c.InitialCapacity, c.MaxCapacity)
	}
	if c.Encoding == 0 {
		c.Encoding = render.EncodingMixed
	}
	if c.Encoding.String() == "unknown" {
		return errors.Wrapf(render.ErrEncoding, "%d", c.Encoding)
	}
	if c.Sink == nil {
		c.Sink = os.Stdout
	}
	if c.Logger == nil {
		c.Logger = pktlog.Nop()
	}
	if c.Allocator == nil {
		c.Allocator = membuf.HeapAllocator{}
	}
	return nil
}
