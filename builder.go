package pktlog

import (
	"github.com/pkg/errors"
	"github.com/trickstertwo/xclock"
)

var ErrNoAdapter = errors.New("pktlog: no adapter configured")

// Config for constructing a Logger.
type Config struct {
	Adapter   Adapter
	MinLevel  Level
	Observers []Observer
	Clock     xclock.Clock // optional; nil follows xclock.Default() at each emit
}

// Builder separates construction from representation.
type Builder struct {
	cfg Config
}

func NewBuilder() *Builder {
	return &Builder{cfg: Config{MinLevel: LevelInfo}}
}

func (b *Builder) WithAdapter(a Adapter) *Builder {
	b.cfg.Adapter = a
	return b
}

func (b *Builder) WithMinLevel(l Level) *Builder {
	b.cfg.MinLevel = l
	return b
}

func (b *Builder) WithClock(c xclock.Clock) *Builder {
	b.cfg.Clock = c
	return b
}

func (b *Builder) AddObserver(o Observer) *Builder {
	b.cfg.Observers = append(b.cfg.Observers, o)
	return b
}

// Build constructs the Logger.
func (b *Builder) Build() (*Logger, error) {
	if b.cfg.Adapter == nil {
		return nil, ErrNoAdapter
	}
	b.applyAdapterConfig(b.cfg.Adapter)
	return newLogger(b.cfg), nil
}

// adapterLevelSetter is an optional interface adapters can implement
// to receive min-level configuration from the Builder.
type adapterLevelSetter interface {
	SetMinLevel(Level)
}

func (b *Builder) applyAdapterConfig(a Adapter) {
	if ls, ok := a.(adapterLevelSetter); ok {
		ls.SetMinLevel(b.cfg.MinLevel)
	}
}
