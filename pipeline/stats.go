package pipeline

import "sync/atomic"

type stats struct {
	records       atomic.Uint64
	bytes         atomic.Uint64
	written       atomic.Uint64
	truncated     atomic.Uint64
	dropped       atomic.Uint64
	expansions    atomic.Uint64
	allocFailures atomic.Uint64
	sinkErrors    atomic.Uint64
}

// Stats is a point-in-time counters snapshot.
type Stats struct {
	Records       uint64 // lines written
	Bytes         uint64 // payload bytes kept
	Written       uint64 // bytes accepted by the sink
	Truncated     uint64 // records cut at MaxCapacity or by a failed Expand
	Dropped       uint64 // payload bytes lost to truncation
	Expansions    uint64
	AllocFailures uint64
	SinkErrors    uint64
}

func (s *stats) snapshot() Stats {
	return Stats{
		Records:       s.records.Load(),
		Bytes:         s.bytes.Load(),
		Written:       s.written.Load(),
		Truncated:     s.truncated.Load(),
		Dropped:       s.dropped.Load(),
		Expansions:    s.expansions.Load(),
		AllocFailures: s.allocFailures.Load(),
		SinkErrors:    s.sinkErrors.Load(),
	}
}
