package olog

import "sync/atomic"

type stats struct {
	loggedErrors atomic.Uint64
	dropped      atomic.Uint64
	truncated    atomic.Uint64
}

// StatsSnapshot is a point-in-time counters snapshot.
type StatsSnapshot struct {
	LoggedErrors uint64
	Dropped      uint64 // async entries discarded on a full queue
	Truncated    uint64 // records cut at MaxRecordSize
	Expansions   uint64 // record buffers grown to fit a record
}

func (s *stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		LoggedErrors: s.loggedErrors.Load(),
		Dropped:      s.dropped.Load(),
		Truncated:    s.truncated.Load(),
	}
}

func (s *stats) reset() {
	s.loggedErrors.Store(0)
	s.dropped.Store(0)
	s.truncated.Store(0)
}
