package pktlog

import "time"

// Adapter is the logging backend Strategy.
// Log receives the single authoritative timestamp 'at' from the Logger so the
// adapter and observers agree on it. Field byte slices, payloads included,
// are only valid until Log returns.
type Adapter interface {
	Log(level Level, msg string, at time.Time, fields []Field)
	With(fields []Field) Adapter // return a child adapter with bound fields (do not mutate receiver)
}
