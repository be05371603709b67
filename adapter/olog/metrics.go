package olog

import root "github.com/trickstertwo/pktlog"

// MetricsCollector receives write metrics. Implementations must be concurrency-safe.
// truncated reports that the record was cut at MaxRecordSize.
type MetricsCollector interface {
	LoggedMessage(level root.Level, durMS float64, size int, truncated bool, err error)
}

type NoopMetricsCollector struct{}

func (*NoopMetricsCollector) LoggedMessage(root.Level, float64, int, bool, error) {}

// metricsHolder gives atomic.Pointer one concrete type whatever collector
// is installed.
type metricsHolder struct{ mc MetricsCollector }
