package metrics

import "github.com/prometheus/client_golang/prometheus"


//=========================================== Metrics


const namespace = "rsm"

/*
	Metrics holds the prometheus collectors the manager updates as it
	applies entries and runs the snapshot/compaction cycle: promauto-
	registered counters/gauges rather than hand-rolled /debug/vars output.
*/

type Metrics struct {
	Registry *prometheus.Registry

	LastApplied prometheus.Gauge
	ApplyLatency prometheus.Histogram
	ApplyErrors *prometheus.CounterVec

	SnapshotsStarted prometheus.Counter
	SnapshotsFinalized prometheus.Counter
	SnapshotsAbandoned prometheus.Counter
	CompactionsRun prometheus.Counter

	LoadMonitorRate prometheus.Gauge
	DiskPressure prometheus.Gauge
	SessionsExpired prometheus.Counter
}
