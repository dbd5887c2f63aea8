package metrics

import "net/http"

import "github.com/prometheus/client_golang/prometheus"
import "github.com/prometheus/client_golang/prometheus/promauto"
import "github.com/prometheus/client_golang/prometheus/promhttp"

import "github.com/coldharbor/rsm/pkg/logger"


const NAME = "Metrics"
var Log = clog.NewCustomLog(NAME)

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,

		LastApplied: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_applied_index", Help: "highest log index applied on this replica",
		}),
		ApplyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "apply_latency_seconds", Help: "time spent dispatching a single committed entry",
		}),
		ApplyErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "apply_errors_total", Help: "apply failures by error kind",
		}, []string{ "kind" }),

		SnapshotsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshots_started_total", Help: "snapshot attempts started",
		}),
		SnapshotsFinalized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshots_finalized_total", Help: "snapshots that reached completion and were finalized",
		}),
		SnapshotsAbandoned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "snapshots_abandoned_total", Help: "snapshots abandoned after the completion timeout elapsed",
		}),
		CompactionsRun: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "compactions_total", Help: "log compactions performed",
		}),

		LoadMonitorRate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "load_monitor_rate", Help: "events per second observed by the load monitor",
		}),
		DiskPressure: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "disk_pressure", Help: "1 if disk pressure is currently detected, else 0",
		}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sessions_expired_total", Help: "sessions swept as expired during keep-alive",
		}),
	}
}

/*
	Serve exposes the registry over HTTP at /metrics and a plain /health
	liveness probe on the same mux.
*/

func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	Log.Info("metrics server listening on", addr)

	return http.ListenAndServe(addr, mux)
}
