package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Save paths, used as label values
const (
	SaveImmediate = "immediate"
	SaveDeferred  = "deferred"
	SaveFlush     = "flush"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Persistence metrics
	SavesTotal     *prometheus.CounterVec
	SaveDuration   *prometheus.HistogramVec
	SavesCoalesced prometheus.Counter
	SnapshotBytes  prometheus.Gauge
	RestoresTotal  *prometheus.CounterVec

	// Session metrics
	TabsOpen     prometheus.Gauge
	TabMutations *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests isolated from the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browser_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "browser_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),

		// Persistence metrics
		SavesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browser_snapshot_saves_total",
				Help: "Snapshot writes by path and result",
			},
			[]string{"path", "result"},
		),
		SaveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "browser_snapshot_save_duration_seconds",
				Help:    "Snapshot write duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"path"},
		),
		SavesCoalesced: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "browser_snapshot_saves_coalesced_total",
				Help: "Save requests absorbed into a later deferred write",
			},
		),
		SnapshotBytes: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "browser_snapshot_bytes",
				Help: "Size of the last written snapshot",
			},
		),
		RestoresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browser_session_restores_total",
				Help: "Session restore attempts by outcome",
			},
			[]string{"outcome"},
		),

		// Session metrics
		TabsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "browser_tabs_open",
				Help: "Number of open tabs",
			},
		),
		TabMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browser_tab_mutations_total",
				Help: "Tab collection mutations by operation",
			},
			[]string{"op"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "browser_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "browser_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSave records one snapshot write
func (m *Metrics) RecordSave(path string, size int, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	} else {
		m.SnapshotBytes.Set(float64(size))
	}
	m.SavesTotal.WithLabelValues(path, result).Inc()
	m.SaveDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// IncSavesCoalesced counts a request that will be folded into a deferred write
func (m *Metrics) IncSavesCoalesced() {
	m.SavesCoalesced.Inc()
}

// RecordRestore records a restore outcome ("restored", "empty", "malformed", "failed")
func (m *Metrics) RecordRestore(outcome string) {
	m.RestoresTotal.WithLabelValues(outcome).Inc()
}

// RecordTabMutation records a tab operation and the resulting tab count
func (m *Metrics) RecordTabMutation(op string, open int) {
	m.TabMutations.WithLabelValues(op).Inc()
	m.TabsOpen.Set(float64(open))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}
