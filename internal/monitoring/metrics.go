package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Bridge metrics
	BridgeCommands *prometheus.CounterVec
	BridgeDuration *prometheus.HistogramVec
	BridgeErrors   *prometheus.CounterVec

	// Shell state metrics
	TabsOpen          prometheus.Gauge
	IdentityRotations prometheus.Counter
	PanelUnlocks      *prometheus.CounterVec
	DownloadPolls     prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostshell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ghostshell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		BridgeCommands: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostshell_bridge_commands_total",
				Help: "Total number of backend bridge commands",
			},
			[]string{"command", "status"},
		),
		BridgeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ghostshell_bridge_duration_seconds",
				Help:    "Bridge command round-trip duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"command"},
		),
		BridgeErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostshell_bridge_errors_total",
				Help: "Total number of failed bridge commands",
			},
			[]string{"command"},
		),

		TabsOpen: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ghostshell_tabs_open",
				Help: "Number of open browser tabs",
			},
		),
		IdentityRotations: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ghostshell_identity_rotations_total",
				Help: "Total number of identity regenerations",
			},
		),
		PanelUnlocks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostshell_panel_unlocks_total",
				Help: "Total number of gated panel unlock attempts",
			},
			[]string{"domain", "outcome"},
		),
		DownloadPolls: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "ghostshell_download_polls_total",
				Help: "Total number of download list poll ticks",
			},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ghostshell_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostshell_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "ghostshell_uptime_seconds",
				Help: "Shell uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveCommand records one bridge command round trip. It satisfies
// the bridge client's Observer interface.
func (m *Metrics) ObserveCommand(command string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		m.BridgeErrors.WithLabelValues(command).Inc()
	}
	m.BridgeCommands.WithLabelValues(command, status).Inc()
	m.BridgeDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// SetTabsOpen sets the open tab gauge
func (m *Metrics) SetTabsOpen(count int) {
	m.TabsOpen.Set(float64(count))
}

// IncIdentityRotations increments the identity rotation counter
func (m *Metrics) IncIdentityRotations() {
	m.IdentityRotations.Inc()
}

// RecordUnlock records one gated panel unlock attempt
func (m *Metrics) RecordUnlock(domain string, ok bool) {
	outcome := "rejected"
	if ok {
		outcome = "granted"
	}
	m.PanelUnlocks.WithLabelValues(domain, outcome).Inc()
}

// IncDownloadPolls increments the download poll tick counter
func (m *Metrics) IncDownloadPolls() {
	m.DownloadPolls.Inc()
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
