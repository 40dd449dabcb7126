package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh results recorded by IncRefresh.
const (
	RefreshStreams     = "streams"
	RefreshEmpty       = "empty"
	RefreshUnavailable = "unavailable"
)

// Metrics holds Prometheus counters and gauges for the volume daemon.
type Metrics struct {
	registry           *prometheus.Registry
	requestsTotal      *prometheus.CounterVec
	errorsTotal        prometheus.Counter
	refreshesTotal     *prometheus.CounterVec
	volumeAppliesTotal prometheus.Counter
	pushBacksTotal     prometheus.Counter
	streamsKilledTotal prometheus.Counter
	watcherEventsTotal prometheus.Counter
	visibleStreams     prometheus.Gauge
	rememberedKeys     prometheus.Gauge
}

// New creates and registers the daemon's metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appvolume_http_requests_total",
			Help: "Total number of control API requests by method",
		}, []string{"method"}),
		errorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appvolume_http_errors_total",
			Help: "Total number of control API responses with status >= 400",
		}),
		refreshesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appvolume_refreshes_total",
			Help: "Total number of inventory refreshes by resulting render state",
		}, []string{"result"}),
		volumeAppliesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appvolume_volume_applies_total",
			Help: "Total number of debounced user volume changes applied to a stream",
		}),
		pushBacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appvolume_volume_pushbacks_total",
			Help: "Total number of remembered volumes pushed back to live streams",
		}),
		streamsKilledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appvolume_streams_killed_total",
			Help: "Total number of streams removed by the user",
		}),
		watcherEventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appvolume_watcher_events_total",
			Help: "Total number of relevant audio server events seen by the watcher",
		}),
		visibleStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "appvolume_visible_streams",
			Help: "Number of rows in the latest render",
		}),
		rememberedKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "appvolume_remembered_keys",
			Help: "Number of application identities with a remembered volume",
		}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.errorsTotal,
		m.refreshesTotal,
		m.volumeAppliesTotal,
		m.pushBacksTotal,
		m.streamsKilledTotal,
		m.watcherEventsTotal,
		m.visibleStreams,
		m.rememberedKeys,
	)

	return m
}

// IncRequests increments the request counter for method.
func (m *Metrics) IncRequests(method string) {
	m.requestsTotal.WithLabelValues(method).Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncRefresh records one refresh with its result and visible row count.
func (m *Metrics) IncRefresh(result string, rows int) {
	m.refreshesTotal.WithLabelValues(result).Inc()
	m.visibleStreams.Set(float64(rows))
}

// IncVolumeApplies increments the applied volume counter.
func (m *Metrics) IncVolumeApplies() {
	m.volumeAppliesTotal.Inc()
}

// IncPushBacks increments the push-back counter.
func (m *Metrics) IncPushBacks() {
	m.pushBacksTotal.Inc()
}

// IncStreamsKilled increments the killed streams counter.
func (m *Metrics) IncStreamsKilled() {
	m.streamsKilledTotal.Inc()
}

// IncWatcherEvents increments the watcher events counter.
func (m *Metrics) IncWatcherEvents() {
	m.watcherEventsTotal.Inc()
}

// SetRememberedKeys sets the remembered keys gauge.
func (m *Metrics) SetRememberedKeys(n int) {
	m.rememberedKeys.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
