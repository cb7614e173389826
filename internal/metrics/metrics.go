package metrics

import (
	"errors"
	"time"

	"github.com/c3nav/maprender"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records renders and cache lookups. It implements maprender.Observer.
type Metrics struct {
	registry       *prometheus.Registry
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	cacheRequests  *prometheus.CounterVec
}

var _ maprender.Observer = (*Metrics)(nil)

// New creates a fresh registry with the render metrics registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	renders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maprender",
		Name:      "renders_total",
		Help:      "Count of render requests by output format and outcome",
	}, []string{"format", "status"})

	renderDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "maprender",
		Name:      "render_duration_seconds",
		Help:      "Duration of render requests including rasterization",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"format"})

	cacheRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maprender",
		Name:      "cache_requests_total",
		Help:      "Count of cache lookups by cache and result",
	}, []string{"cache", "result"})

	registry.MustRegister(renders, renderDuration, cacheRequests)

	return &Metrics{
		registry:       registry,
		renders:        renders,
		renderDuration: renderDuration,
		cacheRequests:  cacheRequests,
	}
}

// ObserveRender records a finished render request.
func (m *Metrics) ObserveRender(format string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.renders.With(prometheus.Labels{"format": format, "status": status(err)}).Inc()
	m.renderDuration.With(prometheus.Labels{"format": format}).Observe(duration.Seconds())
}

func (m *Metrics) CacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheRequests.With(prometheus.Labels{"cache": cache, "result": "hit"}).Inc()
}

func (m *Metrics) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheRequests.With(prometheus.Labels{"cache": cache, "result": "miss"}).Inc()
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, maprender.ErrPrecondition):
		return "precondition"
	case errors.Is(err, maprender.ErrExternalTool):
		return "external_tool"
	case errors.Is(err, maprender.ErrUnknownLevel), errors.Is(err, maprender.ErrUnknownFormat):
		return "not_found"
	}
	return "error"
}

// WriteToTextfile writes the current metrics in the Prometheus text format, for the node exporter's textfile collector.
func (m *Metrics) WriteToTextfile(filename string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(filename, m.registry)
}
