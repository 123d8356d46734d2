// Package metrics exposes Prometheus counters for the service and doubles as
// the sink for failed favourite propagations.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rotadafesta"

// PropagationFailure describes a favourite change that could not be written
// to the remote store.
type PropagationFailure struct {
	UserID  uuid.UUID
	EventID int64
	Op      string
	Err     error
	At      time.Time
}

type Metrics struct {
	logger   *slog.Logger
	registry *prometheus.Registry

	propagations    *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	eventsLoaded    prometheus.Gauge
	lastRefreshTS   prometheus.Gauge
	weatherRequests *prometheus.CounterVec
}

func New(logger *slog.Logger) *Metrics {
	m := &Metrics{
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	m.propagations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "favourite_propagations_total",
		Help:      "Favourite changes pushed to the remote store by operation and status",
	}, []string{"op", "status"})
	m.refreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_refreshes_total",
		Help:      "Event snapshot reloads by status",
	}, []string{"status"})
	m.eventsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_loaded",
		Help:      "Number of events in the current snapshot",
	})
	m.lastRefreshTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix timestamp of the last successful event reload",
	})
	m.weatherRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "weather_requests_total",
		Help:      "Forecast lookups by outcome",
	}, []string{"outcome"})

	m.registry.MustRegister(
		m.propagations, m.refreshes, m.eventsLoaded, m.lastRefreshTS, m.weatherRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) PropagationSucceeded(op string) {
	if m == nil {
		return
	}
	m.propagations.WithLabelValues(op, "ok").Inc()
}

func (m *Metrics) PropagationFailed(f PropagationFailure) {
	if m == nil {
		return
	}
	m.propagations.WithLabelValues(f.Op, "error").Inc()
	if m.logger != nil {
		m.logger.Warn("Favourite propagation failed",
			"user_id", f.UserID,
			"event_id", f.EventID,
			"op", f.Op,
			"error", f.Err,
			"at", f.At,
		)
	}
}

func (m *Metrics) EventsRefreshed(count int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.refreshes.WithLabelValues("error").Inc()
		return
	}
	m.refreshes.WithLabelValues("ok").Inc()
	m.eventsLoaded.Set(float64(count))
	m.lastRefreshTS.SetToCurrentTime()
}

// WeatherRequest counts one forecast lookup; outcome is hit, miss, error or skipped.
func (m *Metrics) WeatherRequest(outcome string) {
	if m == nil {
		return
	}
	m.weatherRequests.WithLabelValues(outcome).Inc()
}
