package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"techrank/internal/ports"
)

const namespace = "techrank"

// Metrics owns a private registry so several instances can coexist in one process.
type Metrics struct {
	registry        *prometheus.Registry
	pointsAwarded   *prometheus.CounterVec
	rankingRequests *prometheus.CounterVec
	rankingDuration *prometheus.HistogramVec
	notifications   *prometheus.CounterVec
	levelCache      *prometheus.CounterVec
}

var _ ports.Metrics = (*Metrics)(nil)

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := func(c prometheus.Collector) {
		registry.MustRegister(c)
	}

	m := &Metrics{
		registry: registry,
		pointsAwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "points_awarded_total",
				Help:      "Ledger entries written, by entry type.",
			},
			[]string{"type"},
		),
		rankingRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ranking_requests_total",
				Help:      "Candidate ranking requests by sort strategy and outcome.",
			},
			[]string{"sort_by", "result"},
		),
		rankingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ranking_duration_seconds",
				Help:      "Candidate ranking latency including the job registry call.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"sort_by"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Notification dispatch attempts by type and outcome.",
			},
			[]string{"type", "result"},
		),
		levelCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "level_cache_total",
				Help:      "Level ladder cache lookups by result (hit, miss, error).",
			},
			[]string{"result"},
		),
	}

	factory(m.pointsAwarded)
	factory(m.rankingRequests)
	factory(m.rankingDuration)
	factory(m.notifications)
	factory(m.levelCache)
	factory(collectors.NewGoCollector())
	factory(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

func (m *Metrics) PointsAwarded(entryType string) {
	m.pointsAwarded.WithLabelValues(entryType).Inc()
}

func (m *Metrics) RankingRequest(sortBy string, result string, elapsed time.Duration) {
	m.rankingRequests.WithLabelValues(sortBy, result).Inc()
	m.rankingDuration.WithLabelValues(sortBy).Observe(elapsed.Seconds())
}

func (m *Metrics) Notification(notificationType string, result string) {
	m.notifications.WithLabelValues(notificationType, result).Inc()
}

func (m *Metrics) LevelCache(result string) {
	m.levelCache.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
