package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Feed loading metrics.
	FeedFetches       *prometheus.CounterVec   // labels: window, outcome={success,status,transport,parse}
	FeedFetchDuration *prometheus.HistogramVec // labels: window
	SnapshotLoads     *prometheus.CounterVec   // labels: outcome={success,failure}
	EventsLoaded      *prometheus.GaugeVec     // labels: window
	FeedUp            prometheus.Gauge         // 1 if the most recent load succeeded

	// Serving metrics.
	SessionsActive prometheus.Gauge
	ChartRenders   *prometheus.CounterVec // labels: kind={map,mag_depth}
	PageRenders    *prometheus.CounterVec // labels: status={ok,failed,error}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.FeedFetches,
		m.FeedFetchDuration,
		m.SnapshotLoads,
		m.EventsLoaded,
		m.FeedUp,
		m.SessionsActive,
		m.ChartRenders,
		m.PageRenders,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_dashboard",
			Name:      "feed_fetches_total",
			Help:      "USGS feed fetches by recency window and outcome.",
		}, []string{"window", "outcome"}),
		FeedFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quake_dashboard",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of a single feed fetch including parsing.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"window"}),
		SnapshotLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_dashboard",
			Name:      "snapshot_loads_total",
			Help:      "Session snapshot loads by outcome.",
		}, []string{"outcome"}),
		EventsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "quake_dashboard",
			Name:      "events_loaded",
			Help:      "Earthquakes in the most recently loaded table per window.",
		}, []string{"window"}),
		FeedUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_dashboard",
			Name:      "feed_up",
			Help:      "Whether the most recent snapshot load succeeded (1) or failed (0).",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quake_dashboard",
			Name:      "sessions_active",
			Help:      "Sessions currently held in the session store.",
		}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_dashboard",
			Name:      "chart_renders_total",
			Help:      "Charts built by kind.",
		}, []string{"kind"}),
		PageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_dashboard",
			Name:      "page_renders_total",
			Help:      "Dashboard pages served by status.",
		}, []string{"status"}),
	}
}
