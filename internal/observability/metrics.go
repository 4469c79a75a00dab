package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fars"

// Metrics holds the Prometheus counters and histograms for loading,
// summarizing, plotting and publishing FARS data.
type Metrics struct {
	FilesRead         *prometheus.CounterVec // labels: outcome={success,not_found,error}
	RowsLoaded        prometheus.Counter
	YearLoadFailures  prometheus.Counter
	ReadDuration      prometheus.Histogram
	CacheLookups      *prometheus.CounterVec // labels: result={hit,miss}
	PointsPlotted     prometheus.Counter
	RecordsPublished  prometheus.Counter
	SummariesComputed prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates all metrics and registers them with reg. One-shot
// CLI commands pass a private registry.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.FilesRead,
		m.RowsLoaded,
		m.YearLoadFailures,
		m.ReadDuration,
		m.CacheLookups,
		m.PointsPlotted,
		m.RecordsPublished,
		m.SummariesComputed,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_read_total",
			Help:      "Accident file reads by outcome.",
		}, []string{"outcome"}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Total accident rows parsed from files.",
		}),
		YearLoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "year_load_failures_total",
			Help:      "Requested years skipped because their file could not be read.",
		}),
		ReadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "read_duration_seconds",
			Help:      "Duration of reading and parsing one accident file.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Table cache lookups by result.",
		}, []string{"result"}),
		PointsPlotted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_plotted_total",
			Help:      "Accident locations handed to the map renderer.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Accident records written to Kafka.",
		}),
		SummariesComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_computed_total",
			Help:      "Month-by-year summaries produced.",
		}),
	}
}
