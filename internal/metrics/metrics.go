package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels operations that produced a result.
	OutcomeSuccess = "success"
	// OutcomeNoData labels views halted because nothing was left to display.
	OutcomeNoData = "no_data"
	// OutcomeError labels failed operations.
	OutcomeError = "error"
)

var (
	loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "dataset_loads_total",
			Help:      "Warehouse loads, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	loadDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "screener",
			Name:      "dataset_load_seconds",
			Help:      "Warehouse load latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	datasetRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "screener",
			Name:      "dataset_rows",
			Help:      "Rows in the currently cached dataset.",
		},
	)

	cleaningRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "cleaning_removed_rows_total",
			Help:      "Rows removed by each cleaning rule.",
		},
		[]string{"rule"},
	)

	viewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "views_total",
			Help:      "Filtered views computed, partitioned by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	exportedRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "screener",
			Name:      "exported_rows_total",
			Help:      "Rows written to CSV exports.",
		},
	)
)

// Register attaches screener collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		loadsTotal,
		loadDurationSeconds,
		datasetRows,
		cleaningRemovedTotal,
		viewsTotal,
		exportedRowsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveLoad records a warehouse load.
func ObserveLoad(duration time.Duration, rows int, err error) {
	if err != nil {
		loadsTotal.WithLabelValues(OutcomeError).Inc()
		return
	}
	loadsTotal.WithLabelValues(OutcomeSuccess).Inc()
	if duration < 0 {
		duration = 0
	}
	loadDurationSeconds.Observe(duration.Seconds())
	datasetRows.Set(float64(rows))
}

// ObserveCleaning adds the rows a rule removed.
func ObserveCleaning(rule string, removed int) {
	if removed <= 0 {
		return
	}
	cleaningRemovedTotal.WithLabelValues(rule).Add(float64(removed))
}

// ObserveView counts a computed view. Unknown outcomes are recorded as errors.
func ObserveView(kind, outcome string) {
	switch outcome {
	case OutcomeSuccess, OutcomeNoData:
	default:
		outcome = OutcomeError
	}
	viewsTotal.WithLabelValues(kind, outcome).Inc()
}

// ObserveExport adds the rows written by an export.
func ObserveExport(rows int) {
	exportedRowsTotal.Add(float64(rows))
}
