package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "validador",
			Name:      "validations_total",
			Help:      "Count of shift validations by outcome.",
		},
		[]string{"outcome"},
	)

	batchRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "validador",
			Name:      "batch_rows_total",
			Help:      "Count of batch-validated spreadsheet rows by outcome.",
		},
		[]string{"outcome"},
	)

	batchRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "validador",
			Name:      "batch_runs_total",
			Help:      "Count of batch validation runs.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(validations, batchRows, batchRuns)
	})
}

func IncValidation(outcome string) {
	validations.WithLabelValues(outcome).Inc()
}

func IncBatchRow(outcome string) {
	batchRows.WithLabelValues(outcome).Inc()
}

func IncBatchRun() {
	batchRuns.Inc()
}
