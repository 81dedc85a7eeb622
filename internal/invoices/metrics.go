package invoices

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_import_rows_total",
		Help: "CSV rows processed by result",
	}, []string{"result"})

	importFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_import_files_total",
		Help: "Uploads by outcome (processed, rejected, malformed)",
	}, []string{"result"})

	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "invoice_import_duration_seconds",
		Help:    "Time spent importing one upload",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})
)
