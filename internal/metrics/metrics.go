// Package metrics holds the Prometheus collectors shared by the readers and the REST server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glacierpost_reads_total",
		Help: "Total number of glacier dataset reads, by table and outcome.",
	}, []string{"table", "outcome"})

	ReadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "glacierpost_read_seconds",
		Help:    "Time spent loading a dataset and deriving a table.",
		Buckets: prometheus.DefBuckets,
	}, []string{"table"})

	ExportedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glacierpost_exported_rows_total",
		Help: "Total number of table rows written to export stores.",
	}, []string{"store", "table"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glacierpost_http_requests_total",
		Help: "Total number of REST requests, by route and status code.",
	}, []string{"route", "code"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "glacierpost_http_request_seconds",
		Help:    "REST request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// Outcome returns the outcome label for an error
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
