package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "flex_"

	resultSuccess = "success"
	resultError   = "error"

	OutcomeValued   = "valued"
	OutcomeSkipped  = "skipped"
	OutcomePriceGap = "price_gap"
	OutcomeTail     = "tail"
)

var (
	registerOnce sync.Once

	valuationRuns    *prometheus.CounterVec
	valuationLatency *prometheus.HistogramVec
	valuationRows    *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
)

// Init registers the valuation metrics with the default registry. Safe to call repeatedly.
func Init() {
	registerOnce.Do(func() {
		valuationRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "valuation_runs_total",
				Help: "Total valuation runs by result",
			},
			[]string{"result"},
		)
		valuationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "valuation_run_seconds",
				Help:    "Valuation run latency in seconds, including data preparation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		valuationRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "valuation_rows_total",
				Help: "Rows seen by the valuation engine by outcome",
			},
			[]string{"outcome"},
		)
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"route", "status"},
		)

		prometheus.MustRegister(valuationRuns, valuationLatency, valuationRows, httpRequests)
	})
}

// ObserveRun records one valuation run.
func ObserveRun(start time.Time, err error) {
	if valuationRuns == nil {
		return
	}
	result := resultSuccess
	if err != nil {
		result = resultError
	}
	valuationRuns.WithLabelValues(result).Inc()
	valuationLatency.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

// AddRows counts rows by outcome (OutcomeValued, OutcomeSkipped, ...).
func AddRows(outcome string, n int) {
	if valuationRows == nil || n <= 0 {
		return
	}
	valuationRows.WithLabelValues(outcome).Add(float64(n))
}

func ObserveHTTP(route string, status int) {
	if httpRequests == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
