package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AggregationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hrbench_aggregation_duration_seconds",
			Help:    "Company metrics aggregation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"mode"},
	)

	AggregationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbench_aggregation_total",
			Help: "Total company metrics aggregations",
		},
		[]string{"mode", "status"},
	)

	CategoryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbench_category_failures_total",
			Help: "Metric category sub-computation failures",
		},
		[]string{"category"},
	)

	ComparisonsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbench_comparisons_total",
			Help: "Benchmark comparisons by overall label",
		},
		[]string{"overall_label"},
	)

	BenchmarkLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbench_benchmark_lookups_total",
			Help: "Benchmark catalogue lookups by result",
		},
		[]string{"result"},
	)

	ImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbench_import_rows_total",
			Help: "Benchmark import rows by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// Init 注册全部指标（可重复调用）
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			AggregationDuration,
			AggregationTotal,
			CategoryFailures,
			ComparisonsTotal,
			BenchmarkLookups,
			ImportRows,
		)
	})
}

// Handler 暴露 /metrics
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}
