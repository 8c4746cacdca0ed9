package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classmood_analyses_processed_total",
		Help: "Total number of analysis jobs processed, by status",
	}, []string{"status"})

	AnalysisStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "classmood_analysis_stage_duration_seconds",
		Help:    "Duration of the media analysis pipeline",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	PointsSampledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classmood_points_sampled_total",
		Help: "Total number of series points sampled across all jobs",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classmood_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classmood_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
