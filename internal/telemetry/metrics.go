/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry exposes Prometheus metrics and OpenTelemetry tracing for
// the HTTP surface and the generation pipeline.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestDuration tracks HTTP request latency per route.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidartv_api_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestsTotal counts HTTP requests per route and status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidartv_api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIActiveConnections gauges in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vidartv_api_active_connections",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// PipelineRunsTotal counts generation pipeline runs by outcome.
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidartv_pipeline_runs_total",
			Help: "Total number of catalog generation runs",
		},
		[]string{"result"},
	)

	// PipelineRunDuration tracks end-to-end generation run latency.
	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidartv_pipeline_run_duration_seconds",
			Help:    "Duration of catalog generation runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	// ValidationsTotal counts catalog validations by verdict.
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidartv_validations_total",
			Help: "Total number of catalog validations",
		},
		[]string{"verdict"},
	)

	// ValidationErrorsTotal counts individual validation findings.
	ValidationErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidartv_validation_errors_total",
			Help: "Total number of validation errors reported",
		},
	)

	// ShowsFetchedTotal counts shows retrieved from the media server.
	ShowsFetchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vidartv_shows_fetched_total",
			Help: "Total number of shows fetched from Jellyfin",
		},
	)
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPipelineRun records the outcome and duration of one generation run.
func RecordPipelineRun(result string, seconds float64) {
	PipelineRunsTotal.WithLabelValues(result).Inc()
	PipelineRunDuration.Observe(seconds)
}

// RecordValidation records a validation pass and its finding count.
func RecordValidation(errorCount int) {
	verdict := "valid"
	if errorCount > 0 {
		verdict = "invalid"
	}
	ValidationsTotal.WithLabelValues(verdict).Inc()
	ValidationErrorsTotal.Add(float64(errorCount))
}
