/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EvaluationMetrics holds Prometheus metrics for evaluation requests handled
// by the dispatcher (C8). Labels are low-cardinality only (type, provider,
// status) — evaluator name and request-specific identifiers belong in logs.
type EvaluationMetrics struct {
	// EvaluationsExecuted counts evaluation requests by type, provider, and status.
	EvaluationsExecuted *prometheus.CounterVec

	// EvaluationScore tracks the most recent score by type and provider.
	EvaluationScore *prometheus.GaugeVec

	// EvaluationDuration tracks evaluation duration in seconds.
	EvaluationDuration *prometheus.HistogramVec

	// EvaluationsPassed counts evaluations whose verdict was passed=true.
	EvaluationsPassed *prometheus.CounterVec

	// EvaluationsFailed counts evaluations whose verdict was passed=false.
	EvaluationsFailed *prometheus.CounterVec
}

// EvaluationMetricsConfig configures the evaluation metrics.
type EvaluationMetricsConfig struct {
	DurationBuckets []float64
}

// DefaultEvaluationDurationBuckets are histogram buckets spanning fast rule-based
// event evaluations (sub-second) to slow LLM-judge and baseline runs (minutes).
var DefaultEvaluationDurationBuckets = []float64{
	0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300,
}

// NewEvaluationMetrics creates and registers evaluation Prometheus metrics
// using the default registry.
func NewEvaluationMetrics(cfg EvaluationMetricsConfig) *EvaluationMetrics {
	return NewEvaluationMetricsWithRegisterer(prometheus.DefaultRegisterer, cfg)
}

// NewEvaluationMetricsWithRegisterer creates evaluation metrics registered
// against the given Prometheus registerer. Use prometheus.NewRegistry() in
// tests for isolation.
func NewEvaluationMetricsWithRegisterer(reg prometheus.Registerer, cfg EvaluationMetricsConfig) *EvaluationMetrics {
	buckets := cfg.DurationBuckets
	if buckets == nil {
		buckets = DefaultEvaluationDurationBuckets
	}

	factory := promauto.With(reg)
	return &EvaluationMetrics{
		EvaluationsExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ark_evaluator_evaluations_total",
			Help: "Total evaluation requests by type, provider, and status",
		}, []string{"type", "provider", "status"}),

		EvaluationScore: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ark_evaluator_evaluation_score",
			Help: "Most recent evaluation score by type and provider",
		}, []string{"type", "provider"}),

		EvaluationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ark_evaluator_evaluation_duration_seconds",
			Help:    "Evaluation duration in seconds",
			Buckets: buckets,
		}, []string{"type", "provider"}),

		EvaluationsPassed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ark_evaluator_evaluations_passed_total",
			Help: "Total evaluations with passed=true",
		}, []string{"type", "provider"}),

		EvaluationsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ark_evaluator_evaluations_failed_total",
			Help: "Total evaluations with passed=false",
		}, []string{"type", "provider"}),
	}
}

// EvaluationRecord contains the data for recording a single evaluation.
type EvaluationRecord struct {
	Type        string
	Provider    string
	Passed      bool
	Score       *float64
	DurationSec float64
	HasError    bool
}

// RecordEvaluation records metrics for a single evaluation request.
func (m *EvaluationMetrics) RecordEvaluation(r EvaluationRecord) {
	status := StatusSuccess
	if r.HasError {
		status = StatusError
	}

	m.EvaluationsExecuted.WithLabelValues(r.Type, r.Provider, status).Inc()
	m.EvaluationDuration.WithLabelValues(r.Type, r.Provider).Observe(r.DurationSec)

	if r.Score != nil {
		m.EvaluationScore.WithLabelValues(r.Type, r.Provider).Set(*r.Score)
	}

	if !r.HasError {
		if r.Passed {
			m.EvaluationsPassed.WithLabelValues(r.Type, r.Provider).Inc()
		} else {
			m.EvaluationsFailed.WithLabelValues(r.Type, r.Provider).Inc()
		}
	}
}

// EvaluationMetricsRecorder is the interface for recording evaluation metrics.
// This allows for a no-op implementation when metrics are disabled.
type EvaluationMetricsRecorder interface {
	RecordEvaluation(r EvaluationRecord)
}

var (
	_ EvaluationMetricsRecorder = (*EvaluationMetrics)(nil)
	_ EvaluationMetricsRecorder = (*NoOpEvaluationMetrics)(nil)
)

// NoOpEvaluationMetrics is a no-op implementation for when metrics are disabled.
type NoOpEvaluationMetrics struct{}

// RecordEvaluation is a no-op implementation.
func (n *NoOpEvaluationMetrics) RecordEvaluation(_ EvaluationRecord) {}
