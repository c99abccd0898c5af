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

// Package metrics provides shared Prometheus metrics for the evaluator service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label constants for metrics.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// LLMMetrics holds Prometheus metrics for outbound chat-completion calls (C2).
type LLMMetrics struct {
	// InputTokensTotal is the total number of prompt tokens sent to LLMs.
	InputTokensTotal *prometheus.CounterVec

	// OutputTokensTotal is the total number of completion tokens received from LLMs.
	OutputTokensTotal *prometheus.CounterVec

	// RequestsTotal is the total number of LLM requests.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration is the histogram of LLM request durations.
	RequestDuration *prometheus.HistogramVec
}

// LLMMetricsConfig configures the LLM metrics.
type LLMMetricsConfig struct {
	// DurationBuckets for the request duration histogram. If nil, defaults to
	// buckets suited to a 30s per-call timeout.
	DurationBuckets []float64
}

// DefaultLLMDurationBuckets are the default histogram buckets for LLM request durations.
var DefaultLLMDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30}

// NewLLMMetrics creates and registers all Prometheus metrics for LLM interactions
// against the default registry.
func NewLLMMetrics(cfg LLMMetricsConfig) *LLMMetrics {
	return NewLLMMetricsWithRegisterer(prometheus.DefaultRegisterer, cfg)
}

// NewLLMMetricsWithRegisterer creates LLM metrics registered against the given
// Prometheus registerer. Use prometheus.NewRegistry() in tests for isolation.
func NewLLMMetricsWithRegisterer(reg prometheus.Registerer, cfg LLMMetricsConfig) *LLMMetrics {
	buckets := cfg.DurationBuckets
	if buckets == nil {
		buckets = DefaultLLMDurationBuckets
	}

	factory := promauto.With(reg)
	return &LLMMetrics{
		InputTokensTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ark_evaluator_llm_input_tokens_total",
			Help: "Total number of prompt tokens sent to LLMs",
		}, []string{"provider", "model"}),

		OutputTokensTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ark_evaluator_llm_output_tokens_total",
			Help: "Total number of completion tokens received from LLMs",
		}, []string{"provider", "model"}),

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ark_evaluator_llm_requests_total",
			Help: "Total number of LLM chat-completion requests",
		}, []string{"provider", "model", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ark_evaluator_llm_request_duration_seconds",
			Help:    "LLM request duration in seconds",
			Buckets: buckets,
		}, []string{"provider", "model"}),
	}
}

// LLMRequestMetrics contains the metrics for a single LLM request.
type LLMRequestMetrics struct {
	Provider        string
	Model           string
	InputTokens     int
	OutputTokens    int
	DurationSeconds float64
	Success         bool
}

// RecordRequest records metrics for an LLM request.
func (m *LLMMetrics) RecordRequest(req LLMRequestMetrics) {
	status := StatusSuccess
	if !req.Success {
		status = StatusError
	}

	m.InputTokensTotal.WithLabelValues(req.Provider, req.Model).Add(float64(req.InputTokens))
	m.OutputTokensTotal.WithLabelValues(req.Provider, req.Model).Add(float64(req.OutputTokens))
	m.RequestsTotal.WithLabelValues(req.Provider, req.Model, status).Inc()
	m.RequestDuration.WithLabelValues(req.Provider, req.Model).Observe(req.DurationSeconds)
}

// LLMMetricsRecorder is the interface for recording LLM metrics.
// This allows for a no-op implementation when metrics are disabled.
type LLMMetricsRecorder interface {
	RecordRequest(req LLMRequestMetrics)
}

var (
	_ LLMMetricsRecorder = (*LLMMetrics)(nil)
	_ LLMMetricsRecorder = (*NoOpLLMMetrics)(nil)
)

// NoOpLLMMetrics is a no-op implementation for when metrics are disabled.
type NoOpLLMMetrics struct{}

// RecordRequest is a no-op implementation.
func (n *NoOpLLMMetrics) RecordRequest(_ LLMRequestMetrics) {}
