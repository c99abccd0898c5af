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

// Package logctx provides structured logging context management.
// It allows storing and extracting common logging fields from context.Context,
// enabling consistent logging across the dispatcher, resolver, and scoring
// components of the evaluator.
package logctx

import (
	"context"

	"github.com/go-logr/logr"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// Context keys for common logging fields.
// These keys are used to store values in context.Context that will be
// automatically extracted and added to log entries.
const (
	// ContextKeySessionID identifies the agent session a query belongs to.
	ContextKeySessionID contextKey = "session_id"

	// ContextKeyRequestID identifies the individual evaluation request.
	ContextKeyRequestID contextKey = "request_id"

	// ContextKeyCorrelationID is used for distributed tracing.
	ContextKeyCorrelationID contextKey = "correlation_id"

	// ContextKeyEvaluatorName identifies the logical evaluator (C8 registry entry) handling the request.
	ContextKeyEvaluatorName contextKey = "evaluator"

	// ContextKeyNamespace identifies the Kubernetes namespace of the resources involved.
	ContextKeyNamespace contextKey = "namespace"

	// ContextKeyProvider identifies the LLM provider (e.g., "openai", "azure", "bedrock").
	ContextKeyProvider contextKey = "provider"

	// ContextKeyModel identifies the specific model being used.
	ContextKeyModel contextKey = "model"

	// ContextKeyQueryName identifies the Query CRD under evaluation.
	ContextKeyQueryName contextKey = "query_name"

	// ContextKeyMetric identifies the metric being scored (e.g., "relevance", "faithfulness").
	ContextKeyMetric contextKey = "metric"

	// ContextKeyStage identifies the processing stage (resolve, dispatch, score).
	ContextKeyStage contextKey = "stage"
)

// allContextKeys lists all context keys that should be extracted for logging.
var allContextKeys = []contextKey{
	ContextKeySessionID,
	ContextKeyRequestID,
	ContextKeyCorrelationID,
	ContextKeyEvaluatorName,
	ContextKeyNamespace,
	ContextKeyProvider,
	ContextKeyModel,
	ContextKeyQueryName,
	ContextKeyMetric,
	ContextKeyStage,
}

// WithSessionID returns a new context with the session ID set.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// WithRequestID returns a new context with the request ID set.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// WithCorrelationID returns a new context with the correlation ID set.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ContextKeyCorrelationID, correlationID)
}

// WithEvaluatorName returns a new context with the evaluator name set.
func WithEvaluatorName(ctx context.Context, evaluator string) context.Context {
	return context.WithValue(ctx, ContextKeyEvaluatorName, evaluator)
}

// WithNamespace returns a new context with the namespace set.
func WithNamespace(ctx context.Context, namespace string) context.Context {
	return context.WithValue(ctx, ContextKeyNamespace, namespace)
}

// WithProvider returns a new context with the provider name set.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, ContextKeyProvider, provider)
}

// WithModel returns a new context with the model name set.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ContextKeyModel, model)
}

// WithQueryName returns a new context with the Query CRD name set.
func WithQueryName(ctx context.Context, queryName string) context.Context {
	return context.WithValue(ctx, ContextKeyQueryName, queryName)
}

// WithMetric returns a new context with the metric name set.
func WithMetric(ctx context.Context, metric string) context.Context {
	return context.WithValue(ctx, ContextKeyMetric, metric)
}

// WithStage returns a new context with the processing stage set.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, ContextKeyStage, stage)
}

// LoggingFields holds all standard logging context fields.
// This struct is used with WithLoggingContext for bulk field setting.
type LoggingFields struct {
	SessionID     string
	RequestID     string
	CorrelationID string
	EvaluatorName string
	Namespace     string
	Provider      string
	Model         string
	QueryName     string
	Metric        string
	Stage         string
}

// WithLoggingContext returns a new context with multiple logging fields set at once.
// Only non-empty values are set.
func WithLoggingContext(ctx context.Context, fields *LoggingFields) context.Context {
	if fields == nil {
		return ctx
	}
	if fields.SessionID != "" {
		ctx = WithSessionID(ctx, fields.SessionID)
	}
	if fields.RequestID != "" {
		ctx = WithRequestID(ctx, fields.RequestID)
	}
	if fields.CorrelationID != "" {
		ctx = WithCorrelationID(ctx, fields.CorrelationID)
	}
	if fields.EvaluatorName != "" {
		ctx = WithEvaluatorName(ctx, fields.EvaluatorName)
	}
	if fields.Namespace != "" {
		ctx = WithNamespace(ctx, fields.Namespace)
	}
	if fields.Provider != "" {
		ctx = WithProvider(ctx, fields.Provider)
	}
	if fields.Model != "" {
		ctx = WithModel(ctx, fields.Model)
	}
	if fields.QueryName != "" {
		ctx = WithQueryName(ctx, fields.QueryName)
	}
	if fields.Metric != "" {
		ctx = WithMetric(ctx, fields.Metric)
	}
	if fields.Stage != "" {
		ctx = WithStage(ctx, fields.Stage)
	}
	return ctx
}

// ExtractLoggingFields extracts all logging fields from a context.
func ExtractLoggingFields(ctx context.Context) LoggingFields {
	fields := LoggingFields{}
	if v := ctx.Value(ContextKeySessionID); v != nil {
		fields.SessionID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyRequestID); v != nil {
		fields.RequestID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyCorrelationID); v != nil {
		fields.CorrelationID, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyEvaluatorName); v != nil {
		fields.EvaluatorName, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyNamespace); v != nil {
		fields.Namespace, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyProvider); v != nil {
		fields.Provider, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyModel); v != nil {
		fields.Model, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyQueryName); v != nil {
		fields.QueryName, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyMetric); v != nil {
		fields.Metric, _ = v.(string)
	}
	if v := ctx.Value(ContextKeyStage); v != nil {
		fields.Stage, _ = v.(string)
	}
	return fields
}

// LogrValues extracts context values and returns them as key-value pairs
// suitable for use with logr.Logger.WithValues().
// Only non-empty values are included.
func LogrValues(ctx context.Context) []interface{} {
	var values []interface{}
	for _, key := range allContextKeys {
		if v := ctx.Value(key); v != nil {
			if s, ok := v.(string); ok && s != "" {
				values = append(values, string(key), s)
			}
		}
	}
	return values
}

// LoggerWithContext returns a logger enriched with all context values.
// This is a convenience function for logr.Logger.
func LoggerWithContext(log logr.Logger, ctx context.Context) logr.Logger {
	values := LogrValues(ctx)
	if len(values) == 0 {
		return log
	}
	return log.WithValues(values...)
}

// SessionID extracts the session ID from the context.
func SessionID(ctx context.Context) string {
	if v := ctx.Value(ContextKeySessionID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequestID extracts the request ID from the context.
func RequestID(ctx context.Context) string {
	if v := ctx.Value(ContextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// EvaluatorName extracts the evaluator name from the context.
func EvaluatorName(ctx context.Context) string {
	if v := ctx.Value(ContextKeyEvaluatorName); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Namespace extracts the namespace from the context.
func Namespace(ctx context.Context) string {
	if v := ctx.Value(ContextKeyNamespace); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
