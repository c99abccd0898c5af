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

package logctx

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
)

func TestWithSessionID(t *testing.T) {
	ctx := context.Background()
	ctx = WithSessionID(ctx, "sess-123")

	if got := SessionID(ctx); got != "sess-123" {
		t.Errorf("SessionID() = %q, want %q", got, "sess-123")
	}
}

func TestWithRequestID(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-456")

	if got := RequestID(ctx); got != "req-456" {
		t.Errorf("RequestID() = %q, want %q", got, "req-456")
	}
}

func TestWithEvaluatorName(t *testing.T) {
	ctx := context.Background()
	ctx = WithEvaluatorName(ctx, "direct")

	if got := EvaluatorName(ctx); got != "direct" {
		t.Errorf("EvaluatorName() = %q, want %q", got, "direct")
	}
}

func TestWithNamespace(t *testing.T) {
	ctx := context.Background()
	ctx = WithNamespace(ctx, "my-ns")

	if got := Namespace(ctx); got != "my-ns" {
		t.Errorf("Namespace() = %q, want %q", got, "my-ns")
	}
}

func TestWithCorrelationID(t *testing.T) {
	ctx := context.Background()
	ctx = WithCorrelationID(ctx, "corr-789")

	fields := ExtractLoggingFields(ctx)
	if fields.CorrelationID != "corr-789" {
		t.Errorf("CorrelationID = %q, want %q", fields.CorrelationID, "corr-789")
	}
}

func TestWithProvider(t *testing.T) {
	ctx := context.Background()
	ctx = WithProvider(ctx, "azure")

	fields := ExtractLoggingFields(ctx)
	if fields.Provider != "azure" {
		t.Errorf("Provider = %q, want %q", fields.Provider, "azure")
	}
}

func TestWithModel(t *testing.T) {
	ctx := context.Background()
	ctx = WithModel(ctx, "gpt-4o")

	fields := ExtractLoggingFields(ctx)
	if fields.Model != "gpt-4o" {
		t.Errorf("Model = %q, want %q", fields.Model, "gpt-4o")
	}
}

func TestWithQueryName(t *testing.T) {
	ctx := context.Background()
	ctx = WithQueryName(ctx, "q-1")

	fields := ExtractLoggingFields(ctx)
	if fields.QueryName != "q-1" {
		t.Errorf("QueryName = %q, want %q", fields.QueryName, "q-1")
	}
}

func TestWithMetric(t *testing.T) {
	ctx := context.Background()
	ctx = WithMetric(ctx, "faithfulness")

	fields := ExtractLoggingFields(ctx)
	if fields.Metric != "faithfulness" {
		t.Errorf("Metric = %q, want %q", fields.Metric, "faithfulness")
	}
}

func TestWithStage(t *testing.T) {
	ctx := context.Background()
	ctx = WithStage(ctx, "score")

	fields := ExtractLoggingFields(ctx)
	if fields.Stage != "score" {
		t.Errorf("Stage = %q, want %q", fields.Stage, "score")
	}
}

func TestWithLoggingContext(t *testing.T) {
	ctx := context.Background()
	ctx = WithLoggingContext(ctx, &LoggingFields{
		SessionID:     "sess-1",
		RequestID:     "req-1",
		CorrelationID: "corr-1",
		EvaluatorName: "direct",
		Namespace:     "ns-1",
		Provider:      "provider-1",
		Model:         "model-1",
		QueryName:     "query-1",
		Metric:        "relevance",
		Stage:         "stage-1",
	})

	fields := ExtractLoggingFields(ctx)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"SessionID", fields.SessionID, "sess-1"},
		{"RequestID", fields.RequestID, "req-1"},
		{"CorrelationID", fields.CorrelationID, "corr-1"},
		{"EvaluatorName", fields.EvaluatorName, "direct"},
		{"Namespace", fields.Namespace, "ns-1"},
		{"Provider", fields.Provider, "provider-1"},
		{"Model", fields.Model, "model-1"},
		{"QueryName", fields.QueryName, "query-1"},
		{"Metric", fields.Metric, "relevance"},
		{"Stage", fields.Stage, "stage-1"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestWithLoggingContextNil(t *testing.T) {
	ctx := context.Background()
	result := WithLoggingContext(ctx, nil)

	if result != ctx {
		t.Error("WithLoggingContext(ctx, nil) should return the same context")
	}
}

func TestWithLoggingContextPartial(t *testing.T) {
	ctx := context.Background()
	ctx = WithLoggingContext(ctx, &LoggingFields{
		SessionID: "sess-only",
		// Other fields empty
	})

	fields := ExtractLoggingFields(ctx)

	if fields.SessionID != "sess-only" {
		t.Errorf("SessionID = %q, want %q", fields.SessionID, "sess-only")
	}
	if fields.EvaluatorName != "" {
		t.Errorf("EvaluatorName = %q, want empty", fields.EvaluatorName)
	}
}

func TestExtractLoggingFieldsEmpty(t *testing.T) {
	ctx := context.Background()
	fields := ExtractLoggingFields(ctx)

	if fields.SessionID != "" {
		t.Errorf("SessionID = %q, want empty", fields.SessionID)
	}
	if fields.EvaluatorName != "" {
		t.Errorf("EvaluatorName = %q, want empty", fields.EvaluatorName)
	}
}

func TestLogrValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithSessionID(ctx, "sess-123")
	ctx = WithEvaluatorName(ctx, "direct")

	values := LogrValues(ctx)

	// Should have 4 elements (2 key-value pairs)
	if len(values) != 4 {
		t.Errorf("len(LogrValues) = %d, want 4", len(values))
	}

	// Check that values contain expected keys and values
	found := make(map[string]string)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			t.Errorf("key at index %d is not a string", i)
			continue
		}
		val, ok := values[i+1].(string)
		if !ok {
			t.Errorf("value at index %d is not a string", i+1)
			continue
		}
		found[key] = val
	}

	if found["session_id"] != "sess-123" {
		t.Errorf("session_id = %q, want %q", found["session_id"], "sess-123")
	}
	if found["evaluator"] != "direct" {
		t.Errorf("evaluator = %q, want %q", found["evaluator"], "direct")
	}
}

func TestLogrValuesEmpty(t *testing.T) {
	ctx := context.Background()
	values := LogrValues(ctx)

	if len(values) != 0 {
		t.Errorf("len(LogrValues) = %d, want 0", len(values))
	}
}

func TestLogrValuesSkipsEmpty(t *testing.T) {
	ctx := context.Background()
	// Set an empty string - should be skipped
	ctx = context.WithValue(ctx, ContextKeySessionID, "")
	ctx = WithEvaluatorName(ctx, "direct")

	values := LogrValues(ctx)

	// Should only have 2 elements (1 key-value pair for evaluator)
	if len(values) != 2 {
		t.Errorf("len(LogrValues) = %d, want 2", len(values))
	}
}

func TestLoggerWithContext(t *testing.T) {
	ctx := context.Background()
	ctx = WithSessionID(ctx, "sess-123")
	ctx = WithEvaluatorName(ctx, "direct")

	log := logr.Discard()
	enriched := LoggerWithContext(log, ctx)

	// Just verify it doesn't panic and returns a logger
	// logr.Discard() has nil sink but is still valid
	enriched.Info("test message") // Should not panic
}

func TestLoggerWithContextEmpty(t *testing.T) {
	ctx := context.Background()
	log := logr.Discard()

	enriched := LoggerWithContext(log, ctx)

	// Should return same logger when no context values
	enriched.Info("test message") // Should not panic
}

func TestGettersReturnEmptyOnWrongType(t *testing.T) {
	ctx := context.Background()
	// Set non-string values
	ctx = context.WithValue(ctx, ContextKeySessionID, 123)
	ctx = context.WithValue(ctx, ContextKeyEvaluatorName, true)
	ctx = context.WithValue(ctx, ContextKeyNamespace, []string{"test"})
	ctx = context.WithValue(ctx, ContextKeyRequestID, struct{}{})

	if got := SessionID(ctx); got != "" {
		t.Errorf("SessionID() = %q, want empty for int value", got)
	}
	if got := EvaluatorName(ctx); got != "" {
		t.Errorf("EvaluatorName() = %q, want empty for bool value", got)
	}
	if got := Namespace(ctx); got != "" {
		t.Errorf("Namespace() = %q, want empty for slice value", got)
	}
	if got := RequestID(ctx); got != "" {
		t.Errorf("RequestID() = %q, want empty for struct value", got)
	}
}

func TestChainedContext(t *testing.T) {
	ctx := context.Background()
	ctx = WithSessionID(ctx, "sess-1")
	ctx = WithEvaluatorName(ctx, "evaluator-1")
	ctx = WithNamespace(ctx, "ns-1")

	// Update session ID - should override
	ctx = WithSessionID(ctx, "sess-2")

	if got := SessionID(ctx); got != "sess-2" {
		t.Errorf("SessionID() = %q, want %q", got, "sess-2")
	}
	// Other values should remain
	if got := EvaluatorName(ctx); got != "evaluator-1" {
		t.Errorf("EvaluatorName() = %q, want %q", got, "evaluator-1")
	}
	if got := Namespace(ctx); got != "ns-1" {
		t.Errorf("Namespace() = %q, want %q", got, "ns-1")
	}
}
