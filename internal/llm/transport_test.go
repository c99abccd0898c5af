/*
Copyright 2026.

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

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/pkg/metrics"
)

func TestIsAzure(t *testing.T) {
	tests := []struct {
		baseURL string
		want    bool
	}{
		{"https://my-resource.openai.azure.com", true},
		{"https://api.openai.com/v1", false},
		{"https://AZURE.example.com", true},
	}
	for _, tt := range tests {
		if got := isAzure(tt.baseURL); got != tt.want {
			t.Errorf("isAzure(%q) = %v, want %v", tt.baseURL, got, tt.want)
		}
	}
}

func TestDialectRequest_OpenAI(t *testing.T) {
	url, headers := dialectRequest(core.ModelConfig{BaseURL: "https://api.openai.com/v1", APIKey: "sk-x", Model: "gpt-4o"})
	if url != "https://api.openai.com/v1/chat/completions" {
		t.Errorf("url = %q", url)
	}
	if headers["Authorization"] != "Bearer sk-x" {
		t.Errorf("Authorization header = %q", headers["Authorization"])
	}
}

func TestDialectRequest_Azure(t *testing.T) {
	url, headers := dialectRequest(core.ModelConfig{
		BaseURL: "https://my-resource.openai.azure.com", APIKey: "az-key", Model: "gpt-4o-deploy", APIVersion: "2024-06-01",
	})
	want := "https://my-resource.openai.azure.com/openai/deployments/gpt-4o-deploy/chat/completions?api-version=2024-06-01"
	if url != want {
		t.Errorf("url = %q, want %q", url, want)
	}
	if headers["api-key"] != "az-key" {
		t.Errorf("api-key header = %q", headers["api-key"])
	}
}

func TestChatComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing/incorrect Authorization header: %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "the answer is 4"}},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	defer srv.Close()

	content, usage, err := ChatComplete(context.Background(), "what is 2+2?", core.ModelConfig{
		BaseURL: srv.URL, APIKey: "sk-test", Model: "gpt-4o",
	}, CompletionParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "the answer is 4" {
		t.Errorf("content = %q", content)
	}
	if usage.TotalTokens != 15 {
		t.Errorf("TotalTokens = %d, want 15", usage.TotalTokens)
	}
}

func TestChatComplete_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("service unavailable"))
	}))
	defer srv.Close()

	_, _, err := ChatComplete(context.Background(), "hello", core.ModelConfig{BaseURL: srv.URL, APIKey: "x"}, CompletionParams{})
	if err == nil {
		t.Fatal("expected an error")
	}
	var upstreamErr *core.UpstreamError
	if !asUpstreamError(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
	if upstreamErr.Status != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", upstreamErr.Status)
	}
}

func asUpstreamError(err error, target **core.UpstreamError) bool {
	if ue, ok := err.(*core.UpstreamError); ok {
		*target = ue
		return true
	}
	return false
}

func TestChatComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	_, _, err := ChatComplete(context.Background(), "hello", core.ModelConfig{BaseURL: srv.URL, APIKey: "x"}, CompletionParams{})
	if err == nil {
		t.Fatal("expected an error for empty choices")
	}
}

type stubMetricsRecorder struct {
	calls []metrics.LLMRequestMetrics
}

func (s *stubMetricsRecorder) RecordRequest(r metrics.LLMRequestMetrics) {
	s.calls = append(s.calls, r)
}

func TestChatComplete_RecordsMetricsWhenRecorderSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"role": "assistant", "content": "ok"}}},
			"usage":   map[string]int{"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5},
		})
	}))
	defer srv.Close()

	rec := &stubMetricsRecorder{}
	SetMetricsRecorder(rec)
	defer SetMetricsRecorder(nil)

	_, _, err := ChatComplete(context.Background(), "hello", core.ModelConfig{
		BaseURL: srv.URL, APIKey: "x", Model: "gpt-4o-mini",
	}, CompletionParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("expected 1 recorded call, got %d", len(rec.calls))
	}
	got := rec.calls[0]
	if got.Provider != "openai" || got.Model != "gpt-4o-mini" || got.InputTokens != 3 || got.OutputTokens != 2 || !got.Success {
		t.Errorf("unexpected recorded metrics: %+v", got)
	}
}

func TestChatComplete_RecordsFailureMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec := &stubMetricsRecorder{}
	SetMetricsRecorder(rec)
	defer SetMetricsRecorder(nil)

	_, _, err := ChatComplete(context.Background(), "hello", core.ModelConfig{BaseURL: srv.URL, APIKey: "x"}, CompletionParams{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(rec.calls) != 1 || rec.calls[0].Success {
		t.Fatalf("expected a single failed-call record, got %+v", rec.calls)
	}
}

func TestCompletionParams_Defaults(t *testing.T) {
	p := CompletionParams{}
	if p.temperature() != defaultTemperature {
		t.Errorf("temperature() = %v, want %v", p.temperature(), defaultTemperature)
	}
	if p.maxTokens() != defaultMaxTokens {
		t.Errorf("maxTokens() = %v, want %v", p.maxTokens(), defaultMaxTokens)
	}
}

func TestCompletionParams_Overrides(t *testing.T) {
	temp := 0.7
	tokens := 2048
	p := CompletionParams{Temperature: &temp, MaxTokens: &tokens}
	if p.temperature() != 0.7 {
		t.Errorf("temperature() = %v, want 0.7", p.temperature())
	}
	if p.maxTokens() != 2048 {
		t.Errorf("maxTokens() = %v, want 2048", p.maxTokens())
	}
}
