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

package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"

	"github.com/mckinsey/ark-evaluator/internal/core"
)

type fakeDispatcher struct {
	resp *core.EvaluationResponse
	err  error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, _ core.EvaluationRequest) (*core.EvaluationResponse, error) {
	return f.resp, f.err
}

type fakeMetrics struct{}

func (fakeMetrics) ListMetrics(provider string) ([]core.MetricDescriptor, error) {
	if provider == "bogus" {
		return nil, &core.UnknownProviderError{Requested: provider, Available: []string{"ragas"}}
	}
	return []core.MetricDescriptor{{DisplayName: "Relevance", RagasName: "answer_relevancy"}}, nil
}

func (fakeMetrics) GetMetric(provider, name string) (core.MetricDescriptor, error) {
	if name == "missing" {
		return core.MetricDescriptor{}, &core.ResourceNotFoundError{Kind: "metric", Name: name, Namespace: provider}
	}
	return core.MetricDescriptor{DisplayName: "Relevance", RagasName: "answer_relevancy"}, nil
}

func newTestServer(d Dispatcher) *Server {
	return NewServer(d, fakeMetrics{}, nil, logr.Discard())
}

func TestHandleEvaluate_Success(t *testing.T) {
	score := "0.9"
	d := &fakeDispatcher{resp: &core.EvaluationResponse{Score: &score, Passed: true}}
	s := newTestServer(d)

	body := `{"type":"direct","evaluatorName":"judge","config":{"input":"q","output":"a"}}`
	req := httptest.NewRequest(http.MethodPost, "/evaluate", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}
	var got core.EvaluationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Score == nil || *got.Score != "0.9" {
		t.Errorf("score = %v, want 0.9", got.Score)
	}
}

func TestHandleEvaluate_InvalidJSON(t *testing.T) {
	s := newTestServer(&fakeDispatcher{})
	req := httptest.NewRequest(http.MethodPost, "/evaluate", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestHandleEvaluate_MissingRequiredFields(t *testing.T) {
	s := newTestServer(&fakeDispatcher{})
	req := httptest.NewRequest(http.MethodPost, "/evaluate", bytes.NewBufferString(`{"type":"direct"}`))
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestHandleEvaluate_MapsErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &core.ValidationError{Fields: []string{"x"}}, http.StatusUnprocessableEntity},
		{"configuration", &core.ConfigurationError{Hint: "need model.name"}, http.StatusBadRequest},
		{"not found", &core.ResourceNotFoundError{Kind: "Model", Name: "m", Namespace: "ns"}, http.StatusNotFound},
		{"forbidden", &core.ForbiddenError{Resource: "secret/x"}, http.StatusForbidden},
		{"upstream", &core.UpstreamError{Status: 503, Body: "down"}, http.StatusInternalServerError},
		{"evaluation", &core.EvaluationError{ErrorType: "ParseError", Message: "bad reply"}, http.StatusInternalServerError},
		{"unknown provider", &core.UnknownProviderError{Requested: "x", Available: []string{"ark"}}, http.StatusBadRequest},
		{"generic", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeDispatcher{err: tt.err})
			body := `{"type":"direct","evaluatorName":"judge","config":{"input":"q","output":"a"}}`
			req := httptest.NewRequest(http.MethodPost, "/evaluate", bytes.NewBufferString(body))
			w := httptest.NewRecorder()

			s.Handler().ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestHandleListMetrics(t *testing.T) {
	s := newTestServer(&fakeDispatcher{})
	req := httptest.NewRequest(http.MethodGet, "/providers/ragas/metrics", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandleListMetrics_UnknownProvider(t *testing.T) {
	s := newTestServer(&fakeDispatcher{})
	req := httptest.NewRequest(http.MethodGet, "/providers/bogus/metrics", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleGetMetric_NotFound(t *testing.T) {
	s := newTestServer(&fakeDispatcher{})
	req := httptest.NewRequest(http.MethodGet, "/providers/ragas/metrics/missing", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&fakeDispatcher{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandleReady_NoChecker(t *testing.T) {
	s := newTestServer(&fakeDispatcher{})
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

type failingReadiness struct{}

func (failingReadiness) Ready(context.Context) error { return fmt.Errorf("k8s client not initialized") }

func TestHandleReady_Failing(t *testing.T) {
	s := NewServer(&fakeDispatcher{}, fakeMetrics{}, failingReadiness{}, logr.Discard())
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestRequestIDMiddleware_SetsHeader(t *testing.T) {
	s := newTestServer(&fakeDispatcher{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	if w.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header to be set")
	}
}
