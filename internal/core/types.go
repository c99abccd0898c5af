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

// Package core holds the domain types shared across the dispatcher,
// providers, resolver, and scoring engine: the unified evaluation
// request/response envelope, golden examples, model configuration, and
// metric descriptors. None of these types know about HTTP or Kubernetes
// wire formats; adapters at the edges (internal/httpapi, pkg/k8s) translate
// into and out of this vocabulary.
package core

import (
	"strconv"
	"strings"
)

// RequestType is the evaluation request's config variant discriminator.
type RequestType string

const (
	RequestTypeDirect   RequestType = "direct"
	RequestTypeBaseline RequestType = "baseline"
	RequestTypeQuery    RequestType = "query"
	RequestTypeBatch    RequestType = "batch"
	RequestTypeEvent    RequestType = "event"
)

// Params is the free-form parameter bag carried on every request. Values are
// strings, lists of strings, or nested string maps — the set recognized by
// the facade and providers (see the String/List accessors).
type Params map[string]interface{}

// String returns the string value for key, or def if absent or not a string.
func (p Params) String(key, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// List returns a []string for key, accepting either a JSON array or a
// comma-separated string (evaluation_criteria is documented to accept both).
func (p Params) List(key string) []string {
	v, ok := p[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, field := range strings.Split(t, ",") {
			field = strings.TrimSpace(field)
			if field != "" {
				out = append(out, field)
			}
		}
		return out
	}
	return nil
}

// QueryRef references a Query CRD and, optionally, which of its recorded
// responses to evaluate.
type QueryRef struct {
	Name           string `json:"name"`
	Namespace      string `json:"namespace"`
	ResponseTarget string `json:"responseTarget,omitempty"`
}

// EventRule is one weighted DSL expression evaluated against a scoped event
// stream by the event provider.
type EventRule struct {
	Name        string  `json:"name"`
	Expression  string  `json:"expression"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description,omitempty"`
}

// RequestConfig is the type-discriminated payload of an EvaluationRequest.
// Exactly the field matching Type is populated; the rest are zero values.
type RequestConfig struct {
	Input       string      `json:"input,omitempty"`
	Output      string      `json:"output,omitempty"`
	QueryRef    *QueryRef   `json:"queryRef,omitempty"`
	Evaluations []string    `json:"evaluations,omitempty"`
	Rules       []EventRule `json:"rules,omitempty"`
}

// EvaluationRequest is the unified envelope accepted by POST /evaluate.
type EvaluationRequest struct {
	Type          RequestType   `json:"type"`
	EvaluatorName string        `json:"evaluatorName"`
	Config        RequestConfig `json:"config"`
	Parameters    Params        `json:"parameters,omitempty"`
}

// TokenUsage mirrors the shape recorded on Query.status.tokenUsage and
// returned on every EvaluationResponse.
type TokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Add accumulates u into the receiver, used by the baseline aggregator to
// sum usage across concurrently generated examples.
func (t *TokenUsage) Add(u TokenUsage) {
	t.PromptTokens += u.PromptTokens
	t.CompletionTokens += u.CompletionTokens
	t.TotalTokens += u.TotalTokens
}

// EvaluationResponse is the normalized outbound verdict every provider
// produces, regardless of request type.
type EvaluationResponse struct {
	Score      *string           `json:"score"`
	Passed     bool              `json:"passed"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	TokenUsage TokenUsage        `json:"tokenUsage"`
	Error      string            `json:"error,omitempty"`
}

// ScoreFloat parses Score as a float, returning 0 when Score is nil or
// unparseable.
func (r *EvaluationResponse) ScoreFloat() float64 {
	if r.Score == nil {
		return 0
	}
	f, err := strconv.ParseFloat(*r.Score, 64)
	if err != nil {
		return 0
	}
	return f
}

// ModelConfig is the resolved, credential-bearing view of a Model CRD handed
// to the LLM transport. Created fresh per request; never cached.
type ModelConfig struct {
	Model      string
	BaseURL    string
	APIKey     string
	APIVersion string
	Type       string
}

// AgentInstructions is the resolved view of an Agent CRD used by scope-aware
// judging.
type AgentInstructions struct {
	Name        string
	Description string
	SystemPrompt string
	ScopeHints  []string
}

// GoldenExample is one row of a baseline evaluation dataset.
type GoldenExample struct {
	Input           string            `json:"input"`
	ExpectedOutput  string            `json:"expectedOutput"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	ExpectedMinScore *float64         `json:"expectedMinScore,omitempty"`
	Difficulty      string            `json:"difficulty,omitempty"`
	Category        string            `json:"category,omitempty"`
}

// FieldType enumerates the scalar/list kinds a metric field requirement can
// declare.
type FieldType string

const (
	FieldTypeString     FieldType = "string"
	FieldTypeStringList FieldType = "list<string>"
	FieldTypeInt        FieldType = "int"
	FieldTypeFloat      FieldType = "float"
	FieldTypeBool       FieldType = "bool"
)

// FieldRequirement describes one field a metric needs in the shaped dataset.
type FieldRequirement struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"type"`
	Description string    `json:"description,omitempty"`
	Example     string    `json:"example,omitempty"`
}

// MetricDescriptor is the registry entry for one scorable metric.
type MetricDescriptor struct {
	DisplayName    string             `json:"displayName"`
	RagasName      string             `json:"ragasName"`
	Description    string             `json:"description"`
	RequiredFields []FieldRequirement `json:"requiredFields"`
	OptionalFields []FieldRequirement `json:"optionalFields"`
	FieldMapping   map[string]string  `json:"fieldMapping"`
}
