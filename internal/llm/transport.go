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

// Package llm issues chat-completion requests against OpenAI-compatible and
// Azure-OpenAI-style endpoints over a single process-wide HTTP client.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/pkg/metrics"
)

// metricsRecorder is an optional process-wide sink for per-request LLM
// metrics. Nil until SetMetricsRecorder is called, in which case
// ChatComplete records nothing — tests and non-HTTP callers incur no cost.
var metricsRecorder metrics.LLMMetricsRecorder

// SetMetricsRecorder installs r as the recorder every subsequent
// ChatComplete call reports to. Call once during startup.
func SetMetricsRecorder(r metrics.LLMMetricsRecorder) {
	metricsRecorder = r
}

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 1000
	requestTimeout     = 30 * time.Second
	connectTimeout     = 10 * time.Second
)

// sharedClient is the single process-wide HTTP client used for every
// outbound LLM call, per the concurrency model's shared-resource contract.
var sharedClient = &http.Client{
	Timeout: requestTimeout,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	},
}

// CompletionParams overrides the judging defaults on a single call.
type CompletionParams struct {
	Temperature *float64
	MaxTokens   *int
}

func (p CompletionParams) temperature() float64 {
	if p.Temperature != nil {
		return *p.Temperature
	}
	return defaultTemperature
}

func (p CompletionParams) maxTokens() int {
	if p.MaxTokens != nil {
		return *p.MaxTokens
	}
	return defaultMaxTokens
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// isAzure selects the Azure-OpenAI-style dialect when baseURL mentions
// "azure", per the spec's dialect-selection rule.
func isAzure(baseURL string) bool {
	return strings.Contains(strings.ToLower(baseURL), "azure")
}

// ChatComplete issues a single chat-completion call and returns the
// response content and token usage. Dialect (OpenAI-compatible vs
// Azure-OpenAI-style) is selected from model.BaseURL.
func ChatComplete(ctx context.Context, prompt string, model core.ModelConfig, params CompletionParams) (string, core.TokenUsage, error) {
	start := time.Now()
	content, usage, err := chatComplete(ctx, prompt, model, params)
	if metricsRecorder != nil {
		metricsRecorder.RecordRequest(metrics.LLMRequestMetrics{
			Provider:        providerLabel(model),
			Model:           model.Model,
			InputTokens:     usage.PromptTokens,
			OutputTokens:    usage.CompletionTokens,
			DurationSeconds: time.Since(start).Seconds(),
			Success:         err == nil,
		})
	}
	return content, usage, err
}

func chatComplete(ctx context.Context, prompt string, model core.ModelConfig, params CompletionParams) (string, core.TokenUsage, error) {
	body := chatRequest{
		Model:       model.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: params.temperature(),
		MaxTokens:   params.maxTokens(),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", core.TokenUsage{}, fmt.Errorf("marshal chat request: %w", err)
	}

	url, headers := dialectRequest(model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", core.TokenUsage{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := sharedClient.Do(req)
	if err != nil {
		return "", core.TokenUsage{}, fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.TokenUsage{}, fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", core.TokenUsage{}, &core.UpstreamError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", core.TokenUsage{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", core.TokenUsage{}, fmt.Errorf("chat response contained no choices")
	}

	usage := core.TokenUsage{
		PromptTokens:     parsed.Usage.PromptTokens,
		CompletionTokens: parsed.Usage.CompletionTokens,
		TotalTokens:      parsed.Usage.TotalTokens,
	}
	return parsed.Choices[0].Message.Content, usage, nil
}

// providerLabel derives a low-cardinality provider label from the model's
// dialect for metrics; it does not attempt to distinguish every possible
// OpenAI-compatible backend.
func providerLabel(model core.ModelConfig) string {
	if model.Type != "" {
		return model.Type
	}
	if isAzure(model.BaseURL) {
		return "azure"
	}
	return "openai"
}

// dialectRequest returns the request URL and headers appropriate to
// model.BaseURL's dialect.
func dialectRequest(model core.ModelConfig) (string, map[string]string) {
	base := strings.TrimRight(model.BaseURL, "/")

	if isAzure(base) {
		apiVersion := model.APIVersion
		if apiVersion == "" {
			apiVersion = "2024-02-01"
		}
		url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s", base, model.Model, apiVersion)
		return url, map[string]string{"api-key": model.APIKey}
	}

	url := base + "/chat/completions"
	return url, map[string]string{"Authorization": "Bearer " + model.APIKey}
}
