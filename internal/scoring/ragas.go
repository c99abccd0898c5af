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

package scoring

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/llm"
	"github.com/mckinsey/ark-evaluator/internal/metrics/registry"
)

const ragasNaNFallbackScore = 0.7

// ProviderKind is the detected LLM vendor backing a RAGAS-style evaluation.
type ProviderKind string

const (
	ProviderAzureOpenAI ProviderKind = "azure_openai"
	ProviderOpenAI      ProviderKind = "openai"
	ProviderAnthropic   ProviderKind = "anthropic"
	ProviderGoogle      ProviderKind = "google"
	ProviderOllama      ProviderKind = "ollama"
)

// DetectProvider inspects parameters for azure.*/langfuse.azure_*,
// openai.*, anthropic.*, google.*, or ollama.* prefixes and returns the
// detected vendor plus the core.ModelConfig built from the matching
// explicit credentials. It never reads or mutates process environment
// variables — every credential comes from the request's own parameters.
func DetectProvider(params core.Params) (ProviderKind, core.ModelConfig, error) {
	has := func(prefix string) bool {
		for k := range params {
			if strings.HasPrefix(k, prefix) {
				return true
			}
		}
		return false
	}

	switch {
	case has("azure.") || has("langfuse.azure_"):
		return ProviderAzureOpenAI, core.ModelConfig{
			Type:       string(ProviderAzureOpenAI),
			APIKey:     firstNonEmpty(params.String("azure.api_key", ""), params.String("langfuse.azure_api_key", "")),
			BaseURL:    firstNonEmpty(params.String("azure.endpoint", ""), params.String("langfuse.azure_endpoint", "")),
			APIVersion: firstNonEmpty(params.String("azure.api_version", ""), params.String("langfuse.model_version", "2024-02-01")),
			Model:      firstNonEmpty(params.String("azure.deployment_name", ""), params.String("langfuse.azure_deployment", ""), "gpt-4"),
		}, nil
	case has("openai."):
		return ProviderOpenAI, core.ModelConfig{
			Type:    string(ProviderOpenAI),
			APIKey:  params.String("openai.api_key", ""),
			BaseURL: params.String("openai.base_url", "https://api.openai.com/v1"),
			Model:   params.String("openai.model", "gpt-4"),
		}, nil
	case has("anthropic."):
		return ProviderAnthropic, core.ModelConfig{
			Type:    string(ProviderAnthropic),
			APIKey:  params.String("anthropic.api_key", ""),
			BaseURL: params.String("anthropic.base_url", "https://api.anthropic.com/v1"),
			Model:   params.String("anthropic.model", "claude-3-sonnet-20240229"),
		}, nil
	case has("google."):
		return ProviderGoogle, core.ModelConfig{
			Type:    string(ProviderGoogle),
			APIKey:  params.String("google.api_key", ""),
			BaseURL: params.String("google.base_url", ""),
			Model:   params.String("google.model", "gemini-pro"),
		}, nil
	case has("ollama."):
		return ProviderOllama, core.ModelConfig{
			Type:    string(ProviderOllama),
			BaseURL: params.String("ollama.base_url", "http://localhost:11434"),
			Model:   params.String("ollama.model", "llama3"),
		}, nil
	default:
		return "", core.ModelConfig{}, &core.ConfigurationError{
			Hint: "no LLM provider parameters found: set azure.*, openai.*, anthropic.*, google.*, or ollama.* parameters",
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// RagasResult is the outcome of one RunRagas call across every requested
// metric: per-metric scores, the valid/invalid partition with validation
// errors, and the metrics whose score fell back from NaN.
type RagasResult struct {
	Scores           map[string]float64
	ValidMetrics     []string
	InvalidMetrics   []string
	ValidationErrors map[string]string
	NaNFallbacks     []string
}

// RunRagas shapes a dataset from input/output/context/groundTruth, validates
// it against each requested metric's declared fields via the registry, and
// scores every metric that validates. There is no native Go RAGAS
// implementation in the dependency set this adapter draws from, so each
// metric is scored the way RAGAS itself ultimately does it for LLM-graded
// metrics: a single LLM call carrying that metric's own rubric, wrapped with
// the same per-metric field contracts the registry already enforces. A
// non-numeric or out-of-range reply is treated as the documented NaN
// pathology and substitutes the fallback score, recorded in metadata.
func RunRagas(ctx context.Context, model core.ModelConfig, metricNames []string, input, output string, contextPassages []string, groundTruth string) (RagasResult, core.TokenUsage, error) {
	entry := registry.PrepareDataset(metricNames, input, output, contextPassages, groundTruth)
	valid, invalid, errs := registry.Partition(metricNames, entry)

	result := RagasResult{
		Scores:           map[string]float64{},
		ValidMetrics:     valid,
		InvalidMetrics:   invalid,
		ValidationErrors: errs,
	}
	var total core.TokenUsage

	for _, name := range valid {
		desc, _ := registry.Lookup(name)
		score, usage, err := scoreRagasMetric(ctx, model, name, desc, entry)
		total.Add(usage)
		if err != nil {
			result.NaNFallbacks = append(result.NaNFallbacks, name)
			result.Scores[name] = ragasNaNFallbackScore
			continue
		}
		result.Scores[name] = score
	}

	return result, total, nil
}

// scoreRagasMetric prompts the detected LLM with a rubric specific to one
// RAGAS metric's field mapping, grounded on that metric's own description.
func scoreRagasMetric(ctx context.Context, model core.ModelConfig, name string, desc core.MetricDescriptor, entry registry.DatasetEntry) (float64, core.TokenUsage, error) {
	prompt := ragasMetricPrompt(name, desc, entry)
	reply, usage, err := llm.ChatComplete(ctx, prompt, model, llm.CompletionParams{})
	if err != nil {
		return 0, core.TokenUsage{}, fmt.Errorf("ragas metric %s: %w", name, err)
	}
	score, err := parseRagasScore(reply)
	if err != nil {
		return 0, usage, err
	}
	return score, usage, nil
}

func ragasMetricPrompt(name string, desc core.MetricDescriptor, entry registry.DatasetEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are computing the RAGAS metric %q.\n%s\n\n", desc.RagasName, desc.Description)

	for _, f := range append(append([]core.FieldRequirement{}, desc.RequiredFields...), desc.OptionalFields...) {
		v, ok := entry[f.Name]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			fmt.Fprintf(&b, "%s: %s\n", f.Name, t)
		case []string:
			fmt.Fprintf(&b, "%s:\n", f.Name)
			for _, c := range t {
				fmt.Fprintf(&b, "- %s\n", c)
			}
		}
	}

	b.WriteString("\nRespond with exactly one line of the form:\nSCORE: <a number between 0 and 1>\n")
	return b.String()
}

func parseRagasScore(reply string) (float64, error) {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "SCORE:") {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(line, "SCORE:"))
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			return 0, fmt.Errorf("empty SCORE value")
		}
		f, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, fmt.Errorf("unparseable SCORE value %q: %w", fields[0], err)
		}
		if f != f || f < 0 || f > 1 {
			return 0, fmt.Errorf("SCORE value %v out of range", f)
		}
		return f, nil
	}
	return 0, fmt.Errorf("reply carried no SCORE line")
}

// AverageScore is the RAGAS overall score: the mean of every scored metric.
func AverageScore(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores))
}
