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

package providers

import (
	"context"
	"strconv"
	"strings"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/scoring"
)

// RagasProvider scores config.input/config.output on a set of RAGAS-style
// metrics using credentials taken directly from the request's parameters —
// never from the process environment, so a single deployment can serve
// evaluations against different tenants' LLM credentials.
type RagasProvider struct{}

func (p *RagasProvider) Evaluate(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error) {
	if req.Config.Input == "" || req.Config.Output == "" {
		return nil, &core.ValidationError{Fields: []string{"config.input", "config.output"}}
	}

	kind, modelConfig, err := scoring.DetectProvider(req.Parameters)
	if err != nil {
		return nil, err
	}

	metricNames := req.Parameters.List("evaluation_criteria")
	if len(metricNames) == 0 {
		metricNames = req.Parameters.List("metrics")
	}
	if len(metricNames) == 0 {
		metricNames = []string{"relevance"}
	}

	result, usage, err := scoring.RunRagas(ctx, modelConfig, metricNames,
		req.Config.Input, req.Config.Output,
		req.Parameters.List("context"), req.Parameters.String("ground_truth", ""),
	)
	if err != nil {
		return nil, &core.EvaluationError{ErrorType: "ragas_failed", Message: err.Error()}
	}

	avg := scoring.AverageScore(result.Scores)
	threshold := thresholdFromParams(req.Parameters)
	score := strconv.FormatFloat(avg, 'f', -1, 64)

	metadata := map[string]string{
		"provider":        "ragas",
		"llm_provider":    string(kind),
		"valid_metrics":   strings.Join(result.ValidMetrics, ","),
		"invalid_metrics": strings.Join(result.InvalidMetrics, ","),
	}
	for name, s := range result.Scores {
		metadata["metric_"+name+"_score"] = strconv.FormatFloat(s, 'f', -1, 64)
	}
	if len(result.NaNFallbacks) > 0 {
		metadata["nan_fallback_metrics"] = strings.Join(result.NaNFallbacks, ",")
	}

	return &core.EvaluationResponse{
		Score:      &score,
		Passed:     avg >= threshold,
		TokenUsage: usage,
		Metadata:   metadata,
	}, nil
}

// thresholdFromParams reads "threshold", the OSS-provider name for the pass
// cutoff, falling back to min-score and then the documented 0.7 default.
func thresholdFromParams(p core.Params) float64 {
	if raw := p.String("threshold", ""); raw != "" {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	if m := minScoreFromParams(p); m > 0 {
		return m
	}
	return 0.7
}
