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
	"encoding/json"
	"strconv"

	"github.com/mckinsey/ark-evaluator/internal/baseline"
	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/resolver"
)

// BaselineProvider runs a set of golden examples through a resolved model
// and judge, and reports the aggregate pass rate.
type BaselineProvider struct {
	resolver *resolver.Resolver
}

func (p *BaselineProvider) Evaluate(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error) {
	raw := req.Parameters.String("golden-examples", "")
	if raw == "" {
		return nil, &core.ValidationError{Fields: []string{"parameters.golden-examples"}}
	}

	var examples []core.GoldenExample
	if err := json.Unmarshal([]byte(raw), &examples); err != nil {
		return nil, &core.ConfigurationError{Hint: "parameters.golden-examples must be a JSON array of golden examples: " + err.Error()}
	}
	if len(examples) == 0 {
		return nil, &core.ValidationError{Fields: []string{"parameters.golden-examples"}}
	}

	model, err := p.resolver.ResolveModel(ctx, modelRefFromParams(req.Parameters), nil, namespaceFromParams(req.Parameters))
	if err != nil {
		return nil, err
	}

	minScore := minScoreFromParams(req.Parameters)
	agg := baseline.Run(ctx, model, examples, effectiveMinScore(minScore))

	score := strconv.FormatFloat(agg.AverageScore, 'f', -1, 64)
	return &core.EvaluationResponse{
		Score:      &score,
		Passed:     agg.OverallPass,
		TokenUsage: agg.TokenUsage,
		Metadata:   baseline.Metadata(agg),
	}, nil
}

// effectiveMinScore mirrors scoring.Judge's own fallback so the baseline
// provider's pass/fail threshold matches the per-example judge threshold
// even when the caller omits min-score.
func effectiveMinScore(m float64) float64 {
	if m <= 0 {
		return 0.7
	}
	return m
}
