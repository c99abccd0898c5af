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

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/resolver"
	"github.com/mckinsey/ark-evaluator/internal/scoring"
)

// DirectProvider judges a caller-supplied input/output pair with no
// Kubernetes resolution beyond the model and optional agent reference.
type DirectProvider struct {
	resolver *resolver.Resolver
}

func (p *DirectProvider) Evaluate(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error) {
	if req.Config.Input == "" {
		return nil, &core.ValidationError{Fields: []string{"config.input"}}
	}

	model, err := p.resolver.ResolveModel(ctx, modelRefFromParams(req.Parameters), nil, namespaceFromParams(req.Parameters))
	if err != nil {
		return nil, err
	}

	agent, err := p.resolver.ResolveAgent(ctx, req.Parameters.String("agent-name", ""), namespaceFromParams(req.Parameters))
	if err != nil {
		return nil, err
	}

	minScore := minScoreFromParams(req.Parameters)
	result, usage, err := scoring.Judge(ctx, model, scoring.JudgeRequest{
		Query:            req.Config.Input,
		Response:         req.Config.Output,
		Agent:            agent,
		RetrievedContext: req.Parameters.List("context"),
		Criteria:         req.Parameters.List("evaluation_criteria"),
		MinScore:         minScore,
	})
	if err != nil {
		return nil, &core.EvaluationError{ErrorType: "judge_failed", Message: err.Error()}
	}

	score := strconv.FormatFloat(result.Score, 'f', -1, 64)
	return &core.EvaluationResponse{
		Score:      &score,
		Passed:     result.Passed,
		TokenUsage: usage,
		Metadata: map[string]string{
			"reasoning":       result.Reasoning,
			"criteria_scores": result.CriteriaScores,
		},
	}, nil
}
