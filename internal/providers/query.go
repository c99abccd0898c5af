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

	arkv1alpha1 "github.com/mckinsey/ark-evaluator/api/v1alpha1"
	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/resolver"
	"github.com/mckinsey/ark-evaluator/internal/scoring"
)

// QueryProvider judges one recorded response on a Query CRD, selected by
// the request's responseTarget.
type QueryProvider struct {
	resolver *resolver.Resolver
}

func (p *QueryProvider) Evaluate(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error) {
	ref := req.Config.QueryRef
	if ref == nil || ref.Name == "" {
		return nil, &core.ValidationError{Fields: []string{"config.queryRef.name"}}
	}
	namespace := ref.Namespace
	if namespace == "" {
		namespace = namespaceFromParams(req.Parameters)
	}

	query, err := p.resolver.ResolveQuery(ctx, core.QueryRef{Name: ref.Name, Namespace: namespace})
	if err != nil {
		return nil, err
	}

	output, targetName := selectResponse(query, ref.ResponseTarget)
	agentName := actualAgentName(query)

	model, err := p.resolver.ResolveModel(ctx, modelRefFromParams(req.Parameters), nil, namespace)
	if err != nil {
		return nil, err
	}

	agent, err := p.resolver.ResolveAgent(ctx, agentName, namespace)
	if err != nil {
		return nil, err
	}

	result, usage, err := scoring.Judge(ctx, model, scoring.JudgeRequest{
		Query:            query.Spec.Input,
		Response:         output,
		ResponseLabel:    targetName,
		Agent:            agent,
		RetrievedContext: req.Parameters.List("context"),
		Criteria:         req.Parameters.List("evaluation_criteria"),
		MinScore:         minScoreFromParams(req.Parameters),
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
			"query.name":           ref.Name,
			"query.namespace":      namespace,
			"query.responseTarget": targetName,
			"reasoning":            result.Reasoning,
			"criteria_scores":      result.CriteriaScores,
		},
	}, nil
}

// selectResponse parses responseTarget as either "type:name" (the current
// wire format) or a bare "name" (accepted for backward compatibility), and
// returns the matching response's content and the resolved target label. A
// responseTarget that matches nothing present in query.status.responses
// proceeds with an empty output rather than failing — the judge then scores
// an empty response on its own merits.
func selectResponse(query *arkv1alpha1.Query, responseTarget string) (output, targetName string) {
	if responseTarget == "" {
		if len(query.Status.Responses) > 0 {
			r := query.Status.Responses[0]
			return r.Content, r.Target.Type + ":" + r.Target.Name
		}
		return "", "query-response"
	}

	wantType, wantName, hasType := "", responseTarget, false
	if idx := strings.Index(responseTarget, ":"); idx >= 0 {
		wantType, wantName, hasType = responseTarget[:idx], responseTarget[idx+1:], true
	}

	for _, r := range query.Status.Responses {
		if hasType {
			if r.Target.Type == wantType && r.Target.Name == wantName {
				return r.Content, responseTarget
			}
			continue
		}
		if r.Target.Name == wantName {
			return r.Content, r.Target.Type + ":" + r.Target.Name
		}
	}

	return "", responseTarget
}

// actualAgentName extracts the first "agent"-typed target from the query's
// spec, used to resolve agent-scoped judging context even when the request
// didn't name an agent explicitly.
func actualAgentName(query *arkv1alpha1.Query) string {
	for _, t := range query.Spec.Targets {
		if t.Type == "agent" {
			return t.Name
		}
	}
	return ""
}
