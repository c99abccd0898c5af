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
	"fmt"
	"strconv"

	"github.com/mckinsey/ark-evaluator/internal/core"
)

// BatchProvider combines several Query evaluations into one verdict.
//
// The upstream batch provider this one is modeled on never implements
// anything beyond a stub that rejects every request, and no Evaluation
// result store exists anywhere in this service's Kubernetes API surface.
// In its absence, config.evaluations is read as a list of Query CRD names
// in the request's namespace: each is evaluated exactly as the query
// provider would (first response, or a caller-provided responseTarget via
// the parameters bag shared across the batch), and the batch passes only if
// every member query passes, with its score the mean of the member scores.
type BatchProvider struct {
	query *QueryProvider
}

func (p *BatchProvider) Evaluate(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error) {
	names := req.Config.Evaluations
	if len(names) == 0 {
		return nil, &core.ValidationError{Fields: []string{"config.evaluations"}}
	}

	namespace := namespaceFromParams(req.Parameters)
	responseTarget := req.Parameters.String("responseTarget", "")

	var (
		total     core.TokenUsage
		scoreSum  float64
		allPassed = true
		members   = make(map[string]string, len(names))
	)

	for _, name := range names {
		memberReq := core.EvaluationRequest{
			Type:          core.RequestTypeQuery,
			EvaluatorName: req.EvaluatorName,
			Parameters:    req.Parameters,
			Config: core.RequestConfig{
				QueryRef: &core.QueryRef{Name: name, Namespace: namespace, ResponseTarget: responseTarget},
			},
		}

		result, err := p.query.Evaluate(ctx, memberReq)
		if err != nil {
			return nil, fmt.Errorf("batch member query %q: %w", name, err)
		}

		total.Add(result.TokenUsage)
		scoreSum += result.ScoreFloat()
		if !result.Passed {
			allPassed = false
		}
		members[name] = scoreAsString(result)
	}

	avg := scoreSum / float64(len(names))
	score := strconv.FormatFloat(avg, 'f', -1, 64)

	metadata := map[string]string{"evaluations_count": strconv.Itoa(len(names))}
	for name, s := range members {
		metadata["evaluation_"+name+"_score"] = s
	}

	return &core.EvaluationResponse{
		Score:      &score,
		Passed:     allPassed,
		TokenUsage: total,
		Metadata:   metadata,
	}, nil
}

func scoreAsString(r *core.EvaluationResponse) string {
	if r.Score == nil {
		return "0"
	}
	return *r.Score
}
