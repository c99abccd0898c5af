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

	"github.com/go-logr/logr"
	"k8s.io/client-go/kubernetes"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/events"
	"github.com/mckinsey/ark-evaluator/internal/expr"
)

// EventProvider scores a query's resolved event stream against a set of
// weighted DSL rules, with no LLM call involved.
type EventProvider struct {
	clientset kubernetes.Interface
	log       logr.Logger
}

func (p *EventProvider) Evaluate(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error) {
	if len(req.Config.Rules) == 0 {
		return nil, &core.ValidationError{Fields: []string{"config.rules"}}
	}
	if p.clientset == nil {
		return nil, &core.ConfigurationError{Hint: "event evaluation requires a Kubernetes client"}
	}

	namespace := namespaceFromParams(req.Parameters)
	queryName := req.Parameters.String("query.name", "")
	sessionID := req.Parameters.String("sessionId", "")

	scope := events.ScopeCurrent
	switch req.Parameters.String("scope", "") {
	case "all":
		scope = events.ScopeAll
	case "query":
		scope = events.ScopeQuery
	case "session":
		scope = events.ScopeSession
	case "current":
		scope = events.ScopeCurrent
	}
	if scope == events.ScopeSession && sessionID == "" {
		return nil, &core.ValidationError{Fields: []string{"parameters.sessionId"}}
	}
	if scope == events.ScopeQuery && queryName == "" {
		return nil, &core.ValidationError{Fields: []string{"parameters.query.name"}}
	}
	if scope == events.ScopeCurrent && queryName == "" && sessionID == "" {
		return nil, &core.ValidationError{Fields: []string{"parameters.query.name"}}
	}

	analyzer := events.NewAnalyzer(p.clientset, namespace, queryName, sessionID)
	evaluator := expr.New(analyzer, p.log)

	weightedScore, results := evaluator.EvaluateRules(ctx, req.Config.Rules, scope)

	metadata := make(map[string]string, len(results))
	for _, r := range results {
		metadata["rule_"+r.Name+"_passed"] = strconv.FormatBool(r.Passed)
		metadata["rule_"+r.Name+"_reason"] = r.Reason
	}

	score := strconv.FormatFloat(weightedScore, 'f', -1, 64)
	return &core.EvaluationResponse{
		Score:    &score,
		Passed:   weightedScore >= minScoreOrDefault(minScoreFromParams(req.Parameters)),
		Metadata: metadata,
	}, nil
}

func minScoreOrDefault(m float64) float64 {
	if m <= 0 {
		return 0.7
	}
	return m
}
