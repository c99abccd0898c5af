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

// Package expr evaluates the event-rule DSL used by the event evaluation
// provider. A rule's expression is either "semantic" — built from helper
// calls like tool.was_called('search') — or a bare pattern matched against
// the raw event stream (a reason string, or a small CEL-like size/exists
// form). Semantic expressions are rewritten into a literal boolean
// expression by substituting each helper call with its computed result, then
// evaluated by a restricted boolean-literal evaluator. Unlike the scripted
// evaluator this package is modeled on, no form of eval-on-untrusted-input is
// used anywhere: the evaluator only ever walks a fixed grammar of literals,
// comparisons, and and/or/not.
package expr

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/events"
	"github.com/mckinsey/ark-evaluator/internal/helpers"
)

// Evaluator evaluates event rules against one query/session's event stream.
type Evaluator struct {
	analyzer *events.Analyzer
	log      logr.Logger

	tool     *helpers.Tool
	agent    *helpers.Agent
	team     *helpers.Team
	llm      *helpers.LLM
	sequence *helpers.Sequence
	query    *helpers.Query
}

// New builds an Evaluator over analyzer. log may be the zero logr.Logger
// (a no-op) when the caller doesn't care about safety-failure diagnostics.
func New(analyzer *events.Analyzer, log logr.Logger) *Evaluator {
	return &Evaluator{
		analyzer: analyzer,
		log:      log,
		tool:     helpers.NewTool(analyzer),
		agent:    helpers.NewAgent(analyzer),
		team:     helpers.NewTeam(analyzer),
		llm:      helpers.NewLLM(analyzer),
		sequence: helpers.NewSequence(analyzer),
		query:    helpers.NewQuery(analyzer),
	}
}

// RuleResult is one rule's evaluated outcome.
type RuleResult struct {
	Name        string
	Passed      bool
	Weight      float64
	Reason      string
	Rewritten   string
}

// EvaluateRule evaluates a single rule's expression within scope. A rule
// whose expression fails to rewrite or fails to evaluate safely is reported
// as not passed, with Reason explaining why — it never aborts the caller's
// rule set and never falls back to an unrestricted evaluator.
func (e *Evaluator) EvaluateRule(ctx context.Context, rule core.EventRule, scope events.Scope) RuleResult {
	result := RuleResult{Name: rule.Name, Weight: rule.Weight}

	if !IsSemanticExpression(rule.Expression) {
		passed, reason, err := e.evaluatePattern(ctx, rule.Expression, scope)
		if err != nil {
			result.Reason = fmt.Sprintf("pattern evaluation failed: %v", err)
			e.log.Info("event rule pattern evaluation failed", "rule", rule.Name, "error", err.Error())
			return result
		}
		result.Passed = passed
		result.Reason = reason
		return result
	}

	rewritten, err := e.rewrite(ctx, rule.Expression, scope)
	if err != nil {
		result.Reason = fmt.Sprintf("helper substitution failed: %v", err)
		e.log.Info("event rule substitution failed", "rule", rule.Name, "expression", rule.Expression, "error", err.Error())
		return result
	}
	result.Rewritten = rewritten

	passed, err := EvaluateBoolean(rewritten)
	if err != nil {
		result.Reason = fmt.Sprintf("restricted evaluation failed: %v", err)
		e.log.Info("event rule failed safety evaluation", "rule", rule.Name, "rewritten", rewritten, "error", err.Error())
		return result
	}

	result.Passed = passed
	result.Reason = rewritten
	return result
}

// EvaluateRules evaluates every rule and returns the weighted average score
// (sum(weight*passed) / sum(weight)) alongside the per-rule results. A rule
// with weight 0 counts with weight 1; an empty rule set scores 0.
func (e *Evaluator) EvaluateRules(ctx context.Context, rules []core.EventRule, scope events.Scope) (float64, []RuleResult) {
	results := make([]RuleResult, 0, len(rules))
	var weightedSum, totalWeight float64
	for _, rule := range rules {
		weight := rule.Weight
		if weight == 0 {
			weight = 1
		}
		r := e.EvaluateRule(ctx, rule, scope)
		r.Weight = weight
		results = append(results, r)
		totalWeight += weight
		if r.Passed {
			weightedSum += weight
		}
	}
	if totalWeight == 0 {
		return 0, results
	}
	return weightedSum / totalWeight, results
}
