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

package expr

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mckinsey/ark-evaluator/internal/events"
)

// semanticPrefix matches any of the recognized helper namespaces at a word
// boundary, singular or plural where the DSL allows both ("tool."/"tools.").
var semanticPrefix = regexp.MustCompile(`(?i)\b(tools?|agents?|teams?|llm|sequence|query)\.\w`)

// IsSemanticExpression reports whether expression references a helper
// namespace and should be rewritten via substitution rather than matched as
// a bare event pattern.
func IsSemanticExpression(expression string) bool {
	return semanticPrefix.MatchString(expression)
}

const q = `['"]`

// rewrite replaces every recognized helper call in expr with its computed
// literal value (a number, a quoted string, or True/False), in the order
// most-specific-pattern-first so that a shorter prefix form never shadows a
// longer one (e.g. was_called(name, scope=...) is tried before
// was_called(name)).
func (e *Evaluator) rewrite(ctx context.Context, expr string, scope events.Scope) (string, error) {
	var err error
	for _, step := range []func(context.Context, string, events.Scope) (string, error){
		e.rewriteToolCalls,
		e.rewriteAgentCalls,
		e.rewriteTeamCalls,
		e.rewriteLLMCalls,
		e.rewriteSequenceCalls,
		e.rewriteQueryCalls,
	} {
		expr, err = step(ctx, expr, scope)
		if err != nil {
			return "", err
		}
	}
	return expr, nil
}

// substituteAll repeatedly replaces the leftmost match of re in expr with
// the value fn computes from its captured groups, until no match remains.
// Each iteration re-scans from scratch: since fn never reintroduces text the
// pattern would itself match, this always terminates.
func substituteAll(expr string, re *regexp.Regexp, fn func(groups []string) (string, error)) (string, error) {
	for {
		loc := re.FindStringSubmatchIndex(expr)
		if loc == nil {
			return expr, nil
		}
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] < 0 {
				continue
			}
			groups[i] = expr[loc[2*i]:loc[2*i+1]]
		}
		repl, err := fn(groups)
		if err != nil {
			return "", err
		}
		expr = expr[:loc[0]] + repl + expr[loc[1]:]
	}
}

func boolLiteral(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func numLiteral(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func strLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}

func resolveScope(s string, fallback events.Scope) events.Scope {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "session":
		return events.ScopeSession
	case "query":
		return events.ScopeQuery
	case "all":
		return events.ScopeAll
	case "current":
		return events.ScopeCurrent
	case "":
		return fallback
	default:
		return fallback
	}
}

var (
	reToolWasCalledScoped = regexp.MustCompile(`(?i)\btools?\.was_called\(\s*` + q + `([^'"]*)` + q + `\s*,\s*scope\s*=\s*` + q + `([^'"]*)` + q + `\s*\)`)
	reToolWasCalledNamed  = regexp.MustCompile(`(?i)\btools?\.was_called\(\s*` + q + `([^'"]*)` + q + `\s*\)`)
	reToolWasCalledBare   = regexp.MustCompile(`(?i)\btools?\.was_called\(\s*\)`)
	reToolExecMetrics     = regexp.MustCompile(`(?i)\btools?\.get_execution_metrics\(\s*` + q + `([^'"]*)` + q + `\s*\)\.call_count`)
	reToolHadErrorNamed   = regexp.MustCompile(`(?i)\btools?\.had_error\(\s*` + q + `([^'"]*)` + q + `\s*\)`)
	reToolSuccessNamed    = regexp.MustCompile(`(?i)\btools?\.get_success_rate\(\s*` + q + `([^'"]*)` + q + `\s*\)`)
	reToolSuccessBare     = regexp.MustCompile(`(?i)\btools?\.get_success_rate\(\s*\)`)
	reToolCallCountNamed  = regexp.MustCompile(`(?i)\btools?\.get_call_count\(\s*` + q + `([^'"]*)` + q + `\s*\)`)
	reToolCallCountBare   = regexp.MustCompile(`(?i)\btools?\.get_call_count\(\s*\)`)
	reToolParamContains   = regexp.MustCompile(`(?i)\btools?\.parameter_contains\(\s*` + q + `([^'"]*)` + q + `\s*,\s*` + q + `([^'"]*)` + q + `\s*,\s*` + q + `([^'"]*)` + q + `\s*\)`)
	reToolParamType       = regexp.MustCompile(`(?i)\btools?\.parameter_type\(\s*` + q + `([^'"]*)` + q + `\s*,\s*` + q + `([^'"]*)` + q + `\s*,\s*` + q + `([^'"]*)` + q + `\s*\)`)
)

func (e *Evaluator) rewriteToolCalls(ctx context.Context, expr string, scope events.Scope) (string, error) {
	var err error

	expr, err = substituteAll(expr, reToolWasCalledScoped, func(g []string) (string, error) {
		ok, err := e.tool.WasCalled(ctx, g[1], resolveScope(g[2], scope))
		if err != nil {
			return "", err
		}
		return boolLiteral(ok), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reToolWasCalledNamed, func(g []string) (string, error) {
		ok, err := e.tool.WasCalled(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return boolLiteral(ok), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reToolWasCalledBare, func(g []string) (string, error) {
		ok, err := e.tool.WasCalled(ctx, "", scope)
		if err != nil {
			return "", err
		}
		return boolLiteral(ok), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reToolExecMetrics, func(g []string) (string, error) {
		count, err := e.tool.GetCallCount(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return numLiteral(float64(count)), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reToolHadErrorNamed, func(g []string) (string, error) {
		rate, err := e.tool.GetSuccessRate(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return boolLiteral(rate < 1), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reToolSuccessNamed, func(g []string) (string, error) {
		rate, err := e.tool.GetSuccessRate(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return numLiteral(rate), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reToolSuccessBare, func(g []string) (string, error) {
		rate, err := e.tool.GetSuccessRate(ctx, "", scope)
		if err != nil {
			return "", err
		}
		return numLiteral(rate), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reToolCallCountNamed, func(g []string) (string, error) {
		count, err := e.tool.GetCallCount(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return numLiteral(float64(count)), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reToolCallCountBare, func(g []string) (string, error) {
		count, err := e.tool.GetCallCount(ctx, "", scope)
		if err != nil {
			return "", err
		}
		return numLiteral(float64(count)), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reToolParamContains, func(g []string) (string, error) {
		params, err := e.tool.GetParameters(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return boolLiteral(parameterContains(params, g[2], g[3])), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reToolParamType, func(g []string) (string, error) {
		params, err := e.tool.GetParameters(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return boolLiteral(parameterType(params, g[2], g[3])), nil
	})
	if err != nil {
		return "", err
	}

	return expr, nil
}

var (
	reAgentWasExecutedNamed = regexp.MustCompile(`(?i)\bagents?\.was_executed\(\s*` + q + `([^'"]*)` + q + `\s*\)`)
	reAgentWasExecutedBare  = regexp.MustCompile(`(?i)\bagents?\.was_executed\(\s*\)`)
	reAgentSuccessNamed     = regexp.MustCompile(`(?i)\bagents?\.get_success_rate\(\s*` + q + `([^'"]*)` + q + `\s*\)`)
	reAgentSuccessBare      = regexp.MustCompile(`(?i)\bagents?\.get_success_rate\(\s*\)`)
	reAgentCountNamed       = regexp.MustCompile(`(?i)\bagents?\.get_execution_count\(\s*` + q + `([^'"]*)` + q + `\s*\)`)
	reAgentCountBare        = regexp.MustCompile(`(?i)\bagents?\.get_execution_count\(\s*\)`)
)

func (e *Evaluator) rewriteAgentCalls(ctx context.Context, expr string, scope events.Scope) (string, error) {
	var err error

	expr, err = substituteAll(expr, reAgentWasExecutedNamed, func(g []string) (string, error) {
		ok, err := e.agent.WasExecuted(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return boolLiteral(ok), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reAgentWasExecutedBare, func(g []string) (string, error) {
		ok, err := e.agent.WasExecuted(ctx, "", scope)
		if err != nil {
			return "", err
		}
		return boolLiteral(ok), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reAgentSuccessNamed, func(g []string) (string, error) {
		rate, err := e.agent.GetSuccessRate(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return numLiteral(rate), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reAgentSuccessBare, func(g []string) (string, error) {
		rate, err := e.agent.GetSuccessRate(ctx, "", scope)
		if err != nil {
			return "", err
		}
		return numLiteral(rate), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reAgentCountNamed, func(g []string) (string, error) {
		count, err := e.agent.GetExecutionCount(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return numLiteral(float64(count)), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reAgentCountBare, func(g []string) (string, error) {
		count, err := e.agent.GetExecutionCount(ctx, "", scope)
		if err != nil {
			return "", err
		}
		return numLiteral(float64(count)), nil
	})
	if err != nil {
		return "", err
	}

	return expr, nil
}

var (
	reTeamWasExecutedNamed = regexp.MustCompile(`(?i)\bteams?\.was_executed\(\s*` + q + `([^'"]*)` + q + `\s*\)`)
	reTeamWasExecutedBare  = regexp.MustCompile(`(?i)\bteams?\.was_executed\(\s*\)`)
	reTeamSuccessNamed     = regexp.MustCompile(`(?i)\bteams?\.get_success_rate\(\s*` + q + `([^'"]*)` + q + `\s*\)`)
	reTeamSuccessBare      = regexp.MustCompile(`(?i)\bteams?\.get_success_rate\(\s*\)`)
)

func (e *Evaluator) rewriteTeamCalls(ctx context.Context, expr string, scope events.Scope) (string, error) {
	var err error

	expr, err = substituteAll(expr, reTeamWasExecutedNamed, func(g []string) (string, error) {
		ok, err := e.team.WasExecuted(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return boolLiteral(ok), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reTeamWasExecutedBare, func(g []string) (string, error) {
		ok, err := e.team.WasExecuted(ctx, "", scope)
		if err != nil {
			return "", err
		}
		return boolLiteral(ok), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reTeamSuccessNamed, func(g []string) (string, error) {
		rate, err := e.team.GetSuccessRate(ctx, g[1], scope)
		if err != nil {
			return "", err
		}
		return numLiteral(rate), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reTeamSuccessBare, func(g []string) (string, error) {
		rate, err := e.team.GetSuccessRate(ctx, "", scope)
		if err != nil {
			return "", err
		}
		return numLiteral(rate), nil
	})
	if err != nil {
		return "", err
	}

	return expr, nil
}

var (
	reLLMCallCount  = regexp.MustCompile(`(?i)\bllm\.get_call_count\(\s*\)`)
	reLLMSuccess    = regexp.MustCompile(`(?i)\bllm\.get_success_rate\(\s*\)`)
)

func (e *Evaluator) rewriteLLMCalls(ctx context.Context, expr string, scope events.Scope) (string, error) {
	var err error

	expr, err = substituteAll(expr, reLLMCallCount, func(g []string) (string, error) {
		count, err := e.llm.GetCallCount(ctx, "", scope)
		if err != nil {
			return "", err
		}
		return numLiteral(float64(count)), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reLLMSuccess, func(g []string) (string, error) {
		rate, err := e.llm.GetSuccessRate(ctx, "", scope)
		if err != nil {
			return "", err
		}
		return numLiteral(rate), nil
	})
	if err != nil {
		return "", err
	}

	return expr, nil
}

var reSequenceWasCompleted = regexp.MustCompile(`(?i)\bsequence\.was_completed\(\s*\[([^\]]*)\]\s*\)`)

func (e *Evaluator) rewriteSequenceCalls(ctx context.Context, expr string, scope events.Scope) (string, error) {
	return substituteAll(expr, reSequenceWasCompleted, func(g []string) (string, error) {
		required := parseQuotedList(g[1])
		ok, err := e.sequence.WasCompleted(ctx, required, scope)
		if err != nil {
			return "", err
		}
		return boolLiteral(ok), nil
	})
}

// parseQuotedList parses a comma-separated list of single- or double-quoted
// string literals, as found inside sequence.was_completed([...]).
func parseQuotedList(s string) []string {
	re := regexp.MustCompile(q + `([^'"]*)` + q)
	matches := re.FindAllStringSubmatch(s, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

var (
	reQueryWasResolved  = regexp.MustCompile(`(?i)\bquery\.was_resolved\(\s*\)`)
	reQueryExecTime     = regexp.MustCompile(`(?i)\bquery\.get_execution_time\(\s*\)`)
	reQueryResolveStatus = regexp.MustCompile(`(?i)\bquery\.get_resolution_status\(\s*\)`)
)

func (e *Evaluator) rewriteQueryCalls(ctx context.Context, expr string, scope events.Scope) (string, error) {
	var err error

	expr, err = substituteAll(expr, reQueryWasResolved, func(g []string) (string, error) {
		ok, err := e.query.WasResolved(ctx, scope)
		if err != nil {
			return "", err
		}
		return boolLiteral(ok), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reQueryExecTime, func(g []string) (string, error) {
		elapsed, ok, err := e.query.GetExecutionTime(ctx, scope)
		if err != nil {
			return "", err
		}
		if !ok {
			elapsed = 0
		}
		return numLiteral(elapsed), nil
	})
	if err != nil {
		return "", err
	}

	expr, err = substituteAll(expr, reQueryResolveStatus, func(g []string) (string, error) {
		status, err := e.query.GetResolutionStatus(ctx, scope)
		if err != nil {
			return "", err
		}
		return strLiteral(string(status)), nil
	})
	if err != nil {
		return "", err
	}

	return expr, nil
}

// parameterContains reports whether any recorded call's parameter named key
// contains value as a case-insensitive substring of its string form.
func parameterContains(params []map[string]interface{}, key, value string) bool {
	needle := strings.ToLower(value)
	for _, p := range params {
		v, ok := p[key]
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprintf("%v", v)), needle) {
			return true
		}
	}
	return false
}

// parameterType reports whether any recorded call's parameter named key has
// the given natural type name (string, integer, float, boolean).
func parameterType(params []map[string]interface{}, key, typeName string) bool {
	for _, p := range params {
		v, ok := p[key]
		if !ok {
			continue
		}
		switch strings.ToLower(typeName) {
		case "string":
			if _, ok := v.(string); ok {
				return true
			}
		case "integer":
			switch n := v.(type) {
			case int, int32, int64:
				return true
			case float64:
				if n == float64(int64(n)) {
					return true
				}
			}
		case "float":
			switch v.(type) {
			case float64, int, int32, int64:
				return true
			}
		case "boolean":
			if _, ok := v.(bool); ok {
				return true
			}
		}
	}
	return false
}
