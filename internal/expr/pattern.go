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
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/mckinsey/ark-evaluator/internal/events"
)

var (
	patternCELEnvOnce sync.Once
	patternCELEnv     *cel.Env
)

// patternEnv returns the shared CEL environment rule expressions compile
// against: a single "events" variable, a list of maps each carrying the
// fields a rule can inspect (reason, type, count). Built once and reused —
// the env holds no per-evaluation state.
func patternEnv() *cel.Env {
	patternCELEnvOnce.Do(func() {
		env, err := cel.NewEnv(
			cel.Variable("events", cel.ListType(cel.MapType(cel.StringType, cel.DynType))),
		)
		if err == nil {
			patternCELEnv = env
		}
	})
	return patternCELEnv
}

// evaluatePattern matches a non-semantic rule expression against the raw
// event stream. It tries, in order: an exact reason string, a substring
// match on a reason family, genuine CEL evaluation (events.exists(...),
// events.filter(...).size() OP n, events.size() OP n, any boolean
// combination of those with && / ||), and — failing all of those — whether
// any event occurred at all.
func (e *Evaluator) evaluatePattern(ctx context.Context, expression string, scope events.Scope) (bool, string, error) {
	es, err := e.analyzer.GetEvents(ctx, scope, nil, 0)
	if err != nil {
		return false, "", err
	}
	trimmed := strings.TrimSpace(expression)

	for _, reason := range []string{
		events.ReasonToolCallComplete, events.ReasonToolCallStart, events.ReasonToolCallError,
		events.ReasonAgentExecutionStart, events.ReasonAgentExecutionComplete, events.ReasonAgentExecutionError,
		events.ReasonTeamExecutionStart, events.ReasonTeamExecutionComplete,
		events.ReasonLLMCallStart, events.ReasonLLMCallComplete,
		events.ReasonQueryResolveStart, events.ReasonQueryResolveComplete, events.ReasonQueryResolveError,
	} {
		if trimmed == reason {
			return anyReason(es, reason), "exact reason match: " + reason, nil
		}
	}

	for _, substr := range []string{"AgentExecution", "TeamMember", "TeamExecution", "A2ACall"} {
		if strings.Contains(trimmed, substr) {
			return anyReasonContains(es, substr), "substring reason match: " + substr, nil
		}
	}

	if passed, evaluated, err := evaluateCELPattern(trimmed, es); evaluated {
		if err != nil {
			e.log.Info("event rule CEL evaluation failed, falling back to any-event default", "expression", trimmed, "error", err.Error())
			return len(es) > 0, "default: any event present (CEL evaluation failed)", nil
		}
		return passed, "CEL match: " + trimmed, nil
	}

	return len(es) > 0, "default: any event present", nil
}

// evaluateCELPattern compiles and evaluates expression as CEL against es.
// evaluated is false when expression doesn't parse as CEL at all (e.g. it's
// free text), in which case the caller should try something else; it is
// true with a non-nil err when expression parsed but failed to run or
// didn't produce a boolean.
func evaluateCELPattern(expression string, es []events.ParsedEvent) (passed bool, evaluated bool, err error) {
	env := patternEnv()
	if env == nil {
		return false, false, nil
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return false, false, nil
	}
	prg, err := env.Program(ast)
	if err != nil {
		return false, true, fmt.Errorf("CEL program construction: %w", err)
	}

	out, _, err := prg.Eval(map[string]interface{}{"events": celEventList(es)})
	if err != nil {
		return false, true, fmt.Errorf("CEL evaluation: %w", err)
	}
	b, ok := asBool(out)
	if !ok {
		return false, true, fmt.Errorf("CEL expression must evaluate to a boolean, got %s", out.Type())
	}
	return b, true, nil
}

func celEventList(es []events.ParsedEvent) []map[string]interface{} {
	out := make([]map[string]interface{}, len(es))
	for i, e := range es {
		out[i] = map[string]interface{}{
			"reason": e.Reason,
			"type":   e.Type,
			"count":  int64(e.Count),
		}
	}
	return out
}

func asBool(val ref.Val) (bool, bool) {
	if val.Type() == types.BoolType {
		return val.Value().(bool), true
	}
	return false, false
}

func anyReason(es []events.ParsedEvent, reason string) bool {
	for _, e := range es {
		if e.Reason == reason {
			return true
		}
	}
	return false
}

func anyReasonContains(es []events.ParsedEvent, substr string) bool {
	for _, e := range es {
		if strings.Contains(e.Reason, substr) {
			return true
		}
	}
	return false
}
