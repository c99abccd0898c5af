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
	"testing"

	"github.com/mckinsey/ark-evaluator/internal/events"
)

func TestIsSemanticExpression(t *testing.T) {
	cases := map[string]bool{
		"tool.was_called('search')":            true,
		"tools.get_call_count() >= 2":          true,
		"agent.get_success_rate('x') >= 0.9":   true,
		"team.was_executed('responders')":      true,
		"llm.get_call_count() > 0":             true,
		"sequence.was_completed(['a','b'])":    true,
		"query.was_resolved()":                 true,
		"ToolCallComplete":                      false,
		"events.size() >= 3":                    false,
	}
	for expression, want := range cases {
		if got := IsSemanticExpression(expression); got != want {
			t.Errorf("IsSemanticExpression(%q) = %v, want %v", expression, got, want)
		}
	}
}

func TestRewriteToolCalls(t *testing.T) {
	e := newTestEvaluator(t,
		newEvent(t, "s1", events.ReasonToolCallStart, 0, map[string]interface{}{"toolName": "search"}),
		newEvent(t, "c1", events.ReasonToolCallComplete, 1, map[string]interface{}{"toolName": "search"}),
	)

	got, err := e.rewrite(context.Background(), "tool.was_called('search')", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "True" {
		t.Errorf("expected True, got %q", got)
	}

	got, err = e.rewrite(context.Background(), "tool.get_call_count('search') >= 1", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1 >= 1" {
		t.Errorf("expected '1 >= 1', got %q", got)
	}

	got, err = e.rewrite(context.Background(), "tool.get_success_rate('search') >= 0.5", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1 >= 0.5" {
		t.Errorf("expected '1 >= 0.5', got %q", got)
	}
}

func TestRewriteToolParameterPredicates(t *testing.T) {
	e := newTestEvaluator(t,
		newEvent(t, "s1", events.ReasonToolCallStart, 0, map[string]interface{}{
			"toolName":   "search",
			"parameters": map[string]interface{}{"query": "weather in paris", "limit": 5},
		}),
	)

	got, err := e.rewrite(context.Background(), "tool.parameter_contains('search', 'query', 'Paris')", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "True" {
		t.Errorf("expected True, got %q", got)
	}

	got, err = e.rewrite(context.Background(), "tool.parameter_type('search', 'limit', 'integer')", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "True" {
		t.Errorf("expected True, got %q", got)
	}
}

func TestRewriteQueryCalls(t *testing.T) {
	e := newTestEvaluator(t,
		newEvent(t, "s1", events.ReasonQueryResolveStart, 0, nil),
		newEvent(t, "c1", events.ReasonQueryResolveComplete, 2, nil),
	)

	got, err := e.rewrite(context.Background(), "query.was_resolved() and query.get_execution_time() >= 1", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "True and 2 >= 1" {
		t.Errorf("expected 'True and 2 >= 1', got %q", got)
	}

	got, err = e.rewrite(context.Background(), "query.get_resolution_status() == 'success'", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "'success' == 'success'" {
		t.Errorf("expected success status literal, got %q", got)
	}
}

func TestRewriteSequenceCalls(t *testing.T) {
	e := newTestEvaluator(t,
		newEvent(t, "s1", events.ReasonToolCallStart, 0, nil),
		newEvent(t, "c1", events.ReasonToolCallComplete, 1, nil),
	)

	got, err := e.rewrite(context.Background(), "sequence.was_completed(['ToolCallStart', 'ToolCallComplete'])", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "True" {
		t.Errorf("expected True, got %q", got)
	}
}
