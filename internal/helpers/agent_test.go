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

package helpers

import (
	"context"
	"testing"

	"github.com/mckinsey/ark-evaluator/internal/events"
)

func TestAgent_WasExecuted(t *testing.T) {
	a := newTestAnalyzer(t, "",
		newEvent(t, "s1", events.ReasonAgentExecutionStart, 0, map[string]interface{}{"agentName": "triage"}),
	)
	agent := NewAgent(a)

	got, err := agent.WasExecuted(context.Background(), "triage", events.ScopeQuery)
	if err != nil || !got {
		t.Fatalf("expected WasExecuted true, got %v err %v", got, err)
	}
}

func TestAgent_GetExecutionCount_CountsStartOnly(t *testing.T) {
	a := newTestAnalyzer(t, "",
		newEvent(t, "s1", events.ReasonAgentExecutionStart, 0, map[string]interface{}{"agentName": "triage"}),
		newEvent(t, "c1", events.ReasonAgentExecutionComplete, 1, map[string]interface{}{"agentName": "triage", "duration": "2s"}),
	)
	agent := NewAgent(a)

	count, err := agent.GetExecutionCount(context.Background(), "triage", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected execution count 1, got %d", count)
	}
}

func TestAgent_GetSuccessRate(t *testing.T) {
	a := newTestAnalyzer(t, "",
		newEvent(t, "c1", events.ReasonAgentExecutionComplete, 0, map[string]interface{}{"agentName": "triage"}),
		newEvent(t, "e1", events.ReasonAgentExecutionError, 1, map[string]interface{}{"agentName": "triage"}),
		newEvent(t, "e2", events.ReasonAgentExecutionError, 2, map[string]interface{}{"agentName": "triage"}),
	)
	agent := NewAgent(a)

	rate, err := agent.GetSuccessRate(context.Background(), "triage", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 1.0 / 3.0
	if rate != want {
		t.Errorf("expected success rate %v, got %v", want, rate)
	}
}

func TestAgent_GetErrorDetails(t *testing.T) {
	a := newTestAnalyzer(t, "",
		newEvent(t, "e1", events.ReasonAgentExecutionError, 0, map[string]interface{}{"agentName": "triage", "error": "timeout"}),
	)
	agent := NewAgent(a)

	details, err := agent.GetErrorDetails(context.Background(), "triage", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details) != 1 || details[0] != "timeout" {
		t.Errorf("unexpected error details: %v", details)
	}
}

func TestAgent_GetModelsUsedBy(t *testing.T) {
	a := newTestAnalyzer(t, "",
		newEvent(t, "l1", events.ReasonLLMCallComplete, 0, map[string]interface{}{"agentName": "triage", "modelName": "gpt-4o"}),
		newEvent(t, "l2", events.ReasonLLMCallComplete, 1, map[string]interface{}{"agentName": "other", "modelName": "gpt-4o-mini"}),
	)
	agent := NewAgent(a)

	models, err := agent.GetModelsUsedBy(context.Background(), "triage", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 1 || models[0] != "gpt-4o" {
		t.Errorf("unexpected models: %v", models)
	}
}
