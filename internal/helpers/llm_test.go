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

func TestLLM_GetCallCount_CountsStartOnly(t *testing.T) {
	a := newTestAnalyzer(t, "",
		newEvent(t, "s1", events.ReasonLLMCallStart, 0, map[string]interface{}{"modelName": "gpt-4o"}),
		newEvent(t, "c1", events.ReasonLLMCallComplete, 1, map[string]interface{}{"modelName": "gpt-4o", "duration": "1s"}),
	)
	llm := NewLLM(a)

	count, err := llm.GetCallCount(context.Background(), "gpt-4o", events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected call count 1, got %d", count)
	}
}

func TestLLM_GetUsageByModel(t *testing.T) {
	a := newTestAnalyzer(t, "",
		newEvent(t, "c1", events.ReasonLLMCallComplete, 0, map[string]interface{}{"modelName": "gpt-4o"}),
		newEvent(t, "c2", events.ReasonLLMCallComplete, 1, map[string]interface{}{"modelName": "gpt-4o"}),
		newEvent(t, "c3", events.ReasonLLMCallComplete, 2, map[string]interface{}{"modelName": "gpt-4o-mini"}),
	)
	llm := NewLLM(a)

	usage, err := llm.GetUsageByModel(context.Background(), events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage["gpt-4o"] != 2 || usage["gpt-4o-mini"] != 1 {
		t.Errorf("unexpected usage: %v", usage)
	}
}

func TestLLM_GetFastestAndSlowestModel(t *testing.T) {
	a := newTestAnalyzer(t, "",
		newEvent(t, "c1", events.ReasonLLMCallComplete, 0, map[string]interface{}{"modelName": "fast", "duration": "200ms"}),
		newEvent(t, "c2", events.ReasonLLMCallComplete, 1, map[string]interface{}{"modelName": "slow", "duration": "3s"}),
	)
	llm := NewLLM(a)

	fastest, ok, err := llm.GetFastestModel(context.Background(), events.ScopeQuery)
	if err != nil || !ok || fastest != "fast" {
		t.Fatalf("expected fastest 'fast', got %q ok=%v err=%v", fastest, ok, err)
	}

	slowest, ok, err := llm.GetSlowestModel(context.Background(), events.ScopeQuery)
	if err != nil || !ok || slowest != "slow" {
		t.Fatalf("expected slowest 'slow', got %q ok=%v err=%v", slowest, ok, err)
	}
}

func TestLLM_GetFastestModel_NoData(t *testing.T) {
	a := newTestAnalyzer(t, "")
	llm := NewLLM(a)

	_, ok, err := llm.GetFastestModel(context.Background(), events.ScopeQuery)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false with no data")
	}
}
