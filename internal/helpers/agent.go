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
	"strings"

	"github.com/mckinsey/ark-evaluator/internal/events"
)

// Agent answers semantic questions about agent-execution events.
type Agent struct {
	analyzer *events.Analyzer
}

// NewAgent builds an Agent facade over analyzer.
func NewAgent(analyzer *events.Analyzer) *Agent {
	return &Agent{analyzer: analyzer}
}

func (a *Agent) agentEvents(ctx context.Context, name string, scope events.Scope) ([]events.ParsedEvent, error) {
	return a.analyzer.GetEvents(ctx, scope, func(e events.ParsedEvent) bool {
		switch e.Reason {
		case events.ReasonAgentExecutionStart, events.ReasonAgentExecutionComplete, events.ReasonAgentExecutionError:
		default:
			return false
		}
		if name == "" {
			return true
		}
		return e.Metadata != nil && e.Metadata.AgentName == name
	}, 0)
}

// WasExecuted reports whether any (or a specific) agent ran within scope.
func (a *Agent) WasExecuted(ctx context.Context, name string, scope events.Scope) (bool, error) {
	es, err := a.agentEvents(ctx, name, scope)
	return len(es) > 0, err
}

// GetExecutionCount counts agent executions, using Start events only.
func (a *Agent) GetExecutionCount(ctx context.Context, name string, scope events.Scope) (int, error) {
	es, err := a.agentEvents(ctx, name, scope)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range es {
		if e.Reason == events.ReasonAgentExecutionStart {
			count++
		}
	}
	return count, nil
}

// GetSuccessRate is completeCount / (completeCount + errorCount).
func (a *Agent) GetSuccessRate(ctx context.Context, name string, scope events.Scope) (float64, error) {
	es, err := a.agentEvents(ctx, name, scope)
	if err != nil {
		return 0, err
	}
	var complete, failed int
	for _, e := range es {
		switch e.Reason {
		case events.ReasonAgentExecutionComplete:
			complete++
		case events.ReasonAgentExecutionError:
			failed++
		}
	}
	return successRate(complete, failed), nil
}

// GetExecutionTimes returns the durations (seconds) of successful executions.
func (a *Agent) GetExecutionTimes(ctx context.Context, name string, scope events.Scope) ([]float64, error) {
	es, err := a.agentEvents(ctx, name, scope)
	if err != nil {
		return nil, err
	}
	var times []float64
	for _, e := range es {
		if e.Reason != events.ReasonAgentExecutionComplete || e.Metadata == nil {
			continue
		}
		if d, ok := parseDuration(e.Metadata.Duration); ok {
			times = append(times, d)
		}
	}
	return times, nil
}

// GetErrorDetails returns the error message (or, absent structured metadata,
// the free-text message) of every failed execution.
func (a *Agent) GetErrorDetails(ctx context.Context, name string, scope events.Scope) ([]string, error) {
	es, err := a.agentEvents(ctx, name, scope)
	if err != nil {
		return nil, err
	}
	var details []string
	for _, e := range es {
		if e.Reason != events.ReasonAgentExecutionError {
			continue
		}
		switch {
		case e.Metadata != nil && e.Metadata.Error != "":
			details = append(details, e.Metadata.Error)
		case strings.Contains(strings.ToLower(e.Message), "error"):
			details = append(details, e.Message)
		}
	}
	return details, nil
}

// GetAgentsUsed returns the sorted, deduplicated set of agent names seen
// within scope.
func (a *Agent) GetAgentsUsed(ctx context.Context, scope events.Scope) ([]string, error) {
	es, err := a.agentEvents(ctx, "", scope)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, e := range es {
		if e.Metadata != nil && e.Metadata.AgentName != "" {
			seen[e.Metadata.AgentName] = true
		}
	}
	return sortedKeys(seen), nil
}

// GetModelsUsedBy returns the sorted, deduplicated set of model names a
// specific agent invoked, derived from LLM call events attributed to it.
func (a *Agent) GetModelsUsedBy(ctx context.Context, agentName string, scope events.Scope) ([]string, error) {
	llmEvents, err := a.analyzer.GetLLMEvents(ctx, scope)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, e := range llmEvents {
		if e.Metadata != nil && e.Metadata.AgentName == agentName && e.Metadata.ModelName != "" {
			seen[e.Metadata.ModelName] = true
		}
	}
	return sortedKeys(seen), nil
}
