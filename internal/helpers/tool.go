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

	"github.com/mckinsey/ark-evaluator/internal/events"
)

// Tool answers semantic questions about tool-call events: whether a tool was
// invoked, how often, how reliably, and with what parameters.
type Tool struct {
	analyzer *events.Analyzer
}

// NewTool builds a Tool facade over analyzer.
func NewTool(analyzer *events.Analyzer) *Tool {
	return &Tool{analyzer: analyzer}
}

// toolEvents returns tool-call events, optionally narrowed to a single tool
// name (empty matches every tool).
func (t *Tool) toolEvents(ctx context.Context, name string, scope events.Scope) ([]events.ParsedEvent, error) {
	return t.analyzer.GetEvents(ctx, scope, func(e events.ParsedEvent) bool {
		switch e.Reason {
		case events.ReasonToolCallStart, events.ReasonToolCallComplete, events.ReasonToolCallError:
		default:
			return false
		}
		if name == "" {
			return true
		}
		return e.Metadata != nil && e.Metadata.ToolName == name
	}, 0)
}

// WasCalled reports whether any (or a specific) tool was invoked within scope.
func (t *Tool) WasCalled(ctx context.Context, name string, scope events.Scope) (bool, error) {
	es, err := t.toolEvents(ctx, name, scope)
	return len(es) > 0, err
}

// GetCallCount counts tool invocations. Counted on Start events only, since
// every call emits exactly one Start regardless of how it concludes.
func (t *Tool) GetCallCount(ctx context.Context, name string, scope events.Scope) (int, error) {
	es, err := t.toolEvents(ctx, name, scope)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range es {
		if e.Reason == events.ReasonToolCallStart {
			count++
		}
	}
	return count, nil
}

// GetSuccessRate is completeCount / (completeCount + errorCount), 0 if
// neither occurred.
func (t *Tool) GetSuccessRate(ctx context.Context, name string, scope events.Scope) (float64, error) {
	es, err := t.toolEvents(ctx, name, scope)
	if err != nil {
		return 0, err
	}
	var complete, failed int
	for _, e := range es {
		switch e.Reason {
		case events.ReasonToolCallComplete:
			complete++
		case events.ReasonToolCallError:
			failed++
		}
	}
	return successRate(complete, failed), nil
}

// GetExecutionTimes returns the parsed durations (seconds) carried by tool
// events that recorded one.
func (t *Tool) GetExecutionTimes(ctx context.Context, name string, scope events.Scope) ([]float64, error) {
	es, err := t.toolEvents(ctx, name, scope)
	if err != nil {
		return nil, err
	}
	var times []float64
	for _, e := range es {
		if e.Metadata == nil {
			continue
		}
		if d, ok := parseDuration(e.Metadata.Duration); ok {
			times = append(times, d)
		}
	}
	return times, nil
}

// GetAverageExecutionTime is the mean of GetExecutionTimes, or (0, false) if
// no timed calls exist.
func (t *Tool) GetAverageExecutionTime(ctx context.Context, name string, scope events.Scope) (float64, bool, error) {
	times, err := t.GetExecutionTimes(ctx, name, scope)
	if err != nil {
		return 0, false, err
	}
	avg, ok := average(times)
	return avg, ok, nil
}

// GetParameters returns the parameter maps recorded on calls of the named
// tool (one entry per ToolCallStart that carried parameters).
func (t *Tool) GetParameters(ctx context.Context, name string, scope events.Scope) ([]map[string]interface{}, error) {
	es, err := t.toolEvents(ctx, name, scope)
	if err != nil {
		return nil, err
	}
	var params []map[string]interface{}
	for _, e := range es {
		if e.Metadata != nil && len(e.Metadata.Parameters) > 0 {
			params = append(params, e.Metadata.Parameters)
		}
	}
	return params, nil
}

// GetToolsUsed returns the sorted, deduplicated set of tool names seen within
// scope.
func (t *Tool) GetToolsUsed(ctx context.Context, scope events.Scope) ([]string, error) {
	es, err := t.toolEvents(ctx, "", scope)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, e := range es {
		if e.Metadata != nil && e.Metadata.ToolName != "" {
			seen[e.Metadata.ToolName] = true
		}
	}
	return sortedKeys(seen), nil
}
