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

// LLM answers semantic questions about LLM call events.
type LLM struct {
	analyzer *events.Analyzer
}

// NewLLM builds an LLM facade over analyzer.
func NewLLM(analyzer *events.Analyzer) *LLM {
	return &LLM{analyzer: analyzer}
}

func (l *LLM) llmEvents(ctx context.Context, modelName string, scope events.Scope) ([]events.ParsedEvent, error) {
	es, err := l.analyzer.GetLLMEvents(ctx, scope)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		return es, nil
	}
	filtered := make([]events.ParsedEvent, 0, len(es))
	for _, e := range es {
		if e.Metadata != nil && e.Metadata.ModelName == modelName {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// WereCallsMade reports whether any (or a specific model's) LLM call
// occurred within scope.
func (l *LLM) WereCallsMade(ctx context.Context, modelName string, scope events.Scope) (bool, error) {
	es, err := l.llmEvents(ctx, modelName, scope)
	return len(es) > 0, err
}

// GetCallCount counts LLM calls, using Start events only.
func (l *LLM) GetCallCount(ctx context.Context, modelName string, scope events.Scope) (int, error) {
	es, err := l.llmEvents(ctx, modelName, scope)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range es {
		if e.Reason == events.ReasonLLMCallStart {
			count++
		}
	}
	return count, nil
}

// GetSuccessRate treats any Complete event as success; the vocabulary has no
// dedicated LLMCallError reason, so a call that never completes within scope
// contributes to the denominator via GetCallCount's caller instead.
func (l *LLM) GetSuccessRate(ctx context.Context, modelName string, scope events.Scope) (float64, error) {
	started, err := l.GetCallCount(ctx, modelName, scope)
	if err != nil {
		return 0, err
	}
	es, err := l.llmEvents(ctx, modelName, scope)
	if err != nil {
		return 0, err
	}
	complete := 0
	for _, e := range es {
		if e.Reason == events.ReasonLLMCallComplete {
			complete++
		}
	}
	if started == 0 {
		return 0, nil
	}
	return float64(complete) / float64(started), nil
}

// GetResponseTimes returns the durations (seconds) of completed calls.
func (l *LLM) GetResponseTimes(ctx context.Context, modelName string, scope events.Scope) ([]float64, error) {
	es, err := l.llmEvents(ctx, modelName, scope)
	if err != nil {
		return nil, err
	}
	var times []float64
	for _, e := range es {
		if e.Reason != events.ReasonLLMCallComplete || e.Metadata == nil {
			continue
		}
		if d, ok := parseDuration(e.Metadata.Duration); ok {
			times = append(times, d)
		}
	}
	return times, nil
}

// GetModelsUsed returns the sorted, deduplicated set of model names called
// within scope.
func (l *LLM) GetModelsUsed(ctx context.Context, scope events.Scope) ([]string, error) {
	es, err := l.llmEvents(ctx, "", scope)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, e := range es {
		if e.Metadata != nil && e.Metadata.ModelName != "" {
			seen[e.Metadata.ModelName] = true
		}
	}
	return sortedKeys(seen), nil
}

// GetUsageByModel returns a call count per model, counting Complete events.
func (l *LLM) GetUsageByModel(ctx context.Context, scope events.Scope) (map[string]int, error) {
	es, err := l.llmEvents(ctx, "", scope)
	if err != nil {
		return nil, err
	}
	usage := map[string]int{}
	for _, e := range es {
		if e.Reason == events.ReasonLLMCallComplete && e.Metadata != nil && e.Metadata.ModelName != "" {
			usage[e.Metadata.ModelName]++
		}
	}
	return usage, nil
}

// GetFastestModel returns the model with the lowest average response time,
// or ("", false) if no model produced any timed call.
func (l *LLM) GetFastestModel(ctx context.Context, scope events.Scope) (string, bool, error) {
	return l.extremeModel(ctx, scope, func(best, candidate float64) bool { return candidate < best })
}

// GetSlowestModel returns the model with the highest average response time,
// or ("", false) if no model produced any timed call.
func (l *LLM) GetSlowestModel(ctx context.Context, scope events.Scope) (string, bool, error) {
	return l.extremeModel(ctx, scope, func(best, candidate float64) bool { return candidate > best })
}

func (l *LLM) extremeModel(ctx context.Context, scope events.Scope, better func(best, candidate float64) bool) (string, bool, error) {
	models, err := l.GetModelsUsed(ctx, scope)
	if err != nil {
		return "", false, err
	}
	var chosen string
	var chosenAvg float64
	found := false
	for _, model := range models {
		times, err := l.GetResponseTimes(ctx, model, scope)
		if err != nil {
			return "", false, err
		}
		avg, ok := average(times)
		if !ok {
			continue
		}
		if !found || better(chosenAvg, avg) {
			chosen, chosenAvg, found = model, avg, true
		}
	}
	return chosen, found, nil
}
