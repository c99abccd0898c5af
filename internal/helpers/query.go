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

// Query answers semantic questions about a query's own resolution lifecycle
// and, at session scope, aggregate session statistics.
type Query struct {
	analyzer *events.Analyzer
}

// NewQuery builds a Query facade over analyzer.
func NewQuery(analyzer *events.Analyzer) *Query {
	return &Query{analyzer: analyzer}
}

// WasResolved reports whether a QueryResolveComplete event occurred.
func (q *Query) WasResolved(ctx context.Context, scope events.Scope) (bool, error) {
	es, err := q.analyzer.GetEvents(ctx, scope, nil, 0)
	if err != nil {
		return false, err
	}
	for _, e := range es {
		if e.Reason == events.ReasonQueryResolveComplete {
			return true, nil
		}
	}
	return false, nil
}

// GetExecutionTime returns the duration in seconds from the first
// QueryResolveStart to the first QueryResolveComplete after it, or
// (0, false) if either is missing.
func (q *Query) GetExecutionTime(ctx context.Context, scope events.Scope) (float64, bool, error) {
	seq := NewSequence(q.analyzer)
	return seq.GetTimeBetweenEvents(ctx, events.ReasonQueryResolveStart, events.ReasonQueryResolveComplete, scope)
}

// ResolutionStatus is the coarse outcome of a query's resolution lifecycle.
type ResolutionStatus string

const (
	ResolutionSuccess    ResolutionStatus = "success"
	ResolutionError      ResolutionStatus = "error"
	ResolutionIncomplete ResolutionStatus = "incomplete"
	ResolutionUnknown    ResolutionStatus = "unknown"
)

// GetResolutionStatus classifies the query's outcome from its resolve
// events: an error event always wins, then completion, then a start with no
// conclusion is "incomplete", and no events at all is "unknown".
func (q *Query) GetResolutionStatus(ctx context.Context, scope events.Scope) (ResolutionStatus, error) {
	es, err := q.analyzer.GetEvents(ctx, scope, nil, 0)
	if err != nil {
		return "", err
	}
	var hasStart, hasComplete, hasError bool
	for _, e := range es {
		switch e.Reason {
		case events.ReasonQueryResolveStart:
			hasStart = true
		case events.ReasonQueryResolveComplete:
			hasComplete = true
		case events.ReasonQueryResolveError:
			hasError = true
		}
	}
	switch {
	case hasError:
		return ResolutionError, nil
	case hasComplete:
		return ResolutionSuccess, nil
	case hasStart:
		return ResolutionIncomplete, nil
	default:
		return ResolutionUnknown, nil
	}
}

// GetErrorDetails returns the error message (or fallback free-text message)
// of every QueryResolveError event within scope.
func (q *Query) GetErrorDetails(ctx context.Context, scope events.Scope) ([]string, error) {
	es, err := q.analyzer.GetEvents(ctx, scope, nil, 0)
	if err != nil {
		return nil, err
	}
	var details []string
	for _, e := range es {
		if e.Reason != events.ReasonQueryResolveError {
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

// SessionSummary aggregates session-scoped statistics for reporting.
type SessionSummary struct {
	QueryCount        int
	TotalEvents       int
	QuerySuccessRate  float64
	AgentSuccessRate  float64
	ToolSuccessRate   float64
	AgentsUsed        []string
	ToolsUsed         []string
	ModelsUsed        []string
	EventTypeCounts   map[string]int
}

// GetSessionSummary aggregates counts, success rates, and participant lists
// across every event in session scope.
func (q *Query) GetSessionSummary(ctx context.Context, scope events.Scope) (SessionSummary, error) {
	es, err := q.analyzer.GetEvents(ctx, scope, nil, 0)
	if err != nil {
		return SessionSummary{}, err
	}

	counts := map[string]int{}
	queryIDs := map[string]bool{}
	agents := map[string]bool{}
	tools := map[string]bool{}
	models := map[string]bool{}

	for _, e := range es {
		counts[e.Reason]++
		if e.Reason == events.ReasonQueryResolveStart && e.Metadata != nil && e.Metadata.QueryID != "" {
			queryIDs[e.Metadata.QueryID] = true
		}
		if e.Metadata == nil {
			continue
		}
		if e.Metadata.AgentName != "" {
			agents[e.Metadata.AgentName] = true
		}
		if e.Metadata.ToolName != "" {
			tools[e.Metadata.ToolName] = true
		}
		if e.Metadata.ModelName != "" {
			models[e.Metadata.ModelName] = true
		}
	}

	successfulQueries := counts[events.ReasonQueryResolveComplete]
	failedQueries := counts[events.ReasonQueryResolveError]
	totalQueries := successfulQueries + failedQueries
	if len(queryIDs) > totalQueries {
		totalQueries = len(queryIDs)
	}

	summary := SessionSummary{
		QueryCount:      len(queryIDs),
		TotalEvents:     len(es),
		AgentsUsed:      sortedKeys(agents),
		ToolsUsed:       sortedKeys(tools),
		ModelsUsed:      sortedKeys(models),
		EventTypeCounts: counts,
	}
	if totalQueries > 0 {
		summary.QuerySuccessRate = float64(successfulQueries) / float64(totalQueries)
	}
	summary.AgentSuccessRate = successRate(counts[events.ReasonAgentExecutionComplete], counts[events.ReasonAgentExecutionError])
	summary.ToolSuccessRate = successRate(counts[events.ReasonToolCallComplete], counts[events.ReasonToolCallError])
	return summary, nil
}
