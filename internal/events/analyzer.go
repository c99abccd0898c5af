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

// Package events fetches and parses the Kubernetes event stream the
// controller ecosystem emits while resolving a Query, and exposes scoped,
// semantic views over it for the expression evaluator's helper set.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/client-go/kubernetes"
)

// Event reasons emitted by the controller ecosystem while resolving a Query.
// Each reason's message is either free text or a JSON document carrying the
// fields enumerated in Metadata.
const (
	ReasonQueryResolveStart     = "QueryResolveStart"
	ReasonQueryResolveComplete  = "QueryResolveComplete"
	ReasonQueryResolveError     = "QueryResolveError"
	ReasonAgentExecutionStart   = "AgentExecutionStart"
	ReasonAgentExecutionComplete = "AgentExecutionComplete"
	ReasonAgentExecutionError   = "AgentExecutionError"
	ReasonToolCallStart         = "ToolCallStart"
	ReasonToolCallComplete      = "ToolCallComplete"
	ReasonToolCallError         = "ToolCallError"
	ReasonTeamExecutionStart    = "TeamExecutionStart"
	ReasonTeamExecutionComplete = "TeamExecutionComplete"
	ReasonTeamMember            = "TeamMember"
	ReasonLLMCallStart          = "LLMCallStart"
	ReasonLLMCallComplete       = "LLMCallComplete"
	ReasonA2ACall               = "A2ACall"
)

// Scope selects which subset of the namespace's event stream GetEvents reads.
type Scope string

const (
	// ScopeAll returns every event in the namespace, unfiltered.
	ScopeAll Scope = "all"
	// ScopeQuery returns events whose involvedObject is the analyzer's Query.
	ScopeQuery Scope = "query"
	// ScopeSession returns events across Queries sharing the analyzer's session ID.
	ScopeSession Scope = "session"
	// ScopeCurrent resolves to ScopeSession when the analyzer has a session ID,
	// and to ScopeQuery otherwise.
	ScopeCurrent Scope = "current"
)

// resolve maps ScopeCurrent to the scope it actually behaves as for this
// analyzer: ScopeSession when a session ID is configured, ScopeQuery
// otherwise. Every other scope is returned unchanged.
func (a *Analyzer) resolve(scope Scope) Scope {
	if scope != ScopeCurrent {
		return scope
	}
	if a.sessionID != "" {
		return ScopeSession
	}
	return ScopeQuery
}

// InvolvedObject identifies the Kubernetes object an event is about.
type InvolvedObject struct {
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
}

// Metadata is the structured payload carried by an event's JSON message, when
// the message parses as JSON rather than free text.
type Metadata struct {
	QueryID    string                 `json:"queryId,omitempty"`
	SessionID  string                 `json:"sessionId,omitempty"`
	AgentName  string                 `json:"agentName,omitempty"`
	TeamName   string                 `json:"teamName,omitempty"`
	ToolName   string                 `json:"toolName,omitempty"`
	ModelName  string                 `json:"modelName,omitempty"`
	Component  string                 `json:"component,omitempty"`
	Duration   string                 `json:"duration,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// ParsedEvent is a Kubernetes event normalized for DSL rule evaluation.
type ParsedEvent struct {
	Name            string
	Namespace       string
	Reason          string
	Message         string
	FirstTimestamp  time.Time
	LastTimestamp   time.Time
	Count           int32
	Type            string
	InvolvedObject  InvolvedObject
	Metadata        *Metadata
}

// parseEvent converts a raw corev1.Event into a ParsedEvent, attempting to
// decode its message as a Metadata JSON document. A message that fails to
// parse as JSON is kept as free text with a nil Metadata.
func parseEvent(e corev1.Event) ParsedEvent {
	last := e.LastTimestamp.Time
	if e.EventTime.After(last) {
		last = e.EventTime.Time
	}

	p := ParsedEvent{
		Name:           e.Name,
		Namespace:      e.Namespace,
		Reason:         e.Reason,
		Message:        e.Message,
		FirstTimestamp: e.FirstTimestamp.Time,
		LastTimestamp:  last,
		Count:          e.Count,
		Type:           e.Type,
		InvolvedObject: InvolvedObject{
			Kind:      e.InvolvedObject.Kind,
			Name:      e.InvolvedObject.Name,
			Namespace: e.InvolvedObject.Namespace,
		},
	}

	var md Metadata
	if err := json.Unmarshal([]byte(e.Message), &md); err == nil {
		p.Metadata = &md
	}
	return p
}

// Analyzer fetches and filters the event stream for a single namespace,
// optionally scoped to one Query (by name) or one agent session (by ID).
type Analyzer struct {
	client    kubernetes.Interface
	namespace string
	queryName string
	sessionID string
}

// NewAnalyzer builds an Analyzer for the given namespace. queryName and
// sessionID may be empty; ScopeQuery (and ScopeCurrent when sessionID is
// empty) requires queryName, and ScopeSession requires sessionID.
func NewAnalyzer(client kubernetes.Interface, namespace, queryName, sessionID string) *Analyzer {
	return &Analyzer{client: client, namespace: namespace, queryName: queryName, sessionID: sessionID}
}

// GetEvents returns events for the given scope, newest-first by
// lastTimestamp, optionally narrowed by filter and capped at limit (0 means
// unlimited).
func (a *Analyzer) GetEvents(ctx context.Context, scope Scope, filter func(ParsedEvent) bool, limit int) ([]ParsedEvent, error) {
	scope = a.resolve(scope)
	raw, err := a.fetch(ctx, scope)
	if err != nil {
		return nil, err
	}

	events := make([]ParsedEvent, 0, len(raw))
	for _, e := range raw {
		p := parseEvent(e)
		switch scope {
		case ScopeQuery:
			if p.InvolvedObject.Kind != "Query" || p.InvolvedObject.Name != a.queryName {
				continue
			}
		case ScopeSession:
			if !a.matchesSession(p) {
				continue
			}
		}
		if filter != nil && !filter(p) {
			continue
		}
		events = append(events, p)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].LastTimestamp.After(events[j].LastTimestamp)
	})

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// fetch performs the Kubernetes List call appropriate to scope. ScopeQuery
// uses a field selector on involvedObject.name/kind, mirroring the providers
// that resolve events for a single Query; ScopeAll and ScopeSession list the
// whole namespace and rely on in-process filtering (sessionId is carried in
// the event message, not a field the API server can select on). ScopeCurrent
// is resolved to ScopeQuery or ScopeSession before fetch is ever called.
func (a *Analyzer) fetch(ctx context.Context, scope Scope) ([]corev1.Event, error) {
	scope = a.resolve(scope)
	opts := metav1.ListOptions{}

	switch scope {
	case ScopeQuery:
		if a.queryName == "" {
			return nil, fmt.Errorf("event scope %q requires a query name", scope)
		}
		opts.FieldSelector = fields.AndSelectors(
			fields.OneTermEqualSelector("involvedObject.name", a.queryName),
			fields.OneTermEqualSelector("involvedObject.kind", "Query"),
		).String()
	case ScopeSession:
		if a.sessionID == "" {
			return nil, fmt.Errorf("event scope %q requires a session ID", scope)
		}
	case ScopeAll:
		// no selector
	default:
		return nil, fmt.Errorf("unknown event scope %q", scope)
	}

	list, err := a.client.CoreV1().Events(a.namespace).List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list events in %s: %w", a.namespace, err)
	}
	return list.Items, nil
}

func (a *Analyzer) matchesSession(p ParsedEvent) bool {
	return p.Metadata != nil && p.Metadata.SessionID == a.sessionID
}

// GetToolEvents returns tool call events (ToolCallStart/Complete/Error).
func (a *Analyzer) GetToolEvents(ctx context.Context, scope Scope) ([]ParsedEvent, error) {
	return a.GetEvents(ctx, scope, func(e ParsedEvent) bool {
		return e.Reason == ReasonToolCallStart || e.Reason == ReasonToolCallComplete || e.Reason == ReasonToolCallError
	}, 0)
}

// GetAgentEvents returns agent execution events.
func (a *Analyzer) GetAgentEvents(ctx context.Context, scope Scope) ([]ParsedEvent, error) {
	return a.GetEvents(ctx, scope, func(e ParsedEvent) bool {
		return e.Reason == ReasonAgentExecutionStart || e.Reason == ReasonAgentExecutionComplete || e.Reason == ReasonAgentExecutionError
	}, 0)
}

// GetTeamEvents returns team execution events.
func (a *Analyzer) GetTeamEvents(ctx context.Context, scope Scope) ([]ParsedEvent, error) {
	return a.GetEvents(ctx, scope, func(e ParsedEvent) bool {
		return e.Reason == ReasonTeamExecutionStart || e.Reason == ReasonTeamExecutionComplete || e.Reason == ReasonTeamMember
	}, 0)
}

// GetLLMEvents returns LLM call events.
func (a *Analyzer) GetLLMEvents(ctx context.Context, scope Scope) ([]ParsedEvent, error) {
	return a.GetEvents(ctx, scope, func(e ParsedEvent) bool {
		return e.Reason == ReasonLLMCallStart || e.Reason == ReasonLLMCallComplete
	}, 0)
}

// GetErrorEvents returns every event whose reason denotes a failure.
func (a *Analyzer) GetErrorEvents(ctx context.Context, scope Scope) ([]ParsedEvent, error) {
	return a.GetEvents(ctx, scope, func(e ParsedEvent) bool {
		switch e.Reason {
		case ReasonQueryResolveError, ReasonAgentExecutionError, ReasonToolCallError:
			return true
		default:
			return e.Type == corev1.EventTypeWarning
		}
	}, 0)
}

// CountEventsByType tallies events by reason within scope.
func (a *Analyzer) CountEventsByType(ctx context.Context, scope Scope) (map[string]int, error) {
	events, err := a.GetEvents(ctx, scope, nil, 0)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Reason]++
	}
	return counts, nil
}
