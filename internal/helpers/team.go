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

// Team answers semantic questions about team-execution events. Teams have no
// dedicated Error reason in the event vocabulary; TeamMember carries
// per-member outcomes instead, so success is assessed member-by-member.
type Team struct {
	analyzer *events.Analyzer
}

// NewTeam builds a Team facade over analyzer.
func NewTeam(analyzer *events.Analyzer) *Team {
	return &Team{analyzer: analyzer}
}

func (t *Team) teamEvents(ctx context.Context, name string, scope events.Scope) ([]events.ParsedEvent, error) {
	return t.analyzer.GetEvents(ctx, scope, func(e events.ParsedEvent) bool {
		switch e.Reason {
		case events.ReasonTeamExecutionStart, events.ReasonTeamExecutionComplete, events.ReasonTeamMember:
		default:
			return false
		}
		if name == "" {
			return true
		}
		return e.Metadata != nil && e.Metadata.TeamName == name
	}, 0)
}

// WasExecuted reports whether any (or a specific) team ran within scope.
func (t *Team) WasExecuted(ctx context.Context, name string, scope events.Scope) (bool, error) {
	es, err := t.teamEvents(ctx, name, scope)
	return len(es) > 0, err
}

// GetExecutionCount counts team executions, using Start events only.
func (t *Team) GetExecutionCount(ctx context.Context, name string, scope events.Scope) (int, error) {
	es, err := t.teamEvents(ctx, name, scope)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range es {
		if e.Reason == events.ReasonTeamExecutionStart {
			count++
		}
	}
	return count, nil
}

// GetSuccessRate treats a team run as successful if it reached
// TeamExecutionComplete and failed if a TeamMember event carried an error,
// mirroring the absence of a dedicated TeamExecutionError reason.
func (t *Team) GetSuccessRate(ctx context.Context, name string, scope events.Scope) (float64, error) {
	es, err := t.teamEvents(ctx, name, scope)
	if err != nil {
		return 0, err
	}
	var complete, failed int
	for _, e := range es {
		switch {
		case e.Reason == events.ReasonTeamExecutionComplete:
			complete++
		case e.Reason == events.ReasonTeamMember && e.Metadata != nil && e.Metadata.Error != "":
			failed++
		}
	}
	return successRate(complete, failed), nil
}
