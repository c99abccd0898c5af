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
	"sort"
	"time"

	"github.com/mckinsey/ark-evaluator/internal/events"
)

// Sequence answers questions about the relative order and timing of events,
// independent of which component emitted them.
type Sequence struct {
	analyzer *events.Analyzer
}

// NewSequence builds a Sequence facade over analyzer.
func NewSequence(analyzer *events.Analyzer) *Sequence {
	return &Sequence{analyzer: analyzer}
}

// timestampOf picks an event's ordering timestamp: FirstTimestamp when set,
// else LastTimestamp.
func timestampOf(e events.ParsedEvent) time.Time {
	if !e.FirstTimestamp.IsZero() {
		return e.FirstTimestamp
	}
	return e.LastTimestamp
}

func sortByTime(es []events.ParsedEvent) []events.ParsedEvent {
	sorted := make([]events.ParsedEvent, len(es))
	copy(sorted, es)
	sort.SliceStable(sorted, func(i, j int) bool {
		return timestampOf(sorted[i]).Before(timestampOf(sorted[j]))
	})
	return sorted
}

// CheckExecutionOrder verifies the events within scope contain
// expectedSequence in order. strict requires the reasons to appear
// consecutively; non-strict allows other events interleaved.
func (s *Sequence) CheckExecutionOrder(ctx context.Context, expectedSequence []string, scope events.Scope, strict bool) (bool, error) {
	es, err := s.analyzer.GetEvents(ctx, scope, nil, 0)
	if err != nil {
		return false, err
	}
	if len(es) == 0 {
		return false, nil
	}
	sorted := sortByTime(es)
	if strict {
		return checkStrictSequence(sorted, expectedSequence), nil
	}
	return checkLooseSequence(sorted, expectedSequence), nil
}

func checkStrictSequence(es []events.ParsedEvent, expected []string) bool {
	if len(es) < len(expected) {
		return false
	}
	for i := 0; i <= len(es)-len(expected); i++ {
		match := true
		for j, reason := range expected {
			if es[i+j].Reason != reason {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func checkLooseSequence(es []events.ParsedEvent, expected []string) bool {
	idx := 0
	for _, e := range es {
		if idx < len(expected) && e.Reason == expected[idx] {
			idx++
			if idx == len(expected) {
				return true
			}
		}
	}
	return idx == len(expected)
}

// WasCompleted reports whether every reason in requiredEvents appears
// somewhere within scope, regardless of order.
func (s *Sequence) WasCompleted(ctx context.Context, requiredEvents []string, scope events.Scope) (bool, error) {
	es, err := s.analyzer.GetEvents(ctx, scope, nil, 0)
	if err != nil {
		return false, err
	}
	seen := map[string]bool{}
	for _, e := range es {
		seen[e.Reason] = true
	}
	for _, reason := range requiredEvents {
		if !seen[reason] {
			return false, nil
		}
	}
	return true, nil
}

// GetTimeBetweenEvents returns the gap in seconds between the first
// occurrence of startReason and the first occurrence of endReason after it,
// or (0, false) if either is missing.
func (s *Sequence) GetTimeBetweenEvents(ctx context.Context, startReason, endReason string, scope events.Scope) (float64, bool, error) {
	es, err := s.analyzer.GetEvents(ctx, scope, nil, 0)
	if err != nil {
		return 0, false, err
	}
	sorted := sortByTime(es)

	var start, end *events.ParsedEvent
	for i := range sorted {
		e := &sorted[i]
		switch {
		case e.Reason == startReason && start == nil:
			start = e
		case e.Reason == endReason && start != nil && end == nil:
			end = e
		}
	}
	if start == nil || end == nil {
		return 0, false, nil
	}
	startTime := timestampOf(*start)
	endTime := timestampOf(*end)
	if startTime.IsZero() || endTime.IsZero() {
		return 0, false, nil
	}
	return endTime.Sub(startTime).Seconds(), true, nil
}

// DetectParallelExecution groups events whose timestamps fall within
// thresholdSeconds of the group's first event, returning only groups with
// more than one member.
func (s *Sequence) DetectParallelExecution(ctx context.Context, scope events.Scope, thresholdSeconds float64) ([][]events.ParsedEvent, error) {
	es, err := s.analyzer.GetEvents(ctx, scope, nil, 0)
	if err != nil {
		return nil, err
	}
	sorted := sortByTime(es)

	var groups [][]events.ParsedEvent
	var current []events.ParsedEvent
	var groupStart time.Time

	flush := func() {
		if len(current) > 1 {
			groups = append(groups, current)
		}
	}

	for _, e := range sorted {
		t := timestampOf(e)
		if t.IsZero() {
			continue
		}
		if len(current) == 0 {
			current = []events.ParsedEvent{e}
			groupStart = t
			continue
		}
		if t.Sub(groupStart).Seconds() <= thresholdSeconds {
			current = append(current, e)
			continue
		}
		flush()
		current = []events.ParsedEvent{e}
		groupStart = t
	}
	flush()

	return groups, nil
}
