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

// Package helpers implements the semantic facades (tool/agent/team/llm/
// sequence/query) the expression evaluator's helper-call rewriting targets.
// Each facade is a thin aggregation over an events.Analyzer's parsed event
// stream — no facade fetches events itself.
package helpers

import (
	"sort"
	"time"
)

// parseDuration parses a Go duration string ("1.234s", "500ms") into
// seconds. Event metadata always carries durations in this form since
// producers format them with time.Duration.String().
func parseDuration(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false
	}
	return d.Seconds(), true
}

func average(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func successRate(complete, errored int) float64 {
	total := complete + errored
	if total == 0 {
		return 0
	}
	return float64(complete) / float64(total)
}

// sortedKeys returns the keys of a presence set in ascending order.
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
