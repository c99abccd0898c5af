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

package registry

import (
	"sort"

	"github.com/mckinsey/ark-evaluator/internal/core"
)

// metricProviders are the providers whose evaluations are described by this
// registry's metric catalog. The native providers (direct, query, baseline,
// batch, event) score against the fixed judge rubric or the DSL rule set,
// neither of which is a registry-described metric.
var metricProviders = map[string]bool{
	"ragas":          true,
	"langfuse-trace": true,
	"langfuse":       true,
}

// Catalog implements httpapi.MetricLister over this package's metric
// registry, scoped to the OSS providers that actually consume it.
type Catalog struct{}

// ListMetrics returns every metric descriptor known to provider, sorted by
// display name for a stable response.
func (Catalog) ListMetrics(provider string) ([]core.MetricDescriptor, error) {
	if !metricProviders[provider] {
		return nil, &core.UnknownProviderError{Requested: provider, Available: sortedKeys(metricProviders)}
	}
	names := Names()
	sort.Strings(names)

	seen := map[string]bool{}
	out := make([]core.MetricDescriptor, 0, len(names))
	for _, name := range names {
		d, ok := Lookup(name)
		if !ok || seen[d.RagasName] {
			continue
		}
		seen[d.RagasName] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

// GetMetric returns the single named metric's descriptor.
func (Catalog) GetMetric(provider, name string) (core.MetricDescriptor, error) {
	if !metricProviders[provider] {
		return core.MetricDescriptor{}, &core.UnknownProviderError{Requested: provider, Available: sortedKeys(metricProviders)}
	}
	d, ok := Lookup(name)
	if !ok {
		return core.MetricDescriptor{}, &core.ResourceNotFoundError{Kind: "Metric", Name: name, Namespace: provider}
	}
	return d, nil
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
