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

package providers

import (
	"strconv"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/resolver"
)

const defaultNamespace = "default"

// namespaceFromParams reads the request's target namespace, defaulting to
// "default" when the caller (typically a cluster-local controller) omits
// it.
func namespaceFromParams(p core.Params) string {
	return p.String("namespace", defaultNamespace)
}

// modelRefFromParams builds an explicit model reference from model.name /
// model.namespace parameters, or nil when no model name was supplied —
// letting the resolver fall through to its namespace-default and
// process-fallback tiers.
func modelRefFromParams(p core.Params) *resolver.ModelRef {
	name := p.String("model.name", "")
	if name == "" {
		return nil
	}
	return &resolver.ModelRef{Name: name, Namespace: p.String("model.namespace", "")}
}

// minScoreFromParams reads min-score, returning 0 when it is absent or
// unparseable. scoring.Judge treats 0 as its default (0.7); baseline.Run
// does not, so the baseline provider substitutes that default itself.
func minScoreFromParams(p core.Params) float64 {
	raw := p.String("min-score", "")
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}
