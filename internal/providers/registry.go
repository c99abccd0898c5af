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

// Package providers implements the evaluation dispatcher: a static registry
// of native providers (direct, query, baseline, batch, event) and OSS
// providers (ragas, langfuse-trace), selected by the request's declared
// type and its "provider" parameter.
package providers

import (
	"context"
	"sort"

	"github.com/go-logr/logr"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/resolver"
)

// nativeAliases are the "provider" parameter values that route by
// request.Type into the native registry rather than the OSS registry.
var nativeAliases = map[string]bool{
	"":        true,
	"ark":     true,
	"default": true,
}

// ossAliases maps an accepted "provider" parameter value to its canonical
// OSS provider key. "langfuse" is accepted as a back-compat alias for
// "langfuse-trace".
var ossAliases = map[string]string{
	"ragas":          "ragas",
	"langfuse-trace": "langfuse-trace",
	"langfuse":       "langfuse-trace",
}

// Provider evaluates one request variant and returns the normalized
// verdict.
type Provider interface {
	Evaluate(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error)
}

// Registry is the static provider set, built once at startup and satisfying
// httpapi.Dispatcher.
type Registry struct {
	native map[core.RequestType]Provider
	oss    map[string]Provider
}

// New builds the full provider registry, wiring every native and OSS
// provider against the shared resolver, Kubernetes clients, and logger.
func New(c client.Client, clientset kubernetes.Interface, log logr.Logger) *Registry {
	res := resolver.New(c)

	reg := &Registry{
		native: map[core.RequestType]Provider{},
		oss:    map[string]Provider{},
	}

	direct := &DirectProvider{resolver: res}
	query := &QueryProvider{resolver: res}
	reg.native[core.RequestTypeDirect] = direct
	reg.native[core.RequestTypeQuery] = query
	reg.native[core.RequestTypeBaseline] = &BaselineProvider{resolver: res}
	reg.native[core.RequestTypeBatch] = &BatchProvider{query: query}
	reg.native[core.RequestTypeEvent] = &EventProvider{clientset: clientset, log: log}

	ragas := &RagasProvider{}
	reg.oss["ragas"] = ragas
	reg.oss["langfuse-trace"] = &LangfuseTraceProvider{inner: ragas, log: log}

	return reg
}

// Dispatch implements httpapi.Dispatcher: it selects native-vs-OSS by the
// "provider" parameter, then the concrete provider by request.Type (native)
// or provider name (OSS).
func (r *Registry) Dispatch(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error) {
	providerParam := req.Parameters.String("provider", "ark")

	if nativeAliases[providerParam] {
		p, ok := r.native[req.Type]
		if !ok {
			return nil, &core.UnknownProviderError{Requested: string(req.Type), Available: r.nativeNames()}
		}
		return p.Evaluate(ctx, req)
	}

	key, ok := ossAliases[providerParam]
	if !ok {
		return nil, &core.UnknownProviderError{Requested: providerParam, Available: r.ossNames()}
	}
	p, ok := r.oss[key]
	if !ok {
		return nil, &core.UnknownProviderError{Requested: providerParam, Available: r.ossNames()}
	}
	return p.Evaluate(ctx, req)
}

func (r *Registry) nativeNames() []string {
	names := make([]string, 0, len(r.native))
	for t := range r.native {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ossNames() []string {
	names := make([]string, 0, len(r.oss))
	for k := range r.oss {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
