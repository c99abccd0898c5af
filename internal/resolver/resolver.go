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

// Package resolver implements the model/agent/query reference resolution
// used by every provider: turning a modelRef, agent name, or query
// reference into the concrete configuration a provider can act on.
package resolver

import (
	"context"
	"errors"
	"os"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	arkv1alpha1 "github.com/mckinsey/ark-evaluator/api/v1alpha1"
	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/pkg/k8s"
	"github.com/mckinsey/ark-evaluator/pkg/provider"
)

// defaultModelName is the namespace-default Model CRD name consulted when
// no explicit or query-context model reference is available.
const defaultModelName = "default"

// ModelRef names a Model CRD to resolve, as supplied by request parameters.
type ModelRef struct {
	Name      string
	Namespace string
}

// Resolver implements C1: fetching Model/Agent/Query CRDs and dereferencing
// their ValueSource-typed fields. A nil client puts the resolver into
// "no-Kubernetes" mode, where resolveModel falls through directly to the
// process-level fallback — enabling local development without a cluster.
type Resolver struct {
	client client.Client
}

// New builds a Resolver. c may be nil (no-Kubernetes mode).
func New(c client.Client) *Resolver {
	return &Resolver{client: c}
}

// ResolveModel implements the four-tier resolution order: explicit modelRef,
// then the query's own modelRef (carried as queryModelRef), then the
// namespace's "default" Model, then the process-level fallback built from
// environment variables.
func (r *Resolver) ResolveModel(ctx context.Context, modelRef *ModelRef, queryModelRef *ModelRef, namespace string) (core.ModelConfig, error) {
	if r.client == nil {
		return processFallbackModel()
	}

	for _, ref := range []*ModelRef{modelRef, queryModelRef, {Name: defaultModelName, Namespace: namespace}} {
		if ref == nil || ref.Name == "" {
			continue
		}
		ns := ref.Namespace
		if ns == "" {
			ns = namespace
		}
		model, err := k8s.GetModel(ctx, r.client, ref.Name, ns)
		if err == nil {
			return r.buildModelConfig(ctx, model, ns)
		}
		if !apierrors.IsNotFound(err) {
			return core.ModelConfig{}, mapK8sError(err, "Model", ref.Name, ns)
		}
	}

	return processFallbackModel()
}

// buildModelConfig dereferences the Model CRD's credential fields against
// the appropriate provider-type config block.
func (r *Resolver) buildModelConfig(ctx context.Context, model *arkv1alpha1.Model, namespace string) (core.ModelConfig, error) {
	modelName, err := k8s.ResolveValueSource(ctx, r.client, namespace, model.Spec.Model)
	if err != nil {
		return core.ModelConfig{}, mapK8sError(err, "Model", model.Name, namespace)
	}

	creds := credentialsFor(model.Spec.Config, model.Spec.Type)
	cfg := core.ModelConfig{Model: modelName, Type: string(model.Spec.Type)}
	if creds == nil {
		return cfg, nil
	}

	if creds.APIKey != nil {
		if cfg.APIKey, err = k8s.ResolveValueSource(ctx, r.client, namespace, *creds.APIKey); err != nil {
			return core.ModelConfig{}, mapK8sError(err, "Model", model.Name, namespace)
		}
	}
	if creds.BaseURL != nil {
		if cfg.BaseURL, err = k8s.ResolveValueSource(ctx, r.client, namespace, *creds.BaseURL); err != nil {
			return core.ModelConfig{}, mapK8sError(err, "Model", model.Name, namespace)
		}
	}
	if creds.APIVersion != nil {
		if cfg.APIVersion, err = k8s.ResolveValueSource(ctx, r.client, namespace, *creds.APIVersion); err != nil {
			return core.ModelConfig{}, mapK8sError(err, "Model", model.Name, namespace)
		}
	}
	return cfg, nil
}

func credentialsFor(cfg arkv1alpha1.ModelProviderConfig, t arkv1alpha1.ModelType) *arkv1alpha1.ProviderCredentials {
	switch t {
	case arkv1alpha1.ModelTypeOpenAI:
		return cfg.OpenAI
	case arkv1alpha1.ModelTypeAzure:
		return cfg.Azure
	case arkv1alpha1.ModelTypeBedrock:
		return cfg.Bedrock
	default:
		return nil
	}
}

// processFallbackModel is tier 4: the built-in process-level default,
// reading an API key from the conventional environment variable for
// whichever provider type is configured via ARK_EVALUATOR_DEFAULT_PROVIDER
// (defaulting to openai).
func processFallbackModel() (core.ModelConfig, error) {
	providerType := os.Getenv("ARK_EVALUATOR_DEFAULT_PROVIDER")
	if providerType == "" {
		providerType = string(provider.TypeOpenAI)
	}

	envVar := provider.APIKeyEnvVarName(providerType)
	apiKey := ""
	if envVar != "" {
		apiKey = os.Getenv(envVar)
	}

	baseURL := os.Getenv("ARK_EVALUATOR_DEFAULT_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	model := os.Getenv("ARK_EVALUATOR_DEFAULT_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	return core.ModelConfig{
		Model:   model,
		BaseURL: baseURL,
		APIKey:  apiKey,
		Type:    providerType,
	}, nil
}

// ResolveAgent fetches an Agent CRD and returns its instructions, or nil if
// not found — agent context is optional for scope-aware judging.
func (r *Resolver) ResolveAgent(ctx context.Context, name, namespace string) (*core.AgentInstructions, error) {
	if r.client == nil || name == "" {
		return nil, nil
	}

	agent, err := k8s.GetAgent(ctx, r.client, name, namespace)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, mapK8sError(err, "Agent", name, namespace)
	}

	return &core.AgentInstructions{
		Name:         agent.Name,
		Description:  agent.Spec.Description,
		SystemPrompt: agent.Spec.Prompt,
		ScopeHints:   deriveScopeHints(agent.Spec.Prompt),
	}, nil
}

// deriveScopeHints extracts heuristic scope markers from prompt text, per
// spec's AgentInstructions.scopeHints contract. Kept deliberately small and
// literal: this is a best-effort signal for scope-aware judging, not a
// classifier.
func deriveScopeHints(prompt string) []string {
	var hints []string
	lower := strings.ToLower(prompt)
	if strings.Contains(lower, "only answer questions about") || strings.Contains(lower, "do not answer") {
		hints = append(hints, "should-refuse-non-scope")
	}
	if strings.Contains(lower, "java 8") || strings.Contains(lower, "java8") {
		hints = append(hints, "java8-specific")
	}
	return hints
}

// ResolveQuery fetches a Query CRD by reference.
func (r *Resolver) ResolveQuery(ctx context.Context, ref core.QueryRef) (*arkv1alpha1.Query, error) {
	if r.client == nil {
		return nil, errors.New("query resolution requires a Kubernetes client")
	}

	query, err := k8s.GetQuery(ctx, r.client, ref.Name, ref.Namespace)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, &core.ResourceNotFoundError{Kind: "Query", Name: ref.Name, Namespace: ref.Namespace}
		}
		return nil, mapK8sError(err, "Query", ref.Name, ref.Namespace)
	}
	return query, nil
}

func mapK8sError(err error, kind, name, namespace string) error {
	var missingKey *k8s.MissingKeyError
	switch {
	case apierrors.IsNotFound(err):
		return &core.ResourceNotFoundError{Kind: kind, Name: name, Namespace: namespace}
	case apierrors.IsForbidden(err):
		return &core.ForbiddenError{Resource: kind + "/" + name}
	case errors.As(err, &missingKey):
		return &core.ConfigurationError{Hint: missingKey.Error()}
	default:
		return err
	}
}
