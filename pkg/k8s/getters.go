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

package k8s

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	arkv1alpha1 "github.com/mckinsey/ark-evaluator/api/v1alpha1"
)

// GetModel fetches a Model CRD by name and namespace.
func GetModel(ctx context.Context, c client.Client, name, namespace string) (*arkv1alpha1.Model, error) {
	m := &arkv1alpha1.Model{}
	key := types.NamespacedName{Name: name, Namespace: namespace}
	if err := c.Get(ctx, key, m); err != nil {
		return nil, fmt.Errorf("get Model %s: %w", key, err)
	}
	return m, nil
}

// GetAgent fetches an Agent CRD by name and namespace.
func GetAgent(ctx context.Context, c client.Client, name, namespace string) (*arkv1alpha1.Agent, error) {
	a := &arkv1alpha1.Agent{}
	key := types.NamespacedName{Name: name, Namespace: namespace}
	if err := c.Get(ctx, key, a); err != nil {
		return nil, fmt.Errorf("get Agent %s: %w", key, err)
	}
	return a, nil
}

// GetQuery fetches a Query CRD by name and namespace.
func GetQuery(ctx context.Context, c client.Client, name, namespace string) (*arkv1alpha1.Query, error) {
	q := &arkv1alpha1.Query{}
	key := types.NamespacedName{Name: name, Namespace: namespace}
	if err := c.Get(ctx, key, q); err != nil {
		return nil, fmt.Errorf("get Query %s: %w", key, err)
	}
	return q, nil
}

// GetSecret fetches a Secret by name and namespace.
func GetSecret(ctx context.Context, c client.Client, name, namespace string) (*corev1.Secret, error) {
	secret := &corev1.Secret{}
	key := types.NamespacedName{Name: name, Namespace: namespace}
	if err := c.Get(ctx, key, secret); err != nil {
		return nil, fmt.Errorf("get Secret %s: %w", key, err)
	}
	return secret, nil
}

// GetConfigMap fetches a ConfigMap by name and namespace.
func GetConfigMap(ctx context.Context, c client.Client, name, namespace string) (*corev1.ConfigMap, error) {
	cm := &corev1.ConfigMap{}
	key := types.NamespacedName{Name: name, Namespace: namespace}
	if err := c.Get(ctx, key, cm); err != nil {
		return nil, fmt.Errorf("get ConfigMap %s: %w", key, err)
	}
	return cm, nil
}

// MissingKeyError reports that a Secret or ConfigMap exists but lacks the
// referenced key. Distinguished from a not-found error so callers can
// surface misconfiguration (missing key) separately from a missing
// resource, per the resolver's "not silent" error contract.
type MissingKeyError struct {
	ResourceKind string
	Namespace    string
	Name         string
	Key          string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s %s/%s has no key %q", e.ResourceKind, e.Namespace, e.Name, e.Key)
}

// ResolveValueSource returns the effective string value for a ValueSource:
// the literal Value if set, otherwise the Secret or ConfigMap key it
// dereferences. namespace is the namespace of the owning resource (Secrets
// and ConfigMaps are always looked up in the same namespace).
func ResolveValueSource(ctx context.Context, c client.Client, namespace string, vs arkv1alpha1.ValueSource) (string, error) {
	if vs.ValueFrom == nil {
		return vs.Value, nil
	}

	switch {
	case vs.ValueFrom.SecretKeyRef != nil:
		ref := vs.ValueFrom.SecretKeyRef
		secret, err := GetSecret(ctx, c, ref.Name, namespace)
		if err != nil {
			return "", err
		}
		data, ok := secret.Data[ref.Key]
		if !ok {
			return "", &MissingKeyError{ResourceKind: "Secret", Namespace: namespace, Name: ref.Name, Key: ref.Key}
		}
		return string(data), nil

	case vs.ValueFrom.ConfigMapKeyRef != nil:
		ref := vs.ValueFrom.ConfigMapKeyRef
		cm, err := GetConfigMap(ctx, c, ref.Name, namespace)
		if err != nil {
			return "", err
		}
		val, ok := cm.Data[ref.Key]
		if !ok {
			return "", &MissingKeyError{ResourceKind: "ConfigMap", Namespace: namespace, Name: ref.Name, Key: ref.Key}
		}
		return val, nil

	default:
		return "", fmt.Errorf("valueFrom set but neither secretKeyRef nor configMapKeyRef is populated")
	}
}
