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
	"errors"
	"testing"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	arkv1alpha1 "github.com/mckinsey/ark-evaluator/api/v1alpha1"
)

func TestGetModel_Found(t *testing.T) {
	s := Scheme()
	m := &arkv1alpha1.Model{
		ObjectMeta: metav1.ObjectMeta{Name: "gpt4o", Namespace: "default"},
		Spec: arkv1alpha1.ModelSpec{
			Type:  arkv1alpha1.ModelTypeOpenAI,
			Model: arkv1alpha1.ValueSource{Value: "gpt-4o"},
		},
	}
	c := fake.NewClientBuilder().WithScheme(s).WithRuntimeObjects(m).Build()

	got, err := GetModel(context.Background(), c, "gpt4o", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Spec.Model.Value != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %s", got.Spec.Model.Value)
	}
}

func TestGetModel_NotFound(t *testing.T) {
	c := fake.NewClientBuilder().WithScheme(Scheme()).Build()

	_, err := GetModel(context.Background(), c, "nonexistent", "default")
	if err == nil {
		t.Fatal("expected error for not found")
	}
}

func TestGetAgent_Found(t *testing.T) {
	s := Scheme()
	a := &arkv1alpha1.Agent{
		ObjectMeta: metav1.ObjectMeta{Name: "java-expert", Namespace: "default"},
		Spec:       arkv1alpha1.AgentSpec{Prompt: "You are a Java expert."},
	}
	c := fake.NewClientBuilder().WithScheme(s).WithRuntimeObjects(a).Build()

	got, err := GetAgent(context.Background(), c, "java-expert", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Spec.Prompt == "" {
		t.Error("expected non-empty prompt")
	}
}

func TestGetQuery_Found(t *testing.T) {
	s := Scheme()
	q := &arkv1alpha1.Query{
		ObjectMeta: metav1.ObjectMeta{Name: "q1", Namespace: "default"},
		Spec:       arkv1alpha1.QuerySpec{Input: "what is 2+2?"},
		Status: arkv1alpha1.QueryStatus{
			Phase: arkv1alpha1.QueryPhaseDone,
			Responses: []arkv1alpha1.QueryResponse{
				{Target: arkv1alpha1.QueryTarget{Type: "model", Name: "b"}, Content: "4"},
			},
		},
	}
	c := fake.NewClientBuilder().WithScheme(s).WithRuntimeObjects(q).Build()

	got, err := GetQuery(context.Background(), c, "q1", "default")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Status.Responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(got.Status.Responses))
	}
}

func TestResolveValueSource(t *testing.T) {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "openai-creds", Namespace: "default"},
		Data:       map[string][]byte{"api-key": []byte("sk-test")},
	}
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "model-config", Namespace: "default"},
		Data:       map[string]string{"baseUrl": "https://api.openai.com/v1"},
	}
	c := fake.NewClientBuilder().WithScheme(Scheme()).WithRuntimeObjects(secret, cm).Build()

	tests := []struct {
		name    string
		vs      arkv1alpha1.ValueSource
		want    string
		wantErr bool
	}{
		{
			name: "literal value",
			vs:   arkv1alpha1.ValueSource{Value: "gpt-4o"},
			want: "gpt-4o",
		},
		{
			name: "secret key ref",
			vs: arkv1alpha1.ValueSource{ValueFrom: &arkv1alpha1.ValueFromSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: "openai-creds"},
					Key:                  "api-key",
				},
			}},
			want: "sk-test",
		},
		{
			name: "configmap key ref",
			vs: arkv1alpha1.ValueSource{ValueFrom: &arkv1alpha1.ValueFromSource{
				ConfigMapKeyRef: &corev1.ConfigMapKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: "model-config"},
					Key:                  "baseUrl",
				},
			}},
			want: "https://api.openai.com/v1",
		},
		{
			name: "missing secret key",
			vs: arkv1alpha1.ValueSource{ValueFrom: &arkv1alpha1.ValueFromSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: "openai-creds"},
					Key:                  "missing",
				},
			}},
			wantErr: true,
		},
		{
			name: "secret not found",
			vs: arkv1alpha1.ValueSource{ValueFrom: &arkv1alpha1.ValueFromSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: "nonexistent"},
					Key:                  "api-key",
				},
			}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveValueSource(context.Background(), c, "default", tt.vs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveValueSource() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want {
				t.Errorf("ResolveValueSource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveValueSource_MissingKeyReturnsTypedError(t *testing.T) {
	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{Name: "openai-creds", Namespace: "default"},
		Data:       map[string][]byte{"api-key": []byte("sk-test")},
	}
	c := fake.NewClientBuilder().WithScheme(Scheme()).WithRuntimeObjects(secret).Build()

	_, err := ResolveValueSource(context.Background(), c, "default", arkv1alpha1.ValueSource{
		ValueFrom: &arkv1alpha1.ValueFromSource{
			SecretKeyRef: &corev1.SecretKeySelector{
				LocalObjectReference: corev1.LocalObjectReference{Name: "openai-creds"},
				Key:                  "missing",
			},
		},
	})

	var missingKey *MissingKeyError
	if !errors.As(err, &missingKey) {
		t.Fatalf("expected *MissingKeyError, got %T: %v", err, err)
	}
	if missingKey.Key != "missing" || missingKey.ResourceKind != "Secret" {
		t.Errorf("unexpected MissingKeyError fields: %+v", missingKey)
	}
}
