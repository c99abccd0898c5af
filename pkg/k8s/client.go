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

// Package k8s provides the Kubernetes client used by the resource resolver
// to fetch Model, Agent, and Query custom resources and the Secrets/ConfigMaps
// they dereference.
package k8s

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	arkv1alpha1 "github.com/mckinsey/ark-evaluator/api/v1alpha1"
)

// Scheme returns a runtime.Scheme with corev1 and the ark.mckinsey.com CRDs registered.
func Scheme() *runtime.Scheme {
	s := runtime.NewScheme()
	_ = corev1.AddToScheme(s)
	_ = arkv1alpha1.AddToScheme(s)
	return s
}

// NewClient creates a controller-runtime client with the evaluator's CRD scheme
// registered. Uses in-cluster config (service account token) when run inside a
// pod, falling back to the local kubeconfig otherwise.
func NewClient() (client.Client, error) {
	cfg, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("get k8s config: %w", err)
	}
	return NewClientWithConfig(cfg)
}

// NewClientWithConfig creates a client from an explicit rest.Config.
func NewClientWithConfig(cfg *rest.Config) (client.Client, error) {
	c, err := client.New(cfg, client.Options{Scheme: Scheme()})
	if err != nil {
		return nil, fmt.Errorf("create k8s client: %w", err)
	}
	return c, nil
}

// NewClientset creates a client-go clientset using the same in-cluster/
// kubeconfig resolution as NewClient. The event analyzer (C3) uses this
// client directly rather than the controller-runtime client, since
// client-go's typed Events API has no controller-runtime equivalent.
func NewClientset() (kubernetes.Interface, error) {
	cfg, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("get k8s config: %w", err)
	}
	return NewClientsetWithConfig(cfg)
}

// NewClientsetWithConfig creates a clientset from an explicit rest.Config.
func NewClientsetWithConfig(cfg *rest.Config) (kubernetes.Interface, error) {
	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create k8s clientset: %w", err)
	}
	return cs, nil
}
