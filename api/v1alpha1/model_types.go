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

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// ModelType defines the LLM provider backing a Model.
// +kubebuilder:validation:Enum=openai;azure;bedrock
type ModelType string

const (
	// ModelTypeOpenAI uses an OpenAI-compatible chat-completions endpoint.
	ModelTypeOpenAI ModelType = "openai"
	// ModelTypeAzure uses an Azure-OpenAI-style deployment endpoint.
	ModelTypeAzure ModelType = "azure"
	// ModelTypeBedrock uses Amazon Bedrock model invocation.
	ModelTypeBedrock ModelType = "bedrock"
)

// ProviderCredentials holds the per-type connection settings for a Model.
// apiKey and baseUrl are required for openai and azure; apiVersion is
// additionally required for azure. Bedrock authenticates via the AWS SDK
// credential chain and generally leaves these unset.
type ProviderCredentials struct {
	// apiKey sources the API key credential.
	// +optional
	APIKey *ValueSource `json:"apiKey,omitempty"`

	// baseUrl sources the provider API base URL.
	// +optional
	BaseURL *ValueSource `json:"baseUrl,omitempty"`

	// apiVersion sources the provider API version (required for azure).
	// +optional
	APIVersion *ValueSource `json:"apiVersion,omitempty"`
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *ProviderCredentials) DeepCopyInto(out *ProviderCredentials) {
	*out = *in
	if in.APIKey != nil {
		out.APIKey = in.APIKey.DeepCopy()
	}
	if in.BaseURL != nil {
		out.BaseURL = in.BaseURL.DeepCopy()
	}
	if in.APIVersion != nil {
		out.APIVersion = in.APIVersion.DeepCopy()
	}
}

// DeepCopy is a deepcopy function, copying the receiver, creating a new ProviderCredentials.
func (in *ProviderCredentials) DeepCopy() *ProviderCredentials {
	if in == nil {
		return nil
	}
	out := new(ProviderCredentials)
	in.DeepCopyInto(out)
	return out
}

// ModelProviderConfig keys provider credentials by provider type. Only the
// entry matching ModelSpec.Type is read by the resolver; the others are
// ignored, which lets a Model be re-typed without discarding unused config.
type ModelProviderConfig struct {
	// openai holds connection settings used when type is "openai".
	// +optional
	OpenAI *ProviderCredentials `json:"openai,omitempty"`

	// azure holds connection settings used when type is "azure".
	// +optional
	Azure *ProviderCredentials `json:"azure,omitempty"`

	// bedrock holds connection settings used when type is "bedrock".
	// +optional
	Bedrock *ProviderCredentials `json:"bedrock,omitempty"`
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *ModelProviderConfig) DeepCopyInto(out *ModelProviderConfig) {
	*out = *in
	if in.OpenAI != nil {
		out.OpenAI = in.OpenAI.DeepCopy()
	}
	if in.Azure != nil {
		out.Azure = in.Azure.DeepCopy()
	}
	if in.Bedrock != nil {
		out.Bedrock = in.Bedrock.DeepCopy()
	}
}

// DeepCopy is a deepcopy function, copying the receiver, creating a new ModelProviderConfig.
func (in *ModelProviderConfig) DeepCopy() *ModelProviderConfig {
	if in == nil {
		return nil
	}
	out := new(ModelProviderConfig)
	in.DeepCopyInto(out)
	return out
}

// ModelSpec defines the desired state of Model.
type ModelSpec struct {
	// type selects the provider dialect used to resolve and call this model.
	// +kubebuilder:validation:Required
	Type ModelType `json:"type"`

	// model sources the model identifier (e.g. "gpt-4o", an Azure deployment name).
	// +kubebuilder:validation:Required
	Model ValueSource `json:"model"`

	// config holds provider-specific connection settings keyed by type.
	// +optional
	Config ModelProviderConfig `json:"config,omitempty"`
}

// ModelPhase represents the last-observed resolvability of a Model.
// +kubebuilder:validation:Enum=Pending;Ready;Error
type ModelPhase string

const (
	// ModelPhasePending indicates the model has not yet been resolved.
	ModelPhasePending ModelPhase = "Pending"
	// ModelPhaseReady indicates the model resolved successfully on last use.
	ModelPhaseReady ModelPhase = "Ready"
	// ModelPhaseError indicates the last resolution attempt failed.
	ModelPhaseError ModelPhase = "Error"
)

// ModelStatus defines the observed state of Model.
type ModelStatus struct {
	// phase is the last-observed resolvability of the model.
	// +optional
	Phase ModelPhase `json:"phase,omitempty"`

	// conditions represent the current state of the Model resource.
	// +listType=map
	// +listMapKey=type
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`

	// observedGeneration is the most recent generation observed by a controller.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *ModelStatus) DeepCopyInto(out *ModelStatus) {
	*out = *in
	if in.Conditions != nil {
		out.Conditions = make([]metav1.Condition, len(in.Conditions))
		for i := range in.Conditions {
			in.Conditions[i].DeepCopyInto(&out.Conditions[i])
		}
	}
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Type",type=string,JSONPath=`.spec.type`
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// Model is the Schema for the models API. It names a single LLM endpoint
// (provider type, model identifier, credentials) that Agents and Queries
// reference by name.
type Model struct {
	metav1.TypeMeta `json:",inline"`

	// metadata is a standard object metadata
	// +optional
	metav1.ObjectMeta `json:"metadata,omitzero"`

	// spec defines the desired state of Model
	// +required
	Spec ModelSpec `json:"spec"`

	// status defines the observed state of Model
	// +optional
	Status ModelStatus `json:"status,omitzero"`
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *Model) DeepCopyInto(out *Model) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *ModelSpec) DeepCopyInto(out *ModelSpec) {
	*out = *in
	in.Model.DeepCopyInto(&out.Model)
	in.Config.DeepCopyInto(&out.Config)
}

// DeepCopy is a deepcopy function, copying the receiver, creating a new Model.
func (in *Model) DeepCopy() *Model {
	if in == nil {
		return nil
	}
	out := new(Model)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject is a deepcopy function, copying the receiver, creating a new runtime.Object.
func (in *Model) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// +kubebuilder:object:root=true

// ModelList contains a list of Model.
type ModelList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitzero"`
	Items           []Model `json:"items"`
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *ModelList) DeepCopyInto(out *ModelList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]Model, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy is a deepcopy function, copying the receiver, creating a new ModelList.
func (in *ModelList) DeepCopy() *ModelList {
	if in == nil {
		return nil
	}
	out := new(ModelList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject is a deepcopy function, copying the receiver, creating a new runtime.Object.
func (in *ModelList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

func init() {
	SchemeBuilder.Register(&Model{}, &ModelList{})
}
