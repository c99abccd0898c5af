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
	"encoding/json"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// QueryTarget identifies a resource that a Query was (or should be) resolved
// against: either an Agent, a Model, or a Team, by name.
type QueryTarget struct {
	// type is the kind of the target ("agent", "model", or "team").
	// +kubebuilder:validation:Required
	Type string `json:"type"`

	// name is the name of the target resource.
	// +kubebuilder:validation:Required
	Name string `json:"name"`
}

// QuerySpec defines the desired state of Query.
type QuerySpec struct {
	// input is the prompt or user message submitted to the targets.
	// +kubebuilder:validation:Required
	Input string `json:"input"`

	// targets lists the Agents, Models, or Teams this query is addressed to.
	// +optional
	Targets []QueryTarget `json:"targets,omitempty"`
}

// QueryResponse pairs a resolved target with the content it produced.
type QueryResponse struct {
	// target is the Agent, Model, or Team that produced this response.
	Target QueryTarget `json:"target"`

	// content is the response text.
	// +optional
	Content string `json:"content,omitempty"`

	// error, when non-empty, describes why this target failed to respond.
	// +optional
	Error string `json:"error,omitempty"`
}

// TokenUsage reports token consumption for a completed query.
type TokenUsage struct {
	// promptTokens is the number of tokens in the submitted prompt.
	// +optional
	PromptTokens int `json:"promptTokens,omitempty"`

	// completionTokens is the number of tokens in the generated response.
	// +optional
	CompletionTokens int `json:"completionTokens,omitempty"`

	// totalTokens is promptTokens plus completionTokens.
	// +optional
	TotalTokens int `json:"totalTokens,omitempty"`
}

// QueryDuration records how long a query took to resolve. The controller
// ecosystem has been observed to serialize this both as a Go-style duration
// string ("1.5s") and as a {seconds, microseconds} object; QueryDuration
// accepts either on unmarshal and always marshals back to the string form.
// +kubebuilder:validation:Type=string
type QueryDuration struct {
	time.Duration `json:"-"`
}

type queryDurationParts struct {
	Seconds      int64 `json:"seconds"`
	Microseconds int64 `json:"microseconds"`
}

// UnmarshalJSON accepts either a duration string ("1.5s") or a
// {seconds, microseconds} object.
func (d *QueryDuration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return fmt.Errorf("parse query duration %q: %w", s, perr)
		}
		d.Duration = parsed
		return nil
	}

	var parts queryDurationParts
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("unmarshal query duration: %w", err)
	}
	d.Duration = time.Duration(parts.Seconds)*time.Second + time.Duration(parts.Microseconds)*time.Microsecond
	return nil
}

// MarshalJSON always produces the Go duration string form.
func (d QueryDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *QueryDuration) DeepCopyInto(out *QueryDuration) {
	*out = *in
}

// QueryPhase represents a Query's lifecycle phase as reported by the
// controller ecosystem.
// +kubebuilder:validation:Enum=pending;running;done;error
type QueryPhase string

const (
	// QueryPhasePending indicates the query has not started executing.
	QueryPhasePending QueryPhase = "pending"
	// QueryPhaseRunning indicates the query is actively being resolved.
	QueryPhaseRunning QueryPhase = "running"
	// QueryPhaseDone indicates the query resolved successfully.
	QueryPhaseDone QueryPhase = "done"
	// QueryPhaseError indicates the query failed to resolve.
	QueryPhaseError QueryPhase = "error"
)

// QueryStatus defines the observed state of Query.
type QueryStatus struct {
	// phase is the query's current lifecycle phase.
	// +optional
	Phase QueryPhase `json:"phase,omitempty"`

	// responses holds the content returned by each resolved target.
	// +optional
	Responses []QueryResponse `json:"responses,omitempty"`

	// duration is how long the query took to resolve.
	// +optional
	Duration *QueryDuration `json:"duration,omitempty"`

	// tokenUsage reports token consumption for the resolved query.
	// +optional
	TokenUsage *TokenUsage `json:"tokenUsage,omitempty"`
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *QueryStatus) DeepCopyInto(out *QueryStatus) {
	*out = *in
	if in.Responses != nil {
		out.Responses = make([]QueryResponse, len(in.Responses))
		copy(out.Responses, in.Responses)
	}
	if in.Duration != nil {
		d := new(QueryDuration)
		in.Duration.DeepCopyInto(d)
		out.Duration = d
	}
	if in.TokenUsage != nil {
		tu := *in.TokenUsage
		out.TokenUsage = &tu
	}
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// Query is the Schema for the queries API. It records a single request
// dispatched to one or more Agents/Models/Teams and the responses produced.
type Query struct {
	metav1.TypeMeta `json:",inline"`

	// metadata is a standard object metadata
	// +optional
	metav1.ObjectMeta `json:"metadata,omitzero"`

	// spec defines the desired state of Query
	// +required
	Spec QuerySpec `json:"spec"`

	// status defines the observed state of Query
	// +optional
	Status QueryStatus `json:"status,omitzero"`
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *Query) DeepCopyInto(out *Query) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *QuerySpec) DeepCopyInto(out *QuerySpec) {
	*out = *in
	if in.Targets != nil {
		out.Targets = make([]QueryTarget, len(in.Targets))
		copy(out.Targets, in.Targets)
	}
}

// DeepCopy is a deepcopy function, copying the receiver, creating a new Query.
func (in *Query) DeepCopy() *Query {
	if in == nil {
		return nil
	}
	out := new(Query)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject is a deepcopy function, copying the receiver, creating a new runtime.Object.
func (in *Query) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

// +kubebuilder:object:root=true

// QueryList contains a list of Query.
type QueryList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitzero"`
	Items           []Query `json:"items"`
}

// DeepCopyInto is a deepcopy function, copying the receiver, writing into out. in must be non-nil.
func (in *QueryList) DeepCopyInto(out *QueryList) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ListMeta.DeepCopyInto(&out.ListMeta)
	if in.Items != nil {
		out.Items = make([]Query, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy is a deepcopy function, copying the receiver, creating a new QueryList.
func (in *QueryList) DeepCopy() *QueryList {
	if in == nil {
		return nil
	}
	out := new(QueryList)
	in.DeepCopyInto(out)
	return out
}

// DeepCopyObject is a deepcopy function, copying the receiver, creating a new runtime.Object.
func (in *QueryList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}
	return nil
}

func init() {
	SchemeBuilder.Register(&Query{}, &QueryList{})
}
