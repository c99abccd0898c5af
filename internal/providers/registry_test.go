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
	"context"
	"testing"

	"github.com/go-logr/logr"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/mckinsey/ark-evaluator/internal/core"
)

func TestDispatch_DirectRoutesByRequestType(t *testing.T) {
	srv := chatServerAlwaysReplying(t, "SCORE: 0.6\nPASSED: false\n")
	t.Setenv("ARK_EVALUATOR_DEFAULT_BASE_URL", srv.URL)
	t.Setenv("ARK_EVALUATOR_DEFAULT_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	reg := New(nil, fake.NewSimpleClientset(), logr.Discard())
	resp, err := reg.Dispatch(context.Background(), core.EvaluationRequest{
		Type:   core.RequestTypeDirect,
		Config: core.RequestConfig{Input: "q", Output: "a"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ScoreFloat() != 0.6 {
		t.Errorf("expected score 0.6, got %v", resp.ScoreFloat())
	}
}

func TestDispatch_UnknownNativeTypeIsUnknownProviderError(t *testing.T) {
	reg := New(nil, fake.NewSimpleClientset(), logr.Discard())
	_, err := reg.Dispatch(context.Background(), core.EvaluationRequest{Type: "not-a-real-type"})
	if _, ok := err.(*core.UnknownProviderError); !ok {
		t.Fatalf("expected UnknownProviderError, got %v", err)
	}
}

func TestDispatch_OSSProviderByName(t *testing.T) {
	srv := chatServerAlwaysReplying(t, "SCORE: 0.7\n")
	reg := New(nil, fake.NewSimpleClientset(), logr.Discard())
	resp, err := reg.Dispatch(context.Background(), core.EvaluationRequest{
		Parameters: core.Params{
			"provider":        "ragas",
			"openai.api_key":  "sk-test",
			"openai.base_url": srv.URL,
		},
		Config: core.RequestConfig{Input: "q", Output: "a"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ScoreFloat() != 0.7 {
		t.Errorf("expected score 0.7, got %v", resp.ScoreFloat())
	}
}

func TestDispatch_LangfuseAliasRoutesToLangfuseTrace(t *testing.T) {
	srv := chatServerAlwaysReplying(t, "SCORE: 0.5\n")
	reg := New(nil, fake.NewSimpleClientset(), logr.Discard())
	resp, err := reg.Dispatch(context.Background(), core.EvaluationRequest{
		Parameters: core.Params{
			"provider":        "langfuse",
			"openai.api_key":  "sk-test",
			"openai.base_url": srv.URL,
		},
		Config: core.RequestConfig{Input: "q", Output: "a"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ScoreFloat() != 0.5 {
		t.Errorf("expected score 0.5, got %v", resp.ScoreFloat())
	}
}

func TestDispatch_UnknownOSSProviderIsUnknownProviderError(t *testing.T) {
	reg := New(nil, fake.NewSimpleClientset(), logr.Discard())
	_, err := reg.Dispatch(context.Background(), core.EvaluationRequest{
		Parameters: core.Params{"provider": "not-registered"},
	})
	if _, ok := err.(*core.UnknownProviderError); !ok {
		t.Fatalf("expected UnknownProviderError, got %v", err)
	}
}
