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

package expr

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/mckinsey/ark-evaluator/internal/events"
)

var fixtureBase = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newEvent(t *testing.T, name, reason string, offsetSeconds int, md map[string]interface{}) corev1.Event {
	t.Helper()
	message := ""
	if md != nil {
		b, err := json.Marshal(md)
		if err != nil {
			t.Fatalf("marshal metadata: %v", err)
		}
		message = string(b)
	}
	ts := metav1.NewTime(fixtureBase.Add(time.Duration(offsetSeconds) * time.Second))
	return corev1.Event{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "ns1"},
		InvolvedObject: corev1.ObjectReference{
			Kind: "Query", Name: "q1", Namespace: "ns1",
		},
		Reason:         reason,
		Message:        message,
		FirstTimestamp: ts,
		LastTimestamp:  ts,
		Type:           "Normal",
	}
}

func newTestEvaluator(t *testing.T, evs ...corev1.Event) *Evaluator {
	t.Helper()
	client := fake.NewSimpleClientset()
	ctx := context.Background()
	for i := range evs {
		if _, err := client.CoreV1().Events("ns1").Create(ctx, &evs[i], metav1.CreateOptions{}); err != nil {
			t.Fatalf("create event: %v", err)
		}
	}
	analyzer := events.NewAnalyzer(client, "ns1", "q1", "")
	return New(analyzer, logr.Discard())
}
