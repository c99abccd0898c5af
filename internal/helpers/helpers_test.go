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

package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/mckinsey/ark-evaluator/internal/events"
)

// newEvent builds a namespace-scoped Event fixture whose Message is the JSON
// encoding of the given metadata, at offsetSeconds past a fixed base time.
func newEvent(t *testing.T, name, reason string, offsetSeconds int, md map[string]interface{}) corev1.Event {
	t.Helper()
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(offsetSeconds) * time.Second)
	body, err := json.Marshal(md)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	return corev1.Event{
		ObjectMeta: metav1.ObjectMeta{Name: fmt.Sprintf("%s-%d", name, offsetSeconds), Namespace: "ns1"},
		Reason:     reason,
		Message:    string(body),
		Type:       corev1.EventTypeNormal,
		FirstTimestamp: metav1.NewTime(ts),
		LastTimestamp:  metav1.NewTime(ts),
		InvolvedObject: corev1.ObjectReference{Kind: "Query", Name: "q1", Namespace: "ns1"},
	}
}

func newTestAnalyzer(t *testing.T, sessionID string, evs ...corev1.Event) *events.Analyzer {
	t.Helper()
	client := fake.NewSimpleClientset()
	ctx := context.Background()
	for i := range evs {
		if _, err := client.CoreV1().Events("ns1").Create(ctx, &evs[i], metav1.CreateOptions{}); err != nil {
			t.Fatalf("create event: %v", err)
		}
	}
	return events.NewAnalyzer(client, "ns1", "q1", sessionID)
}
