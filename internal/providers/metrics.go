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
	"time"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/pkg/metrics"
)

// Dispatcher is the interface every layer in front of the registry depends
// on; Registry and InstrumentedDispatcher both satisfy it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error)
}

// InstrumentedDispatcher wraps a Dispatcher and records per-request
// evaluation metrics around every Dispatch call, independent of which
// provider actually served the request.
type InstrumentedDispatcher struct {
	inner   Dispatcher
	metrics metrics.EvaluationMetricsRecorder
}

// NewInstrumentedDispatcher wraps inner so every Dispatch call reports to
// recorder. Pass a *metrics.NoOpEvaluationMetrics to disable recording
// without special-casing call sites.
func NewInstrumentedDispatcher(inner Dispatcher, recorder metrics.EvaluationMetricsRecorder) *InstrumentedDispatcher {
	return &InstrumentedDispatcher{inner: inner, metrics: recorder}
}

func (d *InstrumentedDispatcher) Dispatch(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error) {
	start := time.Now()
	provider := req.Parameters.String("provider", "ark")

	resp, err := d.inner.Dispatch(ctx, req)

	record := metrics.EvaluationRecord{
		Type:        string(req.Type),
		Provider:    provider,
		DurationSec: time.Since(start).Seconds(),
		HasError:    err != nil,
	}
	if resp != nil {
		record.Passed = resp.Passed
		score := resp.ScoreFloat()
		record.Score = &score
	}
	d.metrics.RecordEvaluation(record)

	return resp, err
}
