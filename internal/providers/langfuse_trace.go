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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/mckinsey/ark-evaluator/internal/core"
)

// LangfuseTraceProvider scores a request exactly as RagasProvider does, then
// best-effort records the score against a trace (langfuse.trace_id, default
// the evaluator name) on a Langfuse-compatible ingestion endpoint when
// langfuse.host/public_key/secret_key parameters are present. Ingestion
// failures, including a non-2xx response, are logged and never fail the evaluation itself
// — the score the caller asked for is always the provider's primary
// contract, observability is secondary.
type LangfuseTraceProvider struct {
	inner *RagasProvider
	log   logr.Logger

	httpClient *http.Client
}

func (p *LangfuseTraceProvider) Evaluate(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error) {
	resp, err := p.inner.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	host := req.Parameters.String("langfuse.host", "")
	publicKey := req.Parameters.String("langfuse.public_key", "")
	secretKey := req.Parameters.String("langfuse.secret_key", "")
	if host == "" || publicKey == "" || secretKey == "" {
		return resp, nil
	}

	if err := p.recordTrace(ctx, host, publicKey, secretKey, req, resp); err != nil {
		p.log.Info("langfuse trace ingestion failed", "error", err.Error())
	}
	return resp, nil
}

// langfuseIngestionEvent is the minimal subset of Langfuse's public
// ingestion-API event envelope needed to record a scored evaluation as a
// single score-create event on a trace: {id, timestamp, type, body}.
type langfuseIngestionEvent struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"`
	Type      string      `json:"type"`
	Body      interface{} `json:"body"`
}

type langfuseScoreBody struct {
	TraceID string  `json:"traceId"`
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Comment string  `json:"comment,omitempty"`
}

func (p *LangfuseTraceProvider) recordTrace(ctx context.Context, host, publicKey, secretKey string, req core.EvaluationRequest, resp *core.EvaluationResponse) error {
	traceID := req.Parameters.String("langfuse.trace_id", req.EvaluatorName)
	event := langfuseIngestionEvent{
		ID:        traceID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Type:      "score-create",
		Body: langfuseScoreBody{
			TraceID: traceID,
			Name:    "ark-evaluator." + string(req.Type),
			Value:   resp.ScoreFloat(),
		},
	}

	payload, err := json.Marshal(map[string]interface{}{"batch": []langfuseIngestionEvent{event}})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, host+"/api/public/ingestion", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(publicKey, secretKey)

	client := p.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return fmt.Errorf("langfuse ingestion returned status %d", httpResp.StatusCode)
	}
	return nil
}
