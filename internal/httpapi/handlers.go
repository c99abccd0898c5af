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

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/httputil"
)

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req core.EvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, []string{"body: invalid JSON: " + err.Error()})
		return
	}

	if fields := validateRequest(req); len(fields) > 0 {
		writeError(w, http.StatusUnprocessableEntity, fields)
		return
	}

	resp, err := s.dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		s.writeMappedError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// validateRequest applies the facade-level schema checks that must pass
// before a request reaches the dispatcher: type and evaluatorName presence,
// and config-variant population matching the declared type.
func validateRequest(req core.EvaluationRequest) []string {
	var fields []string
	if req.Type == "" {
		fields = append(fields, "type: required")
	}
	if req.EvaluatorName == "" {
		fields = append(fields, "evaluatorName: required")
	}

	switch req.Type {
	case core.RequestTypeDirect:
		if req.Config.Output == "" {
			fields = append(fields, "config.output: required for type=direct")
		}
	case core.RequestTypeQuery:
		if req.Config.QueryRef == nil || req.Config.QueryRef.Name == "" {
			fields = append(fields, "config.queryRef.name: required for type=query")
		}
	case core.RequestTypeBatch:
		if len(req.Config.Evaluations) == 0 {
			fields = append(fields, "config.evaluations: required for type=batch")
		}
	case core.RequestTypeEvent:
		if len(req.Config.Rules) == 0 {
			fields = append(fields, "config.rules: required for type=event")
		}
	case core.RequestTypeBaseline:
		if req.Parameters.String("golden-examples", "") == "" {
			fields = append(fields, `parameters["golden-examples"]: required for type=baseline`)
		}
	case "":
		// already reported above
	default:
		fields = append(fields, "type: unrecognized value "+string(req.Type))
	}

	return fields
}

func (s *Server) handleListMetrics(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	descriptors, err := s.metrics.ListMetrics(provider)
	if err != nil {
		s.writeMappedError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, descriptors)
}

func (s *Server) handleGetMetric(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	metric := chi.URLParam(r, "metric")
	descriptor, err := s.metrics.GetMetric(provider, metric)
	if err != nil {
		s.writeMappedError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, descriptor)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	if err := s.ready.Ready(r.Context()); err != nil {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "reason": err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// writeMappedError translates the core error taxonomy into the outbound
// shapes documented for the facade; anything unrecognized is a 500.
func (s *Server) writeMappedError(w http.ResponseWriter, err error) {
	var (
		validationErr *core.ValidationError
		configErr     *core.ConfigurationError
		notFoundErr   *core.ResourceNotFoundError
		forbiddenErr  *core.ForbiddenError
		upstreamErr   *core.UpstreamError
		evalErr       *core.EvaluationError
		unknownErr    *core.UnknownProviderError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusUnprocessableEntity, validationErr.Fields)
	case errors.As(err, &configErr):
		writeError(w, http.StatusBadRequest, []string{configErr.Hint})
	case errors.As(err, &notFoundErr):
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error": notFoundErr.Error(), "name": notFoundErr.Name, "namespace": notFoundErr.Namespace,
		})
	case errors.As(err, &forbiddenErr):
		httputil.WriteJSON(w, http.StatusForbidden, map[string]string{"error": forbiddenErr.Error(), "resource": forbiddenErr.Resource})
	case errors.As(err, &upstreamErr):
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": upstreamErr.Error(), "status": upstreamErr.Status,
		})
	case errors.As(err, &evalErr):
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": evalErr.Message, "errorType": evalErr.ErrorType})
	case errors.As(err, &unknownErr):
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": unknownErr.Error(), "available": unknownErr.Available,
		})
	default:
		s.log.Error(err, "unhandled provider error")
		httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeError(w http.ResponseWriter, status int, fields []string) {
	httputil.WriteJSON(w, status, map[string]interface{}{"error": "validation failed", "fields": fields})
}
