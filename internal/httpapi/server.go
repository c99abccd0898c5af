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

// Package httpapi implements the evaluator's HTTP facade: request
// validation, routing to the provider dispatcher, and translation of the
// core error taxonomy into HTTP status codes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/pkg/logctx"
)

// Dispatcher routes a unified evaluation request to the matching provider
// and returns its normalized response. Implemented by the C8 registry.
type Dispatcher interface {
	Dispatch(ctx context.Context, req core.EvaluationRequest) (*core.EvaluationResponse, error)
}

// MetricLister exposes the C6 metric catalog for the provider-scoped
// metrics endpoints.
type MetricLister interface {
	ListMetrics(provider string) ([]core.MetricDescriptor, error)
	GetMetric(provider, name string) (core.MetricDescriptor, error)
}

// ReadinessChecker reports whether the service's dependencies (lazily
// initialized Kubernetes client, upstream reachability) are usable.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Server is the evaluator's HTTP facade.
type Server struct {
	dispatcher Dispatcher
	metrics    MetricLister
	ready      ReadinessChecker
	log        logr.Logger
}

// NewServer builds a Server. ready may be nil, in which case /ready always
// reports healthy.
func NewServer(dispatcher Dispatcher, metrics MetricLister, ready ReadinessChecker, log logr.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		metrics:    metrics,
		ready:      ready,
		log:        log.WithName("http-facade"),
	}
}

// Handler builds the chi router for the facade's endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		MaxAge:           300,
	}))

	r.Post("/evaluate", s.handleEvaluate)
	r.Get("/providers/{provider}/metrics", s.handleListMetrics)
	r.Get("/providers/{provider}/metrics/{metric}", s.handleGetMetric)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	return r
}

// Run starts the HTTP facade and blocks until ctx is cancelled, then shuts
// down gracefully within 30s.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.log.Info("shutting down HTTP facade")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error(err, "error shutting down HTTP facade")
		}
	}()

	s.log.Info("starting HTTP facade", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// requestIDMiddleware stamps every request with a correlation ID carried
// through logctx, honoring an inbound X-Request-Id when present.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		ctx := logctx.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logctx.LoggerWithContext(s.log, r.Context()).Info("request completed",
			"method", r.Method, "path", r.URL.Path, "status", ww.Status(), "duration", time.Since(start).String())
	})
}
