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

// ark-evaluator serves the HTTP evaluation facade: it receives
// EvaluationRequests, dispatches them to the provider registry, and
// reports native and OSS evaluation scores back over HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/controller-runtime/pkg/client"

	arkv1alpha1 "github.com/mckinsey/ark-evaluator/api/v1alpha1"
	"github.com/mckinsey/ark-evaluator/internal/httpapi"
	"github.com/mckinsey/ark-evaluator/internal/llm"
	metricsregistry "github.com/mckinsey/ark-evaluator/internal/metrics/registry"
	"github.com/mckinsey/ark-evaluator/internal/providers"
	"github.com/mckinsey/ark-evaluator/pkg/k8s"
	"github.com/mckinsey/ark-evaluator/pkg/logging"
	"github.com/mckinsey/ark-evaluator/pkg/metrics"
)

// Environment variable names for service configuration.
const (
	envAddr        = "ARK_EVALUATOR_ADDR"
	envMetricsAddr = "ARK_EVALUATOR_METRICS_ADDR"
	envDisableK8s  = "ARK_EVALUATOR_DISABLE_KUBERNETES"
	defaultAddr    = ":8080"
	defaultMetrics = ":9090"
)

func main() {
	logger, sync, err := logging.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer sync()

	cfg := loadConfig()

	c, clientset, err := buildK8sClients(cfg)
	if err != nil {
		logger.Error(err, "failed to build Kubernetes clients")
		os.Exit(1)
	}

	evalMetrics := metrics.NewEvaluationMetrics(metrics.EvaluationMetricsConfig{})
	llmMetrics := metrics.NewLLMMetrics(metrics.LLMMetricsConfig{})
	llm.SetMetricsRecorder(llmMetrics)

	registry := providers.New(c, clientset, logger)
	dispatcher := providers.NewInstrumentedDispatcher(registry, evalMetrics)

	server := httpapi.NewServer(dispatcher, metricsregistry.Catalog{}, readiness{client: c}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Run(groupCtx, cfg.Addr)
	})
	group.Go(func() error {
		return runMetricsServer(groupCtx, cfg.MetricsAddr, logger)
	})

	logger.Info("starting ark-evaluator", "addr", cfg.Addr, "metricsAddr", cfg.MetricsAddr, "kubernetesEnabled", c != nil)

	if err := group.Wait(); err != nil {
		logger.Error(err, "ark-evaluator exited with error")
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// serviceConfig holds parsed environment configuration.
type serviceConfig struct {
	Addr        string
	MetricsAddr string
	DisableK8s  bool
}

func loadConfig() serviceConfig {
	cfg := serviceConfig{
		Addr:        os.Getenv(envAddr),
		MetricsAddr: os.Getenv(envMetricsAddr),
		DisableK8s:  os.Getenv(envDisableK8s) == "true",
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = defaultMetrics
	}
	return cfg
}

// buildK8sClients constructs the controller-runtime client (resolver, C1)
// and the client-go clientset (event analyzer, C3) from the same in-cluster
// or kubeconfig resolution. Both are nil when ARK_EVALUATOR_DISABLE_KUBERNETES
// is set, which drops the resolver into its process-fallback-only mode per
// internal/resolver's documented no-Kubernetes contract — useful for running
// the facade against a single directly-configured model outside a cluster.
func buildK8sClients(cfg serviceConfig) (client.Client, kubernetes.Interface, error) {
	if cfg.DisableK8s {
		return nil, nil, nil
	}

	c, err := k8s.NewClient()
	if err != nil {
		return nil, nil, fmt.Errorf("build controller-runtime client: %w", err)
	}
	clientset, err := k8s.NewClientset()
	if err != nil {
		return nil, nil, fmt.Errorf("build clientset: %w", err)
	}
	return c, clientset, nil
}

// readiness reports the service ready once its Kubernetes client (when
// configured) can list Query resources, a lightweight reachability probe
// that also validates the CRDs are actually installed.
type readiness struct {
	client client.Client
}

func (r readiness) Ready(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	list := &arkv1alpha1.QueryList{}
	if err := r.client.List(ctx, list, client.Limit(1)); err != nil {
		if meta.IsNoMatchError(err) {
			return fmt.Errorf("Query CRD not registered: %w", err)
		}
		return fmt.Errorf("kubernetes API unreachable: %w", err)
	}
	return nil
}

// runMetricsServer serves /metrics on its own listener, separate from the
// evaluation facade, so scraping never contends with request traffic.
func runMetricsServer(ctx context.Context, addr string, logger interface{ Info(string, ...interface{}) }) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting metrics server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
