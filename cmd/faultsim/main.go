// Package main is the entry point for the faultsim binary.
// It runs a small demo service that drives simulated flaky operations through
// the full resilience chain: correlation propagation, structured logging,
// performance sampling, and circuit breaking.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/talentmatch/corekit/pkg/boundary"
	"github.com/talentmatch/corekit/pkg/config"
	"github.com/talentmatch/corekit/pkg/correlation"
	"github.com/talentmatch/corekit/pkg/errs"
	"github.com/talentmatch/corekit/pkg/logging"
	"github.com/talentmatch/corekit/pkg/resilience"
	"github.com/talentmatch/corekit/pkg/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "faultsim",
		Short: "Resilience core demo service",
		Long: `Runs an HTTP service whose endpoints fail on demand, exercising the
correlation, logging, performance, and circuit-breaker stages end to end.

Example:
  faultsim --addr :8080 --fail-rate 0.5
  curl -H 'x-trace-id: trace_1_abc' localhost:8080/score`,
		RunE: runServer,
	}

	rootCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	rootCmd.Flags().StringP("config", "c", "", "Path to configuration file (YAML)")
	rootCmd.Flags().Float64P("fail-rate", "f", 0.3, "Probability that a simulated operation fails")

	return rootCmd
}

func runServer(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	failRate, err := cmd.Flags().GetFloat64("fail-rate")
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Service.Name == "unknown" {
		cfg.Service.Name = "faultsim"
	}

	logging.Setup(logging.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupProvider(ctx, telemetry.Config{
		ServiceName: cfg.Service.Name,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Environment: cfg.Service.Environment,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(flushCtx)
	}()

	registry := prometheus.NewRegistry()
	metricsSink := telemetry.NewPrometheusSink(registry)

	recentRecords := logging.NewRingSink(256)
	logger := logging.New(cfg.Service.Name,
		logging.WithMetricsSink(metricsSink),
		logging.WithSinks(recentRecords))

	breakers := resilience.NewBreakers(resilience.BreakerConfig{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		RecoveryTimeout:  cfg.Breaker.RecoveryTimeout,
		EnableRetry:      cfg.Breaker.EnableRetry,
		MaxRetries:       cfg.Breaker.MaxRetries,
	}, metricsSink)

	if configPath != "" {
		watcher, watchErr := config.NewWatcher(configPath, func(updated *config.Config) {
			breakers.SetConfig(resilience.BreakerConfig{
				FailureThreshold: updated.Breaker.FailureThreshold,
				RecoveryTimeout:  updated.Breaker.RecoveryTimeout,
				EnableRetry:      updated.Breaker.EnableRetry,
				MaxRetries:       updated.Breaker.MaxRetries,
			})
		}, nil)
		if watchErr != nil {
			return fmt.Errorf("config watcher: %w", watchErr)
		}
		if watchErr := watcher.Start(ctx); watchErr != nil {
			return fmt.Errorf("config watcher: %w", watchErr)
		}
		defer func() { _ = watcher.Stop() }()
	}

	chain := resilience.DefaultChain(cfg.Service.Name, logger, breakers)
	formatter := boundary.NewFormatter(cfg.Service.Name, boundary.Hardened(cfg.Hardened))
	mw := boundary.NewMiddleware(cfg.Service.Name, logger, formatter)

	limiter := boundary.NewRateLimiter(map[string]boundary.RateLimitConfig{
		"scoreResume": {RequestsPerSecond: 50, BurstSize: 100},
	})

	mux := http.NewServeMux()
	mux.Handle("/score", mw.Throttle("scoreResume", limiter, scoreHandler(chain, failRate)))
	mux.Handle("/parse", mw.Handle("parseResume", parseHandler(chain, failRate)))
	mux.Handle("/healthz", healthHandler(mw))
	mux.Handle("/debug/recent", mw.Handle("debugRecent", recentHandler(recentRecords)))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// scoreHandler simulates the scoring service calling a flaky ML model.
func scoreHandler(chain resilience.Stage, failRate float64) boundary.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		result, err := resilience.Execute(r.Context(), chain, "scoreResume", func(ctx context.Context) (any, error) {
			if rand.Float64() < failRate {
				return nil, errs.NewModelError("match-scorer-v2", "inference timed out", nil)
			}
			return map[string]any{"score": rand.Float64()}, nil
		})
		if err != nil {
			return err
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"success":true,"score":%.3f}`, result.(map[string]any)["score"])
		return nil
	}
}

// parseHandler simulates document parsing with validation failures mixed in.
func parseHandler(chain resilience.Stage, failRate float64) boundary.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		_, err := resilience.Execute(r.Context(), chain, "parseResume", func(ctx context.Context) (any, error) {
			switch {
			case rand.Float64() < failRate/2:
				return nil, &boundary.ValidationError{Violations: []boundary.FieldViolation{{
					Property:    "resume",
					Constraints: map[string]string{"isSupportedFormat": "file must be PDF or DOCX"},
				}}}
			case rand.Float64() < failRate:
				return nil, errs.NewParsingError("resume", "unreadable document structure", nil)
			default:
				return map[string]any{"sections": 5}, nil
			}
		})
		if err != nil {
			return err
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"success":true,"sections":5}`)
		return nil
	}
}

// recentHandler dumps the records buffered by the ring sink, optionally
// filtered to one trace via ?trace_id=.
func recentHandler(sink *logging.RingSink) boundary.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		records := sink.Records()
		if traceID := r.URL.Query().Get("trace_id"); traceID != "" {
			records = sink.ErrorsByTrace(traceID)
		}

		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(map[string]any{
			"count":   len(records),
			"records": records,
		})
	}
}

// healthHandler returns the minimal error contract when the simulated
// dependency check fails, the plain OK body otherwise.
func healthHandler(mw *boundary.Middleware) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cc := correlation.FromRequest(r, "faultsim", "healthz")
		r = r.WithContext(correlation.With(r.Context(), cc))
		correlation.Inject(cc, w.Header())

		if r.URL.Query().Get("fail") == "true" {
			mw.WriteMinimalError(w, r, errs.NewExternalServiceError("match-scorer-v2", "dependency check failed", nil))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"success":true,"status":"ok"}`)
	})
}
