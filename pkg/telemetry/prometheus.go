package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/talentmatch/corekit/pkg/errs"
)

// PrometheusSink emits the core's measurement records as Prometheus metrics
// for services that scrape instead of pushing OTLP. It implements the
// logging.MetricsSink interface.
type PrometheusSink struct {
	operations  *prometheus.CounterVec
	errors      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewPrometheusSink creates the sink and registers its collectors on reg.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corekit_operation_executions_total",
			Help: "Guarded operation executions partitioned by outcome.",
		}, []string{"operation", "success"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corekit_errors_total",
			Help: "Structured errors partitioned by taxonomy type, code, and severity.",
		}, []string{"type", "code", "severity"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "corekit_circuit_transitions_total",
			Help: "Circuit breaker state transitions per operation.",
		}, []string{"operation", "state"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "corekit_operation_duration_seconds",
			Help:    "Observed guarded operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(s.operations, s.errors, s.transitions, s.latency)
	return s
}

// RecordOperation counts one guarded operation execution and its latency.
func (s *PrometheusSink) RecordOperation(_ context.Context, operation string, duration time.Duration, success bool) {
	outcome := "false"
	if success {
		outcome = "true"
	}
	s.operations.WithLabelValues(operation, outcome).Inc()
	s.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordError counts one structured error by taxonomy coordinates.
func (s *PrometheusSink) RecordError(_ context.Context, structured *errs.Error) {
	if structured == nil {
		return
	}
	s.errors.WithLabelValues(string(structured.Type), structured.Code, string(structured.Severity)).Inc()
}

// RecordCircuitTransition counts a circuit breaker entering a new state.
func (s *PrometheusSink) RecordCircuitTransition(_ context.Context, operation, state string) {
	s.transitions.WithLabelValues(operation, state).Inc()
}
