package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/talentmatch/corekit/pkg/errs"
)

// OTelSink emits the core's measurement records as OpenTelemetry metrics. It
// implements the logging.MetricsSink interface.
type OTelSink struct {
	provider metric.MeterProvider

	once    sync.Once
	initErr error

	operationCounter         metric.Int64Counter
	errorCounter             metric.Int64Counter
	circuitTransitionCounter metric.Int64Counter
	operationLatency         metric.Float64Histogram
}

// NewOTelSink creates a sink bound to the global meter provider. Instruments
// are created lazily on first use so the sink can be constructed before the
// provider is installed.
func NewOTelSink() *OTelSink {
	return &OTelSink{}
}

// NewOTelSinkWithProvider creates a sink bound to a specific meter provider.
func NewOTelSinkWithProvider(provider metric.MeterProvider) *OTelSink {
	return &OTelSink{provider: provider}
}

// RecordOperation counts one guarded operation execution and its latency.
func (s *OTelSink) RecordOperation(ctx context.Context, operation string, duration time.Duration, success bool) {
	if err := s.ensure(); err != nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation.name", operation),
		attribute.Bool("operation.success", success),
	}

	s.operationCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	if duration > 0 {
		s.operationLatency.Record(ctx, float64(duration)/float64(time.Millisecond), metric.WithAttributes(attrs...))
	}
}

// RecordError counts one structured error by taxonomy coordinates.
func (s *OTelSink) RecordError(ctx context.Context, structured *errs.Error) {
	if structured == nil {
		return
	}
	if err := s.ensure(); err != nil {
		return
	}

	s.errorCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("error.type", string(structured.Type)),
		attribute.String("error.code", structured.Code),
		attribute.String("error.severity", string(structured.Severity)),
		attribute.String("impact.business", string(structured.BusinessImpact)),
	))
}

// RecordCircuitTransition counts a circuit breaker entering a new state.
func (s *OTelSink) RecordCircuitTransition(ctx context.Context, operation, state string) {
	if err := s.ensure(); err != nil {
		return
	}

	s.circuitTransitionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation.name", operation),
		attribute.String("circuit.state", state),
	))
}

func (s *OTelSink) ensure() error {
	s.once.Do(func() {
		provider := s.provider
		if provider == nil {
			provider = otel.GetMeterProvider()
		}
		meter := provider.Meter("corekit.resilience")

		s.operationCounter, s.initErr = meter.Int64Counter(
			"corekit.operation.executions_total",
			metric.WithDescription("Guarded operation executions partitioned by outcome"),
			metric.WithUnit("{count}"),
		)
		if s.initErr != nil {
			return
		}

		s.errorCounter, s.initErr = meter.Int64Counter(
			"corekit.errors_total",
			metric.WithDescription("Structured errors partitioned by taxonomy type, code, and severity"),
			metric.WithUnit("{count}"),
		)
		if s.initErr != nil {
			return
		}

		s.circuitTransitionCounter, s.initErr = meter.Int64Counter(
			"corekit.circuit.transitions_total",
			metric.WithDescription("Circuit breaker state transitions per operation"),
			metric.WithUnit("{count}"),
		)
		if s.initErr != nil {
			return
		}

		s.operationLatency, s.initErr = meter.Float64Histogram(
			"corekit.operation.duration_ms",
			metric.WithDescription("Observed guarded operation latency"),
			metric.WithUnit("ms"),
		)
	})

	return s.initErr
}
