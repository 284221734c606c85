package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/talentmatch/corekit/pkg/correlation"
	"github.com/talentmatch/corekit/pkg/errs"
	"github.com/talentmatch/corekit/pkg/logging"
)

const tracerName = "github.com/talentmatch/corekit/pkg/resilience"

// CorrelationStage derives and propagates the correlation context for each
// call. An active parent context on entry yields a child hop; otherwise an
// internal context is minted. The context is attached for the duration of the
// call and stamped onto any structured error that escapes. An OpenTelemetry
// span mirrors the hop so platform traces line up with correlation ids.
func CorrelationStage(serviceName string, logger *logging.Logger) Stage {
	return func(operation string, next Handler) Handler {
		return func(ctx context.Context) (any, error) {
			var cc *correlation.Context
			if parent := correlation.Active(ctx); parent != nil && parent.OperationName != operation {
				cc = parent.Child(serviceName, operation)
			} else if parent != nil {
				cc = parent
			} else {
				cc = correlation.NewInternal(serviceName, operation, nil)
			}

			ctx = correlation.With(ctx, cc)
			logger.LogCorrelationBoundary(ctx, "inbound", cc)

			ctx, span := otel.Tracer(tracerName).Start(ctx, operation)
			span.SetAttributes(
				attribute.String("correlation.trace_id", cc.TraceID),
				attribute.String("correlation.request_id", cc.RequestID),
				attribute.String("correlation.span_id", cc.SpanID),
			)
			defer span.End()

			result, err := next(ctx)
			cc.Complete()

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())

				var structured *errs.Error
				if errors.As(err, &structured) {
					structured.WithCorrelation(cc)
				}
			} else {
				span.SetStatus(codes.Ok, "")
			}

			logger.LogCorrelationBoundary(ctx, "outbound", cc)
			return result, err
		}
	}
}

// LoggingStage brackets the call with start and completion records and logs
// escaping structured errors in full.
func LoggingStage(logger *logging.Logger) Stage {
	return func(operation string, next Handler) Handler {
		return func(ctx context.Context) (any, error) {
			logger.LogOperationStart(ctx, operation)
			start := time.Now()

			result, err := next(ctx)
			logger.LogOperationComplete(ctx, operation, time.Since(start), err == nil, resultShape(result))

			if err != nil {
				var structured *errs.Error
				if errors.As(err, &structured) {
					logger.LogError(ctx, structured)
				}
			}
			return result, err
		}
	}
}

// resultShape describes the success payload coarsely, never its contents.
func resultShape(result any) string {
	if result == nil {
		return ""
	}
	return fmt.Sprintf("%T", result)
}

// DefaultChain composes the four stages in the platform's standard order:
// correlation, logging, performance, recovery.
func DefaultChain(serviceName string, logger *logging.Logger, breakers *Breakers) Stage {
	return Chain(
		CorrelationStage(serviceName, logger),
		LoggingStage(logger),
		PerformanceStage(logger, DefaultPerformanceConfig()),
		RecoveryStage(breakers),
	)
}
