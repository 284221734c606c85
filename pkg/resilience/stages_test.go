package resilience

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmatch/corekit/pkg/correlation"
	"github.com/talentmatch/corekit/pkg/errs"
	"github.com/talentmatch/corekit/pkg/logging"
)

func quietLogger() *logging.Logger {
	return logging.New("test-service",
		logging.WithSlog(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func recordingStage(name string, order *[]string) Stage {
	return func(operation string, next Handler) Handler {
		return func(ctx context.Context) (any, error) {
			*order = append(*order, name+":enter")
			result, err := next(ctx)
			*order = append(*order, name+":exit")
			return result, err
		}
	}
}

func TestChain_EntriesInOrderExitsInReverse(t *testing.T) {
	var order []string
	chain := Chain(
		recordingStage("correlation", &order),
		recordingStage("logging", &order),
		recordingStage("performance", &order),
		recordingStage("recovery", &order),
	)

	result, err := Execute(context.Background(), chain, "op", func(ctx context.Context) (any, error) {
		order = append(order, "handler")
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, []string{
		"correlation:enter",
		"logging:enter",
		"performance:enter",
		"recovery:enter",
		"handler",
		"recovery:exit",
		"performance:exit",
		"logging:exit",
		"correlation:exit",
	}, order)
}

func TestCorrelationStage_MintsContextForRootCalls(t *testing.T) {
	stage := CorrelationStage("scoring-service", quietLogger())

	var seen *correlation.Context
	_, err := Execute(context.Background(), stage, "scoreResume", func(ctx context.Context) (any, error) {
		seen = correlation.Active(ctx)
		return nil, nil
	})

	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, "scoring-service", seen.ServiceName)
	assert.Equal(t, "scoreResume", seen.OperationName)
	assert.Empty(t, seen.ParentSpanID)
	assert.NotZero(t, seen.ExecutionTime, "context must be completed on exit")
}

func TestCorrelationStage_DerivesChildHopFromParent(t *testing.T) {
	stage := CorrelationStage("scoring-service", quietLogger())

	parent := correlation.NewInternal("job-service", "createJob", nil)
	ctx := correlation.With(context.Background(), parent)

	var seen *correlation.Context
	_, err := Execute(ctx, stage, "scoreResume", func(ctx context.Context) (any, error) {
		seen = correlation.Active(ctx)
		return nil, nil
	})

	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Equal(t, parent.TraceID, seen.TraceID)
	assert.Equal(t, parent.SpanID, seen.ParentSpanID)
	assert.NotEqual(t, parent.SpanID, seen.SpanID)
	assert.Equal(t, "scoreResume", seen.OperationName)
}

func TestCorrelationStage_ReusesContextForSameOperation(t *testing.T) {
	stage := CorrelationStage("scoring-service", quietLogger())

	parent := correlation.NewInternal("scoring-service", "scoreResume", nil)
	ctx := correlation.With(context.Background(), parent)

	var seen *correlation.Context
	_, _ = Execute(ctx, stage, "scoreResume", func(ctx context.Context) (any, error) {
		seen = correlation.Active(ctx)
		return nil, nil
	})

	assert.Same(t, parent, seen, "re-entering the same operation must not add a hop")
}

func TestCorrelationStage_StampsEscapingStructuredErrors(t *testing.T) {
	stage := CorrelationStage("scoring-service", quietLogger())

	_, err := Execute(context.Background(), stage, "scoreResume", func(ctx context.Context) (any, error) {
		return nil, errs.NewModelError("scorer", "timeout", nil)
	})

	var structured *errs.Error
	require.ErrorAs(t, err, &structured)
	require.NotNil(t, structured.Correlation)
	assert.Equal(t, "scoreResume", structured.Correlation.OperationName)
	assert.Regexp(t, `^trace_\d+_[0-9a-f]+$`, structured.Correlation.TraceID)
}

func TestCorrelationStage_DoesNotOverrideEarlierCorrelation(t *testing.T) {
	stage := CorrelationStage("scoring-service", quietLogger())

	earlier := correlation.NewInternal("inner-service", "innerOp", nil)
	_, err := Execute(context.Background(), stage, "scoreResume", func(ctx context.Context) (any, error) {
		return nil, errs.NewModelError("scorer", "timeout", nil).WithCorrelation(earlier)
	})

	var structured *errs.Error
	require.ErrorAs(t, err, &structured)
	assert.Same(t, earlier, structured.Correlation, "the deepest attachment wins")
}

func TestDefaultChain_EndToEnd(t *testing.T) {
	logger := quietLogger()
	breakers := NewBreakers(BreakerConfig{FailureThreshold: 2, RecoveryTimeout: time.Minute}, nil)
	chain := DefaultChain("scoring-service", logger, breakers)

	result, err := Execute(context.Background(), chain, "scoreResume", func(ctx context.Context) (any, error) {
		require.NotNil(t, correlation.Active(ctx))
		return "scored", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "scored", result)

	// Two failures open the breaker; the structured error carries both the
	// correlation context and the circuit tags.
	for i := 0; i < 2; i++ {
		_, err = Execute(context.Background(), chain, "scoreResume", func(ctx context.Context) (any, error) {
			return nil, errs.NewModelError("scorer", "timeout", nil)
		})
		require.Error(t, err)
	}

	var structured *errs.Error
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, "open", structured.MonitoringTags["circuit.state"])
	require.NotNil(t, structured.Correlation)
	assert.Equal(t, "scoreResume", structured.Correlation.OperationName)

	handlerRan := false
	_, err = Execute(context.Background(), chain, "scoreResume", func(ctx context.Context) (any, error) {
		handlerRan = true
		return nil, nil
	})
	assert.False(t, handlerRan)
	require.ErrorAs(t, err, &structured)
	assert.Equal(t, errs.CodeCircuitBreakerOpen, structured.Code)
	require.NotNil(t, structured.Correlation, "fail-fast rejections still carry correlation")
}

func capturingLogger() (*logging.Logger, *logging.RingSink) {
	sink := logging.NewRingSink(8)
	logger := logging.New("test-service",
		logging.WithSlog(slog.New(slog.NewTextHandler(io.Discard, nil))),
		logging.WithSinks(sink))
	return logger, sink
}

func TestPerformanceStage_EscalatesSlowOperations(t *testing.T) {
	logger, sink := capturingLogger()
	stage := PerformanceStage(logger, PerformanceConfig{
		WarnThreshold:  time.Millisecond,
		ErrorThreshold: time.Minute,
	})

	result, err := Execute(context.Background(), stage, "slowOp", func(ctx context.Context) (any, error) {
		time.Sleep(5 * time.Millisecond)
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", result)

	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "warn", records[0].Level, "exceeding only WarnThreshold logs a warning")
	assert.Equal(t, "operation performance", records[0].Message)
	assert.Equal(t, "slowOp", records[0].Operation)
	assert.GreaterOrEqual(t, records[0].Metadata["durationMs"].(int64), int64(5))
	assert.Contains(t, records[0].Metadata, "cpuTimeUs")
	assert.Contains(t, records[0].Metadata, "heapAllocDelta")
	assert.Contains(t, records[0].Metadata, "goroutineDelta")
}

func TestPerformanceStage_CriticalAboveErrorThreshold(t *testing.T) {
	logger, sink := capturingLogger()
	stage := PerformanceStage(logger, PerformanceConfig{
		WarnThreshold:  time.Millisecond,
		ErrorThreshold: 2 * time.Millisecond,
	})

	_, err := Execute(context.Background(), stage, "verySlowOp", func(ctx context.Context) (any, error) {
		time.Sleep(10 * time.Millisecond)
		return nil, nil
	})

	require.NoError(t, err)
	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "fatal", records[0].Level, "exceeding ErrorThreshold escalates to critical")
}

func TestPerformanceStage_QuietForFastOperations(t *testing.T) {
	logger, sink := capturingLogger()
	stage := PerformanceStage(logger, PerformanceConfig{
		WarnThreshold:  time.Minute,
		ErrorThreshold: time.Hour,
	})

	_, err := Execute(context.Background(), stage, "fastOp", func(ctx context.Context) (any, error) {
		return nil, nil
	})

	require.NoError(t, err)
	records := sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "debug", records[0].Level)
}
