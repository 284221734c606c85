package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmatch/corekit/pkg/errs"
)

func gatherNames(t *testing.T, reg *prometheus.Registry) map[string]int {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]int, len(families))
	for _, mf := range families {
		names[mf.GetName()] = len(mf.GetMetric())
	}
	return names
}

func TestPrometheusSink_RecordsAllMeasurements(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg)
	ctx := context.Background()

	sink.RecordOperation(ctx, "scoreResume", 120*time.Millisecond, true)
	sink.RecordOperation(ctx, "scoreResume", 2*time.Second, false)
	sink.RecordError(ctx, errs.NewModelError("scorer", "timeout", nil))
	sink.RecordError(ctx, nil)
	sink.RecordCircuitTransition(ctx, "scoreResume", "open")

	names := gatherNames(t, reg)
	assert.Equal(t, 2, names["corekit_operation_executions_total"], "success and failure series")
	assert.Equal(t, 1, names["corekit_errors_total"])
	assert.Equal(t, 1, names["corekit_circuit_transitions_total"])
	assert.Equal(t, 1, names["corekit_operation_duration_seconds"])
}

func TestOTelSink_SafeWithoutMeterProvider(t *testing.T) {
	sink := NewOTelSink()
	ctx := context.Background()

	// The global provider defaults to no-op; recording must not panic.
	sink.RecordOperation(ctx, "op", time.Millisecond, true)
	sink.RecordError(ctx, errs.NewSystemError("boom", nil))
	sink.RecordError(ctx, nil)
	sink.RecordCircuitTransition(ctx, "op", "closed")
}
