package logging

import (
	"context"
	"time"

	"github.com/talentmatch/corekit/pkg/correlation"
	"github.com/talentmatch/corekit/pkg/errs"
)

// Record is the uniform shape every log entry takes before it reaches a sink.
type Record struct {
	Timestamp   time.Time            `json:"timestamp"`
	Level       string               `json:"level"`
	Message     string               `json:"message"`
	Service     string               `json:"service"`
	Operation   string               `json:"operation,omitempty"`
	Correlation *correlation.Context `json:"correlation,omitempty"`
	Context     map[string]any       `json:"context,omitempty"`
	Error       *errs.Error          `json:"error,omitempty"`
	Metadata    map[string]any       `json:"metadata,omitempty"`
	Monitoring  map[string]string    `json:"monitoring,omitempty"`
}

// LogSink receives finished log records for shipping to an external system.
// Implementations must be non-blocking or buffer internally; the core never
// waits on a sink.
type LogSink interface {
	Write(ctx context.Context, record Record)
}

// MetricsSink receives typed measurement records. The core computes what
// should be counted and hands it over; durable storage and alert delivery are
// the sink's concern.
type MetricsSink interface {
	RecordOperation(ctx context.Context, operation string, duration time.Duration, success bool)
	RecordError(ctx context.Context, err *errs.Error)
	RecordCircuitTransition(ctx context.Context, operation, state string)
}

// NopMetricsSink discards all measurements.
type NopMetricsSink struct{}

func (NopMetricsSink) RecordOperation(context.Context, string, time.Duration, bool) {}
func (NopMetricsSink) RecordError(context.Context, *errs.Error)                     {}
func (NopMetricsSink) RecordCircuitTransition(context.Context, string, string)      {}
