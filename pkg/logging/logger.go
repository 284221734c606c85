package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/talentmatch/corekit/pkg/correlation"
	"github.com/talentmatch/corekit/pkg/errs"
)

// LevelFatal is used for critical-severity failures. slog has no fatal level,
// so it sits above Error; handlers render it as FATAL.
const LevelFatal = slog.LevelError + 4

// Config holds logging configuration.
type Config struct {
	Level  string
	Pretty bool
}

// Setup configures the process-wide slog default: a tinted console writer for
// local development, JSON otherwise.
func Setup(cfg Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	var handler slog.Handler
	var output io.Writer = os.Stdout
	if cfg.Pretty {
		handler = tint.NewHandler(output, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
		})
	} else {
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}

// Logger emits correlation-aware records for one service.
type Logger struct {
	service string
	logger  *slog.Logger
	sinks   []LogSink
	metrics MetricsSink
}

// Option configures a Logger.
type Option func(*Logger)

// WithSinks registers external log sinks in addition to slog output.
func WithSinks(sinks ...LogSink) Option {
	return func(l *Logger) { l.sinks = append(l.sinks, sinks...) }
}

// WithMetricsSink sets the metrics sink. Defaults to a no-op sink.
func WithMetricsSink(sink MetricsSink) Option {
	return func(l *Logger) { l.metrics = sink }
}

// WithSlog sets the underlying slog logger. Defaults to slog.Default.
func WithSlog(logger *slog.Logger) Option {
	return func(l *Logger) { l.logger = logger }
}

// New creates a Logger for the named service.
func New(service string, opts ...Option) *Logger {
	l := &Logger{
		service: service,
		logger:  slog.Default(),
		metrics: NopMetricsSink{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Metrics exposes the configured metrics sink so interceptor stages can emit
// measurements without holding a second reference.
func (l *Logger) Metrics() MetricsSink {
	return l.metrics
}

// LogError records a structured error, routing severity to the matching log
// level: critical to fatal, high to error, medium to warn, low to info.
func (l *Logger) LogError(ctx context.Context, err *errs.Error) {
	if err == nil {
		return
	}

	cc := err.Correlation
	if cc == nil {
		cc = correlation.Active(ctx)
	}

	record := Record{
		Timestamp:   time.Now(),
		Level:       levelName(severityLevel(err.Severity)),
		Message:     err.Message,
		Service:     l.service,
		Correlation: cc,
		Error:       err,
		Monitoring:  err.MonitoringTags,
	}
	if cc != nil {
		record.Operation = cc.OperationName
	}

	l.emit(ctx, severityLevel(err.Severity), record,
		slog.String("error.type", string(err.Type)),
		slog.String("error.code", err.Code),
		slog.String("error.severity", string(err.Severity)),
		slog.String("impact.business", string(err.BusinessImpact)),
		slog.String("impact.user", string(err.UserImpact)),
	)
	l.metrics.RecordError(ctx, err)
}

// PerformanceRecord captures one operation's resource usage.
type PerformanceRecord struct {
	Operation      string        `json:"operation"`
	Duration       time.Duration `json:"duration"`
	CPUTimeDelta   time.Duration `json:"cpuTimeDelta"`
	HeapAllocDelta int64         `json:"heapAllocDelta"`
	GoroutineDelta int           `json:"goroutineDelta"`
	Level          slog.Level    `json:"-"`
}

// LogPerformance records an operation's measured resource usage at the level
// chosen by the performance stage's threshold comparison.
func (l *Logger) LogPerformance(ctx context.Context, perf PerformanceRecord) {
	record := Record{
		Timestamp:   time.Now(),
		Level:       levelName(perf.Level),
		Message:     "operation performance",
		Service:     l.service,
		Operation:   perf.Operation,
		Correlation: correlation.Active(ctx),
		Metadata: map[string]any{
			"durationMs":     perf.Duration.Milliseconds(),
			"cpuTimeUs":      perf.CPUTimeDelta.Microseconds(),
			"heapAllocDelta": perf.HeapAllocDelta,
			"goroutineDelta": perf.GoroutineDelta,
		},
	}

	l.emit(ctx, perf.Level, record,
		slog.Duration("duration", perf.Duration),
		slog.Duration("cpu_time", perf.CPUTimeDelta),
		slog.Int64("heap_alloc_delta", perf.HeapAllocDelta),
		slog.Int("goroutine_delta", perf.GoroutineDelta),
	)
}

// LogOperationStart records an operation-start marker.
func (l *Logger) LogOperationStart(ctx context.Context, operation string) {
	record := Record{
		Timestamp:   time.Now(),
		Level:       levelName(slog.LevelDebug),
		Message:     "operation started",
		Service:     l.service,
		Operation:   operation,
		Correlation: correlation.Active(ctx),
	}
	l.emit(ctx, slog.LevelDebug, record)
}

// LogOperationComplete records a structured completion marker with outcome,
// duration, and a coarse description of the result shape.
func (l *Logger) LogOperationComplete(ctx context.Context, operation string, duration time.Duration, success bool, resultShape string) {
	level := slog.LevelInfo
	message := "operation completed"
	if !success {
		level = slog.LevelWarn
		message = "operation failed"
	}

	record := Record{
		Timestamp:   time.Now(),
		Level:       levelName(level),
		Message:     message,
		Service:     l.service,
		Operation:   operation,
		Correlation: correlation.Active(ctx),
		Metadata: map[string]any{
			"success":    success,
			"durationMs": duration.Milliseconds(),
		},
	}
	if resultShape != "" {
		record.Metadata["resultShape"] = resultShape
	}

	l.emit(ctx, level, record,
		slog.Bool("success", success),
		slog.Duration("duration", duration),
	)
	l.metrics.RecordOperation(ctx, operation, duration, success)
}

// LogCorrelationBoundary records a context crossing a service boundary, either
// "inbound" or "outbound".
func (l *Logger) LogCorrelationBoundary(ctx context.Context, direction string, cc *correlation.Context) {
	if cc == nil {
		cc = correlation.Active(ctx)
	}

	record := Record{
		Timestamp:   time.Now(),
		Level:       levelName(slog.LevelDebug),
		Message:     "correlation boundary",
		Service:     l.service,
		Correlation: cc,
		Metadata:    map[string]any{"direction": direction},
	}
	if cc != nil {
		record.Operation = cc.OperationName
	}

	l.emit(ctx, slog.LevelDebug, record, slog.String("direction", direction))
}

// WithLogging wraps fn with start/complete markers. A returned *errs.Error is
// additionally logged in full.
func (l *Logger) WithLogging(ctx context.Context, operation string, fn func(context.Context) error) error {
	l.LogOperationStart(ctx, operation)
	start := time.Now()

	err := fn(ctx)
	l.LogOperationComplete(ctx, operation, time.Since(start), err == nil, "")

	if err != nil {
		var structured *errs.Error
		if errors.As(err, &structured) {
			l.LogError(ctx, structured)
		}
	}
	return err
}

func (l *Logger) emit(ctx context.Context, level slog.Level, record Record, attrs ...slog.Attr) {
	base := []slog.Attr{slog.String("service", l.service)}
	if record.Operation != "" {
		base = append(base, slog.String("operation", record.Operation))
	}
	if cc := record.Correlation; cc != nil {
		base = append(base,
			slog.String("trace_id", cc.TraceID),
			slog.String("request_id", cc.RequestID),
			slog.String("span_id", cc.SpanID),
		)
		if cc.ParentSpanID != "" {
			base = append(base, slog.String("parent_span_id", cc.ParentSpanID))
		}
		if cc.UserID != "" {
			base = append(base, slog.String("user_id", cc.UserID))
		}
	}

	l.logger.LogAttrs(ctx, level, record.Message, append(base, attrs...)...)

	for _, sink := range l.sinks {
		sink.Write(ctx, record)
	}
}

func severityLevel(s errs.Severity) slog.Level {
	switch s {
	case errs.SeverityCritical:
		return LevelFatal
	case errs.SeverityHigh:
		return slog.LevelError
	case errs.SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func levelName(level slog.Level) string {
	switch {
	case level >= LevelFatal:
		return "fatal"
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
