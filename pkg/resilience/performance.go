package resilience

import (
	"context"
	"log/slog"
	"runtime"
	"syscall"
	"time"

	"github.com/talentmatch/corekit/pkg/logging"
)

// PerformanceConfig holds the duration thresholds that decide how loudly a
// slow operation is reported.
type PerformanceConfig struct {
	WarnThreshold  time.Duration
	ErrorThreshold time.Duration
}

// DefaultPerformanceConfig returns the platform defaults: warn at one second,
// escalate at five.
func DefaultPerformanceConfig() PerformanceConfig {
	return PerformanceConfig{
		WarnThreshold:  time.Second,
		ErrorThreshold: 5 * time.Second,
	}
}

// PerformanceStage samples wall-clock time, CPU time, heap, and goroutine
// count around the call and emits a performance record. Exceeding
// ErrorThreshold logs at critical severity, exceeding only WarnThreshold at
// warning severity.
func PerformanceStage(logger *logging.Logger, cfg PerformanceConfig) Stage {
	if cfg.WarnThreshold <= 0 {
		cfg.WarnThreshold = DefaultPerformanceConfig().WarnThreshold
	}
	if cfg.ErrorThreshold <= 0 {
		cfg.ErrorThreshold = DefaultPerformanceConfig().ErrorThreshold
	}

	return func(operation string, next Handler) Handler {
		return func(ctx context.Context) (any, error) {
			var before runtime.MemStats
			runtime.ReadMemStats(&before)
			goroutinesBefore := runtime.NumGoroutine()
			cpuBefore := cpuTime()
			start := time.Now()

			result, err := next(ctx)

			duration := time.Since(start)
			cpuDelta := cpuTime() - cpuBefore
			var after runtime.MemStats
			runtime.ReadMemStats(&after)

			level := slog.LevelDebug
			switch {
			case duration >= cfg.ErrorThreshold:
				level = logging.LevelFatal
			case duration >= cfg.WarnThreshold:
				level = slog.LevelWarn
			}

			logger.LogPerformance(ctx, logging.PerformanceRecord{
				Operation:      operation,
				Duration:       duration,
				CPUTimeDelta:   cpuDelta,
				HeapAllocDelta: int64(after.HeapAlloc) - int64(before.HeapAlloc),
				GoroutineDelta: runtime.NumGoroutine() - goroutinesBefore,
				Level:          level,
			})

			return result, err
		}
	}
}

// cpuTime returns the process's cumulative user plus system CPU time. The
// delta across a call is process-wide, so concurrent operations inflate each
// other's reading; the record is a coarse signal, not an attribution.
func cpuTime() time.Duration {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
}
