package resilience

import "context"

// Handler is the unit of work the chain wraps: a named operation body that may
// suspend on I/O and must honour ctx cancellation itself.
type Handler func(ctx context.Context) (any, error)

// Stage wraps a named operation handler with one cross-cutting concern.
// Stages must invoke next exactly once unless they fail the call fast.
type Stage func(operation string, next Handler) Handler

// Chain composes stages so that the first stage is outermost: entries run in
// the given order and exits unwind in reverse.
func Chain(stages ...Stage) Stage {
	return func(operation string, next Handler) Handler {
		for i := len(stages) - 1; i >= 0; i-- {
			next = stages[i](operation, next)
		}
		return next
	}
}

// Execute wraps handler with the stage and runs it.
func Execute(ctx context.Context, stage Stage, operation string, handler Handler) (any, error) {
	return stage(operation, handler)(ctx)
}
