package resilience

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/talentmatch/corekit/pkg/errs"
	"github.com/talentmatch/corekit/pkg/logging"
)

// State represents the state of one operation's circuit breaker.
type State string

const (
	// StateClosed indicates the circuit is closed and calls flow normally.
	StateClosed State = "closed"
	// StateOpen indicates the circuit is open and calls fail fast.
	StateOpen State = "open"
	// StateHalfOpen indicates the circuit is probing whether the operation
	// has recovered.
	StateHalfOpen State = "half-open"
)

// BreakerConfig defines thresholds for circuit breaking and the optional
// bounded retry policy.
type BreakerConfig struct {
	// FailureThreshold is the consecutive failure count that opens the circuit.
	FailureThreshold int
	// RecoveryTimeout is how long the circuit stays open before a new call is
	// allowed through as a half-open trial. The window is evaluated lazily at
	// call time; there is no background timer.
	RecoveryTimeout time.Duration

	// EnableRetry turns on bounded in-call retries. Disabled by default to
	// avoid retry storms. Retries never reset the breaker's failure
	// bookkeeping.
	EnableRetry    bool
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultBreakerConfig returns the platform defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  60 * time.Second,
		EnableRetry:      false,
		MaxRetries:       3,
		InitialBackoff:   100 * time.Millisecond,
		MaxBackoff:       2 * time.Second,
	}
}

// breakerState is the per-operation record. All access goes through the
// owning Breakers mutex; concurrent calls to the same operation race on the
// failure count otherwise.
type breakerState struct {
	failures      int
	lastFailureAt time.Time
	state         State
	// halfOpenInFlight marks the single trial call admitted while half-open.
	// Further calls fail fast until the trial records its outcome.
	halfOpenInFlight bool
}

// Breakers is the process-wide circuit-breaker table, keyed by operation name.
type Breakers struct {
	mu      sync.Mutex
	states  map[string]*breakerState
	config  BreakerConfig
	metrics logging.MetricsSink
}

// NewBreakers creates a breaker table with the given configuration. A nil
// metrics sink is replaced with a no-op sink.
func NewBreakers(config BreakerConfig, metrics logging.MetricsSink) *Breakers {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = DefaultBreakerConfig().RecoveryTimeout
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = DefaultBreakerConfig().InitialBackoff
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = DefaultBreakerConfig().MaxBackoff
	}
	if metrics == nil {
		metrics = logging.NopMetricsSink{}
	}
	return &Breakers{
		states:  make(map[string]*breakerState),
		config:  config,
		metrics: metrics,
	}
}

// SetConfig swaps the breaker thresholds. Existing per-operation state is
// kept; the new thresholds apply from the next call on.
func (b *Breakers) SetConfig(config BreakerConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if config.FailureThreshold > 0 && config.RecoveryTimeout > 0 {
		b.config = config
	}
}

// Snapshot returns the current state and failure count for an operation.
func (b *Breakers) Snapshot(operation string) (State, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.states[operation]
	if !ok {
		return StateClosed, 0
	}
	return st.state, st.failures
}

// allow decides whether a call to the operation may proceed. While open it
// transitions to half-open once the recovery window has elapsed, admitting
// exactly one trial call; everything else fails fast until the trial resolves.
func (b *Breakers) allow(ctx context.Context, operation string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.stateLocked(operation)
	switch st.state {
	case StateHalfOpen:
		if st.halfOpenInFlight {
			return errs.NewCircuitOpenError(operation).WithMonitoringTags(map[string]string{
				"circuit.state":    string(StateHalfOpen),
				"circuit.failures": strconv.Itoa(st.failures),
			})
		}
		st.halfOpenInFlight = true
		return nil
	case StateOpen:
		if time.Since(st.lastFailureAt) >= b.config.RecoveryTimeout {
			st.state = StateHalfOpen
			st.halfOpenInFlight = true
			b.metrics.RecordCircuitTransition(ctx, operation, string(StateHalfOpen))
			return nil
		}
		return errs.NewCircuitOpenError(operation).WithMonitoringTags(map[string]string{
			"circuit.state":    string(StateOpen),
			"circuit.failures": strconv.Itoa(st.failures),
		})
	default:
		return nil
	}
}

// record updates the breaker after a completed call.
func (b *Breakers) record(ctx context.Context, operation string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.stateLocked(operation)
	if st.state == StateHalfOpen {
		st.halfOpenInFlight = false
	}

	if err == nil {
		// A slow call admitted before the circuit opened may complete after
		// the transition; its success says nothing about recovery, so only
		// non-open states reset.
		if st.state == StateOpen {
			return
		}
		if st.state != StateClosed {
			b.metrics.RecordCircuitTransition(ctx, operation, string(StateClosed))
		}
		st.failures = 0
		st.state = StateClosed
		return
	}

	st.failures++
	st.lastFailureAt = time.Now()
	if st.failures >= b.config.FailureThreshold && st.state != StateOpen {
		st.state = StateOpen
		b.metrics.RecordCircuitTransition(ctx, operation, string(StateOpen))
	}
}

func (b *Breakers) stateLocked(operation string) *breakerState {
	st, ok := b.states[operation]
	if !ok {
		st = &breakerState{state: StateClosed}
		b.states[operation] = st
	}
	return st
}

// Reset closes the breaker for one operation and zeroes its failure count.
func (b *Breakers) Reset(operation string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.states, operation)
}

// ResetAll closes every breaker.
func (b *Breakers) ResetAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states = make(map[string]*breakerState)
}

// RecoveryStage guards the wrapped handler with the breaker table. While the
// circuit is open the handler is not invoked and the call fails with the
// dedicated circuit-open error. Propagated errors are annotated with the
// current circuit state and failure count as monitoring tags.
func RecoveryStage(breakers *Breakers) Stage {
	return func(operation string, next Handler) Handler {
		return func(ctx context.Context) (any, error) {
			if err := breakers.allow(ctx, operation); err != nil {
				return nil, err
			}

			result, err := breakers.call(ctx, operation, next)
			if err != nil {
				state, failures := breakers.Snapshot(operation)
				var structured *errs.Error
				if errors.As(err, &structured) {
					structured.WithMonitoringTags(map[string]string{
						"circuit.state":    string(state),
						"circuit.failures": strconv.Itoa(failures),
					})
				}
			}
			return result, err
		}
	}
}

// call runs the handler, applying the bounded retry policy when enabled.
// Every attempt's outcome is recorded against the breaker so retries cannot
// mask a failing dependency.
func (b *Breakers) call(ctx context.Context, operation string, next Handler) (any, error) {
	result, err := next(ctx)
	b.record(ctx, operation, err)
	if err == nil || !b.config.EnableRetry {
		return result, err
	}

	backoff := b.config.InitialBackoff
	for attempt := 1; attempt <= b.config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(jitter(backoff)):
		}

		if allowErr := b.allow(ctx, operation); allowErr != nil {
			return nil, allowErr
		}

		result, err = next(ctx)
		b.record(ctx, operation, err)
		if err == nil {
			return result, nil
		}

		backoff *= 2
		if backoff > b.config.MaxBackoff {
			backoff = b.config.MaxBackoff
		}
	}
	return result, err
}
