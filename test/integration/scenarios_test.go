package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmatch/corekit/pkg/boundary"
	"github.com/talentmatch/corekit/pkg/correlation"
	"github.com/talentmatch/corekit/pkg/errs"
	"github.com/talentmatch/corekit/pkg/logging"
	"github.com/talentmatch/corekit/pkg/resilience"
)

// stack bundles one service's fully wired resilience core the way a real
// service assembles it at startup.
type stack struct {
	logger   *logging.Logger
	recent   *logging.RingSink
	breakers *resilience.Breakers
	chain    resilience.Stage
	mw       *boundary.Middleware
}

func newStack(t *testing.T, service string, breaker resilience.BreakerConfig, opts ...boundary.FormatterOption) *stack {
	t.Helper()

	recent := logging.NewRingSink(64)
	logger := logging.New(service,
		logging.WithSlog(slog.New(slog.NewTextHandler(io.Discard, nil))),
		logging.WithSinks(recent))

	breakers := resilience.NewBreakers(breaker, nil)
	return &stack{
		logger:   logger,
		recent:   recent,
		breakers: breakers,
		chain:    resilience.DefaultChain(service, logger, breakers),
		mw:       boundary.NewMiddleware(service, logger, boundary.NewFormatter(service, opts...)),
	}
}

func (s *stack) endpoint(operation string, body resilience.Handler) http.Handler {
	return s.mw.Handle(operation, func(w http.ResponseWriter, r *http.Request) error {
		result, err := resilience.Execute(r.Context(), s.chain, operation, body)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(map[string]any{"success": true, "result": result})
	})
}

func TestTracePropagatesAcrossTwoServices(t *testing.T) {
	// Downstream scoring service.
	scoring := newStack(t, "scoring-service", resilience.DefaultBreakerConfig())
	scoringSrv := httptest.NewServer(scoring.endpoint("scoreResume", func(ctx context.Context) (any, error) {
		return nil, errs.NewModelError("match-scorer-v2", "inference timed out", nil)
	}))
	defer scoringSrv.Close()

	// Upstream job service calls scoring with propagated headers.
	jobs := newStack(t, "job-service", resilience.DefaultBreakerConfig())
	jobsSrv := httptest.NewServer(jobs.endpoint("matchCandidates", func(ctx context.Context) (any, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", scoringSrv.URL, nil)
		if err != nil {
			return nil, err
		}
		correlation.Inject(correlation.Active(ctx), req.Header)

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, errs.NewExternalServiceError("scoring-service", "scoring call failed", nil)
		}
		return "matched", nil
	}))
	defer jobsSrv.Close()

	req, err := http.NewRequest("POST", jobsSrv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	upstreamTrace := resp.Header.Get("X-Trace-ID")
	require.Regexp(t, `^trace_\d+_[0-9a-f]+$`, upstreamTrace)

	// The downstream service logged its failure under the same trace.
	require.Eventually(t, func() bool {
		return len(scoring.recent.ErrorsByTrace(upstreamTrace)) > 0
	}, time.Second, 10*time.Millisecond, "scoring failure must be findable by the upstream trace id")

	records := scoring.recent.ErrorsByTrace(upstreamTrace)
	assert.Equal(t, errs.CodeModelInferenceFailed, records[0].Error.Code)
}

func TestCircuitBreakerScenario(t *testing.T) {
	s := newStack(t, "scoring-service", resilience.BreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  100 * time.Millisecond,
	})

	healthy := false
	srv := httptest.NewServer(s.endpoint("scoreResume", func(ctx context.Context) (any, error) {
		if !healthy {
			return nil, errs.NewModelError("match-scorer-v2", "inference timed out", nil)
		}
		return map[string]any{"score": 0.92}, nil
	}))
	defer srv.Close()

	call := func() (*http.Response, boundary.ErrorResponse) {
		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		var body boundary.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return resp, body
	}

	for i := 0; i < 5; i++ {
		resp, body := call()
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, errs.CodeModelInferenceFailed, body.Error.Code)
	}

	// Circuit is now open: the next call fails fast with the dedicated error.
	resp, body := call()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, errs.CodeCircuitBreakerOpen, body.Error.Code)
	require.NotNil(t, body.Monitoring)
	assert.Equal(t, "open", body.Monitoring.Tags["circuit.state"])
	require.NotNil(t, body.Recovery)
	assert.True(t, body.Recovery.Retryable)

	// After the recovery window, a healthy dependency closes the circuit.
	time.Sleep(150 * time.Millisecond)
	healthy = true

	httpResp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer httpResp.Body.Close()
	assert.Equal(t, http.StatusOK, httpResp.StatusCode)

	state, failures := s.breakers.Snapshot("scoreResume")
	assert.Equal(t, resilience.StateClosed, state)
	assert.Zero(t, failures)
}

func TestInboundTraceFlowsToErrorBody(t *testing.T) {
	s := newStack(t, "resume-service", resilience.DefaultBreakerConfig())
	srv := httptest.NewServer(s.endpoint("parseResume", func(ctx context.Context) (any, error) {
		return nil, errs.NewParsingError("resume", "unreadable document structure", nil)
	}))
	defer srv.Close()

	req, err := http.NewRequest("POST", srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("X-Trace-ID", "trace_1700000000000_deadbeefcafe")
	req.Header.Set("X-Span-ID", "span_caller0000000001")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "trace_1700000000000_deadbeefcafe", resp.Header.Get("X-Trace-ID"))

	var body boundary.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Correlation)
	assert.Equal(t, "trace_1700000000000_deadbeefcafe", body.Correlation.TraceID)
	assert.NotEmpty(t, body.Correlation.SpanID)
	assert.Equal(t, errs.CodeResumeParseFailed, body.Error.Code)
	assert.NotEmpty(t, body.Error.UserMessage)
}

func TestPanicBecomesContract(t *testing.T) {
	s := newStack(t, "report-service", resilience.DefaultBreakerConfig(), boundary.Hardened(true))
	srv := httptest.NewServer(s.endpoint("generateReport", func(ctx context.Context) (any, error) {
		var sections []string
		return sections[3], nil // deliberate out-of-range panic
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body boundary.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "SYSTEM", body.Error.Type)
	assert.Empty(t, body.Stack, "hardened mode strips the stack")
	assert.Nil(t, body.Details)
}

func TestThrottledEndpointScenario(t *testing.T) {
	s := newStack(t, "job-service", resilience.DefaultBreakerConfig())
	limiter := boundary.NewRateLimiter(map[string]boundary.RateLimitConfig{
		"createJob": {RequestsPerSecond: 1, BurstSize: 2},
	})

	handler := s.mw.Throttle("createJob", limiter, func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusCreated)
		return nil
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Post(srv.URL, "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, statuses)
}
