package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentmatch/corekit/pkg/correlation"
)

func TestError_BuilderMutatorsReturnSameInstance(t *testing.T) {
	err := New(TypeSystem, CodeInternalError, "boom")

	same := err.
		WithSeverity(SeverityCritical).
		WithImpact(BusinessImpactCritical, UserImpactSevere).
		WithRecoveryStrategies("retry").
		WithAffectedOperations("scoreResume").
		WithTag("component", "test")

	assert.Same(t, err, same)
	assert.Equal(t, SeverityCritical, err.Severity)
	assert.Equal(t, BusinessImpactCritical, err.BusinessImpact)
	assert.Equal(t, UserImpactSevere, err.UserImpact)
	assert.Equal(t, []string{"retry"}, err.RecoveryStrategies)
	assert.Equal(t, []string{"scoreResume"}, err.AffectedOperations)
}

func TestError_AppendsSkipDuplicates(t *testing.T) {
	err := New(TypeQueue, CodeQueueDeliveryFailed, "delivery failed").
		WithRecoveryStrategies("retry", "retry", "dead-letter").
		WithAffectedOperations("publishJob", "publishJob")

	assert.Equal(t, []string{"retry", "dead-letter"}, err.RecoveryStrategies)
	assert.Equal(t, []string{"publishJob"}, err.AffectedOperations)
}

func TestError_WithCorrelationFirstWins(t *testing.T) {
	first := correlation.NewInternal("svc", "op", nil)
	second := correlation.NewInternal("svc", "op", nil)

	err := New(TypeSystem, CodeInternalError, "boom").
		WithCorrelation(first).
		WithCorrelation(second)

	assert.Same(t, first, err.Correlation)
}

func TestError_ErrorStringAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewExternalServiceError("embeddings-api", "request failed", cause)

	assert.Contains(t, err.Error(), "[EXTERNAL_SERVICE/EXTERNAL_SERVICE_FAILURE]")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestError_IsMatchesTaxonomyCoordinates(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewCacheError("get", "timeout", nil))

	var structured *Error
	require.True(t, errors.As(err, &structured))
	assert.True(t, errors.Is(err, New(TypeCache, CodeCacheUnavailable, "")))
	assert.False(t, errors.Is(err, New(TypeQueue, CodeQueueDeliveryFailed, "")))
}

func TestError_MonitoringTagsMerge(t *testing.T) {
	err := NewModelError("scorer", "timeout", nil).
		WithMonitoringTags(map[string]string{"circuit.state": "open", "component": "override"})

	assert.Equal(t, "open", err.MonitoringTags["circuit.state"])
	assert.Equal(t, "override", err.MonitoringTags["component"], "later values win on collision")
	assert.Equal(t, "scorer", err.MonitoringTags["model.name"])
}
