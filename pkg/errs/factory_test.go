package errs

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryConstructorsFixTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantType   ErrorType
		wantCode   string
		wantStatus int
	}{
		{"messaging", NewMessagingError("jobs.created", "timeout", nil), TypeNATSMessage, CodeNATSPublishFailed, http.StatusBadGateway},
		{"parsing", NewParsingError("resume", "bad layout", nil), TypeParsing, CodeResumeParseFailed, http.StatusUnprocessableEntity},
		{"model", NewModelError("scorer-v2", "timeout", nil), TypeMLModel, CodeModelInferenceFailed, http.StatusBadGateway},
		{"cache", NewCacheError("get", "timeout", nil), TypeCache, CodeCacheUnavailable, http.StatusServiceUnavailable},
		{"queue", NewQueueError("reports", "broker down", nil), TypeQueue, CodeQueueDeliveryFailed, http.StatusServiceUnavailable},
		{"template", NewTemplateError("match-report", "missing var", nil), TypeTemplate, CodeTemplateRenderFailed, http.StatusInternalServerError},
		{"report", NewReportError("r-1", "scoring missing", nil), TypeReportGeneration, CodeReportGenerationError, http.StatusInternalServerError},
		{"scoring", NewScoringError("rank", "nan score", nil), TypeScoring, CodeScoringFailed, http.StatusBadGateway},
		{"ratelimit", NewRateLimitError(""), TypeRateLimit, CodeRateLimitExceeded, http.StatusTooManyRequests},
		{"circuit", NewCircuitOpenError("scoreResume"), TypeExternalService, CodeCircuitBreakerOpen, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantCode, tt.err.Code)
			assert.Equal(t, tt.wantStatus, tt.err.Status)
			assert.NotEmpty(t, tt.err.Message)
			assert.NotEmpty(t, tt.err.RecoveryStrategies)
			assert.NotEmpty(t, tt.err.MonitoringTags)
		})
	}
}

func TestCacheErrorDefaultsToLowImpact(t *testing.T) {
	err := NewCacheError("get", "timeout", nil)

	assert.Equal(t, BusinessImpactLow, err.BusinessImpact)
	assert.Equal(t, UserImpactNone, err.UserImpact)
	assert.Contains(t, err.RecoveryStrategies[0], "Bypass the cache")
}

func TestQueueErrorSuggestsDeadLetter(t *testing.T) {
	err := NewQueueError("reports", "broker down", nil)

	joined := ""
	for _, s := range err.RecoveryStrategies {
		joined += s + "\n"
	}
	assert.Contains(t, joined, "dead-letter")
	assert.Contains(t, joined, "Retry")
}

func TestCircuitOpenErrorCarriesSevereImpact(t *testing.T) {
	err := NewCircuitOpenError("scoreResume")

	assert.Equal(t, BusinessImpactHigh, err.BusinessImpact)
	assert.Equal(t, UserImpactSevere, err.UserImpact)
	assert.Equal(t, []string{"scoreResume"}, err.AffectedOperations)
	assert.Equal(t, "scoreResume", err.MonitoringTags["circuit.operation"])
}

func TestFromStatus_KnownStatuses(t *testing.T) {
	tests := []struct {
		status       int
		wantType     ErrorType
		wantCode     string
		wantBusiness BusinessImpact
		wantUser     UserImpact
	}{
		{400, TypeValidation, CodeBadRequest, BusinessImpactLow, UserImpactModerate},
		{401, TypeAuthentication, CodeUnauthorized, BusinessImpactLow, UserImpactModerate},
		{403, TypeAuthorization, CodeForbidden, BusinessImpactLow, UserImpactModerate},
		{404, TypeNotFound, CodeNotFound, BusinessImpactLow, UserImpactMinimal},
		{409, TypeConflict, CodeConflict, BusinessImpactLow, UserImpactModerate},
		{429, TypeRateLimit, CodeRateLimitExceeded, BusinessImpactMedium, UserImpactModerate},
		{502, TypeExternalService, CodeExternalServiceFailure, BusinessImpactHigh, UserImpactSevere},
		{503, TypeExternalService, CodeExternalServiceFailure, BusinessImpactHigh, UserImpactSevere},
		{500, TypeSystem, CodeInternalError, BusinessImpactHigh, UserImpactSevere},
	}

	for _, tt := range tests {
		err := FromStatus(tt.status, "")
		require.NotNil(t, err)
		assert.Equal(t, tt.wantType, err.Type, "status %d", tt.status)
		assert.Equal(t, tt.wantCode, err.Code, "status %d", tt.status)
		assert.Equal(t, tt.status, err.Status)
		assert.Equal(t, tt.wantBusiness, err.BusinessImpact, "status %d", tt.status)
		assert.Equal(t, tt.wantUser, err.UserImpact, "status %d", tt.status)
		assert.NotEmpty(t, err.Message)
		assert.NotEmpty(t, err.RecoveryStrategies)
	}
}

func TestFromStatus_UnknownClientErrorMapsToValidation(t *testing.T) {
	err := FromStatus(418, "teapot")
	assert.Equal(t, TypeValidation, err.Type)
	assert.Equal(t, "teapot", err.Message)
}
