package errs

import "net/http"

// statusMapping fixes how a bare transport status translates into taxonomy
// coordinates when a generic boundary exception is normalized.
type statusMapping struct {
	Type               ErrorType
	Code               string
	Severity           Severity
	BusinessImpact     BusinessImpact
	UserImpact         UserImpact
	RecoveryStrategies []string
}

var statusTable = map[int]statusMapping{
	http.StatusBadRequest: {
		Type: TypeValidation, Code: CodeBadRequest,
		Severity: SeverityLow, BusinessImpact: BusinessImpactLow, UserImpact: UserImpactModerate,
		RecoveryStrategies: []string{"Fix the request payload and resubmit"},
	},
	http.StatusUnauthorized: {
		Type: TypeAuthentication, Code: CodeUnauthorized,
		Severity: SeverityLow, BusinessImpact: BusinessImpactLow, UserImpact: UserImpactModerate,
		RecoveryStrategies: []string{"Re-authenticate and retry", "Check credentials have not expired"},
	},
	http.StatusForbidden: {
		Type: TypeAuthorization, Code: CodeForbidden,
		Severity: SeverityLow, BusinessImpact: BusinessImpactLow, UserImpact: UserImpactModerate,
		RecoveryStrategies: []string{"Verify the account has the required permissions"},
	},
	http.StatusNotFound: {
		Type: TypeNotFound, Code: CodeNotFound,
		Severity: SeverityLow, BusinessImpact: BusinessImpactLow, UserImpact: UserImpactMinimal,
		RecoveryStrategies: []string{"Verify the resource identifier"},
	},
	http.StatusConflict: {
		Type: TypeConflict, Code: CodeConflict,
		Severity: SeverityLow, BusinessImpact: BusinessImpactLow, UserImpact: UserImpactModerate,
		RecoveryStrategies: []string{"Reload the latest resource state and retry"},
	},
	http.StatusTooManyRequests: {
		Type: TypeRateLimit, Code: CodeRateLimitExceeded,
		Severity: SeverityMedium, BusinessImpact: BusinessImpactMedium, UserImpact: UserImpactModerate,
		RecoveryStrategies: []string{"Wait before retrying", "Reduce request frequency"},
	},
}

// FromStatus builds a structured error for a generic boundary exception that
// only carries a transport status and a message. Unknown 4xx statuses map to
// VALIDATION; 502/503/504 map to EXTERNAL_SERVICE; everything else is SYSTEM.
// Severity is derived monotonically from the status class.
func FromStatus(status int, message string) *Error {
	if m, ok := statusTable[status]; ok {
		if message == "" {
			message = http.StatusText(status)
		}
		return New(m.Type, m.Code, message).
			WithStatus(status).
			WithSeverity(m.Severity).
			WithImpact(m.BusinessImpact, m.UserImpact).
			WithRecoveryStrategies(m.RecoveryStrategies...)
	}

	if message == "" {
		message = http.StatusText(status)
		if message == "" {
			message = "unexpected failure"
		}
	}

	switch {
	case status >= 400 && status < 500:
		return New(TypeValidation, CodeBadRequest, message).
			WithStatus(status).
			WithSeverity(SeverityLow).
			WithImpact(BusinessImpactLow, UserImpactModerate).
			WithRecoveryStrategies("Fix the request payload and resubmit")
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		return New(TypeExternalService, CodeExternalServiceFailure, message).
			WithStatus(status).
			WithSeverity(SeverityHigh).
			WithImpact(BusinessImpactHigh, UserImpactSevere).
			WithRecoveryStrategies("Retry with backoff", "Check the dependency's status page")
	default:
		return New(TypeSystem, CodeInternalError, message).
			WithStatus(status).
			WithSeverity(SeverityHigh).
			WithImpact(BusinessImpactHigh, UserImpactSevere).
			WithRecoveryStrategies("Retry the request", "Check system status", "Contact support if the problem persists")
	}
}
