package errs

import (
	"fmt"
	"net/http"
)

// NewMessagingError reports a NATS publish or subscribe failure on the given
// subject. Messaging failures put downstream consumers at risk, so business
// impact defaults to high.
func NewMessagingError(subject, reason string, cause error) *Error {
	return New(TypeNATSMessage, CodeNATSPublishFailed,
		fmt.Sprintf("NATS message failure on subject '%s': %s", subject, reason)).
		WithCause(cause).
		WithSeverity(SeverityHigh).
		WithStatus(http.StatusBadGateway).
		WithImpact(BusinessImpactHigh, UserImpactModerate).
		WithRecoveryStrategies(
			"Retry message publication with backoff",
			"Verify NATS cluster connectivity",
			"Route the message to the dead-letter subject",
		).
		WithMonitoringTags(map[string]string{
			"component":    "messaging",
			"nats.subject": subject,
		})
}

// NewParsingError reports a resume or job-description parsing failure.
func NewParsingError(documentType, reason string, cause error) *Error {
	return New(TypeParsing, CodeResumeParseFailed,
		fmt.Sprintf("failed to parse %s: %s", documentType, reason)).
		WithCause(cause).
		WithSeverity(SeverityMedium).
		WithStatus(http.StatusUnprocessableEntity).
		WithImpact(BusinessImpactMedium, UserImpactModerate).
		WithRecoveryStrategies(
			"Ask the user to re-upload the document",
			"Try an alternative parser backend",
			"Check the document format is supported",
		).
		WithMonitoringTags(map[string]string{
			"component":     "parsing",
			"document.type": documentType,
		})
}

// NewModelError reports an ML model inference failure.
func NewModelError(model, reason string, cause error) *Error {
	return New(TypeMLModel, CodeModelInferenceFailed,
		fmt.Sprintf("model '%s' inference failed: %s", model, reason)).
		WithCause(cause).
		WithSeverity(SeverityHigh).
		WithStatus(http.StatusBadGateway).
		WithImpact(BusinessImpactHigh, UserImpactModerate).
		WithRecoveryStrategies(
			"Retry with exponential backoff",
			"Fall back to the previous model version",
			"Check model service capacity and quotas",
		).
		WithMonitoringTags(map[string]string{
			"component":  "ml",
			"model.name": model,
		})
}

// NewCacheError reports a cache failure. Caches are best-effort in this
// platform, so the default impact is low and the primary strategy is bypass.
func NewCacheError(operation, reason string, cause error) *Error {
	return New(TypeCache, CodeCacheUnavailable,
		fmt.Sprintf("cache %s failed: %s", operation, reason)).
		WithCause(cause).
		WithSeverity(SeverityLow).
		WithStatus(http.StatusServiceUnavailable).
		WithImpact(BusinessImpactLow, UserImpactNone).
		WithRecoveryStrategies(
			"Bypass the cache and read from the source of truth",
			"Check cache cluster health",
		).
		WithMonitoringTags(map[string]string{
			"component":       "cache",
			"cache.operation": operation,
		})
}

// NewQueueError reports a job-queue delivery or processing failure.
func NewQueueError(queue, reason string, cause error) *Error {
	return New(TypeQueue, CodeQueueDeliveryFailed,
		fmt.Sprintf("queue '%s' delivery failed: %s", queue, reason)).
		WithCause(cause).
		WithSeverity(SeverityHigh).
		WithStatus(http.StatusServiceUnavailable).
		WithImpact(BusinessImpactHigh, UserImpactModerate).
		WithRecoveryStrategies(
			"Retry delivery with backoff",
			"Use the dead-letter queue after repeated failures",
			"Check queue broker connectivity",
		).
		WithMonitoringTags(map[string]string{
			"component":  "queue",
			"queue.name": queue,
		})
}

// NewTemplateError reports a report/notification template rendering failure.
func NewTemplateError(template, reason string, cause error) *Error {
	return New(TypeTemplate, CodeTemplateRenderFailed,
		fmt.Sprintf("template '%s' rendering failed: %s", template, reason)).
		WithCause(cause).
		WithSeverity(SeverityMedium).
		WithStatus(http.StatusInternalServerError).
		WithImpact(BusinessImpactMedium, UserImpactModerate).
		WithRecoveryStrategies(
			"Fall back to the default template",
			"Validate template variables against the data model",
		).
		WithMonitoringTags(map[string]string{
			"component":     "template",
			"template.name": template,
		})
}

// NewReportError reports a match-report generation failure.
func NewReportError(reportID, reason string, cause error) *Error {
	return New(TypeReportGeneration, CodeReportGenerationError,
		fmt.Sprintf("report generation failed for '%s': %s", reportID, reason)).
		WithCause(cause).
		WithSeverity(SeverityMedium).
		WithStatus(http.StatusInternalServerError).
		WithImpact(BusinessImpactMedium, UserImpactModerate).
		WithRecoveryStrategies(
			"Regenerate the report",
			"Verify the scoring results the report depends on",
		).
		WithMonitoringTags(map[string]string{
			"component": "report",
			"report.id": reportID,
		})
}

// NewScoringError reports a resume/JD match scoring failure.
func NewScoringError(operation, reason string, cause error) *Error {
	return New(TypeScoring, CodeScoringFailed,
		fmt.Sprintf("scoring failed during %s: %s", operation, reason)).
		WithCause(cause).
		WithSeverity(SeverityHigh).
		WithStatus(http.StatusBadGateway).
		WithImpact(BusinessImpactHigh, UserImpactModerate).
		WithRecoveryStrategies(
			"Retry the scoring operation",
			"Fall back to keyword-based matching",
		).
		WithMonitoringTags(map[string]string{
			"component":         "scoring",
			"scoring.operation": operation,
		})
}

// NewValidationError reports a request validation failure.
func NewValidationError(message string, details any) *Error {
	return New(TypeValidation, CodeRequestValidationFailed, message).
		WithSeverity(SeverityLow).
		WithStatus(http.StatusBadRequest).
		WithImpact(BusinessImpactLow, UserImpactModerate).
		WithDetails(details).
		WithRecoveryStrategies(
			"Fix the highlighted fields and resubmit",
		).
		WithTag("component", "validation")
}

// NewNotFoundError reports a missing resource.
func NewNotFoundError(resource string) *Error {
	return New(TypeNotFound, CodeNotFound,
		fmt.Sprintf("%s not found", resource)).
		WithSeverity(SeverityLow).
		WithStatus(http.StatusNotFound).
		WithImpact(BusinessImpactLow, UserImpactMinimal).
		WithRecoveryStrategies(
			"Verify the resource identifier",
		).
		WithTag("component", "lookup")
}

// NewRateLimitError reports request throttling.
func NewRateLimitError(message string) *Error {
	if message == "" {
		message = "rate limit exceeded"
	}
	return New(TypeRateLimit, CodeRateLimitExceeded, message).
		WithSeverity(SeverityMedium).
		WithStatus(http.StatusTooManyRequests).
		WithImpact(BusinessImpactMedium, UserImpactModerate).
		WithRecoveryStrategies(
			"Wait before retrying",
			"Honour the Retry-After header",
			"Reduce request frequency",
		).
		WithTag("component", "ratelimit")
}

// NewSystemError wraps an unexpected internal failure.
func NewSystemError(message string, cause error) *Error {
	return New(TypeSystem, CodeInternalError, message).
		WithCause(cause).
		WithSeverity(SeverityHigh).
		WithStatus(http.StatusInternalServerError).
		WithImpact(BusinessImpactHigh, UserImpactSevere).
		WithRecoveryStrategies(
			"Retry the request",
			"Check system status",
			"Contact support if the problem persists",
		).
		WithTag("component", "system")
}

// NewExternalServiceError reports a downstream dependency failure.
func NewExternalServiceError(service, reason string, cause error) *Error {
	return New(TypeExternalService, CodeExternalServiceFailure,
		fmt.Sprintf("external service '%s' failed: %s", service, reason)).
		WithCause(cause).
		WithSeverity(SeverityHigh).
		WithStatus(http.StatusBadGateway).
		WithImpact(BusinessImpactHigh, UserImpactSevere).
		WithRecoveryStrategies(
			"Retry with backoff",
			"Check the dependency's status page",
			"Use a degraded fallback path if available",
		).
		WithMonitoringTags(map[string]string{
			"component":        "external",
			"external.service": service,
		})
}

// NewCircuitOpenError is returned when the circuit breaker guarding an
// operation is open and the call is rejected without invoking the handler.
func NewCircuitOpenError(operation string) *Error {
	return New(TypeExternalService, CodeCircuitBreakerOpen,
		fmt.Sprintf("circuit breaker open for operation '%s'", operation)).
		WithSeverity(SeverityHigh).
		WithStatus(http.StatusServiceUnavailable).
		WithImpact(BusinessImpactHigh, UserImpactSevere).
		WithAffectedOperations(operation).
		WithRecoveryStrategies(
			"Wait for the recovery window to elapse before retrying",
			"Use a fallback path while the dependency recovers",
		).
		WithMonitoringTags(map[string]string{
			"component":         "circuitbreaker",
			"circuit.operation": operation,
		})
}
