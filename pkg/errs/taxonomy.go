package errs

// ErrorType is the taxonomy category of a failure. The taxonomy is extensible:
// the core types mirror transport semantics while the domain extensions cover
// the platform's own failure classes.
type ErrorType string

const (
	TypeValidation      ErrorType = "VALIDATION"
	TypeAuthentication  ErrorType = "AUTHENTICATION"
	TypeAuthorization   ErrorType = "AUTHORIZATION"
	TypeNotFound        ErrorType = "NOT_FOUND"
	TypeConflict        ErrorType = "CONFLICT"
	TypeRateLimit       ErrorType = "RATE_LIMIT"
	TypeSystem          ErrorType = "SYSTEM"
	TypeExternalService ErrorType = "EXTERNAL_SERVICE"

	// Domain extensions
	TypeNATSMessage      ErrorType = "NATS_MESSAGE_ERROR"
	TypeParsing          ErrorType = "PARSING_ERROR"
	TypeMLModel          ErrorType = "ML_MODEL_ERROR"
	TypeReportGeneration ErrorType = "REPORT_GENERATION_ERROR"
	TypeScoring          ErrorType = "SCORING_ERROR"
	TypeCache            ErrorType = "CACHE_ERROR"
	TypeQueue            ErrorType = "QUEUE_ERROR"
	TypeTemplate         ErrorType = "TEMPLATE_ERROR"
)

// Severity grades how urgently operators should react to a failure.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// BusinessImpact grades the effect of a failure on platform revenue and SLAs.
type BusinessImpact string

const (
	BusinessImpactLow      BusinessImpact = "low"
	BusinessImpactMedium   BusinessImpact = "medium"
	BusinessImpactHigh     BusinessImpact = "high"
	BusinessImpactCritical BusinessImpact = "critical"
)

// UserImpact grades what the end user experiences when the failure occurs.
type UserImpact string

const (
	UserImpactNone     UserImpact = "none"
	UserImpactMinimal  UserImpact = "minimal"
	UserImpactModerate UserImpact = "moderate"
	UserImpactSevere   UserImpact = "severe"
)

// Stable machine codes surfaced across service boundaries.
const (
	CodeBadRequest              = "BAD_REQUEST"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeForbidden               = "FORBIDDEN"
	CodeNotFound                = "NOT_FOUND"
	CodeConflict                = "CONFLICT"
	CodeRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
	CodeInternalError           = "INTERNAL_ERROR"
	CodeExternalServiceFailure  = "EXTERNAL_SERVICE_FAILURE"
	CodeCircuitBreakerOpen      = "CIRCUIT_BREAKER_OPEN"
	CodeRequestValidationFailed = "REQUEST_VALIDATION_FAILED"
	CodeUnsupportedFormat       = "UNSUPPORTED_FORMAT"
	CodePayloadTooLarge         = "PAYLOAD_TOO_LARGE"

	CodeNATSPublishFailed     = "NATS_PUBLISH_FAILED"
	CodeResumeParseFailed     = "RESUME_PARSE_FAILED"
	CodeModelInferenceFailed  = "MODEL_INFERENCE_FAILED"
	CodeReportGenerationError = "REPORT_GENERATION_FAILED"
	CodeScoringFailed         = "SCORING_FAILED"
	CodeCacheUnavailable      = "CACHE_UNAVAILABLE"
	CodeQueueDeliveryFailed   = "QUEUE_DELIVERY_FAILED"
	CodeTemplateRenderFailed  = "TEMPLATE_RENDER_FAILED"
)
