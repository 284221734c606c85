package boundary

import "github.com/talentmatch/corekit/pkg/errs"

// generalMessages resolves a user-facing message by stable error code, shared
// by every service.
var generalMessages = map[string]string{
	errs.CodeBadRequest:              "The request could not be processed. Please check your input and try again.",
	errs.CodeUnauthorized:            "Please sign in to continue.",
	errs.CodeForbidden:               "You do not have permission to perform this action.",
	errs.CodeNotFound:                "The requested resource could not be found.",
	errs.CodeConflict:                "The resource was modified by another request. Please reload and try again.",
	errs.CodeRateLimitExceeded:       "Too many requests. Please wait a moment and try again.",
	errs.CodeInternalError:           "Something went wrong on our side. Please try again later.",
	errs.CodeExternalServiceFailure:  "A service we depend on is currently unavailable. Please try again later.",
	errs.CodeCircuitBreakerOpen:      "This feature is temporarily unavailable while we recover. Please try again shortly.",
	errs.CodeRequestValidationFailed: "Some fields are invalid. Please correct them and resubmit.",
	errs.CodeUnsupportedFormat:       "This file format is not supported.",
	errs.CodePayloadTooLarge:         "The uploaded file is too large.",
	errs.CodeResumeParseFailed:       "We could not read this document. Please upload it in a supported format.",
	errs.CodeModelInferenceFailed:    "The analysis could not be completed. Please try again.",
	errs.CodeScoringFailed:           "Match scoring is temporarily unavailable. Please try again.",
	errs.CodeReportGenerationError:   "The report could not be generated. Please try again.",
	errs.CodeCacheUnavailable:        "The request took longer than usual. Please try again.",
	errs.CodeQueueDeliveryFailed:     "Your request was accepted but processing is delayed. We will retry automatically.",
	errs.CodeNATSPublishFailed:       "Your request was accepted but processing is delayed. We will retry automatically.",
	errs.CodeTemplateRenderFailed:    "The document could not be produced. Please try again.",
}

// typeMessages is the last-resort fallback keyed by taxonomy type.
var typeMessages = map[errs.ErrorType]string{
	errs.TypeValidation:       "The request contains invalid data.",
	errs.TypeAuthentication:   "Please sign in to continue.",
	errs.TypeAuthorization:    "You do not have permission to perform this action.",
	errs.TypeNotFound:         "The requested resource could not be found.",
	errs.TypeConflict:         "The request conflicts with the current state.",
	errs.TypeRateLimit:        "Too many requests. Please slow down.",
	errs.TypeSystem:           "An unexpected error occurred. Please try again later.",
	errs.TypeExternalService:  "A dependent service is unavailable. Please try again later.",
	errs.TypeNATSMessage:      "Message delivery is delayed. We will retry automatically.",
	errs.TypeParsing:          "The document could not be processed.",
	errs.TypeMLModel:          "The analysis could not be completed right now.",
	errs.TypeReportGeneration: "The report could not be generated right now.",
	errs.TypeScoring:          "Match scoring is temporarily unavailable.",
	errs.TypeCache:            "The request took longer than usual. Please try again.",
	errs.TypeQueue:            "Processing is delayed. We will retry automatically.",
	errs.TypeTemplate:         "The document could not be produced right now.",
}

// typeSuggestions offers client-side recovery hints by taxonomy type. These
// are additive to the error's own recovery strategies.
var typeSuggestions = map[errs.ErrorType][]string{
	errs.TypeValidation:       {"Review the highlighted fields", "Consult the API documentation for field formats"},
	errs.TypeAuthentication:   {"Sign in again", "Reset your password if the problem persists"},
	errs.TypeAuthorization:    {"Contact your workspace administrator"},
	errs.TypeNotFound:         {"Check the link or identifier for typos"},
	errs.TypeConflict:         {"Refresh and retry with the latest data"},
	errs.TypeRateLimit:        {"Wait before retrying", "Spread requests over a longer period"},
	errs.TypeSystem:           {"Try again in a few minutes", "Contact support if the problem persists"},
	errs.TypeExternalService:  {"Try again in a few minutes", "Check the platform status page"},
	errs.TypeNATSMessage:      {"No action needed; delivery is retried automatically"},
	errs.TypeParsing:          {"Upload the document as PDF or DOCX", "Make sure the file is not password protected"},
	errs.TypeMLModel:          {"Try again shortly"},
	errs.TypeReportGeneration: {"Regenerate the report", "Try again shortly"},
	errs.TypeScoring:          {"Try again shortly"},
	errs.TypeCache:            {"Retry the request"},
	errs.TypeQueue:            {"No action needed; delivery is retried automatically"},
	errs.TypeTemplate:         {"Try again shortly"},
}

// nonRetryableTypes always yield retryable = false.
var nonRetryableTypes = map[errs.ErrorType]bool{
	errs.TypeValidation:     true,
	errs.TypeAuthentication: true,
	errs.TypeAuthorization:  true,
	errs.TypeNotFound:       true,
}

// nonRetryableCodes is the fixed deny-list of codes that a retry cannot fix
// regardless of taxonomy type.
var nonRetryableCodes = map[string]bool{
	errs.CodeUnsupportedFormat:       true,
	errs.CodePayloadTooLarge:         true,
	errs.CodeUnauthorized:            true,
	errs.CodeForbidden:               true,
	errs.CodeRequestValidationFailed: true,
}
