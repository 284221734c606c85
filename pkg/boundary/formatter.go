package boundary

import (
	"net/http"
	"time"

	"github.com/talentmatch/corekit/pkg/errs"
)

// Formatter renders a structured error into the wire-level error contract.
type Formatter struct {
	serviceName string
	hardened    bool
	// serviceMessages overrides the general code dictionary for this service.
	serviceMessages map[string]string
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// Hardened strips details and stack traces from responses. Production
// deployments run hardened.
func Hardened(on bool) FormatterOption {
	return func(f *Formatter) { f.hardened = on }
}

// WithServiceMessages installs a per-service user-message dictionary keyed by
// error code. It takes precedence over the general dictionary.
func WithServiceMessages(messages map[string]string) FormatterOption {
	return func(f *Formatter) { f.serviceMessages = messages }
}

// NewFormatter creates a Formatter for the named service.
func NewFormatter(serviceName string, opts ...FormatterOption) *Formatter {
	f := &Formatter{serviceName: serviceName}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format assembles the error response. Formatting is idempotent apart from
// the freshly sampled monitoring timestamp metric.
func (f *Formatter) Format(err *errs.Error, r *http.Request) *ErrorResponse {
	resp := &ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Type:        string(err.Type),
			Code:        err.Code,
			Message:     err.Message,
			UserMessage: f.userMessage(err),
			Timestamp:   err.Timestamp.UTC().Format(time.RFC3339Nano),
			Severity:    string(err.Severity),
		},
		Context: RequestContext{ServiceName: f.serviceName},
		Impact: &ImpactBody{
			Business: string(err.BusinessImpact),
			User:     string(err.UserImpact),
		},
		Recovery: &RecoveryBody{
			Strategies:  append([]string(nil), err.RecoveryStrategies...),
			Suggestions: append([]string(nil), typeSuggestions[err.Type]...),
			Retryable:   Retryable(err),
		},
		Monitoring: &MonitoringBody{
			Tags: err.MonitoringTags,
			Metrics: map[string]float64{
				"timestamp": float64(time.Now().UnixMilli()),
			},
		},
	}

	if cc := err.Correlation; cc != nil {
		resp.Error.TraceID = cc.TraceID
		resp.Error.RequestID = cc.RequestID
		resp.Correlation = &CorrelationBody{
			TraceID:      cc.TraceID,
			RequestID:    cc.RequestID,
			SpanID:       cc.SpanID,
			ParentSpanID: cc.ParentSpanID,
		}
		resp.Context.OperationName = cc.OperationName
		if cc.ServiceName != "" {
			resp.Context.ServiceName = cc.ServiceName
		}
		resp.Context.IP = cc.ClientIP
	}

	if r != nil {
		resp.Context.Path = r.URL.Path
		resp.Context.Method = r.Method
		if resp.Context.IP == "" {
			resp.Context.IP = r.RemoteAddr
		}
	}

	if !f.hardened {
		resp.Details = err.Details
		resp.Stack = err.Stack
	}

	return resp
}

// FormatMinimal renders the compact health-check contract.
func (f *Formatter) FormatMinimal(err *errs.Error) *MinimalErrorResponse {
	resp := &MinimalErrorResponse{
		Success:   false,
		Error:     f.userMessage(err),
		Code:      err.Code,
		Timestamp: err.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if err.Correlation != nil {
		resp.TraceID = err.Correlation.TraceID
	}
	return resp
}

// userMessage resolves the localized, audience-safe message: per-service
// dictionary by code, then the general dictionary by code, then the
// type-keyed generic.
func (f *Formatter) userMessage(err *errs.Error) string {
	if msg, ok := f.serviceMessages[err.Code]; ok {
		return msg
	}
	if msg, ok := generalMessages[err.Code]; ok {
		return msg
	}
	if msg, ok := typeMessages[err.Type]; ok {
		return msg
	}
	return "An unexpected error occurred. Please try again later."
}

// Retryable reports whether a client retry can plausibly succeed.
func Retryable(err *errs.Error) bool {
	if nonRetryableTypes[err.Type] {
		return false
	}
	if nonRetryableCodes[err.Code] {
		return false
	}
	return true
}
