package errs

import (
	"fmt"
	"strings"
	"time"

	"github.com/talentmatch/corekit/pkg/correlation"
)

// Error is the structured representation of a failure, distinct from the
// wire-level response DTO. Every Error surfaced across a service boundary
// carries a non-empty Type and Code.
type Error struct {
	Type     ErrorType `json:"type"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`

	// Status is the default transport status used when the error reaches an
	// HTTP boundary.
	Status int `json:"-"`

	BusinessImpact BusinessImpact `json:"businessImpact"`
	UserImpact     UserImpact     `json:"userImpact"`

	RecoveryStrategies []string          `json:"recoveryStrategies,omitempty"`
	AffectedOperations []string          `json:"affectedOperations,omitempty"`
	RelatedErrors      []string          `json:"relatedErrors,omitempty"`
	MonitoringTags     map[string]string `json:"monitoringTags,omitempty"`

	Correlation *correlation.Context `json:"correlationContext,omitempty"`
	Details     any                  `json:"details,omitempty"`
	Cause       error                `json:"-"`
	Stack       string               `json:"-"`
	Timestamp   time.Time            `json:"timestamp"`
}

// New creates a structured error with the given taxonomy coordinates. Most
// call sites should prefer the domain-specific constructors in factory.go.
func New(errType ErrorType, code, message string) *Error {
	return &Error{
		Type:           errType,
		Code:           code,
		Message:        message,
		Severity:       SeverityMedium,
		Status:         500,
		BusinessImpact: BusinessImpactLow,
		UserImpact:     UserImpactMinimal,
		MonitoringTags: map[string]string{},
		Timestamp:      time.Now(),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s/%s]", e.Type, e.Code))
	parts = append(parts, e.Message)
	if e.Correlation != nil && e.Correlation.TraceID != "" {
		parts = append(parts, fmt.Sprintf("trace: %s", e.Correlation.TraceID))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}
	return strings.Join(parts, " | ")
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCorrelation attaches the correlation context of the failing operation.
// An already-attached context is kept; the first attachment wins because it
// was captured closest to the failure.
func (e *Error) WithCorrelation(cc *correlation.Context) *Error {
	if e.Correlation == nil {
		e.Correlation = cc
	}
	return e
}

// WithCause records the underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithSeverity overrides the default severity for this failure class.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// WithStatus overrides the default transport status.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// WithImpact sets business and user impact together.
func (e *Error) WithImpact(business BusinessImpact, user UserImpact) *Error {
	e.BusinessImpact = business
	e.UserImpact = user
	return e
}

// WithRecoveryStrategies appends recovery strategies, skipping duplicates.
func (e *Error) WithRecoveryStrategies(strategies ...string) *Error {
	for _, s := range strategies {
		if !containsString(e.RecoveryStrategies, s) {
			e.RecoveryStrategies = append(e.RecoveryStrategies, s)
		}
	}
	return e
}

// WithAffectedOperations appends operation names impacted by this failure.
func (e *Error) WithAffectedOperations(operations ...string) *Error {
	for _, op := range operations {
		if !containsString(e.AffectedOperations, op) {
			e.AffectedOperations = append(e.AffectedOperations, op)
		}
	}
	return e
}

// WithRelated links codes of errors observed alongside this one.
func (e *Error) WithRelated(codes ...string) *Error {
	e.RelatedErrors = append(e.RelatedErrors, codes...)
	return e
}

// WithMonitoringTags merges tags used to route alerts and dashboards. Later
// values win on key collision.
func (e *Error) WithMonitoringTags(tags map[string]string) *Error {
	if e.MonitoringTags == nil {
		e.MonitoringTags = map[string]string{}
	}
	for k, v := range tags {
		e.MonitoringTags[k] = v
	}
	return e
}

// WithTag merges a single monitoring tag.
func (e *Error) WithTag(key, value string) *Error {
	if e.MonitoringTags == nil {
		e.MonitoringTags = map[string]string{}
	}
	e.MonitoringTags[key] = value
	return e
}

// WithDetails attaches a raw diagnostic payload. Details are stripped from
// responses in hardened mode.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// Is reports whether target is an *Error with the same Type and Code, which
// lets call sites match on taxonomy coordinates via errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
