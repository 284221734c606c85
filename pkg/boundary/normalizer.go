package boundary

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/talentmatch/corekit/pkg/correlation"
	"github.com/talentmatch/corekit/pkg/errs"
)

// StatusError is the generic boundary exception: a failure that only knows its
// transport status and a message. Anything richer should be raised as an
// *errs.Error directly.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// StatusCode returns the transport status the error wants to surface as.
func (e *StatusError) StatusCode() int {
	return e.Status
}

// statusCarrier matches any error that exposes an explicit transport status.
type statusCarrier interface {
	error
	StatusCode() int
}

// RateLimitError signals request throttling at the boundary.
type RateLimitError struct {
	Message    string
	RetryAfter int // seconds; zero means unspecified
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "rate limit exceeded"
}

// FieldViolation is one normalized validation failure. Nested object failures
// are carried recursively in Children.
type FieldViolation struct {
	Property    string            `json:"property"`
	Value       any               `json:"value,omitempty"`
	Constraints map[string]string `json:"constraints"`
	Children    []FieldViolation  `json:"children,omitempty"`
}

// ValidationError aggregates the violations of one failed request validation.
type ValidationError struct {
	Message    string
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request validation failed with %d violation(s)", len(e.Violations))
}

// Normalizer converts any thrown value into a structured error at the
// outermost boundary.
type Normalizer struct {
	serviceName string
}

// NewNormalizer creates a Normalizer for the named service.
func NewNormalizer(serviceName string) *Normalizer {
	return &Normalizer{serviceName: serviceName}
}

// Normalize is total: it never panics and always returns a structured error
// with non-empty type and code, whatever raw is. The active correlation
// context (or one derived from the request) is attached when absent.
func (n *Normalizer) Normalize(ctx context.Context, raw any, r *http.Request) *errs.Error {
	structured := n.classify(raw)

	if structured.Correlation == nil {
		if cc := correlation.Active(ctx); cc != nil {
			structured.WithCorrelation(cc)
		} else if r != nil {
			structured.WithCorrelation(correlation.FromRequest(r, n.serviceName, ""))
		}
	}

	return structured
}

func (n *Normalizer) classify(raw any) *errs.Error {
	switch v := raw.(type) {
	case nil:
		return errs.NewSystemError("unknown failure: <nil>", nil)

	case *errs.Error:
		return v

	case *RateLimitError:
		structured := errs.NewRateLimitError(v.Message)
		if v.RetryAfter > 0 {
			structured.WithDetails(map[string]any{"retryAfterSeconds": v.RetryAfter})
		}
		return structured

	case *ValidationError:
		return errs.NewValidationError(v.Error(), v.Violations)

	case statusCarrier:
		return errs.FromStatus(v.StatusCode(), v.Error()).WithCause(v)

	case error:
		// An *errs.Error buried in a wrap chain still counts as structured.
		var structured *errs.Error
		if errors.As(v, &structured) {
			return structured
		}
		return errs.NewSystemError(v.Error(), v)

	case string:
		return errs.NewSystemError(v, nil)

	default:
		return errs.NewSystemError(fmt.Sprintf("unknown failure: %v", v), nil)
	}
}
