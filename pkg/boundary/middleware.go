package boundary

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/talentmatch/corekit/pkg/correlation"
	"github.com/talentmatch/corekit/pkg/errs"
	"github.com/talentmatch/corekit/pkg/logging"
)

// Middleware is the outermost HTTP boundary: it derives the correlation
// context from the inbound request, stamps the propagation headers on the
// reply, and guarantees that every failure, panics included, leaves as the
// JSON error contract.
type Middleware struct {
	serviceName string
	logger      *logging.Logger
	normalizer  *Normalizer
	formatter   *Formatter
}

// NewMiddleware wires the boundary for one service.
func NewMiddleware(serviceName string, logger *logging.Logger, formatter *Formatter) *Middleware {
	return &Middleware{
		serviceName: serviceName,
		logger:      logger,
		normalizer:  NewNormalizer(serviceName),
		formatter:   formatter,
	}
}

// HandlerFunc is an HTTP handler that reports failures by returning an error
// instead of writing its own error body.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle wraps a fallible handler for the named operation. The correlation
// context is derived from inbound headers (propagating an existing trace or
// minting a fresh one), the reply always carries the trace headers, and any
// returned error or panic is normalized, logged, and rendered.
func (m *Middleware) Handle(operation string, h HandlerFunc) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cc := correlation.FromRequest(r, m.serviceName, operation)
		ctx := correlation.With(r.Context(), cc)
		r = r.WithContext(ctx)

		correlation.Inject(cc, w.Header())

		defer func() {
			if recovered := recover(); recovered != nil {
				err := m.normalizer.Normalize(ctx, recovered, r)
				err.Stack = string(debug.Stack())
				m.writeError(w, r, err)
			}
		}()

		if err := h(w, r); err != nil {
			m.writeError(w, r, m.normalizer.Normalize(ctx, err, r))
		}
	})

	return otelhttp.NewHandler(inner, operation)
}

// Wrap adapts a plain http.Handler: correlation propagation and panic
// recovery only, for handlers that manage their own success responses.
func (m *Middleware) Wrap(operation string, next http.Handler) http.Handler {
	return m.Handle(operation, func(w http.ResponseWriter, r *http.Request) error {
		next.ServeHTTP(w, r)
		return nil
	})
}

// WriteError normalizes raw and renders it; exported for handlers that need
// to emit an error response outside the Handle flow.
func (m *Middleware) WriteError(w http.ResponseWriter, r *http.Request, raw any) {
	m.writeError(w, r, m.normalizer.Normalize(r.Context(), raw, r))
}

func (m *Middleware) writeError(w http.ResponseWriter, r *http.Request, err *errs.Error) {
	m.logger.LogError(r.Context(), err)

	if cc := err.Correlation; cc != nil {
		correlation.Inject(cc, w.Header())
	}

	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if encodeErr := json.NewEncoder(w).Encode(m.formatter.Format(err, r)); encodeErr != nil {
		m.logger.LogError(r.Context(), errs.NewSystemError("failed to encode error response", encodeErr))
	}
}

// WriteMinimalError renders the compact health-check error contract.
func (m *Middleware) WriteMinimalError(w http.ResponseWriter, r *http.Request, raw any) {
	err := m.normalizer.Normalize(r.Context(), raw, r)
	m.logger.LogError(r.Context(), err)

	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(m.formatter.FormatMinimal(err))
}
