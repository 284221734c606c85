package correlation

import "net/http"

// Propagation headers shared by every service in the platform. Lookups through
// http.Header are case-insensitive, so the canonical forms below match inbound
// x-trace-id style headers as well.
const (
	HeaderTraceID      = "X-Trace-ID"
	HeaderRequestID    = "X-Request-ID"
	HeaderSpanID       = "X-Span-ID"
	HeaderParentSpanID = "X-Parent-Span-ID"
	HeaderUserID       = "X-User-ID"
	HeaderSessionID    = "X-Session-ID"
)

// OutboundHeaders returns the header set to stamp on a downstream call or an
// HTTP reply. Trace, request, and span ids are always present; the optional
// identity headers are included only when known.
func OutboundHeaders(c *Context) map[string]string {
	if c == nil {
		return map[string]string{}
	}

	headers := map[string]string{
		HeaderTraceID:   c.TraceID,
		HeaderRequestID: c.RequestID,
		HeaderSpanID:    c.SpanID,
	}
	if c.ParentSpanID != "" {
		headers[HeaderParentSpanID] = c.ParentSpanID
	}
	if c.UserID != "" {
		headers[HeaderUserID] = c.UserID
	}
	if c.SessionID != "" {
		headers[HeaderSessionID] = c.SessionID
	}
	return headers
}

// Inject stamps the outbound propagation headers onto an http.Header, for both
// replies and downstream requests.
func Inject(c *Context, h http.Header) {
	for key, value := range OutboundHeaders(c) {
		h.Set(key, value)
	}
}
