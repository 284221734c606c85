package correlation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Context carries the tracing identity of one in-flight operation.
//
// TraceID and RequestID are stable across an entire call chain; SpanID is
// unique per hop. A Context is owned by the call that created it and is never
// persisted.
type Context struct {
	RequestID    string `json:"requestId"`
	TraceID      string `json:"traceId"`
	SpanID       string `json:"spanId"`
	ParentSpanID string `json:"parentSpanId,omitempty"`

	UserID    string `json:"userId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	ClientIP  string `json:"clientIp,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`

	ServiceName   string `json:"serviceName"`
	OperationName string `json:"operationName"`

	Timestamp     time.Time      `json:"timestamp"`
	ExecutionTime time.Duration  `json:"executionTime,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// NewTraceID mints a collision-resistant trace identifier of the form
// trace_<unix-ms>_<hex> carrying at least 80 bits of entropy.
func NewTraceID() string {
	return mintID("trace")
}

// NewRequestID mints a request identifier of the form req_<unix-ms>_<hex>.
func NewRequestID() string {
	return mintID("req")
}

// NewSpanID mints a fresh span identifier. Span ids only need to be unique
// within a trace, so a compact UUID-derived token is enough.
func NewSpanID() string {
	return "span_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

func mintID(prefix string) string {
	buf := make([]byte, 10) // 80 bits
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to a uuid so id minting stays total.
		return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(),
			strings.ReplaceAll(uuid.NewString(), "-", "")[:20])
	}
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(buf))
}

// FromRequest builds a Context at the ingress boundary. Trace, request, and
// parent span identifiers present on the inbound request are propagated;
// missing ones are minted. The span id is always fresh.
func FromRequest(r *http.Request, serviceName, operationName string) *Context {
	cc := &Context{
		ServiceName:   serviceName,
		OperationName: operationName,
		SpanID:        NewSpanID(),
		Timestamp:     time.Now(),
		Metadata:      map[string]any{},
	}

	if r != nil {
		cc.TraceID = r.Header.Get(HeaderTraceID)
		cc.RequestID = r.Header.Get(HeaderRequestID)
		cc.ParentSpanID = r.Header.Get(HeaderSpanID)
		cc.UserID = r.Header.Get(HeaderUserID)
		cc.SessionID = r.Header.Get(HeaderSessionID)
		cc.ClientIP = clientIP(r)
		cc.UserAgent = r.UserAgent()
		cc.Metadata["method"] = r.Method
		cc.Metadata["path"] = r.URL.Path
		if r.URL.RawQuery != "" {
			cc.Metadata["query"] = r.URL.RawQuery
		}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			cc.Metadata["contentType"] = ct
		}
	}

	if cc.TraceID == "" {
		cc.TraceID = NewTraceID()
	}
	if cc.RequestID == "" {
		cc.RequestID = NewRequestID()
	}

	return cc
}

// NewInternal builds a Context for work that was not triggered by an HTTP
// request, such as queue consumers or scheduled jobs. When a parent is given
// its trace and request identity is reused and the new span is linked to it.
func NewInternal(serviceName, operationName string, parent *Context) *Context {
	cc := &Context{
		ServiceName:   serviceName,
		OperationName: operationName,
		SpanID:        NewSpanID(),
		Timestamp:     time.Now(),
		Metadata:      map[string]any{},
	}

	if parent != nil {
		cc.TraceID = parent.TraceID
		cc.RequestID = parent.RequestID
		cc.ParentSpanID = parent.SpanID
		cc.UserID = parent.UserID
		cc.SessionID = parent.SessionID
	} else {
		cc.TraceID = NewTraceID()
		cc.RequestID = NewRequestID()
	}

	return cc
}

// Child derives a Context for a nested hop: fresh span id, parent span linked,
// all identity fields copied, execution time reset.
func (c *Context) Child(serviceName, operationName string) *Context {
	return &Context{
		RequestID:     c.RequestID,
		TraceID:       c.TraceID,
		SpanID:        NewSpanID(),
		ParentSpanID:  c.SpanID,
		UserID:        c.UserID,
		SessionID:     c.SessionID,
		ClientIP:      c.ClientIP,
		UserAgent:     c.UserAgent,
		ServiceName:   serviceName,
		OperationName: operationName,
		Timestamp:     time.Now(),
		Metadata:      map[string]any{},
	}
}

// SetMetadata records a free-form metadata entry on the context.
func (c *Context) SetMetadata(key string, value any) {
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	c.Metadata[key] = value
}

// Complete stamps the total execution time once the operation has finished.
func (c *Context) Complete() {
	c.ExecutionTime = time.Since(c.Timestamp)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if idx := strings.LastIndexByte(r.RemoteAddr, ':'); idx >= 0 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}
