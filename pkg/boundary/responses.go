package boundary

// ErrorResponse is the wire-level JSON error contract every service returns.
type ErrorResponse struct {
	Success     bool             `json:"success"`
	Error       ErrorBody        `json:"error"`
	Context     RequestContext   `json:"context"`
	Correlation *CorrelationBody `json:"correlation,omitempty"`
	Recovery    *RecoveryBody    `json:"recovery,omitempty"`
	Impact      *ImpactBody      `json:"impact,omitempty"`
	Monitoring  *MonitoringBody  `json:"monitoring,omitempty"`
	Details     any              `json:"details,omitempty"`
	Stack       string           `json:"stack,omitempty"`
}

// ErrorBody describes the failure itself.
type ErrorBody struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	UserMessage string `json:"userMessage"`
	Timestamp   string `json:"timestamp"`
	Severity    string `json:"severity"`
	TraceID     string `json:"traceId,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
}

// RequestContext identifies where the failure happened.
type RequestContext struct {
	Path          string `json:"path,omitempty"`
	Method        string `json:"method,omitempty"`
	ServiceName   string `json:"serviceName,omitempty"`
	OperationName string `json:"operationName,omitempty"`
	IP            string `json:"ip,omitempty"`
}

// CorrelationBody carries the tracing identifiers of the failing call.
type CorrelationBody struct {
	TraceID      string `json:"traceId"`
	RequestID    string `json:"requestId"`
	SpanID       string `json:"spanId"`
	ParentSpanID string `json:"parentSpanId,omitempty"`
}

// RecoveryBody tells the client what it can do about the failure.
type RecoveryBody struct {
	Strategies  []string `json:"strategies"`
	Suggestions []string `json:"suggestions"`
	Retryable   bool     `json:"retryable"`
}

// ImpactBody grades the failure's blast radius.
type ImpactBody struct {
	Business string `json:"business"`
	User     string `json:"user"`
}

// MonitoringBody carries alert-routing tags and sampled metrics.
type MonitoringBody struct {
	Tags    map[string]string  `json:"tags"`
	Metrics map[string]float64 `json:"metrics"`
}

// MinimalErrorResponse is the compact contract used by health checks.
type MinimalErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
	TraceID   string `json:"traceId,omitempty"`
}
