// Package telemetry wires OpenTelemetry exporters and meters for the
// resilience core and provides the metric sinks the logger and interceptor
// chain emit into.
//
// It centralises trace provider setup, applies platform resource attributes,
// and offers an OTel-backed and a Prometheus-backed implementation of the
// core's MetricsSink interface so operators can correlate structured errors
// and circuit-breaker transitions with upstream behaviour.
package telemetry
