// Package logging provides correlation-aware structured logging for the
// resilience core.
//
// Every record stamps the active correlation context so log lines from one
// request can be joined across services by trace id. Severity routes to the
// matching slog level, and best-effort external sinks (log shipping, metric
// emission) are injected behind small interfaces instead of being called
// directly.
package logging
