// Package boundary is the outermost failure edge of a service: it converts
// any thrown value into the structured error model and renders the wire-level
// JSON error contract.
//
// The normalizer is total: validation failure lists, rate-limit rejections,
// status-carrying boundary errors, panics, and plain values all come out as a
// structured error with a non-empty type and code. The formatter resolves an
// audience-safe user message and a retryable flag, and strips diagnostic
// details in hardened mode.
package boundary
