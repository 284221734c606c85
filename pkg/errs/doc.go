// Package errs defines the structured error model shared by every service in
// the talent-matching platform.
//
// An Error carries a taxonomy type, a stable machine code, severity, business
// and user impact, curated recovery strategies, monitoring tags, and the
// correlation context of the failing operation. Domain-specific constructors
// (messaging, parsing, ML model, cache, queue, template) pre-populate the
// fields appropriate to each failure class so call sites can raise a rich,
// self-describing error with a single call.
package errs
