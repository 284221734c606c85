// Package correlation derives, propagates, and carries distributed-tracing
// identifiers across service boundaries for the talent-matching platform.
//
// A Context is created once at the ingress boundary (from inbound headers or
// freshly minted) or at an internal call site (derived from a parent), travels
// through the request as a context.Context value, and is attached to
// structured errors on failure. Trace and request identifiers stay stable
// across the whole call chain while the span identifier is regenerated for
// every hop.
package correlation
