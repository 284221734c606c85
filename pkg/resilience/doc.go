// Package resilience guards inter-service operations with a composable
// interceptor chain: correlation propagation, structured logging, performance
// sampling, and failure recovery through per-operation circuit breakers.
//
// Stages are explicit function wrappers composed around a handler value at the
// call site. For one operation the configured stages enter in order and exit
// in reverse; independent concurrent operations share only the circuit-breaker
// table, which is mutex-protected.
package resilience
