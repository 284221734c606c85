package correlation

import "context"

// ctxKey is a private context key type to avoid collisions.
type ctxKey struct{}

// With attaches cc as the active correlation context. Nesting With calls
// models re-entrant operations: the derived context shadows the caller's
// active context and the caller's is restored automatically when the nested
// context.Context goes out of scope. Because the active context rides on
// context.Context values rather than process-wide state, concurrent requests
// can never observe each other's contexts.
func With(ctx context.Context, cc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, cc)
}

// Active returns the correlation context of the executing call, or nil when
// none has been attached.
func Active(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	cc, _ := ctx.Value(ctxKey{}).(*Context)
	return cc
}

// ActiveOrNew returns the active context, minting an internal one when the
// call chain carries none. The minted context is not attached; callers that
// need it propagated must call With themselves.
func ActiveOrNew(ctx context.Context, serviceName, operationName string) *Context {
	if cc := Active(ctx); cc != nil {
		return cc
	}
	return NewInternal(serviceName, operationName, nil)
}
