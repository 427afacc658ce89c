package tenancy

import (
	"context"

	"bizhub/internal/domain/tenant"
)

// Context is the request-scoped binding of a tenant to its store handle.
type Context struct {
	Tenant *tenant.Tenant
	Handle *Handle
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying tc.
func NewContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// Release gives back the store handle reference taken during resolution.
func (tc *Context) Release() {
	if tc != nil {
		tc.Handle.Release()
	}
}

// FromContext returns the tenant binding of the request, if resolution ran.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(*Context)
	return tc, ok && tc != nil
}
