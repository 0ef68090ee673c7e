// Package requestid carries the per-request correlation id between the web
// layer and outbound API calls.
package requestid

import "context"

// Header is the HTTP header used both inbound and outbound.
const Header = "X-Request-ID"

type ctxKey struct{}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request id stored in ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
