// FilePath: internal/graph/context.go
package graph

import (
	"context"

	"github.com/digicatapult/wasp-api/internal/loader"
	"github.com/digicatapult/wasp-api/internal/models"
)

type contextKey int

const requestContextKey contextKey = iota

// RequestContext carries per-request state through resolver execution: the
// resolved caller identity (nil when anonymous) and the request-scoped
// loaders. A fresh instance is built for every inbound operation; loaders
// are never shared across requests.
type RequestContext struct {
	User   *models.User
	Things *loader.ThingLoader
}

// NewRequestContext builds the per-request state for one GraphQL operation
func (g *Graph) NewRequestContext(user *models.User) *RequestContext {
	return &RequestContext{
		User:   user,
		Things: loader.NewThingLoader(g.things),
	}
}

// WithRequestContext attaches the request state to ctx
func WithRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// RequestContextFrom extracts the request state from ctx, nil if absent
func RequestContextFrom(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey).(*RequestContext)
	return rc
}

func currentUser(ctx context.Context) *models.User {
	if rc := RequestContextFrom(ctx); rc != nil {
		return rc.User
	}
	return nil
}
