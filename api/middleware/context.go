package middleware

import (
	"context"

	"github.com/campuslabs/labstock-backend/internal/policy"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated actor, or nil for anonymous requests.
func ActorFromContext(ctx context.Context) *policy.Actor {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxActor).(*policy.Actor); ok {
		return v
	}
	return nil
}

// WithActor injects the actor into the context for downstream handlers.
func WithActor(ctx context.Context, actor *policy.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
