package auth

import (
	"context"

	"github.com/BorisDmv/snip-api/internal/models"
)

type contextKey string

const actorContextKey contextKey = "actor"

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the verified actor, or the zero Actor for
// anonymous requests.
func ActorFromContext(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(actorContextKey).(models.Actor)
	return actor
}
