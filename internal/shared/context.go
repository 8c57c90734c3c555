package shared

import "context"

type actorContextKey struct{}

// Actor identifies the staff member issuing a request.
type Actor struct {
	ID    int64
	Label string
}

// ContextWithActor stores the acting staff member in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the acting staff member, or the zero Actor.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorContextKey{}).(Actor)
	return actor
}
