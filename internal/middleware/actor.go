package middleware

import (
	"context"
	"net/http"

	"github.com/kirasurf/order-service/internal/entities"
)

const (
	headerActorID   = "X-Actor-Id"
	headerActorRole = "X-Actor-Role"
)

type actorKey struct{}

// Actor reads the verified identity injected by the auth gateway. Requests
// without valid actor headers proceed with a zero actor; role checks in the
// service reject them where a role is required.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, err := entities.ParseRole(r.Header.Get(headerActorRole))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		actor := entities.Actor{
			ID:   r.Header.Get(headerActorID),
			Role: role,
		}
		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ActorFromContext(ctx context.Context) entities.Actor {
	actor, ok := ctx.Value(actorKey{}).(entities.Actor)
	if !ok {
		return entities.Actor{}
	}
	return actor
}
