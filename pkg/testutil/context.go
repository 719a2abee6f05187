package testutil

import (
	"context"
	"time"

	id "tramita/pkg/domain"
	"tramita/pkg/requestcontext"
)

// ActorContext builds a context carrying an actor identity and working sector,
// simulating what the auth middleware does for authenticated requests.
func ActorContext(actorID id.CollaboratorID, sectorID id.SectorID) context.Context {
	ctx := requestcontext.WithActorID(context.Background(), actorID)
	return requestcontext.WithActiveSector(ctx, sectorID)
}

// ActorContextAt is ActorContext with a pinned request time for deterministic
// timestamps in assertions.
func ActorContextAt(actorID id.CollaboratorID, sectorID id.SectorID, now time.Time) context.Context {
	return requestcontext.WithTime(ActorContext(actorID, sectorID), now)
}
