// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Context keys and getter/setter functions for values that are typically set
// by middleware but consumed by services. Keeping this package free of
// net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	actorID := requestcontext.ActorID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithActorID(ctx, actorID)
//	ctx = requestcontext.WithActiveSector(ctx, sectorID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "tramita/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	actorIDKey      struct{}
	activeSectorKey struct{}
	requestIDKey    struct{}
	requestTimeKey  struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyActorID      = actorIDKey{}
	ContextKeyActiveSector = activeSectorKey{}
	ContextKeyRequestID    = requestIDKey{}
	ContextKeyRequestTime  = requestTimeKey{}
)

// ActorID retrieves the authenticated collaborator ID from the context.
// Returns the zero value (nil UUID) if not set.
func ActorID(ctx context.Context) id.CollaboratorID {
	if actorID, ok := ctx.Value(ContextKeyActorID).(id.CollaboratorID); ok {
		return actorID
	}
	return id.CollaboratorID{}
}

// WithActorID injects a collaborator ID into the context.
func WithActorID(ctx context.Context, actorID id.CollaboratorID) context.Context {
	return context.WithValue(ctx, ContextKeyActorID, actorID)
}

// ActiveSector retrieves the sector the actor is currently operating as.
// A collaborator may work from a sector other than their home sector;
// routing originates from this one.
func ActiveSector(ctx context.Context) id.SectorID {
	if sectorID, ok := ctx.Value(ContextKeyActiveSector).(id.SectorID); ok {
		return sectorID
	}
	return id.SectorID{}
}

// WithActiveSector injects the actor's working sector into the context.
func WithActiveSector(ctx context.Context, sectorID id.SectorID) context.Context {
	return context.WithValue(ctx, ContextKeyActiveSector, sectorID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
