// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// The auth middleware resolves the acting identity and its casino at request
// entry and injects both here; services, the audit recorder, and the event
// reactors read them back without explicit parameter threading. Because the
// values live on the request's context.Context, isolation between concurrent
// requests is structural: one request's context is never visible to another,
// and the binding vanishes with the request — there is no thread-local state
// to clear on exit paths.
//
// Usage in services (read values):
//
//	actor := requestcontext.Actor(ctx)
//	tenantID := requestcontext.Tenant(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithActor(ctx, actor)
//	ctx = requestcontext.WithTenant(ctx, tenantID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "nexus/pkg/domain"
)

// ActorInfo is the resolved acting identity for the current request. The four
// fields mirror what the identity provider exposes; nothing else about the
// user is needed by the audit/notification core.
type ActorInfo struct {
	UserID      id.UserID
	TenantID    id.TenantID
	RoleName    string
	DisplayName string
}

// IsNil reports whether no actor was bound (unauthenticated or background work).
func (a ActorInfo) IsNil() bool { return a.UserID.IsNil() }

// Context key types (unexported for encapsulation).
type (
	actorKey       struct{}
	tenantKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyActor       = actorKey{}
	ContextKeyTenant      = tenantKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Actor retrieves the acting identity from the context.
// Returns the zero ActorInfo if not set; never panics.
func Actor(ctx context.Context) ActorInfo {
	if actor, ok := ctx.Value(ContextKeyActor).(ActorInfo); ok {
		return actor
	}
	return ActorInfo{}
}

// WithActor injects the acting identity into the context.
func WithActor(ctx context.Context, actor ActorInfo) context.Context {
	return context.WithValue(ctx, ContextKeyActor, actor)
}

// Tenant retrieves the current casino from the context. The tenant is bound
// separately from the actor because background jobs (retention sweep, outbox
// relay) can act on behalf of a tenant with no user identity at all.
// Returns the zero TenantID if not set.
func Tenant(ctx context.Context) id.TenantID {
	if tenantID, ok := ctx.Value(ContextKeyTenant).(id.TenantID); ok {
		return tenantID
	}
	return id.TenantID{}
}

// WithTenant injects the current casino into the context.
func WithTenant(ctx context.Context, tenantID id.TenantID) context.Context {
	return context.WithValue(ctx, ContextKeyTenant, tenantID)
}

// RequestID retrieves the correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for batch jobs that need one consistent timestamp per run.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// Clear returns a context with actor and tenant detached. Handlers that hand a
// request context to longer-lived work (goroutines outliving the request) use
// this so the identity does not leak past the request boundary.
func Clear(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, ContextKeyActor, ActorInfo{})
	return context.WithValue(ctx, ContextKeyTenant, id.TenantID{})
}
