package testutil

import (
	"net/http"
	"time"

	id "nexus/pkg/domain"
	"nexus/pkg/requestcontext"
)

// WithActor binds an acting identity to the request context, simulating what
// the auth middleware does for authenticated requests.
func WithActor(req *http.Request, actor requestcontext.ActorInfo) *http.Request {
	ctx := requestcontext.WithActor(req.Context(), actor)
	if !actor.TenantID.IsNil() {
		ctx = requestcontext.WithTenant(ctx, actor.TenantID)
	}
	return req.WithContext(ctx)
}

// WithTenant binds a tenant without an actor, the state background jobs run in.
func WithTenant(req *http.Request, tenantID id.TenantID) *http.Request {
	return req.WithContext(requestcontext.WithTenant(req.Context(), tenantID))
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
