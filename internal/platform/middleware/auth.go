package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"nexus/pkg/domain"
	"nexus/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator.
type TokenClaims struct {
	UserID      string
	TenantID    string
	RoleName    string
	DisplayName string
}

// RequireAuth rejects requests without a valid bearer token and binds the
// authenticated actor into the request context. Everything downstream reads
// the actor through requestcontext; no handler touches the token itself.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			userID, err := domain.ParseUserID(claims.UserID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed subject",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			actor := requestcontext.ActorInfo{
				UserID:      userID,
				RoleName:    claims.RoleName,
				DisplayName: claims.DisplayName,
			}
			// Tenant is optional: platform operators carry no tenant claim.
			if claims.TenantID != "" {
				tenantID, err := domain.ParseTenantID(claims.TenantID)
				if err != nil {
					logger.WarnContext(ctx, "unauthorized access - malformed tenant",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
					)
					writeUnauthorized(w, "Invalid or expired token")
					return
				}
				actor.TenantID = tenantID
				ctx = requestcontext.WithTenant(ctx, tenantID)
			}
			ctx = requestcontext.WithActor(ctx, actor)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
