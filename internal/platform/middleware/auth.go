// Package middleware carries the HTTP middleware chain: correlation IDs and
// actor extraction from bearer tokens.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"quarters/internal/platform/token"
	"quarters/pkg/httputil"
	"quarters/pkg/requestcontext"
)

// TokenValidator is the subset of the token package the middleware needs.
type TokenValidator interface {
	Validate(tokenString string) (token.Claims, error)
}

// RequireActor rejects requests without a valid bearer token and injects the
// actor identity into the context for AllocatedBy/UnverifiedBy attribution.
func RequireActor(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || raw == "" {
				httputil.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			claims, err := validator.Validate(raw)
			if err != nil {
				logger.WarnContext(r.Context(), "rejected invalid token",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err)
				httputil.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			ctx := requestcontext.WithActor(r.Context(), claims.Actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
