package backendfake

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-billing-console/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyClaims stores the parsed access token claims
const ContextKeyClaims ContextKey = "claims"

func claimsFrom(ctx context.Context) *accessClaims {
	c, _ := ctx.Value(ContextKeyClaims).(*accessClaims)
	return c
}

// RequireAuth validates the Bearer access token and injects its claims.
func (b *Backend) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization header format")
				return
			}

			claims, err := b.parseAccessToken(parts[1])
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "TOKEN_EXPIRED", "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAnyRole rejects callers holding none of roles. It must run after
// RequireAuth.
func (b *Backend) RequireAnyRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := claimsFrom(r.Context())
			caller := &users.User{Roles: claims.Roles}
			if !caller.HasAnyRole(roles...) {
				writeError(w, r, http.StatusForbidden, "ACCESS_DENIED", "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// countHits records every request that reaches a handler.
func (b *Backend) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hit(r)
		next.ServeHTTP(w, r)
	})
}

// logRequests logs every request at debug level once it has been answered.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("dur", time.Since(start)).
			Msg("backend")
	})
}
