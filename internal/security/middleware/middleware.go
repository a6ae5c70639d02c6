package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/security"
	"github.com/yourorg/unitsphere/internal/security/auth"
	"github.com/yourorg/unitsphere/internal/security/ratelimit"
)

type ClaimsContextKey struct{}

// Authenticate verifies the bearer token on every request that carries one
// and stores the verified identity in the context. Requests without an
// Authorization header pass through unauthenticated; role-gated handlers
// reject them via RequireRoles.
func Authenticate(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid authorization header"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				log.Debug("token rejected", slog.String("error", err.Error()))
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth wraps a handler that needs any verified identity.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetClaimsFromContext(r.Context()) == nil {
			http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles wraps a handler behind the role gate. 401 without a verified
// identity, 403 when the stored role is not in the required set.
func RequireRoles(gate *security.RoleGate, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaimsFromContext(r.Context())
			if claims == nil {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			if err := gate.Authorize(r.Context(), claims.Email, roles...); err != nil {
				http.Error(w, `{"error":"insufficient role"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit rejects callers over their per-email budget. Unauthenticated
// requests are keyed by remote address.
func RateLimit(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if claims := GetClaimsFromContext(r.Context()); claims != nil {
				key = claims.Email
			}

			if !limiter.Allow(key) {
				log.Warn("rate limit exceeded", slog.String("caller", key))
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetClaimsFromContext returns the verified identity, or nil.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
