package middleware

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/security"
	"github.com/yourorg/unitsphere/internal/security/auth"
	"github.com/yourorg/unitsphere/pkg/cache"
)

type roleRepo map[string]domain.Role

func (r roleRepo) Create(context.Context, *domain.User) error { return nil }
func (r roleRepo) GetByID(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (r roleRepo) UpdateRole(context.Context, string, domain.Role) error      { return nil }
func (r roleRepo) ListExcept(context.Context, string) ([]*domain.User, error) { return nil, nil }
func (r roleRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if role, ok := r[email]; ok {
		return &domain.User{ID: email, Email: email, Role: role}, nil
	}
	return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticatePassesAnonymousThrough(t *testing.T) {
	tm := auth.NewTokenManager("secret", "unitsphere")
	h := Authenticate(tm, testLog())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetClaimsFromContext(r.Context()) != nil {
			t.Errorf("anonymous request must carry no claims")
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	tm := auth.NewTokenManager("secret", "unitsphere")
	h := Authenticate(tm, testLog())(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAuthenticateStoresClaims(t *testing.T) {
	tm := auth.NewTokenManager("secret", "unitsphere")
	token, err := tm.GenerateToken("alice@example.com", "Alice", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	h := Authenticate(tm, testLog())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaimsFromContext(r.Context())
		if claims == nil || claims.Email != "alice@example.com" {
			t.Errorf("claims not stored: %+v", claims)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRequireAuth(t *testing.T) {
	h := RequireAuth(okHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rr.Code)
	}
}

func TestRequireRoles(t *testing.T) {
	repo := roleRepo{
		"admin@example.com":  domain.RoleAdmin,
		"member@example.com": domain.RoleMember,
	}
	gate := security.NewRoleGate(repo, cache.New(), testLog())
	h := RequireRoles(gate, domain.RoleAdmin)(okHandler())

	withClaims := func(email string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), ClaimsContextKey{}, &auth.Claims{Email: email})
		return req.WithContext(ctx)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no identity: expected 401, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, withClaims("member@example.com"))
	if rr.Code != http.StatusForbidden {
		t.Errorf("member at admin gate: expected 403, got %d", rr.Code)
	}

	// A verified token whose email has no account is denied, not served.
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, withClaims("ghost@example.com"))
	if rr.Code != http.StatusForbidden {
		t.Errorf("unknown account: expected 403, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, withClaims("admin@example.com"))
	if rr.Code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", rr.Code)
	}
}
