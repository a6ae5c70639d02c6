package security

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/pkg/cache"
)

type stubUserRepo struct {
	users map[string]*domain.User
	gets  int
}

func (s *stubUserRepo) Create(context.Context, *domain.User) error { return nil }
func (s *stubUserRepo) GetByID(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (s *stubUserRepo) UpdateRole(context.Context, string, domain.Role) error { return nil }
func (s *stubUserRepo) ListExcept(context.Context, string) ([]*domain.User, error) {
	return nil, nil
}
func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.gets++
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
}

func newTestGate(users map[string]*domain.User) (*stubUserRepo, *RoleGate) {
	repo := &stubUserRepo{users: users}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return repo, NewRoleGate(repo, cache.New(), log)
}

func TestAuthorizeDeniesUnknownCaller(t *testing.T) {
	_, gate := newTestGate(map[string]*domain.User{})

	err := gate.Authorize(context.Background(), "ghost@example.com", domain.RoleAdmin)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("missing account must be forbidden, got %v", err)
	}
}

func TestAuthorizeChecksStoredRole(t *testing.T) {
	_, gate := newTestGate(map[string]*domain.User{
		"member@example.com": {ID: "1", Email: "member@example.com", Role: domain.RoleMember},
	})
	ctx := context.Background()

	if err := gate.Authorize(ctx, "member@example.com", domain.RoleAdmin, domain.RoleMember); err != nil {
		t.Errorf("member must pass a member gate: %v", err)
	}
	if err := gate.Authorize(ctx, "member@example.com", domain.RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("member must not pass an admin gate, got %v", err)
	}
}

func TestResolveRoleCachesAndInvalidates(t *testing.T) {
	repo, gate := newTestGate(map[string]*domain.User{
		"alice@example.com": {ID: "1", Email: "alice@example.com", Role: domain.RoleUser},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := gate.ResolveRole(ctx, "alice@example.com"); err != nil {
			t.Fatalf("resolve: %v", err)
		}
	}
	if repo.gets != 1 {
		t.Errorf("expected one repository lookup, got %d", repo.gets)
	}

	repo.users["alice@example.com"].Role = domain.RoleMember
	gate.InvalidateRole("alice@example.com")

	role, err := gate.ResolveRole(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("resolve after invalidate: %v", err)
	}
	if role != domain.RoleMember {
		t.Errorf("expected fresh role after invalidation, got %s", role)
	}
}
