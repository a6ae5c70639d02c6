package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/security"
	"github.com/yourorg/unitsphere/internal/security/audit"
	"github.com/yourorg/unitsphere/pkg/cache"
)

func newUserFixture(t *testing.T) (*memUserRepo, *security.RoleGate, *UserService) {
	t.Helper()
	log := testLogger()
	repo := newMemUserRepo()
	gate := security.NewRoleGate(repo, cache.New(), log)
	return repo, gate, NewUserService(repo, gate, audit.NewLogger(log), log)
}

func TestRegisterIsIdempotent(t *testing.T) {
	_, _, svc := newUserFixture(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if first.Role != domain.RoleUser {
		t.Errorf("new accounts start as user, got %s", first.Role)
	}

	second, err := svc.Register(ctx, "alice@example.com", "Alice Again")
	if err != nil {
		t.Fatalf("re-register failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("re-registering created a new account")
	}
	if second.Name != "Alice" {
		t.Errorf("re-registering must not overwrite the stored name")
	}

	if _, err := svc.Register(ctx, "", "Nobody"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for empty email, got %v", err)
	}
}

func TestDemoteOnlyMembers(t *testing.T) {
	repo, gate, svc := newUserFixture(t)
	ctx := context.Background()

	member := &domain.User{Email: "bob@example.com", Role: domain.RoleMember}
	admin := &domain.User{Email: "root@example.com", Role: domain.RoleAdmin}
	base := &domain.User{Email: "carol@example.com", Role: domain.RoleUser}
	for _, u := range []*domain.User{member, admin, base} {
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	// Warm the role cache so we can see it invalidated.
	if _, err := gate.ResolveRole(ctx, member.Email); err != nil {
		t.Fatalf("resolve role: %v", err)
	}

	demoted, err := svc.Demote(ctx, "root@example.com", member.ID)
	if err != nil {
		t.Fatalf("demote failed: %v", err)
	}
	if demoted.Role != domain.RoleUser {
		t.Errorf("expected user role after demotion, got %s", demoted.Role)
	}

	role, err := gate.ResolveRole(ctx, member.Email)
	if err != nil {
		t.Fatalf("resolve role after demote: %v", err)
	}
	if role != domain.RoleUser {
		t.Errorf("role gate still returns %s after demotion", role)
	}

	if _, err := svc.Demote(ctx, "root@example.com", admin.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("demoting an admin must fail, got %v", err)
	}
	if _, err := svc.Demote(ctx, "root@example.com", base.ID); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("demoting a base user must fail, got %v", err)
	}
	if _, err := svc.Demote(ctx, "root@example.com", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListExcludesCaller(t *testing.T) {
	repo, _, svc := newUserFixture(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "admin@example.com"} {
		if err := repo.Create(ctx, &domain.User{Email: email, Role: domain.RoleUser}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	users, err := svc.List(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if u.Email == "admin@example.com" {
			t.Errorf("caller must be excluded from the listing")
		}
	}
}
