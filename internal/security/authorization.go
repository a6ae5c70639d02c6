package security

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/pkg/cache"
)

const roleCacheTTL = 30 * time.Second

// RoleGate resolves the caller's role from the user store and admits or
// denies against a required role set. It fails closed: a caller with no
// user record is denied, never dereferenced.
type RoleGate struct {
	users  domain.UserRepository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewRoleGate creates a new role gate
func NewRoleGate(users domain.UserRepository, roleCache *cache.Cache, logger *slog.Logger) *RoleGate {
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleGate{
		users:  users,
		cache:  roleCache,
		logger: logger,
	}
}

// ResolveRole returns the stored role for the given verified email.
// Missing user records surface as ErrForbidden.
func (g *RoleGate) ResolveRole(ctx context.Context, email string) (domain.Role, error) {
	if g.cache != nil {
		if v, ok := g.cache.Get(roleKey(email)); ok {
			if role, ok := v.(domain.Role); ok {
				return role, nil
			}
		}
	}

	user, err := g.users.GetByEmail(ctx, email)
	if err != nil {
		g.logger.Warn("role resolution failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("%w: no account for %s", domain.ErrForbidden, email)
	}

	if g.cache != nil {
		g.cache.Set(roleKey(email), user.Role, roleCacheTTL)
	}
	return user.Role, nil
}

// Authorize admits the caller when their stored role is in required.
func (g *RoleGate) Authorize(ctx context.Context, email string, required ...domain.Role) error {
	role, err := g.ResolveRole(ctx, email)
	if err != nil {
		return err
	}
	for _, r := range required {
		if role == r {
			return nil
		}
	}
	g.logger.Warn("authorization denied",
		slog.String("email", email),
		slog.String("role", string(role)),
	)
	return fmt.Errorf("%w: role %s not permitted", domain.ErrForbidden, role)
}

// InvalidateRole drops a cached role after a promotion or demotion.
func (g *RoleGate) InvalidateRole(email string) {
	if g.cache != nil {
		g.cache.Delete(roleKey(email))
	}
}

func roleKey(email string) string {
	return "role:" + email
}
