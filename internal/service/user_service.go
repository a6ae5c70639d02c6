package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/security"
	"github.com/yourorg/unitsphere/internal/security/audit"
)

// UserService handles account registration and role management
type UserService struct {
	users  domain.UserRepository
	gate   *security.RoleGate
	audit  *audit.Logger
	logger *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(users domain.UserRepository, gate *security.RoleGate, auditLog *audit.Logger, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		gate:   gate,
		audit:  auditLog,
		logger: logger,
	}
}

// Register creates an account for a verified identity if none exists yet.
// Re-registering an existing email is a no-op returning the stored account,
// so the sign-in flow can call it unconditionally.
func (s *UserService) Register(ctx context.Context, email, name string) (*domain.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	user := &domain.User{
		Email: email,
		Name:  name,
		Role:  domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration may have won the insert.
		if errors.Is(err, domain.ErrValidation) {
			return s.users.GetByEmail(ctx, email)
		}
		return nil, err
	}

	s.logger.Info("user registered", slog.String("email", email))
	return user, nil
}

// Role returns the stored role for the given email.
func (s *UserService) Role(ctx context.Context, email string) (domain.Role, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// List returns every account except the caller's own, newest first.
func (s *UserService) List(ctx context.Context, callerEmail string) ([]*domain.User, error) {
	return s.users.ListExcept(ctx, callerEmail)
}

// Demote moves a member back to the base role. Only members can be
// demoted; admins and base users are rejected.
func (s *UserService) Demote(ctx context.Context, actorEmail, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleMember {
		return nil, fmt.Errorf("%w: only members can be demoted", domain.ErrValidation)
	}

	if err := s.users.UpdateRole(ctx, user.ID, domain.RoleUser); err != nil {
		return nil, err
	}
	user.Role = domain.RoleUser

	s.gate.InvalidateRole(user.Email)
	s.audit.LogRoleChange(ctx, actorEmail, user.ID, string(domain.RoleMember), string(domain.RoleUser))
	s.logger.Info("user demoted",
		slog.String("user_id", user.ID),
		slog.String("actor", actorEmail),
	)
	return user, nil
}
