package domain

import (
	"context"
	"time"
)

// Role gates endpoint access. Every user holds exactly one role.
type Role string

const (
	RoleUser   Role = "user"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleMember, RoleAdmin:
		return true
	}
	return false
}

// User represents a resident or administrator account. Accounts are created
// idempotently on first sign-in and never deleted; only the role moves
// (user -> member on agreement accept, member -> user on admin demotion).
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateRole(ctx context.Context, id string, role Role) error
	// ListExcept returns all users except the one with the given email,
	// newest first.
	ListExcept(ctx context.Context, email string) ([]*User, error)
}
