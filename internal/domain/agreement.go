package domain

import (
	"context"
	"time"
)

// AgreementStatus tracks an agreement through its lifecycle. Pending is the
// only mutable state; accepted and rejected are terminal and the transition
// happens exactly once.
type AgreementStatus string

const (
	AgreementPending  AgreementStatus = "pending"
	AgreementAccepted AgreementStatus = "accepted"
	AgreementRejected AgreementStatus = "rejected"
)

// Agreement is a lease application tying a user to an apartment. A user has
// at most one agreement on file, enforced by a unique index on userEmail.
type Agreement struct {
	ID          string          `json:"id"`
	UserEmail   string          `json:"userEmail"`
	UserName    string          `json:"userName"`
	ApartmentID string          `json:"apartmentId"`
	UnitNumber  string          `json:"unitNumber"`
	Floor       int             `json:"floor"`
	Block       string          `json:"block"`
	Rent        float64         `json:"rent"`
	Status      AgreementStatus `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	AcceptDate  *time.Time      `json:"acceptDate,omitempty"`
}

// AcceptOutcome reports what an accepted agreement changed.
type AcceptOutcome struct {
	Agreement   *Agreement
	UserID      string
	ApartmentID string
}

// AgreementRepository defines data access for agreements. Accept and Reject
// are atomic: implementations must apply the status write and, for Accept,
// the role promotion and unit booking in a single transaction, or fail the
// whole operation.
type AgreementRepository interface {
	Create(ctx context.Context, agreement *Agreement) error
	GetByID(ctx context.Context, id string) (*Agreement, error)
	ExistsForUser(ctx context.Context, email string) (bool, error)
	ListByStatus(ctx context.Context, status AgreementStatus) ([]*Agreement, error)
	// Accept moves a pending agreement to accepted with acceptDate=now,
	// promotes its user to member and marks its apartment booked. Returns
	// ErrNotFound when the agreement, user or apartment is missing, and
	// ErrAgreementClosed when the agreement is no longer pending.
	Accept(ctx context.Context, id string, now time.Time) (*AcceptOutcome, error)
	// Reject moves a pending agreement to rejected. User role and
	// apartment availability are untouched.
	Reject(ctx context.Context, id string) (*Agreement, error)
}
