package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/observability/metrics"
	"github.com/yourorg/unitsphere/internal/security"
	"github.com/yourorg/unitsphere/internal/security/audit"
)

// AgreementService handles lease applications and admin decisions on them.
type AgreementService struct {
	agreements domain.AgreementRepository
	apartments domain.ApartmentRepository
	gate       *security.RoleGate
	listings   *ApartmentService
	audit      *audit.Logger
	logger     *slog.Logger
}

// NewAgreementService creates a new agreement service
func NewAgreementService(
	agreements domain.AgreementRepository,
	apartments domain.ApartmentRepository,
	gate *security.RoleGate,
	listings *ApartmentService,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *AgreementService {
	return &AgreementService{
		agreements: agreements,
		apartments: apartments,
		gate:       gate,
		listings:   listings,
		audit:      auditLog,
		logger:     logger,
	}
}

// SubmitRequest is a lease application for one apartment. Identity fields
// come from the verified token, never from the request body.
type SubmitRequest struct {
	UserEmail   string
	UserName    string
	ApartmentID string
}

// Submit files a pending agreement. A caller with any agreement already on
// file, whatever its status, gets ErrDuplicateAgreement.
func (s *AgreementService) Submit(ctx context.Context, req SubmitRequest) (*domain.Agreement, error) {
	if req.ApartmentID == "" {
		return nil, fmt.Errorf("%w: apartment id is required", domain.ErrValidation)
	}

	exists, err := s.agreements.ExistsForUser(ctx, req.UserEmail)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateAgreement
	}

	apartment, err := s.apartments.GetByID(ctx, req.ApartmentID)
	if err != nil {
		return nil, err
	}

	agreement := &domain.Agreement{
		UserEmail:   req.UserEmail,
		UserName:    req.UserName,
		ApartmentID: apartment.ID,
		UnitNumber:  apartment.UnitNumber,
		Floor:       apartment.Floor,
		Block:       apartment.Block,
		Rent:        apartment.Rent,
		Status:      domain.AgreementPending,
	}
	if err := s.agreements.Create(ctx, agreement); err != nil {
		return nil, err
	}

	s.logger.Info("agreement submitted",
		slog.String("agreement_id", agreement.ID),
		slog.String("user_email", agreement.UserEmail),
		slog.String("apartment_id", agreement.ApartmentID),
	)
	return agreement, nil
}

// ListPending returns agreements awaiting a decision, newest first.
func (s *AgreementService) ListPending(ctx context.Context) ([]*domain.Agreement, error) {
	return s.agreements.ListByStatus(ctx, domain.AgreementPending)
}

// Accept applies an admin's approval. The status flip, the applicant's
// promotion to member and the unit booking land together or not at all.
func (s *AgreementService) Accept(ctx context.Context, actorEmail, id string) (*domain.Agreement, error) {
	outcome, err := s.agreements.Accept(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.gate.InvalidateRole(outcome.Agreement.UserEmail)
	if s.listings != nil {
		s.listings.InvalidateListings(ctx)
	}

	metrics.ObserveAgreementDecision("accepted")
	metrics.IncrementBooked()
	s.audit.LogAgreementDecision(ctx, actorEmail, id, "accept")
	s.logger.Info("agreement accepted",
		slog.String("agreement_id", id),
		slog.String("user_email", outcome.Agreement.UserEmail),
		slog.String("apartment_id", outcome.ApartmentID),
		slog.String("actor", actorEmail),
	)
	return outcome.Agreement, nil
}

// Reject declines a pending agreement. Nothing else changes: the applicant
// keeps their role and the apartment stays available.
func (s *AgreementService) Reject(ctx context.Context, actorEmail, id string) (*domain.Agreement, error) {
	agreement, err := s.agreements.Reject(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.ObserveAgreementDecision("rejected")
	s.audit.LogAgreementDecision(ctx, actorEmail, id, "reject")
	s.logger.Info("agreement rejected",
		slog.String("agreement_id", id),
		slog.String("actor", actorEmail),
	)
	return agreement, nil
}
