package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/observability/metrics"
	"github.com/yourorg/unitsphere/internal/security/audit"
	"github.com/yourorg/unitsphere/pkg/config"
)

// PaymentService records completed rent payments and opens payment intents
// with the external gateway.
type PaymentService struct {
	payments domain.PaymentRepository
	gateway  domain.PaymentGateway
	currency string
	audit    *audit.Logger
	logger   *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	payments domain.PaymentRepository,
	gateway domain.PaymentGateway,
	cfg *config.Config,
	auditLog *audit.Logger,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		gateway:  gateway,
		currency: cfg.PaymentCurrency,
		audit:    auditLog,
		logger:   logger,
	}
}

// RecordRequest is a completed payment to append to the ledger. UserEmail
// comes from the verified token.
type RecordRequest struct {
	UserEmail   string
	ApartmentID string
	Month       string
	Amount      float64
	CouponCode  string
}

// Record appends a payment to the caller's history.
func (s *PaymentService) Record(ctx context.Context, req RecordRequest) (*domain.Payment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}
	if req.Month == "" {
		return nil, fmt.Errorf("%w: month is required", domain.ErrValidation)
	}

	payment := &domain.Payment{
		UserEmail:   req.UserEmail,
		ApartmentID: req.ApartmentID,
		Month:       req.Month,
		Amount:      req.Amount,
		CouponCode:  req.CouponCode,
		PaymentDate: time.Now().UTC(),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	metrics.ObservePaymentRecorded()
	s.audit.LogPayment(ctx, req.UserEmail, payment.ID,
		fmt.Sprintf("month=%s amount=%.2f", req.Month, req.Amount))
	s.logger.Info("payment recorded",
		slog.String("payment_id", payment.ID),
		slog.String("user_email", req.UserEmail),
		slog.Float64("amount", req.Amount),
	)
	return payment, nil
}

// History returns payments for the requested email, newest first. Members
// may only read their own history; admins may read anyone's.
func (s *PaymentService) History(ctx context.Context, callerEmail string, callerRole domain.Role, email string) ([]*domain.Payment, error) {
	if email == "" {
		email = callerEmail
	}
	if callerRole != domain.RoleAdmin && email != callerEmail {
		return nil, fmt.Errorf("%w: cannot read another resident's payments", domain.ErrForbidden)
	}
	return s.payments.ListByEmail(ctx, email)
}

// CreateIntent opens a payment intent with the gateway for the given
// amount in major currency units.
func (s *PaymentService) CreateIntent(ctx context.Context, userEmail string, amount float64) (*domain.PaymentIntent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	minor := int64(math.Round(amount * 100))
	intent, err := s.gateway.CreateIntent(ctx, minor, s.currency, userEmail)
	if err != nil {
		metrics.ObservePaymentIntent("error")
		return nil, err
	}

	metrics.ObservePaymentIntent("created")
	s.logger.Info("payment intent created",
		slog.String("intent_id", intent.ID),
		slog.String("user_email", userEmail),
	)
	return intent, nil
}
