package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/observability/metrics"
)

// CouponService handles discount codes and their validation.
type CouponService struct {
	coupons domain.CouponRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewCouponService creates a new coupon service
func NewCouponService(coupons domain.CouponRepository, logger *slog.Logger) *CouponService {
	return &CouponService{
		coupons: coupons,
		logger:  logger,
		now:     time.Now,
	}
}

// ValidationResult is the outcome of checking a code against an amount.
// Message is set only on rejection.
type ValidationResult struct {
	Valid           bool    `json:"valid"`
	Message         string  `json:"message,omitempty"`
	CouponID        string  `json:"couponId,omitempty"`
	DiscountPercent float64 `json:"discountPercent,omitempty"`
	DiscountAmount  float64 `json:"discountAmount,omitempty"`
	FinalAmount     float64 `json:"finalAmount,omitempty"`
}

// Validate checks a coupon code against a payment amount. Checks run in a
// fixed order (presence, existence and availability, expiry) so the caller
// always sees the first applicable rejection. Validation never consumes
// the coupon; the same code validates any number of times.
func (s *CouponService) Validate(ctx context.Context, code string, amount float64) (*ValidationResult, error) {
	if code == "" || amount <= 0 {
		metrics.ObserveCouponValidation("missing_input")
		return &ValidationResult{Valid: false, Message: "Missing coupon code or amount."}, nil
	}

	coupon, err := s.coupons.GetAvailableByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveCouponValidation("invalid")
			return &ValidationResult{Valid: false, Message: "Invalid or unavailable coupon."}, nil
		}
		return nil, err
	}

	if coupon.Expired(s.now()) {
		metrics.ObserveCouponValidation("expired")
		return &ValidationResult{Valid: false, Message: "Coupon expired."}, nil
	}

	discount := amount * coupon.DiscountPercent / 100
	metrics.ObserveCouponValidation("valid")
	return &ValidationResult{
		Valid:           true,
		CouponID:        coupon.ID,
		DiscountPercent: coupon.DiscountPercent,
		DiscountAmount:  discount,
		FinalAmount:     amount - discount,
	}, nil
}

// Create adds a new coupon.
func (s *CouponService) Create(ctx context.Context, coupon *domain.Coupon) error {
	if coupon.Code == "" {
		return fmt.Errorf("%w: coupon code is required", domain.ErrValidation)
	}
	if coupon.DiscountPercent <= 0 || coupon.DiscountPercent > 100 {
		return fmt.Errorf("%w: discount percent must be in (0, 100]", domain.ErrValidation)
	}

	if err := s.coupons.Create(ctx, coupon); err != nil {
		return err
	}

	s.logger.Info("coupon created",
		slog.String("coupon_id", coupon.ID),
		slog.String("code", coupon.Code),
	)
	return nil
}

// Update rewrites a coupon's mutable fields.
func (s *CouponService) Update(ctx context.Context, coupon *domain.Coupon) error {
	if coupon.DiscountPercent <= 0 || coupon.DiscountPercent > 100 {
		return fmt.Errorf("%w: discount percent must be in (0, 100]", domain.ErrValidation)
	}
	return s.coupons.Update(ctx, coupon)
}

// Get returns a coupon by ID.
func (s *CouponService) Get(ctx context.Context, id string) (*domain.Coupon, error) {
	return s.coupons.GetByID(ctx, id)
}

// ListAvailable returns coupons currently offered.
func (s *CouponService) ListAvailable(ctx context.Context) ([]*domain.Coupon, error) {
	return s.coupons.ListAvailable(ctx)
}
