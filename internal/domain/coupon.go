package domain

import (
	"context"
	"time"
)

// Coupon is a rent discount code. Codes are stored upper-case and matched
// case-insensitively by normalizing lookups the same way.
type Coupon struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	Description     string     `json:"description"`
	DiscountPercent float64    `json:"discountPercent"`
	Available       bool       `json:"available"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Expired reports whether the coupon's expiry has passed at the given
// instant. An expiry exactly equal to now counts as expired.
func (c *Coupon) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(*c.ExpiresAt)
}

// CouponRepository defines data access for coupons
type CouponRepository interface {
	Create(ctx context.Context, coupon *Coupon) error
	GetByID(ctx context.Context, id string) (*Coupon, error)
	// GetAvailableByCode looks up an available coupon by its normalized
	// code. Unavailable or unknown codes return ErrNotFound.
	GetAvailableByCode(ctx context.Context, code string) (*Coupon, error)
	Update(ctx context.Context, coupon *Coupon) error
	ListAvailable(ctx context.Context) ([]*Coupon, error)
	// ExpireBefore marks coupons whose expiry precedes cutoff as
	// unavailable and returns how many were changed.
	ExpireBefore(ctx context.Context, cutoff time.Time) (int, error)
}
