package domain

import (
	"context"
	"time"
)

// Payment is one recorded rent payment. Records are append-only; nothing
// mutates or deletes them.
type Payment struct {
	ID          string    `json:"id"`
	UserEmail   string    `json:"userEmail"`
	ApartmentID string    `json:"apartmentId,omitempty"`
	Month       string    `json:"month"`
	Amount      float64   `json:"amount"`
	CouponCode  string    `json:"couponCode,omitempty"`
	PaymentDate time.Time `json:"paymentDate"`
}

// PaymentRepository defines data access for payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	// ListByEmail returns payments for email ordered by paymentDate
	// descending.
	ListByEmail(ctx context.Context, email string) ([]*Payment, error)
}

// PaymentIntent is the gateway's handle for a pending charge. The client
// secret is returned to the caller unmodified.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
}

// PaymentGateway creates payment intents with the external processor.
// Amount is in the minor currency unit.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, userEmail string) (*PaymentIntent, error)
}
