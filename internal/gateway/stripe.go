package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/reliability/circuitbreaker"
	"github.com/yourorg/unitsphere/internal/reliability/retry"
)

// StripeGateway implements domain.PaymentGateway against Stripe payment
// intents, with retry and circuit breaker protection around the upstream.
type StripeGateway struct {
	logger         *slog.Logger
	retryConfig    *retry.Config
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewStripeGateway creates a new payment gateway client
func NewStripeGateway(secretKey string, logger *slog.Logger) *StripeGateway {
	if logger == nil {
		logger = slog.Default()
	}
	stripe.Key = secretKey

	cb := circuitbreaker.NewCircuitBreaker(5, 2, 30*time.Second)
	cb.SetStateChangeCallback(func(from, to circuitbreaker.State) {
		logger.Warn("payment gateway circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return &StripeGateway{
		logger:         logger,
		retryConfig:    retry.DefaultConfig(),
		circuitBreaker: cb,
	}
}

// CreateIntent creates a payment intent for the given amount in minor
// currency units and returns the client secret unmodified.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency, userEmail string) (*domain.PaymentIntent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	if !g.circuitBreaker.AllowRequest() {
		return nil, fmt.Errorf("%w: payment gateway temporarily unavailable (circuit breaker open)", domain.ErrUpstream)
	}

	result, err := retry.Do(ctx, g.retryConfig, g.logger, "CreatePaymentIntent", func(ctx context.Context) (*stripe.PaymentIntent, error) {
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(amount),
			Currency: stripe.String(currency),
			AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
				Enabled: stripe.Bool(true),
			},
		}
		params.Context = ctx
		if userEmail != "" {
			params.ReceiptEmail = stripe.String(userEmail)
		}
		return paymentintent.New(params)
	})

	if err != nil {
		g.circuitBreaker.RecordFailure()
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}

	g.circuitBreaker.RecordSuccess()
	g.logger.Info("payment intent created",
		slog.String("intent_id", result.ID),
		slog.Int64("amount", amount),
		slog.String("currency", currency),
	)

	return &domain.PaymentIntent{
		ID:           result.ID,
		ClientSecret: result.ClientSecret,
	}, nil
}
