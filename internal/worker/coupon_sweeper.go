package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/observability/metrics"
)

// CouponSweeper periodically marks coupons whose expiry has passed as
// unavailable, so expired codes stop showing up in listings even though
// validation checks expiry on its own.
type CouponSweeper struct {
	coupons  domain.CouponRepository
	logger   *slog.Logger
	interval time.Duration
}

// NewCouponSweeper creates a new coupon sweeper
func NewCouponSweeper(coupons domain.CouponRepository, logger *slog.Logger, interval time.Duration) *CouponSweeper {
	return &CouponSweeper{
		coupons:  coupons,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the sweep loop. It returns when ctx is cancelled.
func (w *CouponSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("coupon sweeper started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("coupon sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CouponSweeper) sweep(ctx context.Context) {
	expired, err := w.coupons.ExpireBefore(ctx, time.Now().UTC())
	if err != nil {
		w.logger.Error("coupon sweep failed", slog.String("error", err.Error()))
		metrics.ObserveCouponSweep("error")
		return
	}

	metrics.ObserveCouponSweep("ok")
	if expired > 0 {
		w.logger.Info("expired coupons retired", slog.Int("count", expired))
	}
}
