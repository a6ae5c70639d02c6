package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/yourorg/unitsphere/internal/domain"
)

type sweepCountingRepo struct {
	mu     sync.Mutex
	sweeps int
}

func (r *sweepCountingRepo) Create(context.Context, *domain.Coupon) error { return nil }
func (r *sweepCountingRepo) GetByID(context.Context, string) (*domain.Coupon, error) {
	return nil, domain.ErrNotFound
}
func (r *sweepCountingRepo) GetAvailableByCode(context.Context, string) (*domain.Coupon, error) {
	return nil, domain.ErrNotFound
}
func (r *sweepCountingRepo) Update(context.Context, *domain.Coupon) error { return nil }
func (r *sweepCountingRepo) ListAvailable(context.Context) ([]*domain.Coupon, error) {
	return nil, nil
}
func (r *sweepCountingRepo) ExpireBefore(_ context.Context, _ time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps++
	return 1, nil
}

func (r *sweepCountingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweeps
}

func TestSweeperRunsAndStops(t *testing.T) {
	repo := &sweepCountingRepo{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sweeper := NewCouponSweeper(repo, log, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	deadline := time.After(time.Second)
	for repo.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("sweeper did not run, %d sweeps", repo.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("sweeper did not stop on context cancellation")
	}
}
