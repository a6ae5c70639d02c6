package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/security/audit"
	"github.com/yourorg/unitsphere/pkg/config"
)

func newPaymentFixture(t *testing.T, gw *fakeGateway) (*memPaymentRepo, *PaymentService) {
	t.Helper()
	log := testLogger()
	repo := newMemPaymentRepo()
	cfg := &config.Config{PaymentCurrency: "usd"}
	return repo, NewPaymentService(repo, gw, cfg, audit.NewLogger(log), log)
}

func TestRecordAndHistoryOrder(t *testing.T) {
	_, svc := newPaymentFixture(t, &fakeGateway{})
	ctx := context.Background()

	for _, month := range []string{"2026-01", "2026-02", "2026-03"} {
		if _, err := svc.Record(ctx, RecordRequest{UserEmail: "alice@example.com", Month: month, Amount: 1200}); err != nil {
			t.Fatalf("record %s failed: %v", month, err)
		}
	}

	history, err := svc.History(ctx, "alice@example.com", domain.RoleMember, "")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 payments, got %d", len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i].PaymentDate.After(history[i-1].PaymentDate) {
			t.Errorf("history not in descending date order at %d", i)
		}
	}
}

func TestRecordValidation(t *testing.T) {
	_, svc := newPaymentFixture(t, &fakeGateway{})
	ctx := context.Background()

	if _, err := svc.Record(ctx, RecordRequest{UserEmail: "a@b.c", Month: "2026-01", Amount: 0}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for zero amount, got %v", err)
	}
	if _, err := svc.Record(ctx, RecordRequest{UserEmail: "a@b.c", Amount: 100}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for missing month, got %v", err)
	}
}

func TestHistoryAccessControl(t *testing.T) {
	_, svc := newPaymentFixture(t, &fakeGateway{})
	ctx := context.Background()

	if _, err := svc.Record(ctx, RecordRequest{UserEmail: "bob@example.com", Month: "2026-01", Amount: 900}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	// A member asking for another resident's ledger is refused.
	_, err := svc.History(ctx, "alice@example.com", domain.RoleMember, "bob@example.com")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// An admin may read anyone's.
	payments, err := svc.History(ctx, "admin@example.com", domain.RoleAdmin, "bob@example.com")
	if err != nil {
		t.Fatalf("admin history failed: %v", err)
	}
	if len(payments) != 1 {
		t.Errorf("expected 1 payment, got %d", len(payments))
	}
}

func TestCreateIntentConvertsToMinorUnits(t *testing.T) {
	gw := &fakeGateway{}
	_, svc := newPaymentFixture(t, gw)

	intent, err := svc.CreateIntent(context.Background(), "alice@example.com", 1250.50)
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}
	if intent.ClientSecret == "" {
		t.Errorf("expected a client secret")
	}
	if gw.calls != 1 {
		t.Errorf("expected one gateway call, got %d", gw.calls)
	}
	if gw.lastAmount != 125050 {
		t.Errorf("expected 125050 minor units, got %d", gw.lastAmount)
	}
}

func TestCreateIntentGatewayFailure(t *testing.T) {
	gw := &fakeGateway{fail: domain.ErrUpstream}
	_, svc := newPaymentFixture(t, gw)

	if _, err := svc.CreateIntent(context.Background(), "alice@example.com", 100); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	if _, err := svc.CreateIntent(context.Background(), "alice@example.com", -1); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.calls != 1 {
		t.Errorf("invalid amount must not reach the gateway")
	}
}
