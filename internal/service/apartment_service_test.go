package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/pkg/config"
)

func newApartmentFixture(t *testing.T) (*memApartmentRepo, *ApartmentService) {
	t.Helper()
	repo := newMemApartmentRepo()
	cfg := &config.Config{DefaultPageSize: 6, ListingCacheTTLSecs: 30}
	return repo, NewApartmentService(repo, nil, cfg, testLogger())
}

func TestApartmentCreateValidation(t *testing.T) {
	_, svc := newApartmentFixture(t)
	ctx := context.Background()

	if err := svc.Create(ctx, &domain.Apartment{Rent: 1000}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for missing unit number, got %v", err)
	}
	if err := svc.Create(ctx, &domain.Apartment{UnitNumber: "B-2", Rent: 0}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error for zero rent, got %v", err)
	}

	apt := &domain.Apartment{UnitNumber: "B-2", Rent: 900}
	if err := svc.Create(ctx, apt); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if apt.Availability != domain.AvailabilityAvailable {
		t.Errorf("new apartments default to available, got %s", apt.Availability)
	}
}

func TestApartmentListPagination(t *testing.T) {
	repo, svc := newApartmentFixture(t)
	ctx := context.Background()

	rents := []float64{800, 900, 1000, 1100, 1200, 1300, 1400, 1500}
	for i, rent := range rents {
		if err := repo.Create(ctx, &domain.Apartment{UnitNumber: string(rune('A' + i)), Rent: rent}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	page, err := svc.List(ctx, domain.ApartmentFilter{Page: 1, Limit: 6})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Apartments) != 6 || page.Total != 8 {
		t.Errorf("page 1: got %d of %d, want 6 of 8", len(page.Apartments), page.Total)
	}

	page2, err := svc.List(ctx, domain.ApartmentFilter{Page: 2, Limit: 6})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page2.Apartments) != 2 {
		t.Errorf("page 2: got %d, want 2", len(page2.Apartments))
	}

	ranged, err := svc.List(ctx, domain.ApartmentFilter{Page: 1, Limit: 6, MinRent: 1000, MaxRent: 1200, HasRentRange: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if ranged.Total != 3 {
		t.Errorf("rent range: got total %d, want 3", ranged.Total)
	}
}
