package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/infrastructure/redis"
	"github.com/yourorg/unitsphere/pkg/config"
)

const listingKeyPrefix = "apartments:list:"

// ApartmentService handles the apartment catalog. Listings are cached in
// Redis per filter and invalidated on any write, including the booking
// flip that agreement acceptance performs.
type ApartmentService struct {
	apartments domain.ApartmentRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *slog.Logger
}

// NewApartmentService creates a new apartment service. cache may be nil,
// in which case every listing hits the database.
func NewApartmentService(apartments domain.ApartmentRepository, cache *redis.Client, cfg *config.Config, logger *slog.Logger) *ApartmentService {
	return &ApartmentService{
		apartments: apartments,
		cache:      cache,
		cacheTTL:   time.Duration(cfg.ListingCacheTTLSecs) * time.Second,
		logger:     logger,
	}
}

// List returns one page of apartments for the given filter.
func (s *ApartmentService) List(ctx context.Context, filter domain.ApartmentFilter) (*domain.ApartmentPage, error) {
	key := listingKey(filter)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			page := &domain.ApartmentPage{}
			if jsonErr := json.Unmarshal([]byte(cached), page); jsonErr == nil {
				return page, nil
			}
		} else if !redis.IsMiss(err) {
			s.logger.Warn("listing cache read failed", slog.String("error", err.Error()))
		}
	}

	page, err := s.apartments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(page); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				s.logger.Warn("listing cache write failed", slog.String("error", err.Error()))
			}
		}
	}

	return page, nil
}

// Get returns a single apartment by ID.
func (s *ApartmentService) Get(ctx context.Context, id string) (*domain.Apartment, error) {
	return s.apartments.GetByID(ctx, id)
}

// Create adds a new apartment to the catalog.
func (s *ApartmentService) Create(ctx context.Context, apartment *domain.Apartment) error {
	if apartment.UnitNumber == "" {
		return fmt.Errorf("%w: unit number is required", domain.ErrValidation)
	}
	if apartment.Rent <= 0 {
		return fmt.Errorf("%w: rent must be positive", domain.ErrValidation)
	}
	if apartment.Availability == "" {
		apartment.Availability = domain.AvailabilityAvailable
	}

	if err := s.apartments.Create(ctx, apartment); err != nil {
		return err
	}

	s.InvalidateListings(ctx)
	s.logger.Info("apartment created",
		slog.String("apartment_id", apartment.ID),
		slog.String("unit_number", apartment.UnitNumber),
	)
	return nil
}

// Update rewrites an apartment's details.
func (s *ApartmentService) Update(ctx context.Context, apartment *domain.Apartment) error {
	if apartment.Rent <= 0 {
		return fmt.Errorf("%w: rent must be positive", domain.ErrValidation)
	}

	if err := s.apartments.Update(ctx, apartment); err != nil {
		return err
	}

	s.InvalidateListings(ctx)
	return nil
}

// InvalidateListings drops every cached listing page. Called after any
// apartment write and after an agreement accept books a unit.
func (s *ApartmentService) InvalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, listingKeyPrefix+"*"); err != nil {
		s.logger.Warn("listing cache invalidation failed", slog.String("error", err.Error()))
	}
}

func listingKey(f domain.ApartmentFilter) string {
	if !f.HasRentRange {
		return fmt.Sprintf("%sp%d:l%d", listingKeyPrefix, f.Page, f.Limit)
	}
	return fmt.Sprintf("%sp%d:l%d:r%.2f-%.2f", listingKeyPrefix, f.Page, f.Limit, f.MinRent, f.MaxRent)
}
