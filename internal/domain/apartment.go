package domain

import (
	"context"
	"time"
)

// Availability is the booking state of an apartment.
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityBooked      Availability = "booked"
	AvailabilityMaintenance Availability = "maintenance"
)

// Apartment represents a rentable unit in the building. Availability flips
// to booked only as a side effect of agreement acceptance.
type Apartment struct {
	ID           string       `json:"id"`
	UnitNumber   string       `json:"unitNumber"`
	Floor        int          `json:"floor"`
	Block        string       `json:"block"`
	Rent         float64      `json:"rent"`
	Availability Availability `json:"availability"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// ApartmentFilter narrows a listing query. The rent range is applied only
// when HasRentRange is set; the handler sets it only when both bounds
// parsed as numbers.
type ApartmentFilter struct {
	Page         int
	Limit        int
	MinRent      float64
	MaxRent      float64
	HasRentRange bool
}

// ApartmentPage is one page of a listing plus the total count for the
// same filter.
type ApartmentPage struct {
	Apartments []*Apartment `json:"apartments"`
	Total      int          `json:"total"`
}

// ApartmentRepository defines data access for apartments
type ApartmentRepository interface {
	Create(ctx context.Context, apartment *Apartment) error
	GetByID(ctx context.Context, id string) (*Apartment, error)
	Update(ctx context.Context, apartment *Apartment) error
	List(ctx context.Context, filter ApartmentFilter) (*ApartmentPage, error)
}
