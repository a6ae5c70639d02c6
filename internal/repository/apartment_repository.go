package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yourorg/unitsphere/internal/domain"
)

// PostgresApartmentRepository implements domain.ApartmentRepository using PostgreSQL
type PostgresApartmentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresApartmentRepository creates a new apartment repository
func NewPostgresApartmentRepository(db *sql.DB, logger *slog.Logger) *PostgresApartmentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresApartmentRepository{db: db, logger: logger}
}

// Create inserts a new apartment
func (r *PostgresApartmentRepository) Create(ctx context.Context, apartment *domain.Apartment) error {
	if apartment.ID == "" {
		apartment.ID = uuid.NewString()
	}
	if apartment.Availability == "" {
		apartment.Availability = domain.AvailabilityAvailable
	}

	query := `
		INSERT INTO apartments (id, unit_number, floor, block, rent, availability)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		apartment.ID,
		apartment.UnitNumber,
		apartment.Floor,
		apartment.Block,
		apartment.Rent,
		apartment.Availability,
	).Scan(&apartment.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create apartment",
			slog.String("unit", apartment.UnitNumber),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create apartment: %w", err)
	}

	return nil
}

// GetByID retrieves an apartment by ID
func (r *PostgresApartmentRepository) GetByID(ctx context.Context, id string) (*domain.Apartment, error) {
	a := &domain.Apartment{}

	query := `
		SELECT id, unit_number, floor, block, rent, availability, created_at
		FROM apartments
		WHERE id = $1
	`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID,
		&a.UnitNumber,
		&a.Floor,
		&a.Block,
		&a.Rent,
		&a.Availability,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("apartment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get apartment: %w", err)
	}

	return a, nil
}

// Update rewrites an apartment's mutable fields
func (r *PostgresApartmentRepository) Update(ctx context.Context, apartment *domain.Apartment) error {
	query := `
		UPDATE apartments
		SET unit_number = $1, floor = $2, block = $3, rent = $4, availability = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		apartment.UnitNumber,
		apartment.Floor,
		apartment.Block,
		apartment.Rent,
		apartment.Availability,
		apartment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update apartment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("apartment %s: %w", apartment.ID, domain.ErrNotFound)
	}

	return nil
}

// List returns one page of apartments plus the total count for the same
// filter. The rent range applies only when the filter carries one.
func (r *PostgresApartmentRepository) List(ctx context.Context, filter domain.ApartmentFilter) (*domain.ApartmentPage, error) {
	where := ""
	args := []interface{}{}
	if filter.HasRentRange {
		where = "WHERE rent >= $1 AND rent <= $2"
		args = append(args, filter.MinRent, filter.MaxRent)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM apartments %s`, where)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count apartments: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	listQuery := fmt.Sprintf(`
		SELECT id, unit_number, floor, block, rent, availability, created_at
		FROM apartments %s
		ORDER BY created_at DESC
		OFFSET $%d LIMIT $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, offset, filter.Limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		r.logger.Error("failed to list apartments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}
	defer rows.Close()

	apartments := []*domain.Apartment{}
	for rows.Next() {
		a := &domain.Apartment{}
		if err := rows.Scan(&a.ID, &a.UnitNumber, &a.Floor, &a.Block, &a.Rent, &a.Availability, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan apartment: %w", err)
		}
		apartments = append(apartments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.ApartmentPage{Apartments: apartments, Total: total}, nil
}
