package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yourorg/unitsphere/internal/domain"
)

// PostgresCouponRepository implements domain.CouponRepository using PostgreSQL
type PostgresCouponRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresCouponRepository creates a new coupon repository
func NewPostgresCouponRepository(db *sql.DB, logger *slog.Logger) *PostgresCouponRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCouponRepository{db: db, logger: logger}
}

func scanCoupon(row interface{ Scan(...interface{}) error }) (*domain.Coupon, error) {
	c := &domain.Coupon{}
	var expiresAt sql.NullTime
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Description,
		&c.DiscountPercent,
		&c.Available,
		&expiresAt,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	return c, nil
}

const couponColumns = `id, code, description, discount_percent, available, expires_at, created_at`

// Create inserts a new coupon. Codes are stored upper-case.
func (r *PostgresCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	if coupon.ID == "" {
		coupon.ID = uuid.NewString()
	}
	coupon.Code = strings.ToUpper(coupon.Code)

	query := `
		INSERT INTO coupons (id, code, description, discount_percent, available, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	var expiresAt sql.NullTime
	if coupon.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *coupon.ExpiresAt, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Description,
		coupon.DiscountPercent,
		coupon.Available,
		expiresAt,
	).Scan(&coupon.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("coupon %s already exists: %w", coupon.Code, domain.ErrValidation)
		}
		r.logger.Error("failed to create coupon",
			slog.String("code", coupon.Code),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

// GetByID retrieves a coupon by ID
func (r *PostgresCouponRepository) GetByID(ctx context.Context, id string) (*domain.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM coupons WHERE id = $1`, couponColumns)

	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("coupon %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return c, nil
}

// GetAvailableByCode looks up an available coupon by normalized code
func (r *PostgresCouponRepository) GetAvailableByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM coupons WHERE code = $1 AND available = true`, couponColumns)

	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, strings.ToUpper(code)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("coupon %s: %w", code, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get coupon by code: %w", err)
	}
	return c, nil
}

// Update rewrites a coupon's mutable fields
func (r *PostgresCouponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	var expiresAt sql.NullTime
	if coupon.ExpiresAt != nil {
		expiresAt = sql.NullTime{Time: *coupon.ExpiresAt, Valid: true}
	}

	query := `
		UPDATE coupons
		SET description = $1, discount_percent = $2, available = $3, expires_at = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		coupon.Description,
		coupon.DiscountPercent,
		coupon.Available,
		expiresAt,
		coupon.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("coupon %s: %w", coupon.ID, domain.ErrNotFound)
	}

	return nil
}

// ListAvailable returns available coupons, newest first
func (r *PostgresCouponRepository) ListAvailable(ctx context.Context) ([]*domain.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM coupons WHERE available = true ORDER BY created_at DESC`, couponColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list coupons", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}

	return coupons, rows.Err()
}

// ExpireBefore marks coupons with an expiry before cutoff as unavailable
func (r *PostgresCouponRepository) ExpireBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET available = false WHERE available = true AND expires_at IS NOT NULL AND expires_at <= $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire coupons: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return int(rows), nil
}
