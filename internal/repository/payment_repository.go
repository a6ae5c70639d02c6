package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/unitsphere/internal/domain"
)

// PostgresPaymentRepository implements domain.PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresPaymentRepository creates a new payment repository
func NewPostgresPaymentRepository(db *sql.DB, logger *slog.Logger) *PostgresPaymentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPaymentRepository{db: db, logger: logger}
}

// Create appends a payment record. Records are never updated or deleted.
func (r *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now().UTC()
	}

	query := `
		INSERT INTO payments (id, user_email, apartment_id, month, amount, coupon_code, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.UserEmail,
		nullString(payment.ApartmentID),
		payment.Month,
		payment.Amount,
		nullString(payment.CouponCode),
		payment.PaymentDate,
	)
	if err != nil {
		r.logger.Error("failed to record payment",
			slog.String("user_email", payment.UserEmail),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to record payment: %w", err)
	}

	return nil
}

// ListByEmail returns a user's payments, most recent first
func (r *PostgresPaymentRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Payment, error) {
	query := `
		SELECT id, user_email, apartment_id, month, amount, coupon_code, payment_date
		FROM payments
		WHERE user_email = $1
		ORDER BY payment_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		p := &domain.Payment{}
		var apartmentID, couponCode sql.NullString
		err := rows.Scan(
			&p.ID,
			&p.UserEmail,
			&apartmentID,
			&p.Month,
			&p.Amount,
			&couponCode,
			&p.PaymentDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.ApartmentID = apartmentID.String
		p.CouponCode = couponCode.String
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
