package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/yourorg/unitsphere/internal/domain"
)

// PostgresAgreementRepository implements domain.AgreementRepository using
// PostgreSQL. Accept and Reject run in a single transaction so the status
// write, role promotion and unit booking commit or roll back together.
type PostgresAgreementRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAgreementRepository creates a new agreement repository
func NewPostgresAgreementRepository(db *sql.DB, logger *slog.Logger) *PostgresAgreementRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAgreementRepository{db: db, logger: logger}
}

const agreementColumns = `id, user_email, user_name, apartment_id, unit_number, floor, block, rent, status, created_at, accept_date`

func scanAgreement(row interface{ Scan(...interface{}) error }) (*domain.Agreement, error) {
	a := &domain.Agreement{}
	var acceptDate sql.NullTime
	err := row.Scan(
		&a.ID,
		&a.UserEmail,
		&a.UserName,
		&a.ApartmentID,
		&a.UnitNumber,
		&a.Floor,
		&a.Block,
		&a.Rent,
		&a.Status,
		&a.CreatedAt,
		&acceptDate,
	)
	if err != nil {
		return nil, err
	}
	if acceptDate.Valid {
		t := acceptDate.Time
		a.AcceptDate = &t
	}
	return a, nil
}

// Create inserts a pending agreement. The unique index on user_email turns
// a concurrent double-submit into ErrDuplicateAgreement.
func (r *PostgresAgreementRepository) Create(ctx context.Context, agreement *domain.Agreement) error {
	if agreement.ID == "" {
		agreement.ID = uuid.NewString()
	}
	agreement.Status = domain.AgreementPending

	query := `
		INSERT INTO agreements (id, user_email, user_name, apartment_id, unit_number, floor, block, rent, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		agreement.ID,
		agreement.UserEmail,
		agreement.UserName,
		agreement.ApartmentID,
		agreement.UnitNumber,
		agreement.Floor,
		agreement.Block,
		agreement.Rent,
		agreement.Status,
	).Scan(&agreement.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("user %s: %w", agreement.UserEmail, domain.ErrDuplicateAgreement)
		}
		r.logger.Error("failed to create agreement",
			slog.String("user_email", agreement.UserEmail),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create agreement: %w", err)
	}

	return nil
}

// GetByID retrieves an agreement by ID
func (r *PostgresAgreementRepository) GetByID(ctx context.Context, id string) (*domain.Agreement, error) {
	query := fmt.Sprintf(`SELECT %s FROM agreements WHERE id = $1`, agreementColumns)

	a, err := scanAgreement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("agreement %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get agreement: %w", err)
	}
	return a, nil
}

// ExistsForUser reports whether any agreement exists for email, regardless
// of status
func (r *PostgresAgreementRepository) ExistsForUser(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agreements WHERE user_email = $1`, email).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check agreement existence: %w", err)
	}
	return count > 0, nil
}

// ListByStatus returns agreements with the given status, newest first
func (r *PostgresAgreementRepository) ListByStatus(ctx context.Context, status domain.AgreementStatus) ([]*domain.Agreement, error) {
	query := fmt.Sprintf(`SELECT %s FROM agreements WHERE status = $1 ORDER BY created_at DESC`, agreementColumns)

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		r.logger.Error("failed to list agreements", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list agreements: %w", err)
	}
	defer rows.Close()

	var agreements []*domain.Agreement
	for rows.Next() {
		a, err := scanAgreement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agreement: %w", err)
		}
		agreements = append(agreements, a)
	}

	return agreements, rows.Err()
}

// Accept applies the full acceptance in one transaction: the agreement row
// moves to accepted with acceptDate, the user becomes a member and the
// apartment is booked. A missing user or apartment aborts the transaction.
func (r *PostgresAgreementRepository) Accept(ctx context.Context, id string, now time.Time) (*domain.AcceptOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Read the agreement first: the status write does not return the
	// user/apartment linkage needed for the side effects.
	query := fmt.Sprintf(`SELECT %s FROM agreements WHERE id = $1 FOR UPDATE`, agreementColumns)
	agreement, err := scanAgreement(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("agreement %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get agreement: %w", err)
	}
	if agreement.Status != domain.AgreementPending {
		return nil, fmt.Errorf("agreement %s is %s: %w", id, agreement.Status, domain.ErrAgreementClosed)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE agreements SET status = $1, accept_date = $2 WHERE id = $3`,
		domain.AgreementAccepted, now, id,
	); err != nil {
		return nil, fmt.Errorf("failed to update agreement status: %w", err)
	}

	var userID string
	err = tx.QueryRowContext(ctx,
		`UPDATE users SET role = $1 WHERE email = $2 RETURNING id`,
		domain.RoleMember, agreement.UserEmail,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", agreement.UserEmail, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE apartments SET availability = $1 WHERE id = $2`,
		domain.AvailabilityBooked, agreement.ApartmentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to book apartment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("apartment %s: %w", agreement.ApartmentID, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit acceptance: %w", err)
	}

	agreement.Status = domain.AgreementAccepted
	agreement.AcceptDate = &now

	r.logger.Info("agreement accepted",
		slog.String("agreement_id", id),
		slog.String("user_email", agreement.UserEmail),
		slog.String("apartment_id", agreement.ApartmentID),
	)

	return &domain.AcceptOutcome{
		Agreement:   agreement,
		UserID:      userID,
		ApartmentID: agreement.ApartmentID,
	}, nil
}

// Reject moves a pending agreement to rejected. Only the status field
// changes.
func (r *PostgresAgreementRepository) Reject(ctx context.Context, id string) (*domain.Agreement, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`SELECT %s FROM agreements WHERE id = $1 FOR UPDATE`, agreementColumns)
	agreement, err := scanAgreement(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("agreement %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get agreement: %w", err)
	}
	if agreement.Status != domain.AgreementPending {
		return nil, fmt.Errorf("agreement %s is %s: %w", id, agreement.Status, domain.ErrAgreementClosed)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE agreements SET status = $1 WHERE id = $2`,
		domain.AgreementRejected, id,
	); err != nil {
		return nil, fmt.Errorf("failed to update agreement status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rejection: %w", err)
	}

	agreement.Status = domain.AgreementRejected
	return agreement, nil
}
