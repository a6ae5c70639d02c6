package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/yourorg/unitsphere/internal/domain"
)

// PostgresAnnouncementRepository implements domain.AnnouncementRepository using PostgreSQL
type PostgresAnnouncementRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresAnnouncementRepository creates a new announcement repository
func NewPostgresAnnouncementRepository(db *sql.DB, logger *slog.Logger) *PostgresAnnouncementRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAnnouncementRepository{db: db, logger: logger}
}

// Create inserts a new announcement
func (r *PostgresAnnouncementRepository) Create(ctx context.Context, announcement *domain.Announcement) error {
	if announcement.ID == "" {
		announcement.ID = uuid.NewString()
	}

	query := `
		INSERT INTO announcements (id, title, description, author)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		announcement.ID,
		announcement.Title,
		announcement.Description,
		announcement.Author,
	).Scan(&announcement.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create announcement",
			slog.String("title", announcement.Title),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create announcement: %w", err)
	}

	return nil
}

// List returns all announcements, newest first
func (r *PostgresAnnouncementRepository) List(ctx context.Context) ([]*domain.Announcement, error) {
	query := `
		SELECT id, title, description, author, created_at
		FROM announcements
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var announcements []*domain.Announcement
	for rows.Next() {
		a := &domain.Announcement{}
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Author, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		announcements = append(announcements, a)
	}

	return announcements, rows.Err()
}
