package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yourorg/unitsphere/internal/domain"
)

// Broadcaster pushes a new announcement to connected feed subscribers.
type Broadcaster interface {
	Broadcast(announcement *domain.Announcement)
}

// AnnouncementService handles building-wide notices.
type AnnouncementService struct {
	announcements domain.AnnouncementRepository
	feed          Broadcaster
	logger        *slog.Logger
}

// NewAnnouncementService creates a new announcement service. feed may be
// nil when no live feed is wired.
func NewAnnouncementService(announcements domain.AnnouncementRepository, feed Broadcaster, logger *slog.Logger) *AnnouncementService {
	return &AnnouncementService{
		announcements: announcements,
		feed:          feed,
		logger:        logger,
	}
}

// Create posts a new announcement. Author comes from the verified token.
func (s *AnnouncementService) Create(ctx context.Context, title, description, author string) (*domain.Announcement, error) {
	if title == "" || description == "" {
		return nil, fmt.Errorf("%w: title and description are required", domain.ErrValidation)
	}

	announcement := &domain.Announcement{
		Title:       title,
		Description: description,
		Author:      author,
	}
	if err := s.announcements.Create(ctx, announcement); err != nil {
		return nil, err
	}

	if s.feed != nil {
		s.feed.Broadcast(announcement)
	}

	s.logger.Info("announcement posted",
		slog.String("announcement_id", announcement.ID),
		slog.String("author", author),
	)
	return announcement, nil
}

// List returns all announcements, newest first.
func (s *AnnouncementService) List(ctx context.Context) ([]*domain.Announcement, error) {
	return s.announcements.List(ctx)
}
