package domain

import (
	"context"
	"time"
)

// Announcement is a building-wide notice posted by an admin. Append-only.
type Announcement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AnnouncementRepository defines data access for announcements
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *Announcement) error
	// List returns announcements newest first.
	List(ctx context.Context) ([]*Announcement, error)
}
