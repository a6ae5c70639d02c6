package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/unitsphere/internal/security/middleware"
	"github.com/yourorg/unitsphere/internal/service"
)

// AnnouncementHandler handles building notice endpoints
type AnnouncementHandler struct {
	announcements *service.AnnouncementService
	logger        *slog.Logger
}

// NewAnnouncementHandler creates a new announcement handler
func NewAnnouncementHandler(announcements *service.AnnouncementService, logger *slog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements, logger: logger}
}

// AnnouncementRequest is the posting payload
type AnnouncementRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create handles POST /api/announcements
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req AnnouncementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	announcement, err := h.announcements.Create(r.Context(), req.Title, req.Description, claims.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, announcement)
}

// List handles GET /api/announcements
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.announcements.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, announcements)
}
