package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/unitsphere/internal/security/middleware"
	"github.com/yourorg/unitsphere/internal/service"
)

// UserHandler handles account endpoints
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Register handles POST /api/users. The account is created from the
// verified token identity; a request body is accepted but ignored.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	user, err := h.users.Register(r.Context(), claims.Email, claims.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Role handles GET /api/users/me/role
func (h *UserHandler) Role(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	role, err := h.users.Role(r.Context(), claims.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"role": string(role)})
}

// List handles GET /api/users. The caller's own account is excluded.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	users, err := h.users.List(r.Context(), claims.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// Demote handles PATCH /api/users/{id}/demote
func (h *UserHandler) Demote(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	user, err := h.users.Demote(r.Context(), claims.Email, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
