package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/unitsphere/internal/security/auth"
)

// TokenRequest represents sign-in credentials
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse contains the JWT token
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Email     string    `json:"email"`
}

// TokenHandler issues development tokens from local credentials. It is
// mounted only when the identity mode is local; production deployments
// verify provider-issued tokens instead.
type TokenHandler struct {
	tokenManager *auth.TokenManager
	credentials  *auth.CredentialStore
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tm *auth.TokenManager, cs *auth.CredentialStore, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenManager: tm,
		credentials:  cs,
		logger:       logger,
	}
}

// ServeHTTP handles POST /api/auth/token requests
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password required"})
		return
	}

	cred, err := h.credentials.Authenticate(req.Email, req.Password)
	if err != nil {
		h.logger.Warn("authentication failed", slog.String("email", req.Email))
		// Generic error to prevent user enumeration
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	expiresIn := 24 * time.Hour
	token, err := h.tokenManager.GenerateToken(cred.Email, cred.Name, expiresIn)
	if err != nil {
		h.logger.Error("failed to generate token",
			slog.String("email", cred.Email),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(expiresIn),
		Email:     cred.Email,
	})
}
