package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/unitsphere/internal/security/middleware"
	"github.com/yourorg/unitsphere/internal/service"
)

// AgreementHandler handles lease application endpoints
type AgreementHandler struct {
	agreements *service.AgreementService
	logger     *slog.Logger
}

// NewAgreementHandler creates a new agreement handler
func NewAgreementHandler(agreements *service.AgreementService, logger *slog.Logger) *AgreementHandler {
	return &AgreementHandler{agreements: agreements, logger: logger}
}

// SubmitAgreementRequest is the lease application payload. The applicant's
// identity comes from the token, not from the body.
type SubmitAgreementRequest struct {
	ApartmentID string `json:"apartmentId"`
}

// Submit handles POST /api/agreements
func (h *AgreementHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req SubmitAgreementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	agreement, err := h.agreements.Submit(r.Context(), service.SubmitRequest{
		UserEmail:   claims.Email,
		UserName:    claims.Name,
		ApartmentID: req.ApartmentID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, agreement)
}

// ListPending handles GET /api/agreements/pending
func (h *AgreementHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	agreements, err := h.agreements.ListPending(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, agreements)
}

// Accept handles PATCH /api/agreements/{id}/accept
func (h *AgreementHandler) Accept(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	agreement, err := h.agreements.Accept(r.Context(), claims.Email, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, agreement)
}

// Reject handles PATCH /api/agreements/{id}/reject
func (h *AgreementHandler) Reject(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	agreement, err := h.agreements.Reject(r.Context(), claims.Email, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, agreement)
}
