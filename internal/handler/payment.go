package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/security/middleware"
	"github.com/yourorg/unitsphere/internal/service"
)

// RoleResolver reports the stored role for a verified email.
type RoleResolver interface {
	ResolveRole(ctx context.Context, email string) (domain.Role, error)
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	payments *service.PaymentService
	roles    RoleResolver
	logger   *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments *service.PaymentService, roles RoleResolver, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, roles: roles, logger: logger}
}

// RecordPaymentRequest is a completed payment to append
type RecordPaymentRequest struct {
	ApartmentID string  `json:"apartmentId,omitempty"`
	Month       string  `json:"month"`
	Amount      float64 `json:"amount"`
	CouponCode  string  `json:"couponCode,omitempty"`
}

// Record handles POST /api/payments
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req RecordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	payment, err := h.payments.Record(r.Context(), service.RecordRequest{
		UserEmail:   claims.Email,
		ApartmentID: req.ApartmentID,
		Month:       req.Month,
		Amount:      req.Amount,
		CouponCode:  req.CouponCode,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, payment)
}

// History handles GET /api/payments. An optional email query lets admins
// read any resident's history; members get their own regardless.
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	role, err := h.roles.ResolveRole(r.Context(), claims.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	payments, err := h.payments.History(r.Context(), claims.Email, role, r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payments)
}

// PaymentIntentRequest asks the gateway for a client secret
type PaymentIntentRequest struct {
	Amount float64 `json:"amount"`
}

// CreateIntent handles POST /api/payments/intent
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req PaymentIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	intent, err := h.payments.CreateIntent(r.Context(), claims.Email, req.Amount)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, intent)
}
