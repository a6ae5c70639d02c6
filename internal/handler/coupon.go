package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/service"
)

// CouponHandler handles discount code endpoints
type CouponHandler struct {
	coupons *service.CouponService
	logger  *slog.Logger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(coupons *service.CouponService, logger *slog.Logger) *CouponHandler {
	return &CouponHandler{coupons: coupons, logger: logger}
}

// ValidateCouponRequest is the validation payload
type ValidateCouponRequest struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

// Validate handles POST /api/coupons/validate. Rejections are a 200 with
// valid=false and a message; only transport and storage failures error.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.coupons.Validate(r.Context(), req.Code, req.Amount)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// List handles GET /api/coupons
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.ListAvailable(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, coupons)
}

// CouponRequest is the admin create/update payload
type CouponRequest struct {
	Code            string     `json:"code"`
	Description     string     `json:"description"`
	DiscountPercent float64    `json:"discountPercent"`
	Available       *bool      `json:"available,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
}

// Create handles POST /api/coupons
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	coupon := &domain.Coupon{
		Code:            req.Code,
		Description:     req.Description,
		DiscountPercent: req.DiscountPercent,
		Available:       true,
		ExpiresAt:       req.ExpiresAt,
	}
	if req.Available != nil {
		coupon.Available = *req.Available
	}

	if err := h.coupons.Create(r.Context(), coupon); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, coupon)
}

// Update handles PATCH /api/coupons/{id}
func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.coupons.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	req := CouponRequest{
		Description:     coupon.Description,
		DiscountPercent: coupon.DiscountPercent,
		ExpiresAt:       coupon.ExpiresAt,
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	coupon.Description = req.Description
	coupon.DiscountPercent = req.DiscountPercent
	coupon.ExpiresAt = req.ExpiresAt
	if req.Available != nil {
		coupon.Available = *req.Available
	}

	if err := h.coupons.Update(r.Context(), coupon); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, coupon)
}
