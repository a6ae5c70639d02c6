package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/unitsphere/internal/domain"
	"github.com/yourorg/unitsphere/internal/service"
	"github.com/yourorg/unitsphere/pkg/config"
)

// ApartmentHandler handles the apartment catalog endpoints
type ApartmentHandler struct {
	apartments *service.ApartmentService
	logger     *slog.Logger
	config     *config.Config
}

// NewApartmentHandler creates a new apartment handler
func NewApartmentHandler(apartments *service.ApartmentService, logger *slog.Logger, cfg *config.Config) *ApartmentHandler {
	return &ApartmentHandler{
		apartments: apartments,
		logger:     logger,
		config:     cfg,
	}
}

// List handles GET /api/apartments. Rent bounds apply only when both
// minRent and maxRent parse as numbers; a half-formed range is ignored.
func (h *ApartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.ApartmentFilter{
		Page:  1,
		Limit: h.config.DefaultPageSize,
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	minRent, minErr := strconv.ParseFloat(q.Get("minRent"), 64)
	maxRent, maxErr := strconv.ParseFloat(q.Get("maxRent"), 64)
	if minErr == nil && maxErr == nil {
		filter.MinRent = minRent
		filter.MaxRent = maxRent
		filter.HasRentRange = true
	}

	page, err := h.apartments.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/apartments/{id}
func (h *ApartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	apartment, err := h.apartments.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, apartment)
}

// ApartmentRequest is the admin create/update payload
type ApartmentRequest struct {
	UnitNumber   string  `json:"unitNumber"`
	Floor        int     `json:"floor"`
	Block        string  `json:"block"`
	Rent         float64 `json:"rent"`
	Availability string  `json:"availability,omitempty"`
}

// Create handles POST /api/apartments
func (h *ApartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ApartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	apartment := &domain.Apartment{
		UnitNumber:   req.UnitNumber,
		Floor:        req.Floor,
		Block:        req.Block,
		Rent:         req.Rent,
		Availability: domain.Availability(req.Availability),
	}
	if err := h.apartments.Create(r.Context(), apartment); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, apartment)
}

// Update handles PATCH /api/apartments/{id}
func (h *ApartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	apartment, err := h.apartments.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	req := ApartmentRequest{
		UnitNumber:   apartment.UnitNumber,
		Floor:        apartment.Floor,
		Block:        apartment.Block,
		Rent:         apartment.Rent,
		Availability: string(apartment.Availability),
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	apartment.UnitNumber = req.UnitNumber
	apartment.Floor = req.Floor
	apartment.Block = req.Block
	apartment.Rent = req.Rent
	apartment.Availability = domain.Availability(req.Availability)

	if err := h.apartments.Update(r.Context(), apartment); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, apartment)
}
