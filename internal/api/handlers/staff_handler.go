package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"backoffice-service/internal/catalog"
)

// StaffHandler serves sellers and couriers.
type StaffHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

func NewStaffHandler(catalog *catalog.Service, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{catalog: catalog, logger: logger}
}

func (h *StaffHandler) ListSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.catalog.ListSellers(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get sellers")
		return
	}

	writeJSON(w, http.StatusOK, sellers)
}

func (h *StaffHandler) CreateSeller(w http.ResponseWriter, r *http.Request) {
	var req catalog.StaffInput
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	seller, err := h.catalog.CreateSeller(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create seller")
		return
	}

	writeJSON(w, http.StatusCreated, seller)
}

func (h *StaffHandler) UpdateSeller(w http.ResponseWriter, r *http.Request) {
	var req catalog.StaffInput
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	seller, err := h.catalog.UpdateSeller(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "update seller")
		return
	}

	writeJSON(w, http.StatusOK, seller)
}

func (h *StaffHandler) ListCouriers(w http.ResponseWriter, r *http.Request) {
	couriers, err := h.catalog.ListCouriers(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get couriers")
		return
	}

	writeJSON(w, http.StatusOK, couriers)
}

func (h *StaffHandler) CreateCourier(w http.ResponseWriter, r *http.Request) {
	var req catalog.CourierInput
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	courier, err := h.catalog.CreateCourier(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create courier")
		return
	}

	writeJSON(w, http.StatusCreated, courier)
}

func (h *StaffHandler) UpdateCourier(w http.ResponseWriter, r *http.Request) {
	var req catalog.CourierInput
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	courier, err := h.catalog.UpdateCourier(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "update courier")
		return
	}

	writeJSON(w, http.StatusOK, courier)
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

func (h *StaffHandler) SetCourierAvailability(w http.ResponseWriter, r *http.Request) {
	var req availabilityRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	courier, err := h.catalog.SetCourierAvailability(r.Context(), chi.URLParam(r, "id"), req.Available)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "update courier availability")
		return
	}

	writeJSON(w, http.StatusOK, courier)
}
