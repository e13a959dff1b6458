package handlers

import (
	"log/slog"
	"net/http"

	"backoffice-service/internal/catalog"
	"backoffice-service/internal/models"
)

type InventoryHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

func NewInventoryHandler(catalog *catalog.Service, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{catalog: catalog, logger: logger}
}

// GetAll lists products with their stock level. ?search= spans every
// category; otherwise ?category= applies.
func (h *InventoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.catalog.Inventory(r.Context(), q.Get("category"), q.Get("search"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get inventory")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *InventoryHandler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	t, err := h.catalog.Thresholds(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get stock thresholds")
		return
	}

	writeJSON(w, http.StatusOK, t)
}

func (h *InventoryHandler) SaveThresholds(w http.ResponseWriter, r *http.Request) {
	var req models.StockThresholds
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.catalog.SaveThresholds(r.Context(), req); err != nil {
		writeServiceError(w, r, h.logger, err, "save stock thresholds")
		return
	}

	writeJSON(w, http.StatusOK, req)
}
