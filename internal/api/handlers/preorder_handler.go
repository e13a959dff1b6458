package handlers

import (
	"log/slog"
	"net/http"

	"backoffice-service/internal/catalog"
)

type PreOrderHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

func NewPreOrderHandler(catalog *catalog.Service, logger *slog.Logger) *PreOrderHandler {
	return &PreOrderHandler{catalog: catalog, logger: logger}
}

// GetAll accepts ?customer_id= and ?status= filters.
func (h *PreOrderHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	customerID, ok := intQuery(w, r, "customer_id")
	if !ok {
		return
	}

	preorders, err := h.catalog.ListPreOrders(r.Context(), customerID, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get pre-orders")
		return
	}

	writeJSON(w, http.StatusOK, preorders)
}

func (h *PreOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req catalog.PreOrderInput
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	preorder, err := h.catalog.CreatePreOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create pre-order")
		return
	}

	writeJSON(w, http.StatusCreated, preorder)
}
