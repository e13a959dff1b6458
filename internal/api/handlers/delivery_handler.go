package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"backoffice-service/internal/delivery"
	"backoffice-service/internal/models"
)

type DeliveryHandler struct {
	delivery *delivery.Service
	logger   *slog.Logger
}

func NewDeliveryHandler(svc *delivery.Service, logger *slog.Logger) *DeliveryHandler {
	return &DeliveryHandler{delivery: svc, logger: logger}
}

// Board lists sales by status. ?status= takes a comma separated list and
// defaults to every open status.
func (h *DeliveryHandler) Board(w http.ResponseWriter, r *http.Request) {
	statuses := []models.SaleStatus{
		models.StatusPendingScheduling,
		models.StatusScheduled,
		models.StatusInDelivery,
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		statuses = statuses[:0]
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, models.SaleStatus(strings.TrimSpace(s)))
		}
	}

	board, err := h.delivery.Board(r.Context(), statuses...)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get deliveries")
		return
	}

	writeJSON(w, http.StatusOK, board)
}

type scheduleRequest struct {
	DeliveryDate   string `json:"delivery_date"`
	DeliveryWindow string `json:"delivery_window"`
}

func (h *DeliveryHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	tid, ok := intParam(w, r, "tid", "transaction")
	if !ok {
		return
	}

	var req scheduleRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	sale, err := h.delivery.Schedule(r.Context(), tid, req.DeliveryDate, req.DeliveryWindow)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "schedule delivery")
		return
	}

	writeJSON(w, http.StatusOK, sale)
}

type assignCourierRequest struct {
	CourierID string `json:"courier_id"`
}

func (h *DeliveryHandler) AssignCourier(w http.ResponseWriter, r *http.Request) {
	tid, ok := intParam(w, r, "tid", "transaction")
	if !ok {
		return
	}

	var req assignCourierRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	sale, err := h.delivery.AssignCourier(r.Context(), tid, req.CourierID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "assign courier")
		return
	}

	writeJSON(w, http.StatusOK, sale)
}

func (h *DeliveryHandler) MarkDelivered(w http.ResponseWriter, r *http.Request) {
	tid, ok := intParam(w, r, "tid", "transaction")
	if !ok {
		return
	}

	sale, err := h.delivery.MarkDelivered(r.Context(), tid)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "mark delivered")
		return
	}

	writeJSON(w, http.StatusOK, sale)
}
