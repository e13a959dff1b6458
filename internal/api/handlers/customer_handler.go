package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"backoffice-service/internal/catalog"
)

type CustomerHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

func NewCustomerHandler(catalog *catalog.Service, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{catalog: catalog, logger: logger}
}

func (h *CustomerHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	customers, err := h.catalog.ListCustomers(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get customers")
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.catalog.GetCustomer(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get customer")
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req catalog.CustomerInput
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	customer, err := h.catalog.CreateCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create customer")
		return
	}

	w.Header().Set("Location", "/api/customers/"+strconv.Itoa(customer.CustomerID))
	writeJSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id", "customer")
	if !ok {
		return
	}

	var req catalog.CustomerInput
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	customer, err := h.catalog.UpdateCustomer(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "update customer")
		return
	}

	writeJSON(w, http.StatusOK, customer)
}
