package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"backoffice-service/internal/catalog"
)

type ProductHandler struct {
	catalog *catalog.Service
	logger  *slog.Logger
}

func NewProductHandler(catalog *catalog.Service, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// GetAll lists every product, or one category when ?category= is set.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get products")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req catalog.ProductInput
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "create product")
		return
	}

	w.Header().Set("Location", "/api/products/"+strconv.Itoa(p.ProductID))
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id", "product")
	if !ok {
		return
	}

	var req catalog.ProductInput
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	p, err := h.catalog.UpdateProduct(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "update product")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id", "product")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err, "delete product")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (h *ProductHandler) Operations(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id", "product")
	if !ok {
		return
	}

	ops, err := h.catalog.ProductOperations(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get product operations")
		return
	}

	writeJSON(w, http.StatusOK, ops)
}
