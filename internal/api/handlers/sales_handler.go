package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"backoffice-service/internal/sales"
)

type SalesHandler struct {
	sales  *sales.Service
	carts  *sales.CartStore
	logger *slog.Logger
}

func NewSalesHandler(svc *sales.Service, carts *sales.CartStore, logger *slog.Logger) *SalesHandler {
	return &SalesHandler{sales: svc, carts: carts, logger: logger}
}

func (h *SalesHandler) cart(r *http.Request) *sales.Cart {
	return h.carts.Get(currentUser(r).UID)
}

func (h *SalesHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cart(r).View())
}

type cartLineRequest struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

func (h *SalesHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	cart := h.cart(r)
	if err := h.sales.AddToCart(r.Context(), cart, req.ProductID, req.Quantity); err != nil {
		writeServiceError(w, r, h.logger, err, "add to cart")
		return
	}

	writeJSON(w, http.StatusOK, cart.View())
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartUpdateResponse struct {
	sales.CartView
	Quantity int  `json:"quantity"`
	Adjusted bool `json:"adjusted"`
}

// UpdateCartLine clamps the requested quantity to stock and reports
// whether it had to.
func (h *SalesHandler) UpdateCartLine(w http.ResponseWriter, r *http.Request) {
	productID, ok := intParam(w, r, "productID", "product")
	if !ok {
		return
	}

	var req quantityRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	cart := h.cart(r)
	quantity, adjusted, err := h.sales.UpdateCartLine(r.Context(), cart, productID, req.Quantity)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "update cart")
		return
	}

	writeJSON(w, http.StatusOK, cartUpdateResponse{
		CartView: cart.View(),
		Quantity: quantity,
		Adjusted: adjusted,
	})
}

func (h *SalesHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := intParam(w, r, "productID", "product")
	if !ok {
		return
	}

	cart := h.cart(r)
	cart.Remove(productID)
	writeJSON(w, http.StatusOK, cart.View())
}

func (h *SalesHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart(r).Clear()
	writeJSON(w, http.StatusNoContent, nil)
}

type cartCheckoutRequest struct {
	CustomerID int    `json:"customer_id"`
	SellerID   string `json:"seller_id"`
	PreOrderID int    `json:"preorder_id,omitempty"`
}

// CheckoutCart sells the caller's cart; the cart is emptied on success.
func (h *SalesHandler) CheckoutCart(w http.ResponseWriter, r *http.Request) {
	var req cartCheckoutRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	sale, err := h.sales.CheckoutCart(r.Context(), h.cart(r), req.CustomerID, req.SellerID, req.PreOrderID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "checkout")
		return
	}

	w.Header().Set("Location", "/api/sales/"+strconv.Itoa(sale.TransactionID))
	writeJSON(w, http.StatusCreated, sale)
}

// Create sells explicit lines without touching the caller's cart.
func (h *SalesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sales.CheckoutRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	sale, err := h.sales.Checkout(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "checkout")
		return
	}

	w.Header().Set("Location", "/api/sales/"+strconv.Itoa(sale.TransactionID))
	writeJSON(w, http.StatusCreated, sale)
}

func (h *SalesHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	history, err := h.sales.History(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get sales")
		return
	}

	writeJSON(w, http.StatusOK, history)
}

func (h *SalesHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tid, ok := intParam(w, r, "tid", "transaction")
	if !ok {
		return
	}

	sale, err := h.sales.Get(r.Context(), tid)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "get sale")
		return
	}

	writeJSON(w, http.StatusOK, sale)
}
