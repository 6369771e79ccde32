package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/frenow/rocketshoes-cart/internal/domain"
	"github.com/frenow/rocketshoes-cart/pkg/httputil"
	"github.com/frenow/rocketshoes-cart/pkg/validator"
)

// CartStore is the store surface the handlers need.
type CartStore interface {
	Cart() domain.Cart
	AddProduct(ctx context.Context, productID int) (domain.Cart, error)
	RemoveProduct(ctx context.Context, productID int) (domain.Cart, error)
	UpdateProductAmount(ctx context.Context, productID, amount int) (domain.Cart, error)
}

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	store  CartStore
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(store CartStore, logger *slog.Logger) *CartHandler {
	return &CartHandler{store: store, logger: logger}
}

// --- Request DTOs ---

// AddProductRequest is the body of POST /api/v1/cart/items.
type AddProductRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

// UpdateAmountRequest is the body of PUT /api/v1/cart/items/{productId}.
// Amounts below 1 are accepted and leave the cart unchanged.
type UpdateAmountRequest struct {
	Amount *int `json:"amount" validate:"required"`
}

// --- Response DTOs ---

// CartView is the cart as returned by every endpoint.
type CartView struct {
	Items     []domain.Product `json:"items"`
	ItemCount int              `json:"item_count"`
	Subtotal  float64          `json:"subtotal"`
}

func newCartView(cart domain.Cart) CartView {
	return CartView{
		Items:     cart.Clone(),
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
	}
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, newCartView(h.store.Cart()))
}

// AddProduct handles POST /api/v1/cart/items
func (h *CartHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	cart, err := h.store.AddProduct(r.Context(), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartView(cart))
}

// UpdateProductAmount handles PUT /api/v1/cart/items/{productId}
func (h *CartHandler) UpdateProductAmount(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateAmountRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	cart, err := h.store.UpdateProductAmount(r.Context(), productID, *req.Amount)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartView(cart))
}

// RemoveProduct handles DELETE /api/v1/cart/items/{productId}
func (h *CartHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	cart, err := h.store.RemoveProduct(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newCartView(cart))
}

// productIDParam parses {productId}. On failure it writes a 400 and
// returns false.
func productIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "productId")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    "INVALID_PARAMETER",
				Message: "invalid product id: " + raw,
			},
		})
		return 0, false
	}
	return id, true
}
