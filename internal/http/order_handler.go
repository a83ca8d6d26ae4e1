package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Zaidmakandar1/Divine-Elegant/internal/checkout"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/http/middleware"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/order"
)

// CheckoutService is satisfied by *checkout.Service.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID string, addr order.ShippingAddress, paymentMethod string) (*order.Order, error)
}

type OrderHandler struct {
	checkout CheckoutService
	orders   order.Repository
}

func NewOrderHandler(checkoutSvc CheckoutService, orders order.Repository) *OrderHandler {
	return &OrderHandler{checkout: checkoutSvc, orders: orders}
}

// Create is the checkout endpoint: it converts the caller's cart into an
// order. Line items are not taken from the body; the server-held cart is
// the only input, and prices are re-resolved from the catalog.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ShippingAddress order.ShippingAddress `json:"shippingAddress"`
		PaymentMethod   string                `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.checkout.PlaceOrder(ctx, middleware.GetUserID(ctx), body.ShippingAddress, body.PaymentMethod)
	if err != nil {
		var cerr *checkout.Error
		switch {
		case errors.As(err, &cerr):
			// item-level failure detail so the UI can point at the line
			writeJSON(w, http.StatusConflict, cerr)
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, checkout.ErrInvalidPaymentMethod):
			writeError(w, http.StatusBadRequest, "unknown payment method")
		default:
			writeError(w, http.StatusInternalServerError, "failed to place order")
		}
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.orders.ListByUser(ctx, middleware.GetUserID(ctx))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	// owners see their own orders, admins see all
	if o.UserID != middleware.GetUserID(ctx) && !middleware.IsAdmin(ctx) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	writeJSON(w, http.StatusOK, o)
}
