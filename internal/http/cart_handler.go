package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Zaidmakandar1/Divine-Elegant/internal/cart"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/catalog"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/http/middleware"
)

type CartHandler struct {
	carts    cart.Store
	products catalog.Repository
}

func NewCartHandler(carts cart.Store, products catalog.Repository) *CartHandler {
	return &CartHandler{carts: carts, products: products}
}

type cartResponse struct {
	*cart.Cart
	Subtotal float64 `json:"subtotal"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.loadOrNew(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{Cart: c, Subtotal: c.Subtotal()})
}

// AddItem resolves the variant's current price for the display snapshot; a
// client-submitted price is never accepted.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID  string `json:"productId"`
		VariantKey string `json:"variantKey"`
		Quantity   int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.ProductID == "" || body.VariantKey == "" {
		writeError(w, http.StatusBadRequest, "productId and variantKey are required")
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	variant, err := h.products.GetVariant(ctx, body.ProductID, body.VariantKey)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product variant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}

	c, err := h.loadOrNew(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	if err := c.AddItem(body.ProductID, body.VariantKey, variant.Price, body.Quantity); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.carts.Save(ctx, c); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{Cart: c, Subtotal: c.Subtotal()})
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID  string `json:"productId"`
		VariantKey string `json:"variantKey"`
		Quantity   int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.loadOrNew(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	// Non-positive quantities are ignored, not treated as removal; the
	// delete endpoint is the only way to drop a line.
	c.UpdateQuantity(body.ProductID, body.VariantKey, body.Quantity)

	if err := h.carts.Save(ctx, c); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{Cart: c, Subtotal: c.Subtotal()})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	variantKey := chi.URLParam(r, "variantKey")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.loadOrNew(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	c.RemoveItem(productID, variantKey)

	if err := h.carts.Save(ctx, c); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save cart")
		return
	}

	writeJSON(w, http.StatusOK, cartResponse{Cart: c, Subtotal: c.Subtotal()})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.carts.Delete(ctx, middleware.GetUserID(ctx)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "cart cleared"})
}

func (h *CartHandler) loadOrNew(ctx context.Context) (*cart.Cart, error) {
	userID := middleware.GetUserID(ctx)
	c, err := h.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = cart.New(userID)
	}
	return c, nil
}
