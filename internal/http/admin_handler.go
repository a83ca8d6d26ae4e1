package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Zaidmakandar1/Divine-Elegant/internal/catalog"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/order"
)

// StatusPublisher is satisfied by *events.Publisher.
type StatusPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, o *order.Order) error
}

type AdminHandler struct {
	products  catalog.Repository
	orders    order.Repository
	publisher StatusPublisher
	logger    *log.Logger
}

func NewAdminHandler(products catalog.Repository, orders order.Repository, publisher StatusPublisher, logger *log.Logger) *AdminHandler {
	return &AdminHandler{products: products, orders: orders, publisher: publisher, logger: logger}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.orders.Stats(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	recent, err := h.orders.ListAll(ctx, 5)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load recent orders")
		return
	}
	if recent == nil {
		recent = []order.Order{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totalOrders":  stats.TotalOrders,
		"totalRevenue": stats.TotalRevenue,
		"recentOrders": recent,
	})
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	products, err := h.products.List(ctx, catalog.Filter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	if products == nil {
		products = []catalog.Product{}
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if msg, ok := validateProduct(&p); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.products.Create(ctx, &p); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p.ID = chi.URLParam(r, "productId")
	if msg, ok := validateProduct(&p); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.products.Update(ctx, &p); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update product")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.products.Delete(ctx, chi.URLParam(r, "productId")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "product deleted"})
}

// SetStock is the only stock-edit path; product updates never touch
// stock_count on existing variants.
func (h *AdminHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	variantKey := chi.URLParam(r, "variantKey")

	var body struct {
		StockCount int `json:"stockCount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.StockCount < 0 {
		writeError(w, http.StatusBadRequest, "stockCount must not be negative")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.products.SetStock(ctx, productID, variantKey, body.StockCount); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product variant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update stock")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"productId":  productID,
		"variantKey": variantKey,
		"stockCount": body.StockCount,
	})
}

func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orders, err := h.orders.ListAll(ctx, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var body struct {
		Status order.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !order.ValidStatus(body.Status) {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.orders.UpdateStatus(ctx, orderID, body.Status)
	if err != nil {
		var invalid order.ErrInvalidTransition
		switch {
		case errors.Is(err, order.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.As(err, &invalid):
			writeError(w, http.StatusConflict, invalid.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update status")
		}
		return
	}

	if h.publisher != nil {
		if err := h.publisher.PublishOrderStatusChanged(ctx, o); err != nil {
			h.logger.Printf("publish OrderStatusChanged for %s: %v", o.ID, err)
		}
	}

	writeJSON(w, http.StatusOK, o)
}

func validateProduct(p *catalog.Product) (string, bool) {
	if p.Name == "" || p.Description == "" || p.Material == "" {
		return "name, description and material are required", false
	}
	if !catalog.ValidCategory(p.Category) {
		return "unknown category", false
	}
	if len(p.Variants) == 0 {
		return "at least one variant is required", false
	}
	seen := make(map[string]bool, len(p.Variants))
	for _, v := range p.Variants {
		if v.Key == "" || v.Price < 0 || v.StockCount < 0 {
			return "variants need a key, and non-negative price and stock", false
		}
		if seen[v.Key] {
			return "duplicate variant key: " + v.Key, false
		}
		seen[v.Key] = true
	}
	if p.Certification == "" {
		p.Certification = "Lab Certified"
	}
	return "", true
}
