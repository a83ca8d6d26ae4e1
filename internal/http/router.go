package httpapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Zaidmakandar1/Divine-Elegant/internal/cart"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/catalog"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/http/middleware"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/order"
	"github.com/Zaidmakandar1/Divine-Elegant/internal/user"
)

type RouterDeps struct {
	Products catalog.Repository
	Carts    cart.Store
	Orders   order.Repository
	Users    user.Repository
	Checkout CheckoutService
	Tokens   TokenIssuer
	Verifier middleware.TokenVerifier

	StatusPublisher StatusPublisher

	CORSAllowOrigins []string
	Logger           *log.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recover(deps.Logger))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS(deps.CORSAllowOrigins))

	authHandler := NewAuthHandler(deps.Users, deps.Carts, deps.Tokens)
	productHandler := NewProductHandler(deps.Products)
	cartHandler := NewCartHandler(deps.Carts, deps.Products)
	orderHandler := NewOrderHandler(deps.Checkout, deps.Orders)
	adminHandler := NewAdminHandler(deps.Products, deps.Orders, deps.StatusPublisher, deps.Logger)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Get("/products", productHandler.List)
		r.Get("/products/{productId}", productHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Verifier))

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)

			r.Get("/cart", cartHandler.Get)
			r.Post("/cart/items", cartHandler.AddItem)
			r.Put("/cart/items", cartHandler.UpdateQuantity)
			r.Delete("/cart/items/{productId}/{variantKey}", cartHandler.RemoveItem)
			r.Delete("/cart", cartHandler.Clear)

			r.Post("/orders", orderHandler.Create)
			r.Get("/orders/my-orders", orderHandler.MyOrders)
			r.Get("/orders/{orderId}", orderHandler.Get)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Verifier))
			r.Use(middleware.RequireAdmin)

			r.Get("/dashboard", adminHandler.Dashboard)
			r.Get("/products", adminHandler.ListProducts)
			r.Post("/products", adminHandler.CreateProduct)
			r.Put("/products/{productId}", adminHandler.UpdateProduct)
			r.Delete("/products/{productId}", adminHandler.DeleteProduct)
			r.Put("/products/{productId}/variants/{variantKey}/stock", adminHandler.SetStock)
			r.Get("/orders", adminHandler.ListOrders)
			r.Put("/orders/{orderId}/status", adminHandler.UpdateOrderStatus)
		})
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "storefront"})
}
