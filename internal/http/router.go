// Package http is the storefront's HTTP surface.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

type Handlers struct {
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Admin    *AdminHandler
}

func NewRouter(cfg RouterConfig, sessions *SessionManager, h Handlers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)

		r.Get("/", h.Products.Home)
		r.Get("/products", h.Products.ListProducts)
		r.Get("/products/{id}", h.Products.GetProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/add/{id}", h.Cart.AddItem)
			r.Post("/update/{id}", h.Cart.UpdateItem)
			r.Post("/remove/{id}", h.Cart.RemoveItem)
		})

		r.Get("/checkout", h.Checkout.Review)
		r.Post("/checkout", h.Checkout.Confirm)

		r.Get("/admin-login", h.Admin.LoginPage)
		r.Post("/admin-login", h.Admin.Login)
		r.Post("/admin-logout", h.Admin.Logout)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(sessions))

			r.Get("/admin-dashboard", h.Admin.Dashboard)
			r.Route("/admin/products", func(r chi.Router) {
				r.Get("/", h.Admin.ListProducts)
				r.Post("/", h.Admin.CreateProduct)
				r.Put("/{id}", h.Admin.UpdateProduct)
				r.Delete("/{id}", h.Admin.DeleteProduct)
			})
		})
	})

	return r
}
