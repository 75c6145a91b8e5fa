package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nexusmart/storefront/internal/domain"
	"github.com/nexusmart/storefront/internal/service"
	"go.uber.org/zap"
)

type ProductHandler struct {
	products *service.ProductService
	carts    *service.CartService
	sessions *SessionManager
	timeout  time.Duration
	logger   *zap.Logger
}

func NewProductHandler(products *service.ProductService, carts *service.CartService, sessions *SessionManager, timeout time.Duration, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		carts:    carts,
		sessions: sessions,
		timeout:  timeout,
		logger:   logger,
	}
}

type ProductListResponseDTO struct {
	Products  []*domain.Product `json:"products"`
	CartCount int               `json:"cart_count"`
	Messages  []Flash           `json:"messages"`
}

type ProductResponseDTO struct {
	Product   *domain.Product `json:"product"`
	CartCount int             `json:"cart_count"`
	Messages  []Flash         `json:"messages"`
}

func (h *ProductHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.Featured(ctx)
	if err != nil {
		h.logger.Error("failed to load featured products", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load products")
		return
	}

	respondJSON(w, http.StatusOK, ProductListResponseDTO{
		Products:  products,
		CartCount: h.cartCount(ctx, r),
		Messages:  h.sessions.Flashes(w, r),
	})
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.List(ctx)
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load products")
		return
	}

	respondJSON(w, http.StatusOK, ProductListResponseDTO{
		Products:  products,
		CartCount: h.cartCount(ctx, r),
		Messages:  h.sessions.Flashes(w, r),
	})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.products.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, service.ErrProductNotFound) || errors.Is(err, service.ErrInvalidProductID) {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get product", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load product")
		return
	}

	respondJSON(w, http.StatusOK, ProductResponseDTO{
		Product:   p,
		CartCount: h.cartCount(ctx, r),
		Messages:  h.sessions.Flashes(w, r),
	})
}

// cartCount feeds the header badge. A cart store failure shows an empty badge rather than failing the page.
func (h *ProductHandler) cartCount(ctx context.Context, r *http.Request) int {
	n, err := h.carts.Count(ctx, sessionID(r))
	if err != nil {
		h.logger.Warn("failed to count cart", zap.Error(err))
		return 0
	}
	return n
}
