package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nexusmart/storefront/internal/domain"
	"github.com/nexusmart/storefront/internal/service"
	"go.uber.org/zap"
)

type CartHandler struct {
	carts    *service.CartService
	sessions *SessionManager
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCartHandler(carts *service.CartService, sessions *SessionManager, timeout time.Duration, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		sessions: sessions,
		timeout:  timeout,
		logger:   logger,
	}
}

type QuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartResponseDTO struct {
	*domain.CartView
	Messages []Flash `json:"messages"`
}

type CartUpdateResponseDTO struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message,omitempty"`
	Subtotal  string            `json:"subtotal"`
	Shipping  string            `json:"shipping"`
	Tax       string            `json:"tax"`
	Total     string            `json:"total"`
	CartCount int               `json:"cart_count"`
	Items     []domain.LineItem `json:"cart_items"`
}

type AddItemResponseDTO struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	CartCount int    `json:"cart_count"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	view, err := h.carts.View(ctx, sessionID(r))
	if err != nil {
		h.logger.Error("failed to load cart", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{CartView: view, Messages: h.sessions.Flashes(w, r)})
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productKey := chi.URLParam(r, "id")
	detailURL := "/products/" + productKey

	quantity, err := readQuantity(r, 1)
	if err == nil {
		var upd *service.CartUpdate
		upd, err = h.carts.Add(ctx, sessionID(r), productKey, quantity)
		if err == nil {
			message := fmt.Sprintf("%s added to cart!", upd.ProductName)
			if wantsJSON(r) {
				respondJSON(w, http.StatusOK, AddItemResponseDTO{
					Success:   true,
					Message:   message,
					CartCount: upd.View.CartCount,
				})
				return
			}
			h.sessions.AddFlash(w, r, FlashSuccess, message)
			redirect(w, r, "/cart")
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		h.fail(w, r, http.StatusBadRequest, "invalid_quantity", fmt.Sprintf("Invalid quantity: %v", err), detailURL)
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrInvalidProductID):
		h.fail(w, r, http.StatusNotFound, "not_found", "Product not found!", "/products")
	default:
		h.logger.Error("failed to add product to cart", zap.String("product_id", productKey), zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, "internal_error", "Error adding product to cart. Please try again.", detailURL)
	}
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	quantity, err := readQuantity(r, 1)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "invalid_quantity", fmt.Sprintf("Invalid quantity: %v", err), "/cart")
		return
	}

	upd, err := h.carts.Update(ctx, sessionID(r), cartKey(chi.URLParam(r, "id")), quantity)
	if err != nil {
		h.logger.Error("failed to update cart", zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, "internal_error", "Error updating cart. Please try again.", "/cart")
		return
	}

	message := ""
	if upd.Changed {
		message = "Cart updated!"
		if upd.Removed {
			message = "Item removed from cart!"
		}
	}
	h.respondUpdate(w, r, upd, message)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	upd, err := h.carts.Remove(ctx, sessionID(r), cartKey(chi.URLParam(r, "id")))
	if err != nil {
		h.logger.Error("failed to remove cart item", zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, "internal_error", "Error updating cart. Please try again.", "/cart")
		return
	}

	message := ""
	if upd.Removed {
		message = fmt.Sprintf("%s removed from cart!", upd.ProductName)
	}
	h.respondUpdate(w, r, upd, message)
}

func (h *CartHandler) respondUpdate(w http.ResponseWriter, r *http.Request, upd *service.CartUpdate, message string) {
	if wantsJSON(r) {
		s := upd.View.Summary
		respondJSON(w, http.StatusOK, CartUpdateResponseDTO{
			Success:   true,
			Message:   message,
			Subtotal:  s.Subtotal.StringFixed(2),
			Shipping:  s.Shipping.StringFixed(2),
			Tax:       s.Tax.StringFixed(2),
			Total:     s.Total.StringFixed(2),
			CartCount: upd.View.CartCount,
			Items:     upd.View.Items,
		})
		return
	}
	if message != "" {
		h.sessions.AddFlash(w, r, FlashSuccess, message)
	}
	redirect(w, r, "/cart")
}

// fail answers JSON clients with an error body and everyone else with a flash and a redirect.
func (h *CartHandler) fail(w http.ResponseWriter, r *http.Request, status int, code, message, next string) {
	if wantsJSON(r) {
		respondError(w, status, code, message)
		return
	}
	h.sessions.AddFlash(w, r, FlashError, message)
	redirect(w, r, next)
}

// readQuantity takes the quantity from a JSON body or a form field.
func readQuantity(r *http.Request, def int) (int, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req QuantityRequestDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return def, nil
			}
			return 0, fmt.Errorf("%w: malformed body", service.ErrInvalidQuantity)
		}
		if req.Quantity == nil {
			return def, nil
		}
		return *req.Quantity, nil
	}
	return service.ParseQuantity(r.FormValue("quantity"), def)
}

// cartKey normalises a path id to the cart's key form. Unparsable ids pass
// through so stale entries can still be removed.
func cartKey(raw string) string {
	if id, err := service.ParseProductID(raw); err == nil {
		return domain.ProductKey(id)
	}
	return raw
}
