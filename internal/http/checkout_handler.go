package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nexusmart/storefront/internal/domain"
	"github.com/nexusmart/storefront/internal/service"
	"go.uber.org/zap"
)

type CheckoutReviewResponseDTO struct {
	*domain.CheckoutReview
	Messages []Flash `json:"messages"`
}

type CheckoutHandler struct {
	checkout *service.CheckoutService
	sessions *SessionManager
	timeout  time.Duration
	logger   *zap.Logger
}

func NewCheckoutHandler(checkout *service.CheckoutService, sessions *SessionManager, timeout time.Duration, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		sessions: sessions,
		timeout:  timeout,
		logger:   logger,
	}
}

func (h *CheckoutHandler) Review(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	review, err := h.checkout.Begin(ctx, sessionID(r))
	if err != nil {
		h.handleError(w, r, err, "/cart")
		return
	}
	respondJSON(w, http.StatusOK, CheckoutReviewResponseDTO{CheckoutReview: review, Messages: h.sessions.Flashes(w, r)})
}

func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	conf, err := h.checkout.Confirm(ctx, sessionID(r))
	if err != nil {
		h.handleError(w, r, err, "/checkout")
		return
	}

	if wantsJSON(r) {
		respondJSON(w, http.StatusOK, conf)
		return
	}
	h.sessions.AddFlash(w, r, FlashSuccess, "Order placed successfully! (This is a demo)")
	redirect(w, r, "/")
}

func (h *CheckoutHandler) handleError(w http.ResponseWriter, r *http.Request, err error, next string) {
	if errors.Is(err, service.ErrEmptyCart) {
		if wantsJSON(r) {
			respondError(w, http.StatusConflict, "empty_cart", "Your cart is empty!")
			return
		}
		h.sessions.AddFlash(w, r, FlashWarning, "Your cart is empty!")
		redirect(w, r, "/cart")
		return
	}

	h.logger.Error("checkout failed", zap.String("session_id", sessionID(r)), zap.Error(err))
	if wantsJSON(r) {
		respondError(w, http.StatusServiceUnavailable, "checkout_unavailable", "We could not place your order. Please try again.")
		return
	}
	h.sessions.AddFlash(w, r, FlashError, "We could not place your order. Please try again.")
	redirect(w, r, next)
}
