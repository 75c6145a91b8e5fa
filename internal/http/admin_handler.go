package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nexusmart/storefront/internal/domain"
	"github.com/nexusmart/storefront/internal/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type AdminHandler struct {
	admin    *service.AdminService
	sessions *SessionManager
	timeout  time.Duration
	logger   *zap.Logger
}

func NewAdminHandler(admin *service.AdminService, sessions *SessionManager, timeout time.Duration, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admin:    admin,
		sessions: sessions,
		timeout:  timeout,
		logger:   logger,
	}
}

type LoginRequestDTO struct {
	Password string `json:"password"`
}

type LoginPageResponseDTO struct {
	Authenticated bool    `json:"authenticated"`
	Messages      []Flash `json:"messages"`
}

type DashboardResponseDTO struct {
	*service.Dashboard
	Messages []Flash `json:"messages"`
}

type ProductRequestDTO struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url"`
}

func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, LoginPageResponseDTO{
		Authenticated: h.sessions.IsAdmin(r),
		Messages:      h.sessions.Flashes(w, r),
	})
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	password, err := readPassword(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.admin.Authenticate(password); err != nil {
		if wantsJSON(r) {
			respondError(w, http.StatusUnauthorized, "invalid_credentials", "Incorrect password. Access denied.")
			return
		}
		h.sessions.AddFlash(w, r, FlashError, "Incorrect password. Access denied.")
		redirect(w, r, "/admin-login")
		return
	}

	h.sessions.SetAdmin(w, r, true)
	h.logger.Info("admin logged in", zap.String("session_id", sessionID(r)))
	if wantsJSON(r) {
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}
	h.sessions.AddFlash(w, r, FlashSuccess, "Admin login successful!")
	redirect(w, r, "/admin-dashboard")
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.SetAdmin(w, r, false)
	if wantsJSON(r) {
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}
	redirect(w, r, "/")
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	dashboard, err := h.admin.Dashboard(ctx)
	if err != nil {
		h.logger.Error("failed to build dashboard", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load dashboard")
		return
	}
	respondJSON(w, http.StatusOK, DashboardResponseDTO{Dashboard: dashboard, Messages: h.sessions.Flashes(w, r)})
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.admin.SearchProducts(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("failed to search products", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load products")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p := req.toProduct(0)
	if err := h.admin.CreateProduct(ctx, p); err != nil {
		h.handleProductError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := service.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	var req ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	p := req.toProduct(id)
	if err := h.admin.UpdateProduct(ctx, p); err != nil {
		h.handleProductError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := service.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return
	}

	if err := h.admin.DeleteProduct(ctx, id); err != nil {
		h.handleProductError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidProduct):
		respondError(w, http.StatusBadRequest, "invalid_product", err.Error())
	case errors.Is(err, service.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	default:
		h.logger.Error("product write failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save product")
	}
}

func (req ProductRequestDTO) toProduct(id int64) *domain.Product {
	return &domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}
}

func readPassword(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req LoginRequestDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.Password, nil
	}
	return r.FormValue("password"), nil
}
