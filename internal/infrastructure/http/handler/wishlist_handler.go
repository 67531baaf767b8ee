package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/shopverse-api/internal/app/service"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/middleware"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/response"
)

// WishlistHandler handles HTTP requests for the shopper's wishlist
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(service *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		logger:  logger,
	}
}

// GetWishlist handles GET /wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.service.GetWishlist(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, wishlist)
}

// Status handles GET /wishlist/{productID}
func (h *WishlistHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, status)
}

// Toggle handles POST /wishlist/{productID}/toggle
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Toggle(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, status)
}

// Add handles PUT /wishlist/{productID}
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.service.Add(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, wishlist)
}

// Remove handles DELETE /wishlist/{productID}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.service.Remove(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, wishlist)
}
