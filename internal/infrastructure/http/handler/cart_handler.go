package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/shopverse-api/internal/app/dto"
	"github.com/mrops-br/shopverse-api/internal/app/service"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/middleware"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/response"
)

// CartHandler handles HTTP requests for the shopper's cart
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(service *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), middleware.SessionID(r.Context()))
	h.respond(w, r, cart, err)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req dto.AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := h.service.AddItem(r.Context(), middleware.SessionID(r.Context()), req.ProductID, quantity)
	h.respond(w, r, cart, err)
}

// UpdateItem handles PUT /cart/items/{productID}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Quantity == nil {
		writeError(w, r, h.logger, fmt.Errorf("%w: quantity is required", errInvalidBody))
		return
	}

	cart, err := h.service.UpdateQuantity(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "productID"), *req.Quantity)
	h.respond(w, r, cart, err)
}

// RemoveItem handles DELETE /cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.RemoveItem(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "productID"))
	h.respond(w, r, cart, err)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Clear(r.Context(), middleware.SessionID(r.Context()))
	h.respond(w, r, cart, err)
}

// Quote handles GET /checkout/quote
func (h *CartHandler) Quote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.service.Quote(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, quote)
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, cart *dto.CartResponse, err error) {
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, cart)
}
