package handler

import (
	"log/slog"
	"net/http"

	"github.com/mrops-br/shopverse-api/internal/app/service"
	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/middleware"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/response"
)

// CheckoutHandler handles order placement
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger,
	}
}

// PlaceOrder handles POST /checkout. The request stays open for the
// simulated processing delay.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var form domain.CheckoutForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	confirmation, err := h.service.PlaceOrder(r.Context(), middleware.SessionID(r.Context()), form)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, confirmation)
}
