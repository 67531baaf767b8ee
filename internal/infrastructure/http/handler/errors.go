package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mrops-br/shopverse-api/internal/app/session"
	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/response"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid request body")

// decodeJSON reads a JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}

// writeError maps application errors to HTTP responses
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationError(w, err, verr.Fields)
	case errors.Is(err, errInvalidBody),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, session.ErrMissingSessionID):
		response.Error(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCategoryNotFound):
		response.Error(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrNotAuthenticated):
		response.Error(w, http.StatusUnauthorized, err)
	case errors.Is(err, domain.ErrEmptyCart):
		response.Error(w, http.StatusConflict, err)
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		logger.WarnContext(r.Context(), "Request abandoned", slog.String("error", err.Error()))
		response.Error(w, http.StatusRequestTimeout, err)
	default:
		logger.ErrorContext(r.Context(), "Request failed", slog.String("error", err.Error()))
		response.Error(w, http.StatusInternalServerError, err)
	}
}
