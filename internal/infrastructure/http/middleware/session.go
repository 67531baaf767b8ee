package middleware

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/response"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SessionHeader carries the shopper session id in both directions.
const SessionHeader = "X-Session-ID"

type sessionKey struct{}

var (
	errInvalidSessionID = errors.New("invalid session id")
	sessionIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
)

// Session resolves the shopper session from the X-Session-ID header. A
// request without one is assigned a new id, returned in the same header.
func Session() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				id = uuid.NewString()
			} else if !sessionIDPattern.MatchString(id) {
				response.Error(w, http.StatusBadRequest, errInvalidSessionID)
				return
			}

			w.Header().Set(SessionHeader, id)
			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("session.id", id))

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
		})
	}
}

// SessionID returns the session id resolved by Session, or "".
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
