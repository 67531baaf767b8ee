package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/config"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/handler"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/middleware"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/http/response"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Handlers groups the route handlers served by the API
type Handlers struct {
	Catalog  *handler.CatalogHandler
	Cart     *handler.CartHandler
	Wishlist *handler.WishlistHandler
	Auth     *handler.AuthHandler
	Checkout *handler.CheckoutHandler
}

// HealthCheck reports whether the service's dependencies are reachable
type HealthCheck func(ctx context.Context) error

// Server represents the HTTP server
type Server struct {
	router        *chi.Mux
	handlers      Handlers
	health        HealthCheck
	meterProvider metric.MeterProvider
	logger        *slog.Logger
	httpServer    *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.ServerConfig,
	handlers Handlers,
	health HealthCheck,
	meterProvider metric.MeterProvider,
	logger *slog.Logger,
) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		handlers:      handlers,
		health:        health,
		meterProvider: meterProvider,
		logger:        logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// setupMiddleware configures the middleware chain
func (s *Server) setupMiddleware() {
	// Structured JSON logging middleware (replaces chimiddleware.Logger)
	s.router.Use(middleware.StructuredLogger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.RequestID)

	// Add HTTP route to context so all logs include it automatically
	s.router.Use(middleware.HTTPRouteContext())

	meter := s.meterProvider.Meter("shopverse-api")
	s.router.Use(middleware.ActiveRequestsMiddleware(meter))
	s.router.Use(middleware.DurationMillisecondsMiddleware(meter))
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.Route("/categories", func(r chi.Router) {
		r.Get("/", s.handlers.Catalog.ListCategories)
		r.Get("/{slug}", s.handlers.Catalog.GetCategory)
	})

	s.router.Route("/products", func(r chi.Router) {
		r.Get("/", s.handlers.Catalog.ListProducts)
		r.Get("/featured", s.handlers.Catalog.FeaturedProducts)
		r.Get("/{id}", s.handlers.Catalog.GetProduct)
		r.Get("/{id}/related", s.handlers.Catalog.RelatedProducts)
	})

	// Shopper state is scoped to the session named by X-Session-ID
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Session())

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.handlers.Cart.GetCart)
			r.Delete("/", s.handlers.Cart.ClearCart)
			r.Post("/items", s.handlers.Cart.AddItem)
			r.Put("/items/{productID}", s.handlers.Cart.UpdateItem)
			r.Delete("/items/{productID}", s.handlers.Cart.RemoveItem)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", s.handlers.Wishlist.GetWishlist)
			r.Get("/{productID}", s.handlers.Wishlist.Status)
			r.Put("/{productID}", s.handlers.Wishlist.Add)
			r.Delete("/{productID}", s.handlers.Wishlist.Remove)
			r.Post("/{productID}/toggle", s.handlers.Wishlist.Toggle)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.handlers.Auth.Login)
			r.Post("/signup", s.handlers.Auth.Signup)
			r.Post("/logout", s.handlers.Auth.Logout)
			r.Get("/me", s.handlers.Auth.Me)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", s.handlers.Checkout.PlaceOrder)
			r.Get("/quote", s.handlers.Cart.Quote)
		})
	})

	// Health check endpoint
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.health != nil {
			if err := s.health(r.Context()); err != nil {
				s.logger.WarnContext(r.Context(), "Health check failed", slog.String("error", err.Error()))
				response.Error(w, http.StatusServiceUnavailable, err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Prometheus metrics endpoint - exposes OpenTelemetry metrics
	s.router.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// Handler returns the router wrapped with otelhttp for HTTP metrics and
// tracing (http.server.request.duration, http.server.request.body.size, ...)
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "http-server",
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
		otelhttp.WithMeterProvider(s.meterProvider),
		otelhttp.WithMetricAttributesFn(func(r *http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{
				attribute.String("http.route", middleware.RoutePattern(r)),
			}
		}),
	)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		slog.String("address", s.httpServer.Addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
