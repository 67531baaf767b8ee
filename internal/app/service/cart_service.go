package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mrops-br/shopverse-api/internal/app/dto"
	"github.com/mrops-br/shopverse-api/internal/app/session"
	"github.com/mrops-br/shopverse-api/internal/app/store"
	"github.com/mrops-br/shopverse-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CartService handles cart use cases for a shopper session
type CartService struct {
	sessions   *session.Registry
	catalog    domain.CatalogRepository
	shipping   domain.ShippingPolicy
	tracer     trace.Tracer
	logger     *slog.Logger
	operations metric.Int64Counter
	cartSize   metric.Int64Histogram
}

// NewCartService creates a new cart service and registers its cart size
// observer on the session registry.
func NewCartService(
	sessions *session.Registry,
	catalog domain.CatalogRepository,
	shipping domain.ShippingPolicy,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CartService {
	cartSize, _ := meter.Int64Histogram(
		"shopverse.cart.items",
		metric.WithDescription("Units in a cart after each change"),
		metric.WithUnit("{item}"),
	)

	s := &CartService{
		sessions:   sessions,
		catalog:    catalog,
		shipping:   shipping,
		tracer:     tracer,
		logger:     logger,
		operations: operationCounter(meter, "cart"),
		cartSize:   cartSize,
	}
	sessions.OnCartChange(s.recordCartSize)
	return s
}

// GetCart returns the session's cart with its totals
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*dto.CartResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.GetCart")
	defer span.End()

	span.SetAttributes(attribute.String("session.id", sessionID))

	sess, release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Session unavailable")
		countOperation(ctx, s.operations, "get", resultFailure)
		return nil, err
	}
	defer release()

	countOperation(ctx, s.operations, "get", resultSuccess)
	span.SetStatus(codes.Ok, "Cart retrieved successfully")
	return s.toResponse(sess.Cart.Items()), nil
}

// AddItem adds quantity units of a catalog product to the cart
func (s *CartService) AddItem(ctx context.Context, sessionID, productID string, quantity int) (*dto.CartResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.AddItem")
	defer span.End()

	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("product.id", productID),
		attribute.Int("cart.quantity", quantity),
	)

	if quantity < 1 {
		failSpan(span, domain.ErrInvalidQuantity, "Invalid quantity")
		countOperation(ctx, s.operations, "add", resultInvalid)
		return nil, domain.ErrInvalidQuantity
	}

	product, err := s.catalog.FindProductByID(ctx, productID)
	if err != nil {
		failSpan(span, err, "Product lookup failed")
		s.logger.WarnContext(ctx, "Cannot add unknown product to cart",
			slog.String("session_id", sessionID),
			slog.String("product_id", productID),
		)
		countOperation(ctx, s.operations, "add", resultNotFound)
		return nil, err
	}

	return s.mutate(ctx, span, sessionID, "add", func(cart *store.CartStore) error {
		return cart.AddToCart(ctx, *product, quantity)
	})
}

// UpdateQuantity sets the quantity of a cart line; zero or less removes it
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (*dto.CartResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.UpdateQuantity")
	defer span.End()

	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("product.id", productID),
		attribute.Int("cart.quantity", quantity),
	)

	return s.mutate(ctx, span, sessionID, "update", func(cart *store.CartStore) error {
		return cart.UpdateQuantity(ctx, productID, quantity)
	})
}

// RemoveItem drops a product from the cart
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (*dto.CartResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.RemoveItem")
	defer span.End()

	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("product.id", productID),
	)

	return s.mutate(ctx, span, sessionID, "remove", func(cart *store.CartStore) error {
		return cart.RemoveFromCart(ctx, productID)
	})
}

// Clear empties the cart
func (s *CartService) Clear(ctx context.Context, sessionID string) (*dto.CartResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Clear")
	defer span.End()

	span.SetAttributes(attribute.String("session.id", sessionID))

	return s.mutate(ctx, span, sessionID, "clear", func(cart *store.CartStore) error {
		return cart.ClearCart(ctx)
	})
}

// Quote returns the checkout price summary for the session's cart
func (s *CartService) Quote(ctx context.Context, sessionID string) (*dto.QuoteResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.Quote")
	defer span.End()

	span.SetAttributes(attribute.String("session.id", sessionID))

	sess, release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Session unavailable")
		countOperation(ctx, s.operations, "quote", resultFailure)
		return nil, err
	}
	defer release()

	items := sess.Cart.Items()
	q := dto.QuoteFor(store.SumLines(items), s.shipping)

	countOperation(ctx, s.operations, "quote", resultSuccess)
	span.SetStatus(codes.Ok, "Quote computed")
	return dto.ToQuoteResponse(q, store.CountItems(items)), nil
}

func (s *CartService) mutate(
	ctx context.Context,
	span trace.Span,
	sessionID, operation string,
	fn func(cart *store.CartStore) error,
) (*dto.CartResponse, error) {
	sess, release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Session unavailable")
		countOperation(ctx, s.operations, operation, resultFailure)
		return nil, err
	}
	defer release()

	if err := fn(sess.Cart); err != nil {
		failSpan(span, err, "Cart update failed")
		if errors.Is(err, store.ErrPersist) {
			s.logger.ErrorContext(ctx, "Cart changed but was not persisted",
				slog.String("session_id", sessionID),
				slog.String("operation", operation),
				slog.String("error", err.Error()),
			)
			countOperation(ctx, s.operations, operation, resultFailure)
		} else {
			countOperation(ctx, s.operations, operation, resultInvalid)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "Cart updated",
		slog.String("session_id", sessionID),
		slog.String("operation", operation),
	)
	countOperation(ctx, s.operations, operation, resultSuccess)
	span.SetStatus(codes.Ok, "Cart updated successfully")
	return s.toResponse(sess.Cart.Items()), nil
}

func (s *CartService) toResponse(items []domain.CartLineItem) *dto.CartResponse {
	return dto.ToCartResponse(items, dto.QuoteFor(store.SumLines(items), s.shipping))
}

func (s *CartService) recordCartSize(sessionID string, items []domain.CartLineItem) {
	s.cartSize.Record(context.Background(), int64(store.CountItems(items)))
}
