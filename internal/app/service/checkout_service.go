package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mrops-br/shopverse-api/internal/app/async"
	"github.com/mrops-br/shopverse-api/internal/app/dto"
	"github.com/mrops-br/shopverse-api/internal/app/session"
	"github.com/mrops-br/shopverse-api/internal/app/store"
	"github.com/mrops-br/shopverse-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CheckoutService places demo orders. No payment is taken.
type CheckoutService struct {
	sessions   *session.Registry
	shipping   domain.ShippingPolicy
	publisher  domain.OrderPublisher
	delay      time.Duration
	now        func() time.Time
	tracer     trace.Tracer
	logger     *slog.Logger
	operations metric.Int64Counter
	orderTotal metric.Float64Histogram
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	sessions *session.Registry,
	shipping domain.ShippingPolicy,
	publisher domain.OrderPublisher,
	delay time.Duration,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CheckoutService {
	orderTotal, _ := meter.Float64Histogram(
		"shopverse.checkout.order_total",
		metric.WithDescription("Total value of placed orders"),
	)

	return &CheckoutService{
		sessions:   sessions,
		shipping:   shipping,
		publisher:  publisher,
		delay:      delay,
		now:        time.Now,
		tracer:     tracer,
		logger:     logger,
		operations: operationCounter(meter, "checkout"),
		orderTotal: orderTotal,
	}
}

// PlaceOrder validates the form, waits out the simulated processing delay,
// confirms the order, empties the cart and publishes an OrderPlaced event.
// If ctx ends during the delay nothing is confirmed and the cart is kept.
func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID string, form domain.CheckoutForm) (*dto.OrderConfirmationResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.PlaceOrder")
	defer span.End()

	span.SetAttributes(attribute.String("session.id", sessionID))

	if err := form.Validate(); err != nil {
		failSpan(span, err, "Checkout form rejected")
		countOperation(ctx, s.operations, "place_order", resultInvalid)
		return nil, err
	}

	sess, release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Session unavailable")
		countOperation(ctx, s.operations, "place_order", resultFailure)
		return nil, err
	}
	defer release()

	if sess.Cart.Len() == 0 {
		failSpan(span, domain.ErrEmptyCart, "Cart is empty")
		countOperation(ctx, s.operations, "place_order", resultInvalid)
		return nil, domain.ErrEmptyCart
	}

	var confirmation *domain.OrderConfirmation
	task := async.Run(ctx, s.delay, func(ctx context.Context, alive func() bool) error {
		if !alive() {
			return ctx.Err()
		}

		// Confirm exactly the lines that left the cart.
		items, err := sess.Cart.TakeAll(ctx)
		if len(items) == 0 {
			return domain.ErrEmptyCart
		}
		if err != nil {
			s.logger.ErrorContext(ctx, "Cart cleared but not persisted",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
		}
		confirmation = s.confirm(items, form.PaymentMethod)

		event := domain.OrderPlaced{
			SessionID:    sessionID,
			Confirmation: *confirmation,
			Items:        items,
			ShipTo:       form,
		}
		if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish order event",
				slog.String("order_number", confirmation.OrderNumber),
				slog.String("error", err.Error()),
			)
		}
		return nil
	})

	if err := task.Wait(); err != nil {
		failSpan(span, err, "Order not placed")
		if errors.Is(err, domain.ErrEmptyCart) {
			countOperation(ctx, s.operations, "place_order", resultInvalid)
		} else {
			s.logger.WarnContext(ctx, "Checkout abandoned",
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()),
			)
			countOperation(ctx, s.operations, "place_order", resultFailure)
		}
		return nil, err
	}

	total, _ := confirmation.Total.Float64()
	s.orderTotal.Record(ctx, total,
		metric.WithAttributes(attribute.String("payment_method", string(confirmation.PaymentMethod))),
	)
	s.logger.InfoContext(ctx, "Order placed",
		slog.String("session_id", sessionID),
		slog.String("order_number", confirmation.OrderNumber),
		slog.String("total", confirmation.Total.String()),
		slog.Int("items", confirmation.ItemCount),
	)
	span.SetAttributes(attribute.String("order.number", confirmation.OrderNumber))
	countOperation(ctx, s.operations, "place_order", resultSuccess)
	span.SetStatus(codes.Ok, "Order placed")
	return dto.ToOrderConfirmationResponse(confirmation), nil
}

func (s *CheckoutService) confirm(items []domain.CartLineItem, method domain.PaymentMethod) *domain.OrderConfirmation {
	placedAt := s.now()
	q := dto.QuoteFor(store.SumLines(items), s.shipping)
	return &domain.OrderConfirmation{
		OrderNumber:   domain.OrderNumber(placedAt),
		Subtotal:      q.Subtotal,
		Shipping:      q.Shipping,
		Total:         q.Total,
		PaymentMethod: method,
		ItemCount:     store.CountItems(items),
		PlacedAt:      placedAt,
	}
}
