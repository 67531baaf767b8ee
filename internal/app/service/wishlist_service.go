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

// WishlistService handles wishlist use cases for a shopper session
type WishlistService struct {
	sessions   *session.Registry
	catalog    domain.CatalogRepository
	tracer     trace.Tracer
	logger     *slog.Logger
	operations metric.Int64Counter
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(
	sessions *session.Registry,
	catalog domain.CatalogRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *WishlistService {
	return &WishlistService{
		sessions:   sessions,
		catalog:    catalog,
		tracer:     tracer,
		logger:     logger,
		operations: operationCounter(meter, "wishlist"),
	}
}

// GetWishlist returns the saved products in the order they were saved
func (s *WishlistService) GetWishlist(ctx context.Context, sessionID string) (*dto.WishlistResponse, error) {
	ctx, span := s.tracer.Start(ctx, "WishlistService.GetWishlist")
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
	span.SetStatus(codes.Ok, "Wishlist retrieved successfully")
	return dto.ToWishlistResponse(sess.Wishlist.Items()), nil
}

// Status reports whether a product is saved
func (s *WishlistService) Status(ctx context.Context, sessionID, productID string) (*dto.WishlistStatusResponse, error) {
	ctx, span := s.tracer.Start(ctx, "WishlistService.Status")
	defer span.End()

	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("product.id", productID),
	)

	sess, release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Session unavailable")
		countOperation(ctx, s.operations, "status", resultFailure)
		return nil, err
	}
	defer release()

	countOperation(ctx, s.operations, "status", resultSuccess)
	span.SetStatus(codes.Ok, "Wishlist status retrieved")
	return &dto.WishlistStatusResponse{
		ProductID:  productID,
		InWishlist: sess.Wishlist.IsInWishlist(productID),
	}, nil
}

// Toggle saves an unsaved catalog product or removes a saved one
func (s *WishlistService) Toggle(ctx context.Context, sessionID, productID string) (*dto.WishlistStatusResponse, error) {
	ctx, span := s.tracer.Start(ctx, "WishlistService.Toggle")
	defer span.End()

	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("product.id", productID),
	)

	sess, release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Session unavailable")
		countOperation(ctx, s.operations, "toggle", resultFailure)
		return nil, err
	}
	defer release()

	// A saved product is removed by id, even once it has left the catalog.
	added := false
	if sess.Wishlist.IsInWishlist(productID) {
		err = sess.Wishlist.RemoveFromWishlist(ctx, productID)
	} else {
		product, lookupErr := s.lookup(ctx, span, productID, "toggle")
		if lookupErr != nil {
			return nil, lookupErr
		}
		added, err = sess.Wishlist.ToggleWishlist(ctx, *product)
	}
	if err != nil {
		s.persistFailed(ctx, span, sessionID, "toggle", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Wishlist toggled",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
		slog.Bool("added", added),
	)
	countOperation(ctx, s.operations, "toggle", resultSuccess)
	span.SetStatus(codes.Ok, "Wishlist toggled")
	return &dto.WishlistStatusResponse{ProductID: productID, InWishlist: added}, nil
}

// Add saves a catalog product; saving it twice is a no-op
func (s *WishlistService) Add(ctx context.Context, sessionID, productID string) (*dto.WishlistResponse, error) {
	ctx, span := s.tracer.Start(ctx, "WishlistService.Add")
	defer span.End()

	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("product.id", productID),
	)

	product, err := s.lookup(ctx, span, productID, "add")
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, span, sessionID, "add", func(w *store.WishlistStore) error {
		return w.AddToWishlist(ctx, *product)
	})
}

// Remove drops a saved product; unknown ids are ignored
func (s *WishlistService) Remove(ctx context.Context, sessionID, productID string) (*dto.WishlistResponse, error) {
	ctx, span := s.tracer.Start(ctx, "WishlistService.Remove")
	defer span.End()

	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("product.id", productID),
	)

	return s.mutate(ctx, span, sessionID, "remove", func(w *store.WishlistStore) error {
		return w.RemoveFromWishlist(ctx, productID)
	})
}

func (s *WishlistService) lookup(ctx context.Context, span trace.Span, productID, operation string) (*domain.Product, error) {
	product, err := s.catalog.FindProductByID(ctx, productID)
	if err != nil {
		failSpan(span, err, "Product lookup failed")
		if errors.Is(err, domain.ErrProductNotFound) {
			countOperation(ctx, s.operations, operation, resultNotFound)
		} else {
			countOperation(ctx, s.operations, operation, resultFailure)
		}
		return nil, err
	}
	return product, nil
}

func (s *WishlistService) mutate(
	ctx context.Context,
	span trace.Span,
	sessionID, operation string,
	fn func(w *store.WishlistStore) error,
) (*dto.WishlistResponse, error) {
	sess, release, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		failSpan(span, err, "Session unavailable")
		countOperation(ctx, s.operations, operation, resultFailure)
		return nil, err
	}
	defer release()

	if err := fn(sess.Wishlist); err != nil {
		s.persistFailed(ctx, span, sessionID, operation, err)
		return nil, err
	}

	countOperation(ctx, s.operations, operation, resultSuccess)
	span.SetStatus(codes.Ok, "Wishlist updated successfully")
	return dto.ToWishlistResponse(sess.Wishlist.Items()), nil
}

func (s *WishlistService) persistFailed(ctx context.Context, span trace.Span, sessionID, operation string, err error) {
	failSpan(span, err, "Wishlist update failed")
	s.logger.ErrorContext(ctx, "Wishlist changed but was not persisted",
		slog.String("session_id", sessionID),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	countOperation(ctx, s.operations, operation, resultFailure)
}
