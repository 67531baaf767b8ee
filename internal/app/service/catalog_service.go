package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mrops-br/shopverse-api/internal/app/dto"
	"github.com/mrops-br/shopverse-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// RelatedLimit caps the related-products list.
const RelatedLimit = 4

// CatalogService handles catalog browsing use cases
type CatalogService struct {
	repo          domain.CatalogRepository
	tracer        trace.Tracer
	logger        *slog.Logger
	operations    metric.Int64Counter
	featuredLimit int
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	repo domain.CatalogRepository,
	featuredLimit int,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		repo:          repo,
		tracer:        tracer,
		logger:        logger,
		operations:    operationCounter(meter, "catalog"),
		featuredLimit: featuredLimit,
	}
}

// GetProduct retrieves a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		failSpan(span, err, "Product lookup failed")
		if errors.Is(err, domain.ErrProductNotFound) {
			s.logger.WarnContext(ctx, "Product not found", slog.String("product_id", id))
			countOperation(ctx, s.operations, "get_product", resultNotFound)
		} else {
			countOperation(ctx, s.operations, "get_product", resultFailure)
		}
		return nil, err
	}

	countOperation(ctx, s.operations, "get_product", resultSuccess)
	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToProductResponse(product), nil
}

// ListProducts retrieves all products
func (s *CatalogService) ListProducts(ctx context.Context) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	products, err := s.repo.FindAllProducts(ctx)
	if err != nil {
		failSpan(span, err, "Failed to retrieve products")
		countOperation(ctx, s.operations, "list_products", resultFailure)
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	countOperation(ctx, s.operations, "list_products", resultSuccess)
	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToProductResponseList(products), nil
}

// FeaturedProducts returns new and on-sale products in catalog order
func (s *CatalogService) FeaturedProducts(ctx context.Context) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.FeaturedProducts")
	defer span.End()

	products, err := s.repo.FindAllProducts(ctx)
	if err != nil {
		failSpan(span, err, "Failed to retrieve products")
		countOperation(ctx, s.operations, "featured", resultFailure)
		return nil, err
	}

	featured := make([]*domain.Product, 0, s.featuredLimit)
	for _, p := range products {
		if len(featured) == s.featuredLimit {
			break
		}
		if p.IsNew || p.IsSale {
			featured = append(featured, p)
		}
	}

	span.SetAttributes(attribute.Int("product.count", len(featured)))
	countOperation(ctx, s.operations, "featured", resultSuccess)
	span.SetStatus(codes.Ok, "Featured products listed")
	return dto.ToProductResponseList(featured), nil
}

// RelatedProducts returns other products from the same category
func (s *CatalogService) RelatedProducts(ctx context.Context, id string) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.RelatedProducts")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		failSpan(span, err, "Product lookup failed")
		countOperation(ctx, s.operations, "related", resultNotFound)
		return nil, err
	}

	siblings, err := s.repo.FindProductsByCategory(ctx, product.Category)
	if err != nil {
		failSpan(span, err, "Failed to retrieve category products")
		countOperation(ctx, s.operations, "related", resultFailure)
		return nil, err
	}

	related := make([]*domain.Product, 0, RelatedLimit)
	for _, p := range siblings {
		if len(related) == RelatedLimit {
			break
		}
		if p.ID != product.ID {
			related = append(related, p)
		}
	}

	countOperation(ctx, s.operations, "related", resultSuccess)
	span.SetStatus(codes.Ok, "Related products listed")
	return dto.ToProductResponseList(related), nil
}

// SearchProducts matches the query against name, description and category,
// ignoring case. A blank query matches nothing.
func (s *CatalogService) SearchProducts(ctx context.Context, query string) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.SearchProducts")
	defer span.End()

	query = strings.ToLower(strings.TrimSpace(query))
	span.SetAttributes(attribute.String("search.query", query))
	if query == "" {
		return []*dto.ProductResponse{}, nil
	}

	products, err := s.repo.FindAllProducts(ctx)
	if err != nil {
		failSpan(span, err, "Failed to retrieve products")
		countOperation(ctx, s.operations, "search", resultFailure)
		return nil, err
	}

	matches := make([]*domain.Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.Description), query) ||
			strings.Contains(strings.ToLower(p.Category), query) {
			matches = append(matches, p)
		}
	}

	s.logger.InfoContext(ctx, "Products searched",
		slog.String("query", query),
		slog.Int("count", len(matches)),
	)
	span.SetAttributes(attribute.Int("product.count", len(matches)))
	countOperation(ctx, s.operations, "search", resultSuccess)
	span.SetStatus(codes.Ok, "Search completed")
	return dto.ToProductResponseList(matches), nil
}

// ListCategories retrieves all categories
func (s *CatalogService) ListCategories(ctx context.Context) ([]*dto.CategoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.ListCategories")
	defer span.End()

	categories, err := s.repo.FindAllCategories(ctx)
	if err != nil {
		failSpan(span, err, "Failed to retrieve categories")
		countOperation(ctx, s.operations, "list_categories", resultFailure)
		return nil, err
	}

	responses := make([]*dto.CategoryResponse, len(categories))
	for i, c := range categories {
		responses[i] = dto.ToCategoryResponse(c, nil)
	}

	countOperation(ctx, s.operations, "list_categories", resultSuccess)
	span.SetStatus(codes.Ok, "Categories listed successfully")
	return responses, nil
}

// GetCategory retrieves a category by slug together with its products
func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*dto.CategoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CatalogService.GetCategory")
	defer span.End()

	span.SetAttributes(attribute.String("category.slug", slug))

	category, err := s.repo.FindCategoryBySlug(ctx, slug)
	if err != nil {
		failSpan(span, err, "Category lookup failed")
		s.logger.WarnContext(ctx, "Category not found", slog.String("slug", slug))
		countOperation(ctx, s.operations, "get_category", resultNotFound)
		return nil, err
	}

	products, err := s.repo.FindProductsByCategory(ctx, slug)
	if err != nil {
		failSpan(span, err, "Failed to retrieve category products")
		countOperation(ctx, s.operations, "get_category", resultFailure)
		return nil, err
	}

	countOperation(ctx, s.operations, "get_category", resultSuccess)
	span.SetStatus(codes.Ok, "Category retrieved successfully")
	return dto.ToCategoryResponse(category, products), nil
}
