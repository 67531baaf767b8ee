package memory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrops-br/shopverse-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CatalogRepository is an in-memory, read-only implementation of
// domain.CatalogRepository. Listing order is the order of the seed data.
type CatalogRepository struct {
	products   []domain.Product
	byID       map[string]int
	categories []domain.Category
	bySlug     map[string]int
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewCatalogRepository creates a catalog from the given records, rejecting
// invalid products, duplicate ids and products in unknown categories.
func NewCatalogRepository(categories []domain.Category, products []domain.Product, tracer trace.Tracer, logger *slog.Logger) (*CatalogRepository, error) {
	r := &CatalogRepository{
		products:   make([]domain.Product, 0, len(products)),
		byID:       make(map[string]int, len(products)),
		categories: make([]domain.Category, 0, len(categories)),
		bySlug:     make(map[string]int, len(categories)),
		tracer:     tracer,
		logger:     logger,
	}

	for _, c := range categories {
		if _, dup := r.bySlug[c.Slug]; dup {
			return nil, fmt.Errorf("duplicate category slug %q", c.Slug)
		}
		r.bySlug[c.Slug] = len(r.categories)
		r.categories = append(r.categories, c)
	}

	if err := domain.ValidateProducts(products); err != nil {
		return nil, err
	}
	for _, p := range products {
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if _, ok := r.bySlug[p.Category]; !ok {
			return nil, fmt.Errorf("product %q: unknown category %q", p.ID, p.Category)
		}
		r.byID[p.ID] = len(r.products)
		r.products = append(r.products, p)
	}

	logger.Info("Catalog loaded",
		slog.Int("categories", len(r.categories)),
		slog.Int("products", len(r.products)),
	)
	return r, nil
}

// NewSampleCatalogRepository creates a catalog holding the built-in sample data
func NewSampleCatalogRepository(tracer trace.Tracer, logger *slog.Logger) (*CatalogRepository, error) {
	return NewCatalogRepository(SampleCategories(), SampleProducts(), tracer, logger)
}

// FindProductByID retrieves a product by ID
func (r *CatalogRepository) FindProductByID(ctx context.Context, id string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "CatalogRepository.FindProductByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	i, exists := r.byID[id]
	if !exists {
		span.RecordError(domain.ErrProductNotFound)
		span.SetStatus(codes.Error, "Product not found")
		r.logger.DebugContext(ctx, "Product not found",
			slog.String("product_id", id),
		)
		return nil, domain.ErrProductNotFound
	}

	p := r.products[i]
	span.SetStatus(codes.Ok, "Product found")
	return &p, nil
}

// FindProductsByCategory retrieves the products of one category. An unknown
// slug yields an empty list.
func (r *CatalogRepository) FindProductsByCategory(ctx context.Context, slug string) ([]*domain.Product, error) {
	_, span := r.tracer.Start(ctx, "CatalogRepository.FindProductsByCategory")
	defer span.End()

	span.SetAttributes(attribute.String("category.slug", slug))

	products := make([]*domain.Product, 0)
	for i := range r.products {
		if r.products[i].Category == slug {
			p := r.products[i]
			products = append(products, &p)
		}
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// FindAllProducts retrieves all products
func (r *CatalogRepository) FindAllProducts(ctx context.Context) ([]*domain.Product, error) {
	_, span := r.tracer.Start(ctx, "CatalogRepository.FindAllProducts")
	defer span.End()

	products := make([]*domain.Product, len(r.products))
	for i := range r.products {
		p := r.products[i]
		products[i] = &p
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	span.SetStatus(codes.Ok, "Products retrieved successfully")
	return products, nil
}

// FindCategoryBySlug retrieves a category by slug
func (r *CatalogRepository) FindCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	_, span := r.tracer.Start(ctx, "CatalogRepository.FindCategoryBySlug")
	defer span.End()

	span.SetAttributes(attribute.String("category.slug", slug))

	i, exists := r.bySlug[slug]
	if !exists {
		span.RecordError(domain.ErrCategoryNotFound)
		span.SetStatus(codes.Error, "Category not found")
		return nil, domain.ErrCategoryNotFound
	}

	c := r.categories[i]
	span.SetStatus(codes.Ok, "Category found")
	return &c, nil
}

// FindAllCategories retrieves all categories
func (r *CatalogRepository) FindAllCategories(ctx context.Context) ([]*domain.Category, error) {
	_, span := r.tracer.Start(ctx, "CatalogRepository.FindAllCategories")
	defer span.End()

	categories := make([]*domain.Category, len(r.categories))
	for i := range r.categories {
		c := r.categories[i]
		categories[i] = &c
	}

	span.SetStatus(codes.Ok, "Categories retrieved successfully")
	return categories, nil
}
