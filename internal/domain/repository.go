package domain

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// CatalogRepository defines the contract for read-only catalog lookups
type CatalogRepository interface {
	FindProductByID(ctx context.Context, id string) (*Product, error)
	FindProductsByCategory(ctx context.Context, slug string) ([]*Product, error)
	FindAllProducts(ctx context.Context) ([]*Product, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	FindAllCategories(ctx context.Context) ([]*Category, error)
}

// SnapshotStore is the durable key-value slot storage that shopper state is
// serialized into. Get returns ErrSnapshotNotFound for a missing key.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// OrderPublisher announces placed orders to downstream consumers.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
}
