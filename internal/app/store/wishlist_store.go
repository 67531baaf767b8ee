package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mrops-br/shopverse-api/internal/domain"
)

// WishlistStore owns the saved products of one shopper, in the order they
// were saved, at most once each.
type WishlistStore struct {
	mu        sync.Mutex
	items     []domain.Product
	snapshot  *snapshot[domain.Product]
	observers observers[[]domain.Product]
}

// NewWishlistStore creates a wishlist bound to key in kv and rehydrates it.
func NewWishlistStore(ctx context.Context, kv domain.SnapshotStore, key string, logger *slog.Logger) *WishlistStore {
	w := &WishlistStore{
		snapshot: &snapshot[domain.Product]{
			kv:       kv,
			key:      key,
			validate: domain.ValidateWishlist,
			logger:   logger,
		},
	}
	w.items = w.snapshot.load(ctx)

	logger.DebugContext(ctx, "Wishlist rehydrated",
		slog.String("key", key),
		slog.Int("products", len(w.items)),
	)
	return w
}

// IsInWishlist reports whether productID is saved.
func (w *WishlistStore) IsInWishlist(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexOf(productID) >= 0
}

// ToggleWishlist removes product when saved and saves it otherwise. It
// reports whether the product is saved afterwards.
func (w *WishlistStore) ToggleWishlist(ctx context.Context, product domain.Product) (added bool, err error) {
	err = w.apply(ctx, func() bool {
		if i := w.indexOf(product.ID); i >= 0 {
			w.items = append(w.items[:i:i], w.items[i+1:]...)
			added = false
			return true
		}
		w.items = append(w.items, product)
		added = true
		return true
	})
	return added, err
}

// AddToWishlist saves product. Already saved products are left in place.
func (w *WishlistStore) AddToWishlist(ctx context.Context, product domain.Product) error {
	return w.apply(ctx, func() bool {
		if w.indexOf(product.ID) >= 0 {
			return false
		}
		w.items = append(w.items, product)
		return true
	})
}

// RemoveFromWishlist forgets productID. Unknown ids are ignored.
func (w *WishlistStore) RemoveFromWishlist(ctx context.Context, productID string) error {
	return w.apply(ctx, func() bool {
		i := w.indexOf(productID)
		if i < 0 {
			return false
		}
		w.items = append(w.items[:i:i], w.items[i+1:]...)
		return true
	})
}

// Items returns a copy of the saved products.
func (w *WishlistStore) Items() []domain.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.copyItems()
}

// Count returns how many products are saved.
func (w *WishlistStore) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Subscribe registers fn to receive the wishlist after every effective
// mutation. The slice is shared between subscribers and read-only.
func (w *WishlistStore) Subscribe(fn func(items []domain.Product)) (unsubscribe func()) {
	return w.observers.subscribe(fn)
}

func (w *WishlistStore) apply(ctx context.Context, mutate func() bool) error {
	w.mu.Lock()
	if !mutate() {
		w.mu.Unlock()
		return nil
	}
	items := w.copyItems()
	err := w.snapshot.save(ctx, items)
	w.mu.Unlock()

	w.observers.notify(items)
	return err
}

func (w *WishlistStore) indexOf(productID string) int {
	for i := range w.items {
		if w.items[i].ID == productID {
			return i
		}
	}
	return -1
}

func (w *WishlistStore) copyItems() []domain.Product {
	out := make([]domain.Product, len(w.items))
	copy(out, w.items)
	return out
}
