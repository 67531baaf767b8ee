package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductLookup resolves current catalog records by id.
type ProductLookup interface {
	FindProductByID(ctx context.Context, id string) (*domain.Product, error)
}

// CartStore owns the ordered line items of one shopper's cart.
type CartStore struct {
	mu        sync.Mutex
	items     []domain.CartLineItem
	snapshot  *snapshot[domain.CartLineItem]
	observers observers[[]domain.CartLineItem]
}

// NewCartStore creates a cart bound to key in kv and rehydrates it from the
// stored snapshot, if any.
func NewCartStore(ctx context.Context, kv domain.SnapshotStore, key string, logger *slog.Logger) *CartStore {
	c := &CartStore{
		snapshot: &snapshot[domain.CartLineItem]{
			kv:       kv,
			key:      key,
			validate: domain.ValidateLineItems,
			logger:   logger,
		},
	}
	c.items = c.snapshot.load(ctx)

	logger.DebugContext(ctx, "Cart rehydrated",
		slog.String("key", key),
		slog.Int("lines", len(c.items)),
	)
	return c
}

// AddToCart adds quantity units of product. An existing line keeps its
// position and grows; a new product is appended.
func (c *CartStore) AddToCart(ctx context.Context, product domain.Product, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	return c.apply(ctx, func() bool {
		if i := c.indexOf(product.ID); i >= 0 {
			c.items[i].Quantity += quantity
			return true
		}
		c.items = append(c.items, domain.CartLineItem{Product: product, Quantity: quantity})
		return true
	})
}

// RemoveFromCart drops the line for productID. Unknown ids are ignored.
func (c *CartStore) RemoveFromCart(ctx context.Context, productID string) error {
	return c.apply(ctx, func() bool {
		return c.remove(productID)
	})
}

// UpdateQuantity sets the absolute quantity of a line. A quantity of zero or
// less removes the line. Unknown ids are ignored.
func (c *CartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	return c.apply(ctx, func() bool {
		if quantity <= 0 {
			return c.remove(productID)
		}
		i := c.indexOf(productID)
		if i < 0 || c.items[i].Quantity == quantity {
			return false
		}
		c.items[i].Quantity = quantity
		return true
	})
}

// ClearCart empties the cart.
func (c *CartStore) ClearCart(ctx context.Context) error {
	_, err := c.TakeAll(ctx)
	return err
}

// TakeAll empties the cart and returns the lines it held. Lines added
// concurrently land either in the result or in the emptied cart, never
// neither. On a persist error the cart is still empty in memory and the
// lines are returned with the error.
func (c *CartStore) TakeAll(ctx context.Context) ([]domain.CartLineItem, error) {
	var taken []domain.CartLineItem
	err := c.apply(ctx, func() bool {
		if len(c.items) == 0 {
			return false
		}
		taken = c.items
		c.items = []domain.CartLineItem{}
		return true
	})
	return taken, err
}

// Reprice refreshes every line's product record from the catalog so that
// totals follow current prices. Lines whose product is no longer listed
// keep their last known record.
func (c *CartStore) Reprice(ctx context.Context, catalog ProductLookup) error {
	current := make(map[string]domain.Product)
	for _, item := range c.Items() {
		p, err := catalog.FindProductByID(ctx, item.Product.ID)
		if errors.Is(err, domain.ErrProductNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		current[p.ID] = *p
	}

	return c.apply(ctx, func() bool {
		changed := false
		for i := range c.items {
			p, ok := current[c.items[i].Product.ID]
			if ok && !p.Equal(c.items[i].Product) {
				c.items[i].Product = p
				changed = true
			}
		}
		return changed
	})
}

// Items returns a copy of the line items in cart order.
func (c *CartStore) Items() []domain.CartLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyItems()
}

// Len returns the number of distinct products in the cart.
func (c *CartStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// TotalItems returns the sum of all line quantities.
func (c *CartStore) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CountItems(c.items)
}

// Subtotal returns the sum of price times quantity over all lines.
func (c *CartStore) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SumLines(c.items)
}

// Subscribe registers fn to receive the cart contents after every effective
// mutation. The slice passed to fn is shared between subscribers and must
// be treated as read-only.
func (c *CartStore) Subscribe(fn func(items []domain.CartLineItem)) (unsubscribe func()) {
	return c.observers.subscribe(fn)
}

// apply runs mutate under the lock and, when it reports a change, persists
// the new contents and notifies subscribers.
func (c *CartStore) apply(ctx context.Context, mutate func() bool) error {
	c.mu.Lock()
	if !mutate() {
		c.mu.Unlock()
		return nil
	}
	items := c.copyItems()
	err := c.snapshot.save(ctx, items)
	c.mu.Unlock()

	c.observers.notify(items)
	return err
}

func (c *CartStore) indexOf(productID string) int {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *CartStore) remove(productID string) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return true
}

func (c *CartStore) copyItems() []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(c.items))
	copy(out, c.items)
	return out
}

// CountItems returns the sum of quantities in items.
func CountItems(items []domain.CartLineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// SumLines returns the exact sum of line totals in items.
func SumLines(items []domain.CartLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}
