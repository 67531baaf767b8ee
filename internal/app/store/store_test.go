package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cartKey     = "test:cart"
	wishlistKey = "test:wishlist"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func product(id, price string) domain.Product {
	return domain.Product{
		ID:       id,
		Name:     "Product " + id,
		Category: "electronics",
		Price:    decimal.RequireFromString(price),
		Rating:   4,
	}
}

func ids(items []domain.CartLineItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Product.ID
	}
	return out
}

func productIDs(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

// failingStore rejects every write.
type failingStore struct {
	*kv.MemoryStore
}

func (f failingStore) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("disk full")
}

func newCart(t *testing.T) (*CartStore, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore()
	return NewCartStore(context.Background(), mem, cartKey, testLogger()), mem
}

func TestCartAddMergesQuantity(t *testing.T) {
	ctx := context.Background()
	cart, _ := newCart(t)
	p := product("p1", "10.00")

	require.NoError(t, cart.AddToCart(ctx, p, 2))
	require.NoError(t, cart.AddToCart(ctx, p, 3))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Product.ID)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCartAddKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	cart, _ := newCart(t)

	require.NoError(t, cart.AddToCart(ctx, product("a", "1"), 1))
	require.NoError(t, cart.AddToCart(ctx, product("b", "1"), 1))
	require.NoError(t, cart.AddToCart(ctx, product("a", "1"), 4))
	require.NoError(t, cart.AddToCart(ctx, product("c", "1"), 1))

	assert.Equal(t, []string{"a", "b", "c"}, ids(cart.Items()))
}

func TestCartAddRejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	cart, mem := newCart(t)

	assert.ErrorIs(t, cart.AddToCart(ctx, product("p1", "1"), 0), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, cart.AddToCart(ctx, product("p1", "1"), -3), domain.ErrInvalidQuantity)
	assert.Empty(t, cart.Items())

	_, err := mem.Get(ctx, cartKey)
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "rejected input must not persist")
}

func TestCartUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("zero removes", func(t *testing.T) {
		cart, _ := newCart(t)
		p := product("p1", "1")
		require.NoError(t, cart.AddToCart(ctx, p, 1))
		require.NoError(t, cart.UpdateQuantity(ctx, p.ID, 0))
		assert.Empty(t, cart.Items())
	})

	t.Run("negative removes", func(t *testing.T) {
		cart, _ := newCart(t)
		p := product("p1", "1")
		require.NoError(t, cart.AddToCart(ctx, p, 3))
		require.NoError(t, cart.UpdateQuantity(ctx, p.ID, -5))
		assert.Empty(t, cart.Items())
	})

	t.Run("absolute set", func(t *testing.T) {
		cart, _ := newCart(t)
		require.NoError(t, cart.AddToCart(ctx, product("p1", "1"), 3))
		require.NoError(t, cart.UpdateQuantity(ctx, "p1", 7))
		assert.Equal(t, 7, cart.Items()[0].Quantity)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		cart, _ := newCart(t)
		require.NoError(t, cart.AddToCart(ctx, product("p1", "1"), 3))
		require.NoError(t, cart.UpdateQuantity(ctx, "nope", 9))
		assert.Equal(t, []string{"p1"}, ids(cart.Items()))
		assert.Equal(t, 3, cart.TotalItems())
	})
}

func TestCartRemoveAbsentIsNoOp(t *testing.T) {
	ctx := context.Background()
	cart, mem := newCart(t)
	require.NoError(t, cart.AddToCart(ctx, product("a", "1.50"), 2))
	require.NoError(t, cart.AddToCart(ctx, product("b", "2.25"), 1))

	before := cart.Items()
	persisted, err := mem.Get(ctx, cartKey)
	require.NoError(t, err)

	notified := 0
	cart.Subscribe(func([]domain.CartLineItem) { notified++ })

	require.NoError(t, cart.RemoveFromCart(ctx, "unknown"))

	assert.Equal(t, before, cart.Items())
	after, err := mem.Get(ctx, cartKey)
	require.NoError(t, err)
	assert.Equal(t, persisted, after)
	assert.Zero(t, notified)
}

func TestCartRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	cart, _ := newCart(t)
	require.NoError(t, cart.AddToCart(ctx, product("a", "1"), 1))
	require.NoError(t, cart.AddToCart(ctx, product("b", "1"), 1))
	require.NoError(t, cart.AddToCart(ctx, product("c", "1"), 1))

	require.NoError(t, cart.RemoveFromCart(ctx, "b"))
	assert.Equal(t, []string{"a", "c"}, ids(cart.Items()))

	require.NoError(t, cart.ClearCart(ctx))
	assert.Empty(t, cart.Items())
	assert.Zero(t, cart.TotalItems())
	assert.True(t, cart.Subtotal().IsZero())
}

func TestCartTakeAll(t *testing.T) {
	ctx := context.Background()
	cart, mem := newCart(t)

	taken, err := cart.TakeAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, taken)

	require.NoError(t, cart.AddToCart(ctx, product("a", "2.00"), 2))
	require.NoError(t, cart.AddToCart(ctx, product("b", "1.00"), 1))

	notified := 0
	cart.Subscribe(func(items []domain.CartLineItem) {
		notified++
		assert.Empty(t, items)
	})

	taken, err = cart.TakeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(taken))
	assert.Equal(t, 3, CountItems(taken))
	assert.Zero(t, cart.Len())
	assert.Equal(t, 1, notified)

	restored := NewCartStore(ctx, mem, cartKey, testLogger())
	assert.Empty(t, restored.Items())
}

func TestCartTakeAllLosesNoConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	cart, _ := newCart(t)

	const (
		adders = 8
		adds   = 200
	)

	var wg sync.WaitGroup
	for i := 0; i < adders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := product(fmt.Sprintf("p%d", i%3), "1")
			for j := 0; j < adds; j++ {
				assert.NoError(t, cart.AddToCart(ctx, p, 1))
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	taken := 0
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		items, err := cart.TakeAll(ctx)
		require.NoError(t, err)
		taken += CountItems(items)
	}

	assert.Equal(t, adders*adds, taken+cart.TotalItems())
}

func TestCartTakeAllPersistFailure(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	seeded := NewCartStore(ctx, mem, cartKey, testLogger())
	require.NoError(t, seeded.AddToCart(ctx, product("p1", "1"), 2))

	cart := NewCartStore(ctx, failingStore{mem}, cartKey, testLogger())
	taken, err := cart.TakeAll(ctx)
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, []string{"p1"}, ids(taken))
	assert.Zero(t, cart.Len())
}

func TestCartTotals(t *testing.T) {
	ctx := context.Background()
	cart, _ := newCart(t)
	require.NoError(t, cart.AddToCart(ctx, product("p1", "10.00"), 2))
	require.NoError(t, cart.AddToCart(ctx, product("p2", "5.50"), 1))

	assert.True(t, decimal.RequireFromString("25.50").Equal(cart.Subtotal()), cart.Subtotal().String())
	assert.Equal(t, 3, cart.TotalItems())
	assert.Equal(t, 2, cart.Len())
}

func TestCartSubtotalIsExact(t *testing.T) {
	ctx := context.Background()
	cart, _ := newCart(t)
	require.NoError(t, cart.AddToCart(ctx, product("p1", "0.10"), 3))
	require.NoError(t, cart.AddToCart(ctx, product("p2", "0.20"), 1))

	assert.Equal(t, "0.5", cart.Subtotal().String())
}

func TestCartItemsIsDefensiveCopy(t *testing.T) {
	ctx := context.Background()
	cart, _ := newCart(t)
	require.NoError(t, cart.AddToCart(ctx, product("p1", "1"), 1))

	items := cart.Items()
	items[0].Quantity = 99
	items[0].Product.Name = "mutated"

	assert.Equal(t, 1, cart.Items()[0].Quantity)
	assert.Equal(t, "Product p1", cart.Items()[0].Product.Name)
}

func TestCartPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	original := NewCartStore(ctx, mem, cartKey, testLogger())

	sale := product("p2", "79.99")
	was := decimal.RequireFromString("99.99")
	sale.OriginalPrice = &was
	sale.IsSale = true

	require.NoError(t, original.AddToCart(ctx, product("p1", "10.00"), 2))
	require.NoError(t, original.AddToCart(ctx, sale, 1))
	require.NoError(t, original.AddToCart(ctx, product("p3", "0.99"), 5))

	restored := NewCartStore(ctx, mem, cartKey, testLogger())

	want, got := original.Items(), restored.Items()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Product.Equal(got[i].Product), "line %d product", i)
		assert.Equal(t, want[i].Quantity, got[i].Quantity, "line %d quantity", i)
	}
	assert.True(t, original.Subtotal().Equal(restored.Subtotal()))
}

func TestCartMalformedStorageRecovery(t *testing.T) {
	ctx := context.Background()

	tests := map[string]string{
		"not json":          `{{{`,
		"wrong shape":       `{"product":"p1"}`,
		"zero quantity":     `[{"product":{"id":"p1","name":"x","price":"1"},"quantity":0}]`,
		"duplicate product": `[{"product":{"id":"p1","name":"x","price":"1"},"quantity":1},{"product":{"id":"p1","name":"x","price":"1"},"quantity":2}]`,
		"invalid product":   `[{"product":{"id":"","name":"x","price":"1"},"quantity":1}]`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			mem := kv.NewMemoryStore()
			require.NoError(t, mem.Set(ctx, cartKey, []byte(raw)))

			cart := NewCartStore(ctx, mem, cartKey, testLogger())
			assert.Empty(t, cart.Items())

			require.NoError(t, cart.AddToCart(ctx, product("p9", "1"), 1))
			assert.Equal(t, []string{"p9"}, ids(cart.Items()))
		})
	}
}

func TestCartAcceptsNumericPrices(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	raw := `[{"product":{"id":"p1","name":"Headphones","category":"electronics","price":129.99,"rating":4.5,"reviews":10},"quantity":2}]`
	require.NoError(t, mem.Set(ctx, cartKey, []byte(raw)))

	cart := NewCartStore(ctx, mem, cartKey, testLogger())
	require.Len(t, cart.Items(), 1)
	assert.Equal(t, "259.98", cart.Subtotal().String())
}

func TestCartObservers(t *testing.T) {
	ctx := context.Background()
	cart, _ := newCart(t)

	var seen []int
	unsubscribe := cart.Subscribe(func(items []domain.CartLineItem) {
		seen = append(seen, CountItems(items))
	})

	require.NoError(t, cart.AddToCart(ctx, product("p1", "1"), 2))
	require.NoError(t, cart.UpdateQuantity(ctx, "p1", 2))
	require.NoError(t, cart.UpdateQuantity(ctx, "p1", 5))
	require.NoError(t, cart.ClearCart(ctx))
	require.NoError(t, cart.ClearCart(ctx))

	unsubscribe()
	unsubscribe()
	require.NoError(t, cart.AddToCart(ctx, product("p1", "1"), 1))

	assert.Equal(t, []int{2, 5, 0}, seen)
}

func TestCartObserversRunInSubscriptionOrder(t *testing.T) {
	ctx := context.Background()
	cart, _ := newCart(t)

	var order []string
	cart.Subscribe(func([]domain.CartLineItem) { order = append(order, "first") })
	stop := cart.Subscribe(func([]domain.CartLineItem) { order = append(order, "second") })
	cart.Subscribe(func([]domain.CartLineItem) { order = append(order, "third") })
	stop()

	require.NoError(t, cart.AddToCart(ctx, product("p1", "1"), 1))
	assert.Equal(t, []string{"first", "third"}, order)
}

func TestCartPersistFailure(t *testing.T) {
	ctx := context.Background()
	cart := NewCartStore(ctx, failingStore{kv.NewMemoryStore()}, cartKey, testLogger())

	notified := false
	cart.Subscribe(func([]domain.CartLineItem) { notified = true })

	err := cart.AddToCart(ctx, product("p1", "1"), 1)
	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, 1, cart.TotalItems(), "in-memory state still changes")
	assert.True(t, notified)
}

type stubCatalog map[string]domain.Product

func (s stubCatalog) FindProductByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := s[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func TestCartReprice(t *testing.T) {
	ctx := context.Background()
	cart, mem := newCart(t)
	require.NoError(t, cart.AddToCart(ctx, product("p1", "10.00"), 2))
	require.NoError(t, cart.AddToCart(ctx, product("gone", "3.00"), 1))

	notified := 0
	cart.Subscribe(func([]domain.CartLineItem) { notified++ })

	catalog := stubCatalog{"p1": product("p1", "12.50")}
	require.NoError(t, cart.Reprice(ctx, catalog))

	assert.Equal(t, "28", cart.Subtotal().String())
	assert.Equal(t, []string{"p1", "gone"}, ids(cart.Items()))
	assert.Equal(t, 1, notified)

	restored := NewCartStore(ctx, mem, cartKey, testLogger())
	assert.Equal(t, "28", restored.Subtotal().String())

	require.NoError(t, cart.Reprice(ctx, catalog))
	assert.Equal(t, 1, notified, "unchanged prices do not notify")
}

func newWishlist(t *testing.T) (*WishlistStore, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore()
	return NewWishlistStore(context.Background(), mem, wishlistKey, testLogger()), mem
}

func TestWishlistToggleIsIdempotentPair(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) *WishlistStore {
		w, _ := newWishlist(t)
		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, w.AddToWishlist(ctx, product(id, "1")))
		}
		return w
	}

	t.Run("absent product", func(t *testing.T) {
		w := seed(t)
		p := product("z", "1")

		added, err := w.ToggleWishlist(ctx, p)
		require.NoError(t, err)
		assert.True(t, added)
		added, err = w.ToggleWishlist(ctx, p)
		require.NoError(t, err)
		assert.False(t, added)

		assert.Equal(t, []string{"a", "b", "c"}, productIDs(w.Items()))
	})

	t.Run("present product", func(t *testing.T) {
		w := seed(t)
		p := product("b", "1")

		_, err := w.ToggleWishlist(ctx, p)
		require.NoError(t, err)
		_, err = w.ToggleWishlist(ctx, p)
		require.NoError(t, err)

		got := productIDs(w.Items())
		assert.ElementsMatch(t, []string{"a", "b", "c"}, got)

		others := make([]string, 0, 2)
		for _, id := range got {
			if id != "b" {
				others = append(others, id)
			}
		}
		assert.Equal(t, []string{"a", "c"}, others)
	})
}

func TestWishlistToggle(t *testing.T) {
	ctx := context.Background()
	w, _ := newWishlist(t)
	p := product("p1", "1")

	added, err := w.ToggleWishlist(ctx, p)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, w.IsInWishlist("p1"))

	added, err = w.ToggleWishlist(ctx, p)
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, w.IsInWishlist("p1"))
}

func TestWishlistExplicitFormsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	w, _ := newWishlist(t)

	notified := 0
	w.Subscribe(func([]domain.Product) { notified++ })

	require.NoError(t, w.AddToWishlist(ctx, product("a", "1")))
	require.NoError(t, w.AddToWishlist(ctx, product("a", "1")))
	assert.Equal(t, 1, w.Count())

	require.NoError(t, w.RemoveFromWishlist(ctx, "missing"))
	require.NoError(t, w.RemoveFromWishlist(ctx, "a"))
	require.NoError(t, w.RemoveFromWishlist(ctx, "a"))
	assert.Zero(t, w.Count())

	assert.Equal(t, 2, notified)
}

func TestWishlistPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	w, mem := newWishlist(t)
	require.NoError(t, w.AddToWishlist(ctx, product("x", "5")))
	require.NoError(t, w.AddToWishlist(ctx, product("y", "6")))

	restored := NewWishlistStore(ctx, mem, wishlistKey, testLogger())
	assert.Equal(t, []string{"x", "y"}, productIDs(restored.Items()))
}

func TestWishlistMalformedStorageRecovery(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	require.NoError(t, mem.Set(ctx, wishlistKey, []byte(`"not a list"`)))

	w := NewWishlistStore(ctx, mem, wishlistKey, testLogger())
	assert.Zero(t, w.Count())
}

func TestWishlistItemsIsDefensiveCopy(t *testing.T) {
	ctx := context.Background()
	w, _ := newWishlist(t)
	require.NoError(t, w.AddToWishlist(ctx, product("a", "1")))

	items := w.Items()
	items[0].ID = "hijacked"
	assert.True(t, w.IsInWishlist("a"))
}
