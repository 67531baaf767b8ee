package session

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/mrops-br/shopverse-api/internal/infrastructure/kv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog map[string]domain.Product

func (s stubCatalog) FindProductByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := s[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func product(id, price string) domain.Product {
	return domain.Product{ID: id, Name: id, Category: "c", Price: decimal.RequireFromString(price)}
}

func newTestRegistry(catalog stubCatalog) (*Registry, *kv.MemoryStore) {
	mem := kv.NewMemoryStore()
	return NewRegistry(mem, catalog, "shopverse", slog.New(slog.NewTextHandler(io.Discard, nil))), mem
}

// acquire leases id and releases it right away; the stores stay usable.
func acquire(t *testing.T, r *Registry, id string) *Session {
	t.Helper()
	s, release, err := r.Acquire(context.Background(), id)
	require.NoError(t, err)
	release()
	return s
}

func TestSessionIsSharedPerID(t *testing.T) {
	r, _ := newTestRegistry(nil)
	ctx := context.Background()

	a1 := acquire(t, r, "a")
	a2 := acquire(t, r, "a")
	b := acquire(t, r, "b")

	assert.Same(t, a1, a2)
	assert.Same(t, a1.Cart, a2.Cart)
	assert.NotSame(t, a1.Cart, b.Cart)
	assert.Equal(t, 2, r.Len())

	_, _, err := r.Acquire(ctx, "")
	assert.ErrorIs(t, err, ErrMissingSessionID)
}

func TestSessionsAreIsolated(t *testing.T) {
	r, mem := newTestRegistry(nil)
	ctx := context.Background()

	a := acquire(t, r, "a")
	b := acquire(t, r, "b")
	require.NoError(t, a.Cart.AddToCart(ctx, product("p1", "1"), 1))
	require.NoError(t, b.Wishlist.AddToWishlist(ctx, product("p2", "1")))

	assert.Zero(t, b.Cart.TotalItems())
	assert.Zero(t, a.Wishlist.Count())

	_, err := mem.Get(ctx, "shopverse:a:cart")
	assert.NoError(t, err)
	_, err = mem.Get(ctx, "shopverse:b:wishlist")
	assert.NoError(t, err)
}

func TestSessionRehydratesAndReprices(t *testing.T) {
	ctx := context.Background()
	catalog := stubCatalog{"p1": product("p1", "10")}
	r, mem := newTestRegistry(catalog)

	s := acquire(t, r, "a")
	require.NoError(t, s.Cart.AddToCart(ctx, catalog["p1"], 2))

	catalog["p1"] = product("p1", "12")
	fresh := NewRegistry(mem, catalog, "shopverse", slog.New(slog.NewTextHandler(io.Discard, nil)))
	s2 := acquire(t, fresh, "a")

	assert.Equal(t, 2, s2.Cart.TotalItems())
	assert.Equal(t, "24", s2.Cart.Subtotal().String())
}

func TestOnCartChange(t *testing.T) {
	r, _ := newTestRegistry(nil)
	ctx := context.Background()

	type change struct {
		session string
		items   int
	}
	var changes []change
	r.OnCartChange(func(id string, items []domain.CartLineItem) {
		changes = append(changes, change{id, len(items)})
	})

	a := acquire(t, r, "a")
	b := acquire(t, r, "b")
	require.NoError(t, a.Cart.AddToCart(ctx, product("p1", "1"), 1))
	require.NoError(t, b.Cart.AddToCart(ctx, product("p1", "1"), 1))
	require.NoError(t, a.Cart.ClearCart(ctx))

	assert.Equal(t, []change{{"a", 1}, {"b", 1}, {"a", 0}}, changes)
}

func TestSweepReleasesIdleSessions(t *testing.T) {
	r, _ := newTestRegistry(nil)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	old := acquire(t, r, "old")
	require.NoError(t, old.Cart.AddToCart(ctx, product("p1", "1"), 3))

	now = now.Add(time.Hour)
	acquire(t, r, "recent")

	assert.Equal(t, 1, r.Sweep(30*time.Minute))
	assert.Equal(t, 1, r.Len())

	back := acquire(t, r, "old")
	assert.NotSame(t, old, back)
	assert.Equal(t, 3, back.Cart.TotalItems(), "state survives in storage")
}

func TestSweepKeepsLeasedSessions(t *testing.T) {
	r, _ := newTestRegistry(nil)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	held, release, err := r.Acquire(ctx, "a")
	require.NoError(t, err)

	now = now.Add(time.Hour)
	assert.Zero(t, r.Sweep(30*time.Minute))
	require.NoError(t, held.Cart.AddToCart(ctx, product("p1", "1"), 2))

	release()
	release()
	assert.Zero(t, r.Sweep(30*time.Minute), "release counts as use")
	assert.Same(t, held, acquire(t, r, "a"))

	now = now.Add(time.Hour)
	assert.Equal(t, 1, r.Sweep(30*time.Minute))
	assert.Equal(t, 2, acquire(t, r, "a").Cart.TotalItems())
}

// countingStore counts reads.
type countingStore struct {
	*kv.MemoryStore
	gets atomic.Int32
}

func (c *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets.Add(1)
	return c.MemoryStore.Get(ctx, key)
}

func TestConcurrentAcquireLoadsOnce(t *testing.T) {
	mem := &countingStore{MemoryStore: kv.NewMemoryStore()}
	r := NewRegistry(mem, nil, "shopverse", slog.New(slog.NewTextHandler(io.Discard, nil)))

	const callers = 16
	got := make([]*Session, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, release, err := r.Acquire(context.Background(), "a")
			if assert.NoError(t, err) {
				release()
			}
			got[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range got {
		assert.Same(t, got[0], s)
	}
	assert.Equal(t, int32(2), mem.gets.Load(), "one read per slot")
}

// gatedStore blocks reads of one session until the gate opens.
type gatedStore struct {
	*kv.MemoryStore
	slow    string
	entered chan struct{}
	gate    chan struct{}
}

func (g *gatedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if strings.Contains(key, ":"+g.slow+":") {
		select {
		case g.entered <- struct{}{}:
		default:
		}
		<-g.gate
	}
	return g.MemoryStore.Get(ctx, key)
}

func TestSlowLoadDoesNotBlockOtherSessions(t *testing.T) {
	mem := &gatedStore{
		MemoryStore: kv.NewMemoryStore(),
		slow:        "slow",
		entered:     make(chan struct{}, 1),
		gate:        make(chan struct{}),
	}
	r := NewRegistry(mem, nil, "shopverse", slog.New(slog.NewTextHandler(io.Discard, nil)))

	loaded := make(chan *Session)
	go func() {
		s, release, err := r.Acquire(context.Background(), "slow")
		if assert.NoError(t, err) {
			release()
		}
		loaded <- s
	}()
	<-mem.entered

	fast := make(chan struct{})
	go func() {
		_, release, err := r.Acquire(context.Background(), "fast")
		if assert.NoError(t, err) {
			release()
		}
		close(fast)
	}()
	select {
	case <-fast:
	case <-time.After(time.Second):
		t.Fatal("loading one session blocked another")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, _, err := r.Acquire(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(mem.gate)
	s := <-loaded
	assert.Same(t, s, acquire(t, r, "slow"))
}
