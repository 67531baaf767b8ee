// Package session maps shopper session ids to their cart and wishlist
// stores. It is the composition root for shopper state: every caller asking
// for the same session gets the same store instances.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mrops-br/shopverse-api/internal/app/store"
	"github.com/mrops-br/shopverse-api/internal/domain"
)

// ErrMissingSessionID is returned for an empty session id.
var ErrMissingSessionID = errors.New("session id is required")

// Snapshot slots kept per session.
const (
	SlotCart     = "cart"
	SlotWishlist = "wishlist"
	SlotUser     = "user"
)

// Session is one shopper's state.
type Session struct {
	ID       string
	Cart     *store.CartStore
	Wishlist *store.WishlistStore

	// Guarded by Registry.mu.
	leases   int
	lastSeen time.Time

	// Closed once Cart and Wishlist are loaded.
	ready chan struct{}
}

// CartObserver is told about every effective cart change in any session.
type CartObserver func(sessionID string, items []domain.CartLineItem)

// Registry owns the live sessions.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	kv        domain.SnapshotStore
	catalog   store.ProductLookup
	prefix    string
	logger    *slog.Logger
	observers []CartObserver
	now       func() time.Time
}

// NewRegistry creates a registry persisting into kv under keys
// "<prefix>:<session>:<slot>".
func NewRegistry(kv domain.SnapshotStore, catalog store.ProductLookup, prefix string, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		kv:       kv,
		catalog:  catalog,
		prefix:   prefix,
		logger:   logger,
		now:      time.Now,
	}
}

// OnCartChange registers fn for carts created after this call. Register
// observers before serving traffic.
func (r *Registry) OnCartChange(fn CartObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Key returns the storage key of a session slot.
func (r *Registry) Key(sessionID, slot string) string {
	return r.prefix + ":" + sessionID + ":" + slot
}

// Snapshots exposes the underlying slot storage for collaborators that keep
// their own per-session slot, such as the signed-in user.
func (r *Registry) Snapshots() domain.SnapshotStore {
	return r.kv
}

// Acquire returns the live session for id, rehydrating it from storage on
// first use, and leases it to the caller until release is called. Sweep
// never drops a leased session. A rehydrated cart is repriced against the
// catalog. Storage is read outside the registry lock, at most once per live
// session; concurrent callers for the same id wait for that load.
func (r *Registry) Acquire(ctx context.Context, id string) (*Session, func(), error) {
	if id == "" {
		return nil, nil, ErrMissingSessionID
	}

	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = &Session{ID: id, ready: make(chan struct{})}
		r.sessions[id] = s
	}
	s.leases++
	s.lastSeen = r.now()
	observers := r.observers[:len(r.observers):len(r.observers)]
	r.mu.Unlock()

	var once sync.Once
	release := func() {
		once.Do(func() { r.release(s) })
	}

	if !ok {
		r.open(context.WithoutCancel(ctx), s, observers)
		close(s.ready)
		return s, release, nil
	}

	select {
	case <-s.ready:
		return s, release, nil
	case <-ctx.Done():
		release()
		return nil, nil, ctx.Err()
	}
}

// open loads the stores of a new session. The caller's cancellation is
// ignored so an abandoned request cannot leave an empty cart in place of
// the stored one.
func (r *Registry) open(ctx context.Context, s *Session, observers []CartObserver) {
	s.Cart = store.NewCartStore(ctx, r.kv, r.Key(s.ID, SlotCart), r.logger)
	s.Wishlist = store.NewWishlistStore(ctx, r.kv, r.Key(s.ID, SlotWishlist), r.logger)

	if r.catalog != nil && s.Cart.Len() > 0 {
		if err := s.Cart.Reprice(ctx, r.catalog); err != nil {
			r.logger.WarnContext(ctx, "Failed to reprice rehydrated cart",
				slog.String("session_id", s.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	id := s.ID
	for _, fn := range observers {
		fn := fn
		s.Cart.Subscribe(func(items []domain.CartLineItem) {
			fn(id, items)
		})
	}

	r.logger.DebugContext(ctx, "Session opened",
		slog.String("session_id", id),
		slog.Int("cart_lines", s.Cart.Len()),
		slog.Int("wishlist_products", s.Wishlist.Count()),
	)
}

func (r *Registry) release(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.leases--
	s.lastSeen = r.now()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops unleased sessions idle for longer than idle. Their state
// stays in storage and is rehydrated on the next request.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	dropped := 0
	for id, s := range r.sessions {
		if s.leases == 0 && s.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			dropped++
		}
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.logger.Debug("Idle sessions released", slog.Int("count", n))
			}
		}
	}
}
