// Package store holds the shopper state containers: the cart and the
// wishlist. Each store owns its in-memory collection, rewrites the full
// collection to a snapshot slot after every effective mutation and then
// notifies its subscribers.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/shopverse-api/internal/domain"
)

// ErrPersist wraps failures to write a snapshot after an in-memory change.
var ErrPersist = errors.New("persist snapshot")

// snapshot serializes one collection to one key of a SnapshotStore.
type snapshot[T any] struct {
	kv       domain.SnapshotStore
	key      string
	validate func([]T) error
	logger   *slog.Logger
}

// load reads the slot. A missing key, unparseable JSON or a collection that
// fails validation all yield an empty collection; only the last two are
// logged.
func (s *snapshot[T]) load(ctx context.Context) []T {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return []T{}
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read snapshot, starting empty",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.WarnContext(ctx, "Discarding malformed snapshot",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return []T{}
	}
	if s.validate != nil {
		if err := s.validate(items); err != nil {
			s.logger.WarnContext(ctx, "Discarding invalid snapshot",
				slog.String("key", s.key),
				slog.String("error", err.Error()),
			)
			return []T{}
		}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// save overwrites the slot with the full collection.
func (s *snapshot[T]) save(ctx context.Context, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist snapshot",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
