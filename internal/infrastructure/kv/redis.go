package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/mrops-br/shopverse-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore is a domain.SnapshotStore backed by Redis string keys.
type RedisStore struct {
	client *redis.Client
	tracer trace.Tracer
	logger *slog.Logger
}

// NewRedisStore accepts a Redis URL ("redis://host:port/db") or a bare
// "host:port" address.
func NewRedisStore(redisAddr string, tracer trace.Tracer, logger *slog.Logger) *RedisStore {
	opts, err := redis.ParseURL(redisAddr)
	if err != nil {
		opts = &redis.Options{
			Addr:         redisAddr,
			MinIdleConns: 1,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
		}
	}

	client := redis.NewClient(opts)
	client.AddHook(redisotel.NewTracingHook())

	return NewRedisStoreFromClient(client, tracer, logger)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, tracer trace.Tracer, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, tracer: tracer, logger: logger}
}

// Initialize waits for Redis to answer, backing off between attempts.
func (r *RedisStore) Initialize(ctx context.Context, attempts int) error {
	backoff := 250 * time.Millisecond
	for i := 1; i <= attempts; i++ {
		err := r.Ping(ctx)
		if err == nil {
			r.logger.InfoContext(ctx, "Redis snapshot store ready", slog.Int("attempt", i))
			return nil
		}
		r.logger.WarnContext(ctx, "Redis not ready",
			slog.Int("attempt", i),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 5*time.Second {
			backoff *= 2
		}
	}
	return fmt.Errorf("redis not reachable after %d attempts", attempts)
}

// Get returns the value stored under key
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := r.tracer.Start(ctx, "RedisStore.Get")
	defer span.End()
	span.SetAttributes(attribute.String("snapshot.key", key))

	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "redis GET failed")
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	span.SetAttributes(attribute.Int("snapshot.bytes", len(value)))
	return value, nil
}

// Set overwrites the value stored under key
func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := r.tracer.Start(ctx, "RedisStore.Set")
	defer span.End()
	span.SetAttributes(
		attribute.String("snapshot.key", key),
		attribute.Int("snapshot.bytes", len(value)),
	)

	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "redis SET failed")
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key; missing keys are ignored
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping checks that Redis answers within a short timeout
func (r *RedisStore) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Ping(pingCtx).Err()
}

// Close releases the client's connections
func (r *RedisStore) Close() error {
	return r.client.Close()
}
