package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/niksmo/sneakers/pkg/retry"
)

var _ Slot = (*RedisSlot)(nil)

type RedisOptions struct {
	// Addr is "host:port" or a redis:// URL.
	Addr     string
	Password string
	DB       int
	// TTL expires the stored key when positive.
	TTL time.Duration
}

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisSlot stores every key as a plain redis string.
type RedisSlot struct {
	client redisClient
	ttl    time.Duration
}

func NewRedisSlot(
	ctx context.Context, o RedisOptions, ping retry.Policy,
) (*RedisSlot, error) {
	const op = "NewRedisSlot"

	opts, err := redis.ParseURL(o.Addr)
	if err != nil {
		opts = &redis.Options{
			Addr:         o.Addr,
			Password:     o.Password,
			DB:           o.DB,
			MinIdleConns: 1,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		}
	}

	s := newRedisSlot(redis.NewClient(opts), o.TTL)
	if err := s.ping(ctx, ping); err != nil {
		_ = s.client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func newRedisSlot(client redisClient, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, ttl: ttl}
}

func (s *RedisSlot) ping(ctx context.Context, p retry.Policy) error {
	const op = "RedisSlot.ping"

	err := retry.Do(ctx, p, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return s.client.Ping(pingCtx).Err()
	})
	if err != nil {
		return fmt.Errorf("%s: redis unavailable: %w", op, err)
	}
	slog.Info("redis is available", "op", op)
	return nil
}

func (s *RedisSlot) Read(ctx context.Context, key string) ([]byte, error) {
	const op = "RedisSlot.Read"

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return data, nil
}

func (s *RedisSlot) Write(ctx context.Context, key string, data []byte) error {
	const op = "RedisSlot.Write"

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *RedisSlot) Close() error {
	const op = "RedisSlot.Close"

	if err := s.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	slog.Info("redis client is closed", "op", op)
	return nil
}
