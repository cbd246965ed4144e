// Package storage keeps the cart snapshot in a durable slot.
//
// A slot is a single key-value entry. Drivers differ only in where
// the bytes live.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/niksmo/sneakers/pkg/retry"
)

var (
	ErrSlotEmpty          = errors.New("slot is empty")
	ErrUnknownDriver      = errors.New("unknown storage driver")
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

type Slot interface {
	// Read returns ErrSlotEmpty if nothing was written under key.
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Close() error
}

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

type Options struct {
	Driver string
	// Dir is the directory of the file driver.
	Dir string
	// DSN is the database file of the sqlite driver or the connection
	// string of the postgres driver.
	DSN   string
	Redis RedisOptions
	S3    S3Options
	// Ping is applied to network drivers on open.
	Ping retry.Policy
}

// DefaultPingPolicy waits for a network backend for about ten seconds.
func DefaultPingPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 6,
		Backoff:     retry.ExponentialBackoff(200 * time.Millisecond),
		MaxDelay:    5 * time.Second,
	}
}

// Open returns the slot of the configured driver.
func Open(ctx context.Context, o Options) (Slot, error) {
	const op = "storage.Open"

	var (
		slot Slot
		err  error
	)
	switch o.Driver {
	case DriverMemory:
		slot = NewMemorySlot()
	case DriverFile:
		slot, err = NewFileSlot(o.Dir)
	case DriverSQLite:
		slot, err = NewSQLiteSlot(ctx, o.DSN)
	case DriverPostgres:
		slot, err = NewPostgresSlot(ctx, o.DSN, o.Ping)
	case DriverRedis:
		slot, err = NewRedisSlot(ctx, o.Redis, o.Ping)
	case DriverS3:
		slot, err = NewS3Slot(ctx, o.S3, o.Ping)
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownDriver, o.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, o.Driver, err)
	}
	return slot, nil
}
