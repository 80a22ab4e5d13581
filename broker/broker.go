// Package broker defines the key-value capabilities the bus coordinates through,
// and implements them on Redis.
//
// A Broker offers atomic list push/pop, a blocking pop over several lists, hash
// get/set, plain values with expiry, a blocking read of a single-writer value cell
// and pattern based key enumeration. The bus holds no shared in-process state: every
// guarantee it makes rests on the atomicity of these operations.
package broker

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNil is returned when a key or field does not exist, or a list is empty.
	ErrNil = errors.New("broker: no such key")
	// ErrTimeout is returned when a bounded blocking operation saw no data.
	ErrTimeout = errors.New("broker: timed out waiting for data")
)

// NoExpiry as a TTL keeps a key until it is deleted.
const NoExpiry time.Duration = -1

// Broker is the set of atomic primitives the bus is built on.
//
// Blocking operations take a timeout; 0 blocks until data arrives or ctx is done.
type Broker interface {
	// Enqueue appends value to the list at key. Queues are FIFO: Dequeue returns the oldest entry.
	Enqueue(ctx context.Context, key string, value []byte) error
	// Dequeue removes and returns the oldest entry, or ErrNil if the list is empty.
	Dequeue(ctx context.Context, key string) ([]byte, error)
	// DequeueAny waits on all lists at once and removes exactly one entry from the
	// first list that has data. It returns that list's key.
	DequeueAny(ctx context.Context, timeout time.Duration, keys ...string) (string, []byte, error)
	// Len returns the number of queued entries.
	Len(ctx context.Context, key string) (int64, error)

	HashSet(ctx context.Context, key, field string, value []byte) error
	// HashGet returns ErrNil for a missing field.
	HashGet(ctx context.Context, key, field string) ([]byte, error)
	HashFields(ctx context.Context, key string) ([]string, error)

	// Store sets a plain value. ttl < 0 never expires; ttl == 0 expires immediately.
	Store(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Load returns ErrNil if the value does not exist (or has expired).
	Load(ctx context.Context, key string) ([]byte, error)

	// Publish writes the value of a single-writer cell. The cell expires after ttl
	// (same conventions as Store), independent of reads.
	Publish(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Await blocks until the cell has a value and returns it without consuming it:
	// any number of readers observe the same bytes.
	Await(ctx context.Context, key string, timeout time.Duration) ([]byte, error)

	Delete(ctx context.Context, keys ...string) error
	// Keys enumerates keys matching a glob-style pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)

	Close() error
}
