package redisbus

import (
	"context"
	"errors"
	"time"

	"github.com/dermesser/redisbus/broker"
)

// ResolveCacheSlot returns the broker key of the cache slot a call to m addresses.
// ok is false for uncached methods.
func (b *Bus) ResolveCacheSlot(m *Method, args []any, kwargs map[string]any) (key string, ok bool, err error) {
	if !m.Cached() {
		return "", false, nil
	}
	t, err := m.Resolve()
	if err != nil {
		return "", false, err
	}
	resolved, ok, err := ResolveCacheKey(m.CacheKey, t.Params, args, kwargs)
	if err != nil {
		var be *BindingError
		if errors.As(err, &be) && be.Method == "" {
			be.Method = m.Name
		}
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return b.CacheKey(m.Name, resolved), true, nil
}

// CheckCache returns the cached outcome at the slot key, or Unresolved if there is none.
func (b *Bus) CheckCache(ctx context.Context, key string) (Outcome, error) {
	data, err := b.broker.Load(ctx, key)
	if errors.Is(err, broker.ErrNil) {
		return Unresolved, nil
	} else if err != nil {
		return Unresolved, err
	}
	return b.decodeOutcome(data)
}

// StoreCache writes o to the cache slot with the configured cache TTL.
func (b *Bus) StoreCache(ctx context.Context, key string, o Outcome) error {
	if b.cacheTTL == 0 {
		return nil
	}
	data, err := b.encodeOutcome(o)
	if err != nil {
		return err
	}
	return b.broker.Store(ctx, key, data, b.cacheTTL)
}

// ClearCache deletes the cache slot a call to m addresses. It is a no-op for uncached methods.
func (b *Bus) ClearCache(ctx context.Context, m *Method, args []any, kwargs map[string]any) error {
	key, ok, err := b.ResolveCacheSlot(m, args, kwargs)
	if err != nil || !ok {
		return err
	}
	return b.broker.Delete(ctx, key)
}

// PublishResult writes the outcome of call id. It must be called once per id.
func (b *Bus) PublishResult(ctx context.Context, id string, o Outcome) error {
	data, err := b.encodeOutcome(o)
	if err != nil {
		return err
	}
	return b.broker.Publish(ctx, b.ResultKey(id), data, b.resultTTL)
}

// Blocking broker reads do not observe cancellation, so waits are issued in slices.
const awaitSlice = 5 * time.Second

/*
AwaitResult blocks until the outcome of call id is published and returns it. The result
stays in place for other readers.

Without a deadline on ctx it waits until the result arrives or ctx is cancelled. With one,
it returns ErrTimeout once the deadline has passed. Broker waits are counted in whole
seconds, so the deadline may be overrun by up to a second.
*/
func (b *Bus) AwaitResult(ctx context.Context, id string) (Outcome, error) {
	dl, hasDeadline := ctx.Deadline()
	for {
		if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return Unresolved, err
		}
		wait := awaitSlice
		if hasDeadline {
			left := time.Until(dl)
			if left <= 0 {
				return Unresolved, ErrTimeout
			}
			wait = min(wait, left)
		}

		data, err := b.broker.Await(ctx, b.ResultKey(id), wait)
		switch {
		case err == nil:
			return b.decodeOutcome(data)
		case errors.Is(err, broker.ErrTimeout):
			continue
		case errors.Is(err, context.DeadlineExceeded):
			return Unresolved, ErrTimeout
		default:
			return Unresolved, err
		}
	}
}
