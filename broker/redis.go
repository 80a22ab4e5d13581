package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Broker on a Redis server (or cluster, or sentinel setup).
//
// Queues are lists written with LPUSH and consumed with RPOP/BRPOP. Cells are
// one-element lists: Publish is RPUSH+PEXPIRE in a MULTI block, and Await rotates the
// list onto itself with BLMOVE, which is atomic, so the element never leaves the server.
type Redis struct {
	client redis.UniversalClient
	owned  bool
}

// NewRedis connects to the servers described by opts.
func NewRedis(opts *redis.UniversalOptions) *Redis {
	return &Redis{client: redis.NewUniversalClient(opts), owned: true}
}

// WrapRedis uses an existing client. Close() will not close it.
func WrapRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Client() redis.UniversalClient {
	return r.client
}

// Ping checks that the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return wrap("PING", r.client.Ping(ctx).Err())
}

func (r *Redis) Enqueue(ctx context.Context, key string, value []byte) error {
	return wrap("LPUSH", r.client.LPush(ctx, key, value).Err())
}

func (r *Redis) Dequeue(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.RPop(ctx, key).Bytes()
	if err != nil {
		return nil, wrap("RPOP", err)
	}
	return b, nil
}

func (r *Redis) DequeueAny(ctx context.Context, timeout time.Duration, keys ...string) (string, []byte, error) {
	if len(keys) == 0 {
		return "", nil, errors.New("broker: DequeueAny without keys")
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	res, err := r.client.BRPop(ctx, blockingTimeout(timeout), keys...).Result()
	if err == redis.Nil {
		return "", nil, ErrTimeout
	} else if err != nil {
		return "", nil, wrap("BRPOP", err)
	}
	// [key, value]
	return res[0], []byte(res[1]), nil
}

func (r *Redis) Len(ctx context.Context, key string) (int64, error) {
	n, err := r.client.LLen(ctx, key).Result()
	return n, wrap("LLEN", err)
}

func (r *Redis) HashSet(ctx context.Context, key, field string, value []byte) error {
	return wrap("HSET", r.client.HSet(ctx, key, field, value).Err())
}

func (r *Redis) HashGet(ctx context.Context, key, field string) ([]byte, error) {
	b, err := r.client.HGet(ctx, key, field).Bytes()
	if err != nil {
		return nil, wrap("HGET", err)
	}
	return b, nil
}

func (r *Redis) HashFields(ctx context.Context, key string) ([]string, error) {
	fields, err := r.client.HKeys(ctx, key).Result()
	if err != nil {
		return nil, wrap("HKEYS", err)
	}
	return fields, nil
}

func (r *Redis) Store(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		return wrap("DEL", r.client.Del(ctx, key).Err())
	}
	if ttl < 0 {
		return wrap("SET", r.client.Set(ctx, key, value, 0).Err())
	}
	return wrap("SET", r.client.Set(ctx, key, value, ttl).Err())
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, wrap("GET", err)
	}
	return b, nil
}

func (r *Redis) Publish(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		return wrap("DEL", r.client.Del(ctx, key).Err())
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, value)
		if ttl > 0 {
			pipe.PExpire(ctx, key, ttl)
		}
		return nil
	})
	return wrap("RPUSH", err)
}

func (r *Redis) Await(ctx context.Context, key string, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := r.client.BLMove(ctx, key, key, "RIGHT", "RIGHT", blockingTimeout(timeout)).Bytes()
	if err == redis.Nil {
		return nil, ErrTimeout
	} else if err != nil {
		return nil, wrap("BLMOVE", err)
	}
	return b, nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return wrap("DEL", r.client.Del(ctx, keys...).Err())
}

func (r *Redis) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, wrap("SCAN", err)
	}
	return keys, nil
}

func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}

// Redis counts blocking timeouts in whole seconds; anything shorter would mean "forever".
func blockingTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	if d < time.Second {
		return time.Second
	}
	return d
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if err == redis.Nil {
		return ErrNil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("broker: %s: %w", op, err)
}
