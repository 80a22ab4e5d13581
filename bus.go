package redisbus

import (
	"strings"
	"time"

	"github.com/dermesser/redisbus/broker"
	"github.com/dermesser/redisbus/codec"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultName      = "redis_bus"
	DefaultResultTTL = time.Hour
	DefaultCacheTTL  = 24 * time.Hour
	noMethodCache    = -1
	methodCacheSize  = 256
)

// NoExpiry as a TTL keeps results or cache entries until the bus is reset.
const NoExpiry = broker.NoExpiry

/*
Bus is one namespace on a broker. All keys it creates live under "<name>:". A Bus holds
no state beyond its configuration (and, with WithMethodCacheTTL, a cache of method
records), so any number of processes may use the same namespace concurrently.

Bus is safe for concurrent use.
*/
type Bus struct {
	broker broker.Broker
	name   string
	prefix string

	resultTTL time.Duration
	cacheTTL  time.Duration

	framer *codec.Framer
	values *codec.Values

	methodCacheTTL time.Duration
	methods        *expirable.LRU[string, *Method]
}

// Option configures a Bus.
type Option func(*Bus) error

// WithName sets the namespace, DefaultName by default. Names must not contain
// glob syntax, since Reset enumerates the namespace by pattern.
func WithName(name string) Option {
	return func(b *Bus) error {
		if name == "" || strings.ContainsAny(name, `*?[]\`) {
			return &ConfigError{Message: "invalid bus name " + name}
		}
		b.name = name
		return nil
	}
}

// WithPrefix is prepended to the default name of registered methods, and restricts
// the default serve pattern to names starting with it.
func WithPrefix(prefix string) Option {
	return func(b *Bus) error {
		b.prefix = prefix
		return nil
	}
}

// WithResultTTL sets how long published results are kept. NoExpiry keeps them forever.
// 0 is refused: a result that expires on publication could never be read.
func WithResultTTL(d time.Duration) Option {
	return func(b *Bus) error {
		if d == 0 {
			return &ConfigError{Message: "result TTL must not be 0"}
		}
		b.resultTTL = d
		return nil
	}
}

// WithCacheTTL sets how long cached outcomes are kept. 0 disables caching in effect.
func WithCacheTTL(d time.Duration) Option {
	return func(b *Bus) error {
		b.cacheTTL = d
		return nil
	}
}

// WithCompression compresses payloads larger than threshold bytes.
func WithCompression(c codec.Compression, threshold int) Option {
	return func(b *Bus) error {
		f, err := codec.NewFramer(c, threshold)
		if err != nil {
			return &ConfigError{Message: err.Error()}
		}
		b.framer = f
		return nil
	}
}

// WithMethodCacheTTL caches looked-up method records in-process for d. The cache is off
// by default. Only Register and Reset on this Bus invalidate it: while a record is
// cached, a Reset or re-registration by another process goes unnoticed, so Submit may
// queue calls for a deleted method or resolve cache keys with an outdated template.
// A negative value disables the cache.
func WithMethodCacheTTL(d time.Duration) Option {
	return func(b *Bus) error {
		b.methodCacheTTL = d
		return nil
	}
}

// New returns a Bus using br. The bus does not take ownership of br.
func New(br broker.Broker, opts ...Option) (*Bus, error) {
	b := &Bus{
		broker:         br,
		name:           DefaultName,
		resultTTL:      DefaultResultTTL,
		cacheTTL:       DefaultCacheTTL,
		values:         codec.Default(),
		methodCacheTTL: noMethodCache,
	}
	for _, o := range opts {
		if err := o(b); err != nil {
			return nil, err
		}
	}
	if b.framer == nil {
		f, err := codec.NewFramer(codec.None, codec.DefaultThreshold)
		if err != nil {
			return nil, err
		}
		b.framer = f
	}
	if b.methodCacheTTL >= 0 {
		b.methods = expirable.NewLRU[string, *Method](methodCacheSize, nil, b.methodCacheTTL)
	}
	return b, nil
}

func (b *Bus) Name() string {
	return b.name
}

func (b *Bus) Prefix() string {
	return b.prefix
}

func (b *Bus) Broker() broker.Broker {
	return b.broker
}

func (b *Bus) ResultTTL() time.Duration {
	return b.resultTTL
}

func (b *Bus) CacheTTL() time.Duration {
	return b.cacheTTL
}

// ServePattern is the pattern workers serve when none is given.
func (b *Bus) ServePattern() string {
	return b.prefix + "*"
}

func (b *Bus) key(parts ...string) string {
	return b.name + ":" + strings.Join(parts, ":")
}

func (b *Bus) MethodsKey() string {
	return b.key("methods")
}

// CallsKey is the queue of pending calls of a method.
func (b *Bus) CallsKey(method string) string {
	return b.key("calls", method)
}

// MethodFromCallsKey inverts CallsKey.
func (b *Bus) MethodFromCallsKey(key string) (string, bool) {
	return strings.CutPrefix(key, b.CallsKey(""))
}

func (b *Bus) ResultKey(id string) string {
	return b.key("results", id)
}

func (b *Bus) CacheKey(method, resolved string) string {
	return b.key("cache", method, resolved)
}
