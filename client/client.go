package client

import (
	"context"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dermesser/redisbus"
	"github.com/dermesser/redisbus/log"
	"github.com/dermesser/redisbus/metrics"
	"github.com/google/uuid"
)

/*
Client submits calls to a bus. Cached methods are answered from the cache whenever
possible; all other calls are queued for a worker and answered through an AsyncResult.

A Client is safe for concurrent use. It holds no connections of its own: it uses the
bus' broker.
*/
type Client struct {
	bus  *redisbus.Bus
	name string
}

type Option func(*Client)

// WithClientName sets the name used in log lines of this client.
func WithClientName(name string) Option {
	return func(cl *Client) {
		cl.name = name
	}
}

func New(bus *redisbus.Bus, opts ...Option) *Client {
	cl := &Client{bus: bus, name: "client"}
	for _, o := range opts {
		o(cl)
	}
	return cl
}

func (cl *Client) Bus() *redisbus.Bus {
	return cl.bus
}

func newResultID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

/*
Submit calls method with positional args and keyword args kwargs.

If the method is cached and the cache holds an outcome for these arguments, the returned
result is already resolved and nothing is queued. Otherwise the call is queued and the
result resolves once a worker executed it.

Lookup, binding and key errors are returned here; faults of the target only from
AsyncResult.Get().
*/
func (cl *Client) Submit(ctx context.Context, method string, args []any, kwargs map[string]any) (*AsyncResult, error) {
	m, err := cl.bus.Lookup(ctx, method)
	if err != nil {
		return nil, err
	}
	return cl.submit(ctx, m, args, kwargs)
}

func (cl *Client) submit(ctx context.Context, m *redisbus.Method, args []any, kwargs map[string]any) (*AsyncResult, error) {
	id := newResultID()

	key, cached, err := cl.bus.ResolveCacheSlot(m, args, kwargs)
	if err != nil {
		cl.rpclog(log_ERROR, m.Name, id, err.Error())
		return nil, err
	}
	if cached {
		o, err := cl.bus.CheckCache(ctx, key)
		if err != nil {
			return nil, err
		}
		if o.Resolved() {
			metrics.ClientCacheHits.WithLabelValues(m.Name).Inc()
			cl.rpclog(log_RESPONSE, m.Name, id, "from cache")
			return resolvedResult(cl.bus, id, o), nil
		}
	}

	data, err := cl.bus.EncodeCall(&redisbus.Call{Args: args, Kwargs: kwargs, ResultID: id, Submitted: time.Now()})
	if err != nil {
		var be *redisbus.BindingError
		if errors.As(err, &be) {
			be.Method = m.Name
		}
		cl.rpclog(log_ERROR, m.Name, id, err.Error())
		return nil, err
	}
	if err := cl.bus.Broker().Enqueue(ctx, cl.bus.CallsKey(m.Name), data); err != nil {
		cl.rpclog(log_ERROR, m.Name, id, err.Error())
		return nil, err
	}
	metrics.CallsSubmitted.WithLabelValues(m.Name).Inc()
	cl.rpclog(log_REQUEST, m.Name, id, len(data), "B")

	return pendingResult(cl.bus, id), nil
}

// ClearCache deletes the cached outcome of a call to method with these arguments, so that
// the next such call is executed again. It is a no-op for uncached methods.
func (cl *Client) ClearCache(ctx context.Context, method string, args []any, kwargs map[string]any) error {
	m, err := cl.bus.Lookup(ctx, method)
	if err != nil {
		return err
	}
	return cl.bus.ClearCache(ctx, m, args, kwargs)
}

// Method returns a handle on a registered method.
func (cl *Client) Method(ctx context.Context, name string) (*Method, error) {
	m, err := cl.bus.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return &Method{client: cl, record: m}, nil
}

func (cl *Client) logf(ll int, what ...any) {
	if log.IsLoggingEnabled(ll) {
		log.Log(ll, append([]any{cl.name}, what...)...)
	}
}
