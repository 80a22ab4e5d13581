package client

import (
	"context"

	"github.com/dermesser/redisbus"
)

// Method is a handle on one registered method, looked up once.
type Method struct {
	client *Client
	record *redisbus.Method
}

func (m *Method) Name() string {
	return m.record.Name
}

// Record returns the stored method record.
func (m *Method) Record() *redisbus.Method {
	return m.record
}

// Run submits a call with positional arguments.
func (m *Method) Run(ctx context.Context, args ...any) (*AsyncResult, error) {
	return m.client.submit(ctx, m.record, args, nil)
}

// RunKw submits a call with positional and keyword arguments.
func (m *Method) RunKw(ctx context.Context, kwargs map[string]any, args ...any) (*AsyncResult, error) {
	return m.client.submit(ctx, m.record, args, kwargs)
}

// Call submits a call and waits for its result.
func (m *Method) Call(ctx context.Context, args ...any) (any, error) {
	r, err := m.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx)
}

// ClearCache deletes the cached outcome for these arguments.
func (m *Method) ClearCache(ctx context.Context, args []any, kwargs map[string]any) error {
	return m.client.bus.ClearCache(ctx, m.record, args, kwargs)
}
