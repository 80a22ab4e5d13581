package client

import (
	"context"
	"sync"

	"github.com/dermesser/redisbus"
)

// Callback receives the result of a call, as returned by AsyncResult.Get().
type Callback func(any, error)

/*
AsyncResult is the handle on the outcome of a submitted call. The outcome is fetched from
the broker at most once per handle and kept afterwards; any number of handles (in any
number of processes) can read the same call's outcome.
*/
type AsyncResult struct {
	ID  string
	bus *redisbus.Bus

	lock    sync.Mutex
	outcome redisbus.Outcome
}

func pendingResult(bus *redisbus.Bus, id string) *AsyncResult {
	return &AsyncResult{ID: id, bus: bus}
}

func resolvedResult(bus *redisbus.Bus, id string, o redisbus.Outcome) *AsyncResult {
	return &AsyncResult{ID: id, bus: bus, outcome: o}
}

// ForID returns a handle on the call with the given result id, e.g. one submitted by
// another process.
func ForID(bus *redisbus.Bus, id string) *AsyncResult {
	return pendingResult(bus, id)
}

// Resolved reports whether the outcome is known locally, so that Get() will not block.
func (r *AsyncResult) Resolved() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.outcome.Resolved()
}

/*
Outcome waits for the call's outcome. A deadline on ctx bounds the wait; once it passed,
redisbus.ErrTimeout is returned. Without a deadline, Outcome waits as long as it takes.
*/
func (r *AsyncResult) Outcome(ctx context.Context) (redisbus.Outcome, error) {
	r.lock.Lock()
	o := r.outcome
	r.lock.Unlock()
	if o.Resolved() {
		return o, nil
	}

	o, err := r.bus.AwaitResult(ctx, r.ID)
	if err != nil {
		return redisbus.Unresolved, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	if !r.outcome.Resolved() {
		r.outcome = o
	}
	return r.outcome, nil
}

// Get waits for the call and returns its value, or the *redisbus.Fault the target returned.
func (r *AsyncResult) Get(ctx context.Context) (any, error) {
	o, err := r.Outcome(ctx)
	if err != nil {
		return nil, err
	}
	return r.bus.Result(o)
}

// Decode waits for the call and decodes its value into v.
func (r *AsyncResult) Decode(ctx context.Context, v any) error {
	o, err := r.Outcome(ctx)
	if err != nil {
		return err
	}
	return r.bus.DecodeResult(o, v)
}

// Then calls cb with the result from a new goroutine, once it is available.
func (r *AsyncResult) Then(ctx context.Context, cb Callback) {
	go func() {
		cb(r.Get(ctx))
	}()
}
