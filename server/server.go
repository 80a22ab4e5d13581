package server

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dermesser/redisbus"
	"github.com/dermesser/redisbus/broker"
	"github.com/dermesser/redisbus/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Upper bound of a single blocking broker wait. Serve re-issues the wait after it, which
// keeps the loops responsive to cancellation while idling.
const pollInterval = 2 * time.Second

/*
A Worker takes calls from the queues of registered methods and executes them. The methods
it serves are chosen by a glob pattern over method names; their targets must be linked
into the worker binary.

Workers share nothing but the broker: any number of them, in any number of processes,
can serve the same methods. Every call is taken by exactly one worker.
*/
type Worker struct {
	bus *redisbus.Bus

	concurrency  int
	limiter      *rate.Limiter
	idleTimeout  time.Duration
	machine_name string

	// Respond "no" to healthchecks
	lameduck_state atomic.Bool
	executed       atomic.Uint64
	busy           atomic.Int32
}

type Option func(*Worker)

// WithConcurrency runs n serve loops in parallel. The default is 1.
func WithConcurrency(n int) Option {
	return func(w *Worker) {
		if n < 1 {
			n = 1
		}
		w.concurrency = n
	}
}

// WithRateLimit limits the executions per second, shared by all loops of the worker.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(w *Worker) {
		if burst < 1 {
			burst = 1
		}
		w.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithIdleTimeout makes Serve return after no call arrived for d. The default of 0
// serves until the context is cancelled.
func WithIdleTimeout(d time.Duration) Option {
	return func(w *Worker) {
		w.idleTimeout = d
	}
}

// WithMachineName sets the worker name passed to targets in their CallInfo.
func WithMachineName(name string) Option {
	return func(w *Worker) {
		w.machine_name = name
	}
}

func NewWorker(bus *redisbus.Bus, opts ...Option) *Worker {
	w := &Worker{bus: bus, concurrency: 1}
	for _, o := range opts {
		o(w)
	}
	return w
}

/*
Set lameduck mode: health checks fail, while calls are still executed. This gives
supervisors time to start a replacement before the worker is stopped.
*/
func (w *Worker) SetLameduck(is_lameduck bool) {
	w.lameduck_state.Store(is_lameduck)
}

func (w *Worker) Lameduck() bool {
	return w.lameduck_state.Load()
}

// Executed returns the number of calls this worker completed.
func (w *Worker) Executed() uint64 {
	return w.executed.Load()
}

// Busy returns the number of loops currently executing a call.
func (w *Worker) Busy() int {
	return int(w.busy.Load())
}

func (w *Worker) pattern(pattern string) string {
	if pattern == "" {
		return w.bus.ServePattern()
	}
	return pattern
}

/*
ServeOnce drains the queues of all methods matching pattern: calls are taken oldest
first and executed one by one, until every queue was found empty. An empty pattern
means the bus' serve pattern.

Calls that arrive while draining may or may not be executed.
*/
func (w *Worker) ServeOnce(ctx context.Context, pattern string) error {
	names, err := w.bus.List(ctx, w.pattern(pattern))
	if err != nil {
		return err
	}

	for _, name := range names {
		m, err := w.bus.Lookup(ctx, name)
		if err != nil {
			return err
		}
		for {
			data, err := w.bus.Broker().Dequeue(ctx, w.bus.CallsKey(name))
			if errors.Is(err, broker.ErrNil) {
				break
			} else if err != nil {
				return err
			}
			if err := w.throttle(ctx); err != nil {
				log.Log(log.LOGLEVEL_WARNINGS, "Rate limiter:", err.Error())
			}
			if err := w.executeCall(ctx, m, data); err != nil {
				return err
			}
		}
	}
	return nil
}

/*
Serve executes calls to the methods matching pattern until ctx is cancelled, and then
returns nil. All queues are waited on at once; whichever has data first is served.
The set of methods is fixed when Serve starts.

It fails with a *redisbus.ConfigError if no registered method matches pattern, and with
the broker's error if the broker becomes unavailable.
*/
func (w *Worker) Serve(ctx context.Context, pattern string) error {
	pattern = w.pattern(pattern)
	names, err := w.bus.List(ctx, pattern)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return &redisbus.ConfigError{Message: fmt.Sprintf("nothing to serve: no method matches %q", pattern)}
	}

	methods := make(map[string]*redisbus.Method, len(names))
	keys := make([]string, 0, len(names))
	for _, name := range names {
		m, err := w.bus.Lookup(ctx, name)
		if err != nil {
			return err
		}
		methods[name] = m
		keys = append(keys, w.bus.CallsKey(name))
	}

	log.Log(log.LOGLEVEL_INFO, "Serving", names, "with", w.concurrency, "loops")

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			return w.serveLoop(gctx, methods, keys)
		})
	}
	err = g.Wait()
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return nil
	}
	return err
}

func (w *Worker) serveLoop(ctx context.Context, methods map[string]*redisbus.Method, keys []string) error {
	idleSince := time.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}

		key, data, err := w.bus.Broker().DequeueAny(ctx, pollInterval, keys...)
		if errors.Is(err, broker.ErrTimeout) {
			if w.idleTimeout > 0 && time.Since(idleSince) >= w.idleTimeout {
				log.Log(log.LOGLEVEL_INFO, "No calls for", w.idleTimeout, "- stopping serve loop")
				return nil
			}
			continue
		} else if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Log(log.LOGLEVEL_ERRORS, "Error when waiting for calls:", err.Error())
			return err
		}

		name, _ := w.bus.MethodFromCallsKey(key)
		m, ok := methods[name]
		if !ok {
			log.Log(log.LOGLEVEL_ERRORS, "Dropped call from unexpected queue", key)
			continue
		}

		if err := w.throttle(ctx); err != nil {
			// The call is taken already; execute it anyway.
			log.Log(log.LOGLEVEL_WARNINGS, "Rate limiter:", err.Error())
		}
		if err := w.executeCall(ctx, m, data); err != nil {
			return err
		}
		idleSince = time.Now()
	}
}

func (w *Worker) throttle(ctx context.Context) error {
	if w.limiter == nil {
		return nil
	}
	return w.limiter.Wait(ctx)
}
