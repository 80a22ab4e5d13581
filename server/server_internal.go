package server

import (
	"context"
	"time"

	"github.com/dermesser/redisbus"
	"github.com/dermesser/redisbus/log"
	"github.com/dermesser/redisbus/metrics"
)

/*
This file has the internal functions, the actual execution of calls; server.go remains
uncluttered and with only public functions.
*/

/*
executeCall runs one call taken from the queue of m and publishes its outcome.

A cached outcome written after the call was enqueued is adopted without executing. Faults
of the target, including panics, become the outcome. Only broker failures are returned.
*/
func (w *Worker) executeCall(ctx context.Context, m *redisbus.Method, data []byte) error {
	call, err := w.bus.DecodeCall(data)
	if err != nil {
		if call == nil || call.ResultID == "" {
			// Without a result id there is nobody to answer.
			log.Log(log.LOGLEVEL_ERRORS, "Dropped undecodable call to", m.Name, ":", err.Error())
			metrics.CallsExecuted.WithLabelValues(m.Name, metrics.OutcomeFault).Inc()
			return nil
		}
		e := w.newExecution(m, call, len(data))
		e.rpclogRequest()
		o := redisbus.Err(redisbus.NewFault(err))
		e.rpclogOutcome(w.bus, o, "undecodable")
		return w.publish(context.WithoutCancel(ctx), e, o, metrics.OutcomeFault)
	}

	w.busy.Add(1)
	metrics.BusyLoops.Inc()
	defer func() {
		w.busy.Add(-1)
		metrics.BusyLoops.Dec()
	}()

	e := w.newExecution(m, call, len(data))
	e.rpclogRequest()
	metrics.QueueLatencySeconds.WithLabelValues(m.Name).Observe(e.info.QueueTime().Seconds())

	// Results must be written even if serving is being cancelled.
	wctx := context.WithoutCancel(ctx)

	key, cached, err := w.bus.ResolveCacheSlot(m, call.Args, call.Kwargs)
	if err != nil {
		o := redisbus.Err(redisbus.NewFault(err))
		e.rpclogOutcome(w.bus, o, "unbound")
		return w.publish(wctx, e, o, metrics.OutcomeFault)
	}

	if cached {
		o, err := w.bus.CheckCache(wctx, key)
		if err != nil {
			e.rpclogErr(err)
			return err
		}
		if o.Resolved() {
			e.rpclogOutcome(w.bus, o, "cached")
			return w.publish(wctx, e, o, metrics.OutcomeCached)
		}
	}

	o, label := w.invoke(ctx, e)
	e.rpclogOutcome(w.bus, o, "executed")

	if cached {
		if err := w.bus.StoreCache(wctx, key, o); err != nil {
			e.rpclogErr(err)
			return err
		}
	}
	return w.publish(wctx, e, o, label)
}

func (w *Worker) publish(ctx context.Context, e *execution, o redisbus.Outcome, label string) error {
	if err := w.bus.PublishResult(ctx, e.call.ResultID, o); err != nil {
		e.rpclogErr(err)
		return err
	}
	w.executed.Add(1)
	metrics.CallsExecuted.WithLabelValues(e.method.Name, label).Inc()
	return nil
}

// invoke resolves, binds and runs the target. It always produces an outcome.
func (w *Worker) invoke(ctx context.Context, e *execution) (redisbus.Outcome, string) {
	t, err := e.method.Resolve()
	if err != nil {
		return redisbus.Err(redisbus.NewFault(err)), metrics.OutcomeFault
	}
	args, err := redisbus.Bind(t.Params, e.call.Args, e.call.Kwargs)
	if err != nil {
		return redisbus.Err(redisbus.NewFault(err)), metrics.OutcomeFault
	}

	start := time.Now()
	v, err := run(e.targetContext(ctx), t, args)
	metrics.SetDurationObserver(metrics.ExecutionSeconds.WithLabelValues(e.method.Name), start)

	if err != nil {
		f := redisbus.NewFault(err)
		if f.Panicked() {
			log.Log(log.LOGLEVEL_ERRORS, "Target of", e.method.Name, "panicked:", f.Message)
			return redisbus.Err(f), metrics.OutcomePanic
		}
		return redisbus.Err(f), metrics.OutcomeFault
	}

	o, err := w.bus.OkValue(v)
	if err != nil {
		return redisbus.Err(redisbus.NewFault(err)), metrics.OutcomeFault
	}
	return o, metrics.OutcomeOk
}

func run(ctx context.Context, t *redisbus.Target, args redisbus.Args) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, redisbus.PanicFault(r)
		}
	}()
	return t.Func(ctx, args)
}
