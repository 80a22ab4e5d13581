package server

import (
	"context"
	"time"

	"github.com/dermesser/redisbus"
	"github.com/dermesser/redisbus/log"
)

/*
An execution is one call taken from a queue, from decoding to publishing its outcome.
*/
type execution struct {
	method *redisbus.Method
	call   *redisbus.Call
	info   *redisbus.CallInfo

	// raw size of the call record
	size int
	// 0 = None, 1 = logged request, 2 = logged response
	log_state int
}

func (w *Worker) newExecution(m *redisbus.Method, call *redisbus.Call, size int) *execution {
	e := &execution{method: m, call: call, size: size}
	e.info = &redisbus.CallInfo{
		Method:    m.Name,
		ResultID:  call.ResultID,
		Worker:    w.machine_name,
		Submitted: call.Submitted,
		Received:  time.Now(),
	}
	if log.IsLoggingEnabled(log.LOGLEVEL_INFO) {
		e.info.Token = log.GetLogToken()
	}
	return e
}

// targetContext is passed to the target.
func (e *execution) targetContext(ctx context.Context) context.Context {
	return redisbus.WithCallInfo(ctx, e.info)
}
