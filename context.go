package redisbus

import (
	"context"
	"time"
)

// CallInfo describes the call a target is executing for.
type CallInfo struct {
	Method   string
	ResultID string
	// Log token of the executing worker, shared by all log lines of this call.
	Token string
	// Name of the worker machine, if it was configured.
	Worker    string
	Submitted time.Time
	Received  time.Time
}

type callInfoKey struct{}

// WithCallInfo is used by workers to attach the current call to the ctx passed to a target.
func WithCallInfo(ctx context.Context, ci *CallInfo) context.Context {
	return context.WithValue(ctx, callInfoKey{}, ci)
}

// CallInfoFromContext returns the call a target was invoked for, or nil outside a worker.
func CallInfoFromContext(ctx context.Context) *CallInfo {
	ci, _ := ctx.Value(callInfoKey{}).(*CallInfo)
	return ci
}

// QueueTime is how long the call waited before a worker took it.
func (ci *CallInfo) QueueTime() time.Duration {
	if ci.Submitted.IsZero() {
		return 0
	}
	return ci.Received.Sub(ci.Submitted)
}
