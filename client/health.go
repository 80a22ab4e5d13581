package client

import (
	"context"
	"fmt"
	"time"

	smgr "github.com/dermesser/redisbus/securitymanager"
	"github.com/dermesser/redisbus/server"
	zmq "github.com/pebbe/zmq4"
)

const defaultProbeTimeout = 5 * time.Second

// HealthStatus is a worker's answer to a probe.
type HealthStatus struct {
	Status string
	Detail string
}

func (s HealthStatus) Healthy() bool {
	return s.Status == server.StatusOK
}

/*
Probe sends procedure (server.ProcHealth, server.ProcPing or server.ProcStats) to a
worker's health endpoint. security_manager must be set if the endpoint uses CURVE.
Without a deadline on ctx, the probe times out after 5 seconds.
*/
func Probe(ctx context.Context, endpoint, procedure string, security_manager *smgr.ClientSecurityManager) (HealthStatus, error) {
	timeout := defaultProbeTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
		if timeout <= 0 {
			return HealthStatus{}, context.DeadlineExceeded
		}
	}

	sock, err := zmq.NewSocket(zmq.REQ)
	if err != nil {
		return HealthStatus{}, err
	}
	defer sock.Close()

	sock.SetLinger(0)
	sock.SetSndtimeo(timeout)
	sock.SetRcvtimeo(timeout)

	if err := security_manager.ApplyToClientSocket(sock); err != nil {
		return HealthStatus{}, err
	}
	if err := sock.Connect(endpoint); err != nil {
		return HealthStatus{}, err
	}

	if _, err := sock.SendMessage(procedure); err != nil {
		return HealthStatus{}, err
	}
	msg, err := sock.RecvMessageBytes(0)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("no answer from %s: %w", endpoint, err)
	}

	status, detail, err := server.ParseHealthReply(msg)
	if err != nil {
		return HealthStatus{}, err
	}
	return HealthStatus{Status: status, Detail: detail}, nil
}
