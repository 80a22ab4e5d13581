package server

/*
* This file implements the health endpoint of a worker: a ZeroMQ REP socket answering
* Health (negative in lameduck mode), Ping and Stats.
 */

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/dermesser/redisbus/log"
	smgr "github.com/dermesser/redisbus/securitymanager"
	zmq "github.com/pebbe/zmq4"
)

// How often Serve checks for cancellation while no probe arrives.
const healthPollInterval = 250 * time.Millisecond

type HealthServer struct {
	worker *Worker
	sock   *zmq.Socket
	addrs  []string
}

/*
NewHealthServer binds a health endpoint for w to the given ZeroMQ endpoints, e.g.
"tcp://*:7701" or "ipc:///run/redis-bus.sock".

security_manager adds CURVE and IP "authentication" security to the endpoint. If it's nil,
do not add security.
*/
func NewHealthServer(w *Worker, security_manager *smgr.ServerSecurityManager, bindurls ...string) (*HealthServer, error) {
	if len(bindurls) == 0 {
		return nil, errors.New("health server without endpoint")
	}

	sock, err := zmq.NewSocket(zmq.REP)
	if err != nil {
		log.Log(log.LOGLEVEL_ERRORS, "Error when creating REP socket:", err.Error())
		return nil, err
	}
	sock.SetRcvtimeo(healthPollInterval)
	sock.SetSndtimeo(time.Second)
	sock.SetLinger(0)

	if err := security_manager.ApplyToServerSocket(sock); err != nil {
		sock.Close()
		return nil, err
	}

	for _, bindurl := range bindurls {
		log.Log(log.LOGLEVEL_INFO, "Binding health endpoint to", bindurl)
		if err := sock.Bind(bindurl); err != nil {
			log.Log(log.LOGLEVEL_ERRORS, "Error when binding REP socket:", err.Error())
			sock.Close()
			return nil, err
		}
	}
	return &HealthServer{worker: w, sock: sock, addrs: bindurls}, nil
}

/*
Serve answers probes until ctx is cancelled, then closes the socket. The socket is not
safe for concurrent use: call Serve once, from one goroutine.
*/
func (hs *HealthServer) Serve(ctx context.Context) error {
	defer hs.sock.Close()

	for ctx.Err() == nil {
		msg, err := hs.sock.RecvMessageBytes(0)
		if err != nil {
			if zmq.AsErrno(err) == zmq.Errno(syscall.EAGAIN) {
				continue
			}
			log.Log(log.LOGLEVEL_ERRORS, "Error when receiving health probe:", err.Error())
			return err
		}

		reply := hs.handle(msg)
		if _, err := hs.sock.SendMessage(reply.serialize()); err != nil {
			log.Log(log.LOGLEVEL_WARNINGS, "Could not answer health probe:", err.Error())
		}
	}
	return nil
}

func (hs *HealthServer) handle(msg [][]byte) healthReply {
	rq, err := parseHealthRequest(msg)
	if err != nil {
		return healthReply{status: StatusError, detail: err.Error()}
	}

	switch rq.procedure {
	case ProcHealth:
		if hs.worker.Lameduck() {
			return healthReply{status: StatusLameduck, detail: "Lameduck mode"}
		}
		return healthReply{status: StatusOK}
	case ProcPing:
		return healthReply{status: StatusOK, detail: "pong"}
	case ProcStats:
		return healthReply{status: StatusOK, detail: statsDetail(hs.worker.Executed(), hs.worker.Busy())}
	default:
		return healthReply{status: StatusError, detail: "unknown procedure " + rq.procedure}
	}
}
