package client

import (
	"github.com/dermesser/redisbus/log"
)

type rpclog_type int

const (
	log_REQUEST rpclog_type = iota
	log_RESPONSE
	log_ERROR
)

func (t rpclog_type) String() string {
	switch t {
	case log_REQUEST:
		return "REQ"
	case log_RESPONSE:
		return "RSP"
	case log_ERROR:
		return "ERR"
	default:
		return ""
	}
}

func (cl *Client) rpclog(t rpclog_type, method, id string, what ...any) {
	ll := log.LOGLEVEL_DEBUG
	if t == log_ERROR {
		ll = log.LOGLEVEL_WARNINGS
	}
	cl.logf(ll, append([]any{t.String(), method + "/" + id}, what...)...)
}
