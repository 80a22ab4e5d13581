package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/dermesser/redisbus"
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

// Longest argument or result rendering in log lines.
const logValueLimit = 256

func transformRuneToPrintable(r rune) rune {
	if r < 32 || r == 127 {
		return '.'
	}
	return r
}

func logString(str string) string {
	if len(str) > logValueLimit {
		str = str[:logValueLimit] + "..."
	}
	return strings.Map(transformRuneToPrintable, str)
}

func (e *execution) idString() string {
	return fmt.Sprintf("%s %s/%s %d B [queued %s]", e.info.Token, e.method.Name, e.call.ResultID,
		e.size, e.info.QueueTime().Round(time.Microsecond))
}

func (e *execution) rpclogRequest() {
	if e.log_state != 0 || !log.IsLoggingEnabled(log.LOGLEVEL_INFO) {
		return
	}
	log.Log(log.LOGLEVEL_INFO, log_REQUEST.String(), e.idString(),
		logString(fmt.Sprint(e.call.Args, e.call.Kwargs)))
	e.log_state++
}

func (e *execution) rpclogOutcome(bus *redisbus.Bus, o redisbus.Outcome, how string) {
	if e.log_state != 1 || !log.IsLoggingEnabled(log.LOGLEVEL_INFO) {
		return
	}
	if !o.IsOk() {
		log.Log(log.LOGLEVEL_INFO, log_RESPONSE.String(), e.idString(), how, "fault:", logString(o.Fault().Error()))
	} else if log.IsLoggingEnabled(log.LOGLEVEL_DEBUG) {
		v, _ := bus.Result(o)
		log.Log(log.LOGLEVEL_DEBUG, log_RESPONSE.String(), e.idString(), how, logString(fmt.Sprint(v)))
	} else {
		log.Log(log.LOGLEVEL_INFO, log_RESPONSE.String(), e.idString(), how)
	}
	e.log_state++
}

func (e *execution) rpclogErr(err error) {
	log.Log(log.LOGLEVEL_ERRORS, log_ERROR.String(), e.idString(), err.Error())
}
