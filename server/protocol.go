package server

import (
	"fmt"
	"strconv"
)

// Health endpoint protocol. A request is a single frame naming the procedure; a reply
// has two frames, a status and a detail.

const (
	ProcHealth = "Health"
	ProcPing   = "Ping"
	ProcStats  = "Stats"
)

const (
	StatusOK       = "OK"
	StatusLameduck = "LAMEDUCK"
	StatusError    = "ERROR"
)

type healthRequest struct {
	procedure string
}

func parseHealthRequest(msg [][]byte) (healthRequest, error) {
	if len(msg) != 1 {
		return healthRequest{}, fmt.Errorf("health request has %d != 1 frames", len(msg))
	}
	return healthRequest{procedure: string(msg[0])}, nil
}

type healthReply struct {
	status string
	detail string
}

func (r healthReply) serialize() [][]byte {
	return [][]byte{[]byte(r.status), []byte(r.detail)}
}

// ParseHealthReply decodes a reply received by a health probe.
func ParseHealthReply(msg [][]byte) (status, detail string, err error) {
	if len(msg) != 2 {
		return "", "", fmt.Errorf("health reply has %d != 2 frames", len(msg))
	}
	return string(msg[0]), string(msg[1]), nil
}

func statsDetail(executed uint64, busy int) string {
	return "executed=" + strconv.FormatUint(executed, 10) + " busy=" + strconv.Itoa(busy)
}
