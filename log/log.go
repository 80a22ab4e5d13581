package log

import (
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"
)

const (
	// Log absolutely nothing
	LOGLEVEL_NONE int = iota
	// Log situations that are not expected to happen and
	// are difficult to handle (e.g. a broker that went away in the middle of a call)
	LOGLEVEL_ERRORS
	// Log non-critical situations that might happen, but shouldn't (e.g. a target that returned a fault)
	LOGLEVEL_WARNINGS
	// Log situations that are expected, but important for the operation
	LOGLEVEL_INFO
	// Log everything
	LOGLEVEL_DEBUG
)

var (
	mx       sync.RWMutex
	logger   *zap.SugaredLogger = zap.NewNop().Sugar()
	loglevel int                = LOGLEVEL_WARNINGS
)

var loglevel_strings []string = []string{"[NON]", "[ERR]", "[WRN]", "[INF]", "[DBG]"}

func loglevel_to_string(ll int) string {
	if ll < 0 || ll >= len(loglevel_strings) {
		return "[???]"
	}
	return loglevel_strings[ll]
}

// Set the global bus log level
func SetLoglevel(ll int) {
	mx.Lock()
	defer mx.Unlock()
	loglevel = ll
}

// Replace the logger all bus packages write to. A nil logger disables output.
func SetLogger(l *zap.Logger) {
	mx.Lock()
	defer mx.Unlock()
	if l == nil {
		logger = zap.NewNop().Sugar()
		return
	}
	logger = l.Named("redisbus").Sugar()
}

// Performance-enhancer: Prevent unnecessary log calls
func IsLoggingEnabled(ll int) bool {
	mx.RLock()
	defer mx.RUnlock()
	return loglevel >= ll
}

// Log what at level ll. The arguments are formatted like fmt.Sprintln does.
func Log(ll int, what ...interface{}) {
	mx.RLock()
	l, current := logger, loglevel
	mx.RUnlock()

	if ll > current || ll == LOGLEVEL_NONE {
		return
	}

	msg := fmt.Sprintln(what...)
	msg = msg[:len(msg)-1]

	switch ll {
	case LOGLEVEL_ERRORS:
		l.Error(msg)
	case LOGLEVEL_WARNINGS:
		l.Warn(msg)
	case LOGLEVEL_INFO:
		l.Info(msg)
	default:
		l.Debugw(msg, "level", loglevel_to_string(ll))
	}
}

func mapToChar(i int) byte {
	i = i % (10 + 26 + 26)
	if i < 10 {
		return byte('0' + i)
	} else if i < 10+26 {
		return byte('A' + i - 10)
	} else if i < 10+26+26 {
		return byte('a' + i - 10 - 26)
	}
	return byte('_')
}

// Returns a short random alphanumeric string.
// This is used to tag calls in order to track them across log lines.
func GetLogToken() string {
	str := make([]byte, 6)
	for i := range str {
		str[i] = mapToChar(rand.Int())
	}
	return string(str)
}
