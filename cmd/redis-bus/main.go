// Command redis-bus registers methods, submits calls and runs workers on a bus.
//
// The sample targets of the playground package are linked in, so that
//
//	redis-bus register playground.hello
//	redis-bus serve &
//	redis-bus call hello Joe
//
// works against a local Redis out of the box.
package main

import (
	"os"

	_ "github.com/dermesser/redisbus/examples/playground"
)

func main() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}
