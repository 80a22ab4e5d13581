/*
Redisbus is a remote procedure call bus on top of a shared key-value broker (Redis).
Clients submit calls by method name, workers pick them up and execute them, and results
are retrieved asynchronously. Methods can cache their results under a key derived from
their arguments.

Executable logic lives in targets. A target is registered in the process-wide target
table under a reference, usually from an init() function, so that every binary linking
the package can resolve it:

	func init() {
		redisbus.RegisterTarget("playground.hello", redisbus.Target{
			Params: []redisbus.Param{redisbus.Optional("username", "world")},
			Func: func(ctx context.Context, args redisbus.Args) (any, error) {
				return "Hello, " + args.String("username"), nil
			},
		})
	}

A method is a named, broker-wide record pointing at a target:

	bus.Register(ctx, "playground.hello")
	bus.Register(ctx, "playground.uuid", redisbus.WithCacheKey("{seed}"))

The client package submits calls and waits for results, the server package runs workers.

All state lives in the broker, under keys prefixed with the bus name:

	<name>:methods                  hash: method name -> {"fn": target, "ck": cache key template}
	<name>:calls:<method>           FIFO list of call records
	<name>:results:<result id>      single-value cell with the outcome of one call
	<name>:cache:<method>:<key>     cached outcome
*/
package redisbus
