package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dermesser/redisbus/client"
	"github.com/spf13/cobra"
)

const (
	kwFlag      = "kw"
	timeoutFlag = "timeout"
	noWaitFlag  = "no-wait"
)

func newCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call {method} [args...]",
		Short: "Submit a call and print its result",
		Long: `Call submits a call to a method and waits for its result, which is printed as JSON.
Arguments are parsed as JSON, falling back to plain strings. Keyword arguments are
given as --kw name=value, with values parsed the same way.

A result served from the cache is printed without waiting for a worker.`,
		Example: strings.TrimSpace(`
call hello
call hello --kw username=alice
call sum 1 2
call uuid 42 --no-wait
`),
		Args: cobra.MinimumNArgs(1),
		RunE: call,
	}
	cmd.Flags().StringArray(kwFlag, nil, "keyword argument as name=value")
	cmd.Flags().Duration(timeoutFlag, 30*time.Second, "time to wait for the result; 0 waits forever")
	cmd.Flags().Bool(noWaitFlag, false, "print the result id instead of waiting")
	return cmd
}

func newResultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "result {id}",
		Short: "Wait for the result of a submitted call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			return printResult(cmd, client.ForID(a.bus, args[0]))
		},
	}
	cmd.Flags().Duration(timeoutFlag, 30*time.Second, "time to wait for the result; 0 waits forever")
	return cmd
}

func newClearCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-cache {method} [args...]",
		Short: "Delete the cached outcome of a call",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			kws, _ := cmd.Flags().GetStringArray(kwFlag)
			kwargs, err := parseKwargs(kws)
			if err != nil {
				return err
			}
			if err := a.client().ClearCache(cmd.Context(), args[0], parseArgs(args[1:]), kwargs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared cache of %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringArray(kwFlag, nil, "keyword argument as name=value")
	return cmd
}

func call(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	kws, err := cmd.Flags().GetStringArray(kwFlag)
	if err != nil {
		return fmt.Errorf("getting kw flag failed: %w", err)
	}
	kwargs, err := parseKwargs(kws)
	if err != nil {
		return err
	}

	res, err := a.client().Submit(cmd.Context(), args[0], parseArgs(args[1:]), kwargs)
	if err != nil {
		return err
	}
	if noWait, _ := cmd.Flags().GetBool(noWaitFlag); noWait {
		fmt.Fprintln(cmd.OutOrStdout(), res.ID)
		return nil
	}
	return printResult(cmd, res)
}

func printResult(cmd *cobra.Command, res *client.AsyncResult) error {
	timeout, err := cmd.Flags().GetDuration(timeoutFlag)
	if err != nil {
		return fmt.Errorf("getting timeout flag failed: %w", err)
	}
	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	v, err := res.Get(ctx)
	if err != nil {
		return err
	}
	out, err := json.Marshal(jsonable(v))
	if err != nil {
		return fmt.Errorf("result is not printable: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func parseArgs(raw []string) []any {
	args := make([]any, 0, len(raw))
	for _, s := range raw {
		args = append(args, parseValue(s))
	}
	return args
}

func parseKwargs(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	kwargs := make(map[string]any, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("keyword argument %q is not name=value", kv)
		}
		kwargs[name] = parseValue(value)
	}
	return kwargs, nil
}

// parseValue reads s as JSON. Anything that is not valid JSON is a string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

// jsonable converts decoded CBOR maps, which may have non-string keys.
func jsonable(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = jsonable(e)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, e := range t {
			l[i] = jsonable(e)
		}
		return l
	case []byte:
		return string(t)
	}
	return v
}
