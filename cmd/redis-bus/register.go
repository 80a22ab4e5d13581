package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dermesser/redisbus"
	"github.com/spf13/cobra"
)

const (
	nameFlag     = "name"
	cacheKeyFlag = "cache-key"
)

func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register {target}",
		Short: "Register a method for a linked target",
		Long: `Register stores a method record for a target linked into this binary. The method
name defaults to the last segment of the target, with the configured prefix.`,
		Example: strings.TrimSpace(`
register playground.hello
register playground.uuid --cache-key '{seed}'
register playground.sum --name add --cache-key '{a}/{b}'
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			name, _ := cmd.Flags().GetString(nameFlag)
			cacheKey, _ := cmd.Flags().GetString(cacheKeyFlag)

			var opts []redisbus.RegisterOption
			if name != "" {
				opts = append(opts, redisbus.WithMethodName(name))
			}
			if cacheKey != "" {
				opts = append(opts, redisbus.WithCacheKey(cacheKey))
			}

			m, err := a.bus.Register(cmd.Context(), args[0], opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s -> %s\n", m.Name, m.Target)
			return nil
		},
	}
	cmd.Flags().String(nameFlag, "", "method name")
	cmd.Flags().String(cacheKeyFlag, "", "cache key template, e.g. '{user}'")
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [pattern]",
		Short: "List registered methods",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			pattern := "*"
			if len(args) > 0 {
				pattern = args[0]
			}
			names, err := a.bus.List(cmd.Context(), pattern)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "METHOD\tTARGET\tCACHE KEY\tQUEUED")
			for _, name := range names {
				m, err := a.bus.Lookup(cmd.Context(), name)
				if err != nil {
					return err
				}
				n, err := a.bus.Broker().Len(cmd.Context(), a.bus.CallsKey(name))
				if err != nil {
					return err
				}
				ck := m.CacheKey
				if ck == "" {
					ck = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", m.Name, m.Target, ck, n)
			}
			return tw.Flush()
		},
	}
	return cmd
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all keys of the bus",
		Long:  "Reset deletes all methods, pending calls, results and cached outcomes of the bus.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return fmt.Errorf("refusing to reset bus without --yes")
			}
			a := appFrom(cmd)
			if err := a.bus.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset bus %s\n", a.bus.Name())
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "confirm the reset")
	return cmd
}
