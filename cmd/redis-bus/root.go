package main

import (
	"context"
	"fmt"

	"github.com/dermesser/redisbus"
	"github.com/dermesser/redisbus/broker"
	"github.com/dermesser/redisbus/client"
	"github.com/dermesser/redisbus/config"
	"github.com/dermesser/redisbus/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	configFlag   = "config"
	redisFlag    = "redis"
	busNameFlag  = "bus"
	logLevelFlag = "loglevel"
)

// app is the state shared by all subcommands, set up before any of them runs.
type app struct {
	cfg    *config.Config
	broker *broker.Redis
	bus    *redisbus.Bus
	logger *zap.Logger
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

func (a *app) client() *client.Client {
	return client.New(a.bus, client.WithClientName("redis-bus"))
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redis-bus [sub-command]",
		Short: "Remote procedure calls over Redis",
		Long: `redis-bus manages a bus of remote procedure calls on Redis: methods are registered
by name, calls are queued per method and executed by workers, and results are
kept in Redis for a while.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
		SilenceUsage:       true,
	}

	cmd.PersistentFlags().String(configFlag, "", "configuration file (default: ./redis-bus.yaml, ~/.config/redis-bus/, /etc/redis-bus/)")
	cmd.PersistentFlags().StringSlice(redisFlag, nil, "Redis address(es), overriding the configuration")
	cmd.PersistentFlags().String(busNameFlag, "", "bus name, overriding the configuration")
	cmd.PersistentFlags().String(logLevelFlag, "", "log level (none, error, warn, info, debug), overriding the configuration")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newDrainCmd())
	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCallCmd())
	cmd.AddCommand(newResultCmd())
	cmd.AddCommand(newClearCacheCmd())
	cmd.AddCommand(newResetCmd())
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newKeygenCmd())
	return cmd
}

func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString(configFlag)
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if addrs, _ := cmd.Flags().GetStringSlice(redisFlag); len(addrs) > 0 {
		cfg.Redis.Addrs = addrs
	}
	if name, _ := cmd.Flags().GetString(busNameFlag); name != "" {
		cfg.Bus.Name = name
	}
	if lvl, _ := cmd.Flags().GetString(logLevelFlag); lvl != "" {
		cfg.Log.Level = lvl
	}

	logger, err := log.Setup(cfg.Log)
	if err != nil {
		return fmt.Errorf("setting up logging failed: %w", err)
	}

	a := &app{cfg: cfg, logger: logger}
	ctx := context.WithValue(cmd.Context(), appKey{}, a)
	cmd.SetContext(ctx)

	// keygen and health need no broker
	if cmd.Annotations["broker"] == "none" {
		return nil
	}

	a.broker = broker.NewRedis(cfg.RedisOptions())
	a.bus, err = redisbus.New(a.broker, cfg.BusOptions()...)
	if err != nil {
		a.broker.Close()
		return err
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	if a.broker != nil {
		a.broker.Close()
	}
	a.logger.Sync()
	return nil
}
