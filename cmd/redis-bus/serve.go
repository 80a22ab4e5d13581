package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dermesser/redisbus/config"
	"github.com/dermesser/redisbus/log"
	smgr "github.com/dermesser/redisbus/securitymanager"
	"github.com/dermesser/redisbus/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const lameduckFlag = "lameduck"

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [pattern]",
		Short: "Execute calls until interrupted",
		Long: `Serve waits for calls to all registered methods matching the glob pattern (by
default the configured worker pattern, or "<prefix>*") and executes them until
interrupted. It fails if no method matches.

On SIGINT or SIGTERM the worker first enters lameduck mode for the duration given
by --lameduck (health checks fail, calls are still executed), then stops.`,
		Args: cobra.MaximumNArgs(1),
		RunE: serve,
	}
	cmd.Flags().Duration(lameduckFlag, 0, "time spent in lameduck mode before stopping")
	return cmd
}

func newDrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drain [pattern]",
		Short: "Execute all pending calls, then exit",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			w := server.NewWorker(a.bus, a.cfg.WorkerOptions()...)
			if err := w.ServeOnce(cmd.Context(), pattern(a.cfg, args)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "executed %d calls\n", w.Executed())
			return nil
		},
	}
}

func pattern(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Worker.Pattern
}

func serve(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	lameduck, err := cmd.Flags().GetDuration(lameduckFlag)
	if err != nil {
		return fmt.Errorf("getting lameduck flag failed: %w", err)
	}

	w := server.NewWorker(a.bus, a.cfg.WorkerOptions()...)

	sigctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	serveCtx, cancelServe := context.WithCancel(context.Background())
	defer cancelServe()

	g, gctx := errgroup.WithContext(serveCtx)

	if len(a.cfg.Health.Endpoints) > 0 {
		sm, err := healthSecurity(a.cfg)
		if err != nil {
			return err
		}
		hs, err := server.NewHealthServer(w, sm, a.cfg.Health.Endpoints...)
		if err != nil {
			return fmt.Errorf("health endpoint: %w", err)
		}
		g.Go(func() error { return hs.Serve(gctx) })
	}

	if a.cfg.Metrics.Listen != "" {
		mux := http.NewServeMux()
		mux.Handle(a.cfg.Metrics.Path, promhttp.Handler())
		srv := &http.Server{Addr: a.cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return srv.Close()
		})
	}

	g.Go(func() error {
		defer cancelServe()
		return w.Serve(gctx, pattern(a.cfg, args))
	})

	g.Go(func() error {
		select {
		case <-sigctx.Done():
		case <-gctx.Done():
			return nil
		}
		if lameduck > 0 {
			log.Log(log.LOGLEVEL_INFO, "Entering lameduck mode for", lameduck)
			w.SetLameduck(true)
			select {
			case <-time.After(lameduck):
			case <-gctx.Done():
			}
		}
		cancelServe()
		return nil
	})

	return g.Wait()
}

func healthSecurity(cfg *config.Config) (*smgr.ServerSecurityManager, error) {
	if cfg.Health.PublicKeyFile == "" {
		return nil, nil
	}
	sm := smgr.NewServerSecurityManager()
	if sm == nil {
		return nil, errors.New("could not set up CURVE security")
	}
	if err := sm.LoadKeys(cfg.Health.PublicKeyFile, cfg.Health.PrivateKeyFile); err != nil {
		return nil, fmt.Errorf("loading health endpoint keys failed: %w", err)
	}
	sm.AddClientKeys(cfg.Health.ClientKeys...)
	return sm, nil
}
