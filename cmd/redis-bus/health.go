package main

import (
	"errors"
	"fmt"

	"github.com/dermesser/redisbus/client"
	smgr "github.com/dermesser/redisbus/securitymanager"
	"github.com/dermesser/redisbus/server"
	"github.com/spf13/cobra"
)

const (
	procFlag       = "proc"
	serverKeyFlag  = "server-key"
	clientPubFlag  = "pub"
	clientPrivFlag = "priv"
)

func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health {endpoint}",
		Short: "Probe the health endpoint of a worker",
		Long: `Health sends a probe to a worker's ZeroMQ health endpoint, e.g. tcp://worker:9109,
and prints the answer. It fails if the worker is not healthy, which includes
lameduck mode.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"broker": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, _ := cmd.Flags().GetString(procFlag)
			sm, err := probeSecurity(cmd)
			if err != nil {
				return err
			}

			st, err := client.Probe(cmd.Context(), args[0], proc, sm)
			if err != nil {
				return err
			}
			if st.Detail != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", st.Status, st.Detail)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), st.Status)
			}
			if proc == server.ProcHealth && !st.Healthy() {
				return fmt.Errorf("worker at %s is not healthy: %s", args[0], st.Status)
			}
			return nil
		},
	}
	cmd.Flags().String(procFlag, server.ProcHealth, "procedure: Health, Ping or Stats")
	cmd.Flags().String(serverKeyFlag, "", "file with the endpoint's public key (enables CURVE)")
	cmd.Flags().String(clientPubFlag, "", "file with the probe's public key")
	cmd.Flags().String(clientPrivFlag, "", "file with the probe's private key")
	return cmd
}

func probeSecurity(cmd *cobra.Command) (*smgr.ClientSecurityManager, error) {
	serverKey, _ := cmd.Flags().GetString(serverKeyFlag)
	if serverKey == "" {
		return nil, nil
	}
	sm := smgr.NewClientSecurityManager()
	if sm == nil {
		return nil, errors.New("could not set up CURVE security")
	}
	if err := sm.LoadServerPubkey(serverKey); err != nil {
		return nil, fmt.Errorf("loading server key failed: %w", err)
	}

	pub, _ := cmd.Flags().GetString(clientPubFlag)
	priv, _ := cmd.Flags().GetString(clientPrivFlag)
	if pub != "" || priv != "" {
		if pub == "" || priv == "" {
			return nil, errors.New("--pub and --priv must be given together")
		}
		if err := sm.LoadKeys(pub, priv); err != nil {
			return nil, fmt.Errorf("loading probe keys failed: %w", err)
		}
	}
	return sm, nil
}

func newKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "keygen",
		Short:       "Generate a CURVE key pair for the health endpoint",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"broker": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			pubfile, _ := cmd.Flags().GetString(clientPubFlag)
			privfile, _ := cmd.Flags().GetString(clientPrivFlag)

			mgr := smgr.NewServerSecurityManager()
			if mgr == nil {
				return errors.New("generating key pair failed")
			}
			if err := mgr.WriteKeys(pubfile, privfile); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s and %s\n", pubfile, privfile)
			return nil
		},
	}
	cmd.Flags().String(clientPubFlag, "publickey.txt", "file to write the public key to")
	cmd.Flags().String(clientPrivFlag, "privatekey.txt", "file to write the private key to")
	return cmd
}
