package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/paretoq/internal/glue"
	"github.com/danielpatrickdp/paretoq/internal/orchestrator"
	"github.com/danielpatrickdp/paretoq/internal/runlog"
)

var (
	remoteAddr string
	remoteNoDB bool
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Drive the configured world against an agent served elsewhere",
		Long: `Runs the episode loop locally and sends every lifecycle call to an agent
hosted by "paretoq serve". Only the first configured seed is played.

Examples:
  paretoq remote --addr localhost:50071`,
		RunE: runRemote,
	}
	cmd.Flags().StringVar(&remoteAddr, "addr", "", "agent address (default: glue_addr from the config)")
	cmd.Flags().BoolVar(&remoteNoDB, "no-db", false, "do not write the run log")
	return cmd
}

func runRemote(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	addr := remoteAddr
	if addr == "" {
		addr = cfg.GlueAddr
	}

	opts := []orchestrator.Option{orchestrator.WithLogger(log)}
	if !remoteNoDB && cfg.DBPath != "" {
		store, err := runlog.NewStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, orchestrator.WithStore(store))
	}
	o, err := orchestrator.New(cfg, opts...)
	if err != nil {
		return err
	}

	client, err := glue.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	out, err := o.RunAgent(ctx, cfg.Seed, client)
	if err != nil {
		return err
	}
	printSummary(out)
	return nil
}
