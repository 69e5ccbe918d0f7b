package main

import (
	"net"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/paretoq/internal/glue"
	"github.com/danielpatrickdp/paretoq/internal/orchestrator"
	"github.com/danielpatrickdp/paretoq/internal/telemetry"
)

var serveAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host one agent behind the gRPC lifecycle service",
		Long: `Hosts a single agent, built from the config, behind the gRPC lifecycle
service. A driver elsewhere connects with "paretoq remote".

Examples:
  paretoq serve --addr :50071
  paretoq serve -c scalar.yaml`,
		RunE: runServe,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: glue_addr from the config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	addr := serveAddr
	if addr == "" {
		addr = cfg.GlueAddr
	}

	var opts []orchestrator.Option
	opts = append(opts, orchestrator.WithLogger(log))
	if cfg.MetricsAddr != "" {
		metrics := telemetry.New(true)
		opts = append(opts, orchestrator.WithMetrics(metrics))
		shutdown := serveMetrics(cfg.MetricsAddr, metrics, log)
		defer shutdown()
	}
	o, err := orchestrator.New(cfg, opts...)
	if err != nil {
		return err
	}
	a, err := o.NewAgent(cfg.Seed)
	if err != nil {
		return err
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s := grpc.NewServer()
	glue.Register(s, glue.NewServer(a, log))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	log.Info("glue server listening", "addr", lis.Addr().String(), "learner", cfg.Learner.Kind)
	return s.Serve(lis)
}
