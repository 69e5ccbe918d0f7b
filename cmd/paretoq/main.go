// Command paretoq trains multi-objective Q-learners on the resource grid
// world and inspects the solution sets they learn.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/paretoq/internal/config"
	"github.com/danielpatrickdp/paretoq/internal/logging"
)

var configPath string

func main() {
	for _, envFile := range []string{".env", "../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd := &cobra.Command{
		Use:           "paretoq",
		Short:         "Multi-objective tabular Q-learning with Pareto and convex-hull value sets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "paretoq.yaml", "path to the YAML config (missing file = defaults)")

	rootCmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newRemoteCmd(),
		newPruneCmd(),
		newReplayCmd(),
		newPlotCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config and builds the process logger from it.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	slog.SetDefault(log)
	return cfg, log, nil
}
