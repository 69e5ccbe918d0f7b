package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/paretoq/internal/ccs"
	"github.com/danielpatrickdp/paretoq/internal/lp"
	"github.com/danielpatrickdp/paretoq/internal/pareto"
	"github.com/danielpatrickdp/paretoq/internal/quality"
)

var pruneLP string

func newPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune [set]",
		Short: "Print the Pareto front and convex coverage set of a solution set",
		Long: `Reads a solution set in the "(a,b),(c,d)" form from the argument or stdin
and prints its Pareto front and its convex coverage set.

Examples:
  paretoq prune "(0,3),(3,0),(1,1),(0.5,0.5),(0.5,2.5)"
  echo "(1,0,0),(0,1,0),(0.3,0.3,0.3)" | paretoq prune --lp highs`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPrune,
	}
	cmd.Flags().StringVar(&pruneLP, "lp", lp.SimplexName, fmt.Sprintf("LP backend %v", lp.Backends()))
	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	text := ""
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}

	set, err := pareto.Parse(text)
	if err != nil {
		return err
	}
	solver, err := lp.Open(pruneLP)
	if err != nil {
		return err
	}

	front := set.Copy()
	front.PruneDominated()
	hull, err := ccs.New(solver).Prune(set)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "input:   %s  (%d)\n", set, set.Len())
	fmt.Fprintf(w, "pareto:  %s  (%d)\n", front, front.Len())
	fmt.Fprintf(w, "ccs:     %s  (%d)\n", hull, hull.Len())
	fmt.Fprintf(w, "spread:  %.4g\n", quality.Spread(front))
	fmt.Fprintf(w, "spacing: %.4g\n", quality.Spacing(front))
	return nil
}
