package cli

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "eval FILE...",
		Short: "Evaluate templates and render their cells",
		Long: `Load each template, evaluate every cell and render the grid.

Files are evaluated concurrently, each in its own table, and printed in
the order given.`,
		Example: `  # Render a template as a table
  tabular eval budget.json

  # Override cells before evaluating
  tabular eval budget.yaml --set B2=1500 --set "B5==B4*12"

  # Render as markdown
  tabular eval budget.json --format markdown`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, args, sets)
		},
	}

	addSetFlag(cmd, &sets)
	return cmd
}

func runEval(cmd *cobra.Command, files []string, sets []string) error {
	overrides, err := parseOverrides(sets)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	outputs := make([]bytes.Buffer, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := loadTable(gctx, file, overrides)
			if err != nil {
				return err
			}
			return renderGrid(gctx, &outputs[i], t, cfg.Output.Format, cfg.Output.Evaluate)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for i := range outputs {
		if len(files) > 1 {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "%s\n", files[i])
		}
		if _, err := outputs[i].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}
