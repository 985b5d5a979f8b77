package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vogtb/go-tabular/packages/spreadsheet"
)

// NewRefsCommand creates the refs command.
func NewRefsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs FILE COORD",
		Short: "Show the references of a cell",
		Long: `List the cells a formula cell reads (its precedents) and every
cell whose value depends on it, directly or through other formulas (its
dependents).`,
		Example: `  tabular refs budget.json B4`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := spreadsheet.ParseCoordinate(args[1])
			if err != nil {
				return err
			}
			t, err := loadTable(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}

			precedents, err := t.CellPrecedents(coord)
			if err != nil {
				return fmt.Errorf("%s: %w", coord, err)
			}
			graph, err := t.DependencyGraph()
			if err != nil {
				return fmt.Errorf("failed to build dependency graph: %w", err)
			}

			w := cmd.OutOrStdout()
			writeRefs(w, "precedents", precedents)
			writeRefs(w, "dependents", graph.GetAllDependents(coord))
			if graph.HasCycle() {
				_, _ = fmt.Fprintln(w, "warning: the table contains a circular reference")
			}
			return nil
		},
	}

	return cmd
}

func writeRefs(w io.Writer, label string, coords []spreadsheet.Coordinate) {
	names := make([]string, len(coords))
	for i, c := range coords {
		names[i] = c.String()
	}
	if len(names) == 0 {
		names = []string{"(none)"}
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", label, strings.Join(names, " "))
}
