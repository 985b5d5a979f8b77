package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vogtb/go-tabular/packages/template"
)

// NewInsertRowCommand creates the insert-row command.
func NewInsertRowCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "insert-row FILE ROW",
		Short: "Insert an empty row after ROW",
		Long: `Insert an empty row after ROW and save the template.

Cells below ROW move down by one and every formula reference to a row
after ROW is rewritten to keep pointing at the same cell. The template is
written back to FILE unless --out is given; the output format follows
the file extension.`,
		Example: `  tabular insert-row budget.json 3
  tabular insert-row budget.json 3 -o budget.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid row %q: %w", args[1], err)
			}
			t, err := loadTable(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}
			if err := t.InsertRowAfter(row); err != nil {
				return err
			}

			target := args[0]
			if out != "" {
				target = out
			}
			if err := template.SaveFile(target, t); err != nil {
				return fmt.Errorf("failed to save template: %w", err)
			}
			GetLogger(cmd.Context()).Info("inserted row", "after", row, "file", target)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Inserted a row after row %d in %s\n", row, target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the result to this file instead of FILE")
	return cmd
}
