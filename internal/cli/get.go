package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vogtb/go-tabular/packages/spreadsheet"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var (
		sets   []string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "get FILE COORD",
		Short: "Print the evaluated value of one cell",
		Long: `Evaluate a single cell of a template and print its value.

A formula that fails for an unexpected reason prints "#ERROR: <message>".
With --strict that failure is returned instead and the command exits
non-zero. Named engine errors, such as circular references, always fail.`,
		Example: `  tabular get budget.json B4
  tabular get budget.json B4 --set B2=0 --strict`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseOverrides(sets)
			if err != nil {
				return err
			}
			coord, err := spreadsheet.ParseCoordinate(args[1])
			if err != nil {
				return err
			}
			t, err := loadTable(cmd.Context(), args[0], overrides)
			if err != nil {
				return err
			}

			var v spreadsheet.DataValue
			if strict {
				v, err = t.GetValueStrict(coord)
			} else {
				v, err = t.GetValue(coord)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", coord, err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), v.String())
			return nil
		},
	}

	addSetFlag(cmd, &sets)
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail instead of printing #ERROR values")
	return cmd
}
