package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vogtb/go-tabular/packages/spreadsheet"
	"github.com/vogtb/go-tabular/packages/template"
)

// cellOverride is one --set A1=VALUE flag
type cellOverride struct {
	coord spreadsheet.Coordinate
	value spreadsheet.DataValue
}

// parseOverrides splits each "COORD=VALUE" on its first '=', so
// "B1==A1*2" stores the formula "=A1*2"
func parseOverrides(sets []string) ([]cellOverride, error) {
	overrides := make([]cellOverride, 0, len(sets))
	for _, set := range sets {
		address, raw, ok := strings.Cut(set, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: expected COORD=VALUE", set)
		}
		coord, err := spreadsheet.ParseCoordinate(strings.TrimSpace(address))
		if err != nil {
			return nil, fmt.Errorf("invalid --set %q: %w", set, err)
		}
		overrides = append(overrides, cellOverride{coord: coord, value: spreadsheet.ParseLiteral(raw)})
	}
	return overrides, nil
}

// loadTable loads a template with the engine options from the config and
// applies the overrides
func loadTable(ctx context.Context, path string, overrides []cellOverride) (*spreadsheet.Table, error) {
	cfg := GetConfig(ctx)
	logger := GetLogger(ctx)

	opts := append(cfg.TableOptions(), spreadsheet.WithLogger(logger.With("file", path)))
	t, err := template.LoadFile(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	for _, o := range overrides {
		t.SetCell(o.coord, o.value)
	}
	logger.Debug("loaded template", "file", path, "table", t.Name(), "cells", t.Len(), "overrides", len(overrides))
	return t, nil
}

// addSetFlag registers the repeatable --set flag
func addSetFlag(cmd *cobra.Command, sets *[]string) {
	cmd.Flags().StringArrayVar(sets, "set", nil, "Override a cell before evaluation (COORD=VALUE, repeatable)")
}

// displayValue renders one cell for the grid. a named engine failure is
// shown in place as "#<Code>" rather than aborting the render.
func displayValue(ctx context.Context, t *spreadsheet.Table, coord spreadsheet.Coordinate, evaluate bool) string {
	if !evaluate {
		return storedText(t.GetCell(coord))
	}

	v, err := t.GetValue(coord)
	if err != nil {
		var engineErr *spreadsheet.Error
		if errors.As(err, &engineErr) {
			GetLogger(ctx).Warn("cell failed", "cell", coord.String(), "code", engineErr.Code.String(), "error", err)
			return "#" + engineErr.Code.String()
		}
		return "#ERROR: " + err.Error()
	}
	return v.String()
}

// storedText renders the raw stored value, formulas included
func storedText(v spreadsheet.DataValue) string {
	if f, ok := v.AsFunction(); ok {
		return "=" + f.Expression()
	}
	return v.String()
}
