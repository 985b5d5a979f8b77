package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/vogtb/go-tabular/packages/spreadsheet"
)

// renderGrid writes the occupied rectangle of t, from A1 to its bounds,
// with column letters as the header and row numbers as the first column
func renderGrid(ctx context.Context, w io.Writer, t *spreadsheet.Table, format string, evaluate bool) error {
	maxRow, maxColumn, ok := t.Bounds()
	if !ok {
		_, _ = fmt.Fprintln(w, "(empty table)")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	// Header
	columns := int(maxColumn - spreadsheet.MinColumn + 1)
	headerRow := make(table.Row, 0, columns+1)
	headerRow = append(headerRow, "")
	for col := spreadsheet.ColumnId(spreadsheet.MinColumn); col <= maxColumn; col++ {
		headerRow = append(headerRow, col.String())
	}
	tw.AppendHeader(headerRow)

	// Rows
	for row := spreadsheet.RowId(1); row <= maxRow; row++ {
		r := make(table.Row, 0, columns+1)
		r = append(r, row.String())
		for col := spreadsheet.ColumnId(spreadsheet.MinColumn); col <= maxColumn; col++ {
			coord := spreadsheet.Coordinate{Row: row, Column: col}
			r = append(r, displayValue(ctx, t, coord, evaluate))
		}
		tw.AppendRow(r)
	}

	switch format {
	case "csv":
		tw.RenderCSV()
	case "markdown":
		tw.RenderMarkdown()
	case "html":
		tw.RenderHTML()
	default:
		tw.SetTitle(t.Name())
		tw.Render()
	}
	return nil
}
