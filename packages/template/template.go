// Package template loads and saves tables as simple templates: a name, a
// description, the column and row headers and the data cells. the same
// document shape is available as JSON and as YAML.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"gopkg.in/yaml.v3"

	"github.com/vogtb/go-tabular/packages/spreadsheet"
)

// formulaType marks formula text that loads back as text rather than as
// a function value
const formulaType = "formula"

// ErrUnsupportedFormat is returned for a file extension that is neither
// JSON nor YAML
var ErrUnsupportedFormat = errors.New("unsupported template format")

// SimpleTemplate is the document form of a table
type SimpleTemplate struct {
	Name        string             `json:"Name" yaml:"name"`
	Description string             `json:"Description" yaml:"description,omitempty"`
	Columns     []HeaderDefinition `json:"Columns" yaml:"columns"`
	Rows        []HeaderDefinition `json:"Rows" yaml:"rows"`
	Cells       []CellDefinition   `json:"Cells" yaml:"cells"`
}

// HeaderDefinition is a column title (row 1) or a row title (column A)
type HeaderDefinition struct {
	Coordinate string `json:"Coordinate" yaml:"coordinate"`
	Title      string `json:"Title" yaml:"title"`
}

// CellDefinition is a data cell
type CellDefinition struct {
	Coordinate string              `json:"Coordinate" yaml:"coordinate"`
	DataValue  DataValueDefinition `json:"DataValue" yaml:"data"`
}

// DataValueDefinition is a value in text form with its type name. for a
// formula ("=..."), Type names the expected result type, or is "formula"
// for formula text that is kept as text.
type DataValueDefinition struct {
	Value string `json:"Value" yaml:"value"`
	Type  string `json:"Type" yaml:"type"`
}

// ToTable builds a table from the template. headers are applied first,
// then cells, so a later entry for the same coordinate wins.
func (tpl *SimpleTemplate) ToTable(opts ...spreadsheet.TableOption) (*spreadsheet.Table, error) {
	t, err := spreadsheet.NewTable(spreadsheet.NewTableId(), tpl.Name, opts...)
	if err != nil {
		return nil, fmt.Errorf("template Name: %w", err)
	}

	for _, headers := range [][]HeaderDefinition{tpl.Columns, tpl.Rows} {
		for _, h := range headers {
			coord, err := spreadsheet.ParseCoordinate(h.Coordinate)
			if err != nil {
				return nil, fmt.Errorf("header %q: %w", h.Coordinate, err)
			}
			t.SetCell(coord, spreadsheet.NewText(h.Title))
		}
	}

	for _, c := range tpl.Cells {
		coord, err := spreadsheet.ParseCoordinate(c.Coordinate)
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", c.Coordinate, err)
		}
		t.SetCell(coord, c.DataValue.toDataValue())
	}

	return t, nil
}

// toDataValue converts the definition. a value that does not parse as
// its declared type falls back to text.
func (d DataValueDefinition) toDataValue() spreadsheet.DataValue {
	if strings.EqualFold(d.Type, formulaType) {
		return spreadsheet.NewText(d.Value)
	}
	if strings.HasPrefix(d.Value, "=") {
		expected := formatType(d.Type)
		if f, ok := spreadsheet.TryNewFunction(d.Value[1:], expected); ok {
			return spreadsheet.NewFunctionValue(f)
		}
		return spreadsheet.NewText(d.Value)
	}

	text := spreadsheet.NewText(d.Value)
	typ, ok := spreadsheet.ParseValueType(d.Type)
	if !ok {
		return text
	}
	switch typ {
	case spreadsheet.TypeInteger:
		if i, err := strconv.ParseInt(strings.TrimSpace(d.Value), 10, 64); err == nil {
			return spreadsheet.NewInteger(i)
		}
	case spreadsheet.TypeDecimal:
		if v, err := spreadsheet.NewDecimalFromString(d.Value); err == nil {
			return v
		}
	case spreadsheet.TypePercentage:
		if p, ok := spreadsheet.TryParsePercentage(d.Value); ok {
			return spreadsheet.NewPercentageValue(p)
		}
		if amount, _, err := apd.NewFromString(strings.TrimSpace(d.Value)); err == nil && amount.Form == apd.Finite {
			return spreadsheet.NewPercentageValue(spreadsheet.NewPercentage(amount))
		}
	case spreadsheet.TypeBoolean:
		if b, err := strconv.ParseBool(strings.TrimSpace(d.Value)); err == nil {
			return spreadsheet.NewBoolean(b)
		}
	case spreadsheet.TypeDateTime:
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(d.Value)); err == nil {
			return spreadsheet.NewDateTime(ts)
		}
	case spreadsheet.TypeText, spreadsheet.TypeFunction:
	}
	return text
}

// formatType maps the Type of a formula definition to the expected
// result type. unknown names mean decimal.
func formatType(name string) spreadsheet.ValueType {
	typ, ok := spreadsheet.ParseValueType(name)
	if !ok || typ == spreadsheet.TypeFunction {
		return spreadsheet.TypeDecimal
	}
	return typ
}

// FromTable captures a table as a template. plain text in row 1 becomes
// a column header and plain text in column A a row header; everything
// else is a data cell.
func FromTable(t *spreadsheet.Table) *SimpleTemplate {
	tpl := &SimpleTemplate{
		Name:        t.Name(),
		Description: "Template created from " + t.Name(),
		Columns:     []HeaderDefinition{},
		Rows:        []HeaderDefinition{},
		Cells:       []CellDefinition{},
	}

	for _, c := range t.Cells() {
		coordinate := c.Coordinate.String()
		if title, ok := c.Value.AsText(); ok && !c.Value.IsFormula() {
			switch {
			case c.Coordinate.Row == 1:
				tpl.Columns = append(tpl.Columns, HeaderDefinition{Coordinate: coordinate, Title: title})
				continue
			case c.Coordinate.Column == spreadsheet.MinColumn:
				tpl.Rows = append(tpl.Rows, HeaderDefinition{Coordinate: coordinate, Title: title})
				continue
			}
		}
		tpl.Cells = append(tpl.Cells, CellDefinition{Coordinate: coordinate, DataValue: definitionOf(c.Value)})
	}

	return tpl
}

func definitionOf(v spreadsheet.DataValue) DataValueDefinition {
	switch v.Type() {
	case spreadsheet.TypeText:
		if v.IsFormula() {
			return DataValueDefinition{Value: v.String(), Type: formulaType}
		}
		return DataValueDefinition{Value: v.String(), Type: "text"}
	case spreadsheet.TypeInteger:
		return DataValueDefinition{Value: v.String(), Type: "int"}
	case spreadsheet.TypeDecimal:
		return DataValueDefinition{Value: v.String(), Type: "decimal"}
	case spreadsheet.TypeBoolean:
		b, _ := v.AsBoolean()
		return DataValueDefinition{Value: strconv.FormatBool(b), Type: "bool"}
	case spreadsheet.TypeDateTime:
		return DataValueDefinition{Value: v.String(), Type: "datetime"}
	case spreadsheet.TypePercentage:
		p, _ := v.AsPercentage()
		return DataValueDefinition{Value: p.Value().Text('f'), Type: "percentage"}
	case spreadsheet.TypeFunction:
		f, _ := v.AsFunction()
		return DataValueDefinition{Value: "=" + f.Expression(), Type: formatName(f.ExpectedType())}
	}
	return DataValueDefinition{Value: v.String(), Type: "text"}
}

// formatName is the Type written for a function's expected result
func formatName(t spreadsheet.ValueType) string {
	switch t {
	case spreadsheet.TypeInteger:
		return "int"
	case spreadsheet.TypeText:
		return "text"
	case spreadsheet.TypePercentage:
		return "percentage"
	case spreadsheet.TypeDecimal, spreadsheet.TypeBoolean, spreadsheet.TypeDateTime, spreadsheet.TypeFunction:
	}
	return "decimal"
}

// LoadJSON reads a JSON template and builds its table. field names match
// case-insensitively.
func LoadJSON(r io.Reader, opts ...spreadsheet.TableOption) (*spreadsheet.Table, error) {
	var tpl SimpleTemplate
	if err := json.NewDecoder(r).Decode(&tpl); err != nil {
		return nil, fmt.Errorf("decode json template: %w", err)
	}
	return tpl.ToTable(opts...)
}

// SaveJSON writes t as an indented JSON template
func SaveJSON(w io.Writer, t *spreadsheet.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromTable(t)); err != nil {
		return fmt.Errorf("encode json template: %w", err)
	}
	return nil
}

// LoadYAML reads a YAML template and builds its table
func LoadYAML(r io.Reader, opts ...spreadsheet.TableOption) (*spreadsheet.Table, error) {
	var tpl SimpleTemplate
	if err := yaml.NewDecoder(r).Decode(&tpl); err != nil {
		return nil, fmt.Errorf("decode yaml template: %w", err)
	}
	return tpl.ToTable(opts...)
}

// SaveYAML writes t as a YAML template
func SaveYAML(w io.Writer, t *spreadsheet.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromTable(t)); err != nil {
		return fmt.Errorf("encode yaml template: %w", err)
	}
	return enc.Close()
}

// LoadFile loads a template, choosing the format by extension: .json,
// .yaml or .yml
func LoadFile(path string, opts ...spreadsheet.TableOption) (*spreadsheet.Table, error) {
	load, err := loaderFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	t, err := load(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// SaveFile writes t to path in the format its extension names
func SaveFile(path string, t *spreadsheet.Table) (err error) {
	save, err := saverFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close template: %w", cerr)
		}
	}()
	return save(f, t)
}

func loaderFor(path string) (func(io.Reader, ...spreadsheet.TableOption) (*spreadsheet.Table, error), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON, nil
	case ".yaml", ".yml":
		return LoadYAML, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

func saverFor(path string) (func(io.Writer, *spreadsheet.Table) error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SaveJSON, nil
	case ".yaml", ".yml":
		return SaveYAML, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}
