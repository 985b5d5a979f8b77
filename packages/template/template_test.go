package template

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogtb/go-tabular/packages/spreadsheet"
)

const budgetJSON = `{
  "Name": "Budget",
  "Description": "monthly budget",
  "Columns": [
    {"Coordinate": "B1", "Title": "Amount"},
    {"Coordinate": "C1", "Title": "Share"}
  ],
  "Rows": [
    {"Coordinate": "A2", "Title": "Rent"},
    {"Coordinate": "A3", "Title": "Food"},
    {"Coordinate": "A4", "Title": "Total"}
  ],
  "Cells": [
    {"Coordinate": "B2", "DataValue": {"Value": "1200", "Type": "int"}},
    {"Coordinate": "B3", "DataValue": {"Value": "310.50", "Type": "decimal"}},
    {"Coordinate": "B4", "DataValue": {"Value": "=SUM(B2:B3)", "Type": "decimal"}},
    {"Coordinate": "C2", "DataValue": {"Value": "75", "Type": "percentage"}},
    {"Coordinate": "C3", "DataValue": {"Value": "=B3*2", "Type": "decimal"}}
  ]
}`

func cell(t *testing.T, table *spreadsheet.Table, address string) spreadsheet.DataValue {
	t.Helper()
	return table.GetCell(spreadsheet.MustCoordinate(address))
}

func value(t *testing.T, table *spreadsheet.Table, address string) spreadsheet.DataValue {
	t.Helper()
	v, err := table.GetValue(spreadsheet.MustCoordinate(address))
	require.NoError(t, err)
	return v
}

func TestLoadJSON(t *testing.T) {
	table, err := LoadJSON(strings.NewReader(budgetJSON))
	require.NoError(t, err)

	assert.Equal(t, "Budget", table.Name())
	assert.Equal(t, 10, table.Len())

	assert.Equal(t, spreadsheet.NewText("Amount"), cell(t, table, "B1"))
	assert.Equal(t, spreadsheet.NewText("Total"), cell(t, table, "A4"))
	assert.Equal(t, spreadsheet.NewInteger(1200), cell(t, table, "B2"))
	assert.True(t, cell(t, table, "B3").Equal(spreadsheet.NewDecimalFromInt(3105, -1)))
	assert.Equal(t, "75%", cell(t, table, "C2").String())

	sum := cell(t, table, "B4")
	require.Equal(t, spreadsheet.TypeFunction, sum.Type())
	f, _ := sum.AsFunction()
	assert.Equal(t, "SUM(B2:B3)", f.Expression())
	assert.Equal(t, spreadsheet.TypeDecimal, f.ExpectedType())

	// no function head, so the formula stays text
	assert.Equal(t, spreadsheet.NewText("=B3*2"), cell(t, table, "C3"))

	assert.True(t, value(t, table, "B4").Equal(spreadsheet.NewDecimalFromInt(15105, -1)))
	assert.True(t, value(t, table, "C3").Equal(spreadsheet.NewDecimalFromInt(621, 0)))
}

func TestLoadJSONFieldCase(t *testing.T) {
	doc := `{"name": "lower", "cells": [{"coordinate": "a1", "dataValue": {"value": "5", "type": "Integer"}}]}`
	table, err := LoadJSON(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "lower", table.Name())
	assert.Equal(t, spreadsheet.NewInteger(5), cell(t, table, "A1"))
}

func TestLoadErrors(t *testing.T) {
	t.Run("MissingName", func(t *testing.T) {
		_, err := LoadJSON(strings.NewReader(`{"Cells": []}`))
		require.ErrorIs(t, err, spreadsheet.ErrInvalidTableName)
		assert.ErrorContains(t, err, "Name")

		_, err = LoadJSON(strings.NewReader(`{"Name": "   "}`))
		assert.ErrorIs(t, err, spreadsheet.ErrInvalidTableName)
	})

	t.Run("InvalidCoordinate", func(t *testing.T) {
		doc := `{"Name": "x", "Cells": [{"Coordinate": "1A", "DataValue": {"Value": "1", "Type": "int"}}]}`
		_, err := LoadJSON(strings.NewReader(doc))
		require.ErrorIs(t, err, spreadsheet.ErrInvalidCoordinate)
		assert.ErrorContains(t, err, "1A")

		doc = `{"Name": "x", "Columns": [{"Coordinate": "A0", "Title": "t"}]}`
		_, err = LoadJSON(strings.NewReader(doc))
		assert.ErrorIs(t, err, spreadsheet.ErrRowOutOfRange)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := LoadJSON(strings.NewReader(`{"Name": `))
		assert.Error(t, err)

		_, err = LoadJSON(strings.NewReader(""))
		assert.Error(t, err)

		_, err = LoadYAML(strings.NewReader("name: [unclosed"))
		assert.Error(t, err)
	})
}

func TestDataValueConversion(t *testing.T) {
	stamp := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		def      DataValueDefinition
		expected spreadsheet.DataValue
	}{
		{DataValueDefinition{"42", "int"}, spreadsheet.NewInteger(42)},
		{DataValueDefinition{"42", "integer"}, spreadsheet.NewInteger(42)},
		{DataValueDefinition{"4.25", "decimal"}, spreadsheet.NewDecimalFromInt(425, -2)},
		{DataValueDefinition{"50", "percentage"}, spreadsheet.NewPercentageValue(spreadsheet.NewPercentageFromInt(50, 0))},
		{DataValueDefinition{"12.5%", "percentage"}, spreadsheet.NewPercentageValue(spreadsheet.NewPercentageFromInt(125, -1))},
		{DataValueDefinition{"true", "bool"}, spreadsheet.NewBoolean(true)},
		{DataValueDefinition{"FALSE", "boolean"}, spreadsheet.NewBoolean(false)},
		{DataValueDefinition{"2024-03-01T12:30:00Z", "datetime"}, spreadsheet.NewDateTime(stamp)},
		{DataValueDefinition{"hello", "text"}, spreadsheet.NewText("hello")},
		{DataValueDefinition{"hello", ""}, spreadsheet.NewText("hello")},
		{DataValueDefinition{"hello", "mystery"}, spreadsheet.NewText("hello")},

		// unparseable values fall back to text
		{DataValueDefinition{"abc", "int"}, spreadsheet.NewText("abc")},
		{DataValueDefinition{"1.5", "int"}, spreadsheet.NewText("1.5")},
		{DataValueDefinition{"NaN", "decimal"}, spreadsheet.NewText("NaN")},
		{DataValueDefinition{"lots", "percentage"}, spreadsheet.NewText("lots")},
		{DataValueDefinition{"yes", "bool"}, spreadsheet.NewText("yes")},
		{DataValueDefinition{"yesterday", "datetime"}, spreadsheet.NewText("yesterday")},

		// formulas
		{DataValueDefinition{"=COUNT(A1:A3)", "int"},
			spreadsheet.NewFunctionValue(mustTyped(t, "COUNT(A1:A3)", spreadsheet.TypeInteger))},
		{DataValueDefinition{"=SUM(A1:A3)", "function"},
			spreadsheet.NewFunctionValue(mustTyped(t, "SUM(A1:A3)", spreadsheet.TypeDecimal))},
		{DataValueDefinition{"=CONCAT(A1,B1)", "text"},
			spreadsheet.NewFunctionValue(mustTyped(t, "CONCAT(A1,B1)", spreadsheet.TypeText))},
		{DataValueDefinition{"=MEDIAN(A1:A3)", "decimal"}, spreadsheet.NewText("=MEDIAN(A1:A3)")},
		{DataValueDefinition{"=A1+1", "int"}, spreadsheet.NewText("=A1+1")},
		{DataValueDefinition{"=SUM(A1:A3)", "formula"}, spreadsheet.NewText("=SUM(A1:A3)")},
		{DataValueDefinition{"=CONCAT(A1,B1)", "Formula"}, spreadsheet.NewText("=CONCAT(A1,B1)")},
	}
	for _, tt := range tests {
		t.Run(tt.def.Type+" "+tt.def.Value, func(t *testing.T) {
			got := tt.def.toDataValue()
			assert.True(t, got.Equal(tt.expected), "got %#v, expected %#v", got, tt.expected)
		})
	}
}

func mustTyped(t *testing.T, expression string, expected spreadsheet.ValueType) spreadsheet.Function {
	t.Helper()
	f, err := spreadsheet.NewTypedFunction(expression, expected)
	require.NoError(t, err)
	return f
}

func TestLaterEntryWins(t *testing.T) {
	doc := `{
		"Name": "dupes",
		"Columns": [{"Coordinate": "B1", "Title": "first"}],
		"Cells": [
			{"Coordinate": "B1", "DataValue": {"Value": "7", "Type": "int"}},
			{"Coordinate": "C1", "DataValue": {"Value": "1", "Type": "int"}},
			{"Coordinate": "C1", "DataValue": {"Value": "2", "Type": "int"}}
		]
	}`
	table, err := LoadJSON(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, spreadsheet.NewInteger(7), cell(t, table, "B1"))
	assert.Equal(t, spreadsheet.NewInteger(2), cell(t, table, "C1"))
}

func sampleTable(t *testing.T) *spreadsheet.Table {
	t.Helper()
	table, err := spreadsheet.NewTable(spreadsheet.NewTableId(), "Sample")
	require.NoError(t, err)

	set := func(address string, v spreadsheet.DataValue) {
		table.SetCell(spreadsheet.MustCoordinate(address), v)
	}
	set("A1", spreadsheet.NewText("Item"))
	set("B1", spreadsheet.NewText("Qty"))
	set("C1", spreadsheet.NewInteger(2024))
	set("A2", spreadsheet.NewText("Apples"))
	set("B2", spreadsheet.NewInteger(3))
	set("B3", spreadsheet.NewDecimalFromInt(25, -1))
	set("B4", spreadsheet.NewFunctionValue(mustTyped(t, "SUM(B2:B3)", spreadsheet.TypeInteger)))
	set("B5", spreadsheet.NewText("=B4*2"))
	set("C2", spreadsheet.NewPercentageValue(spreadsheet.NewPercentageFromInt(15, 0)))
	set("C3", spreadsheet.NewBoolean(true))
	set("C4", spreadsheet.NewDateTime(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	set("A5", spreadsheet.NewText("=B5"))
	set("C5", spreadsheet.NewText("=SUM(B2:B3)*2"))
	return table
}

func TestFromTable(t *testing.T) {
	tpl := FromTable(sampleTable(t))

	assert.Equal(t, "Sample", tpl.Name)
	assert.Equal(t, "Template created from Sample", tpl.Description)
	assert.Equal(t, []HeaderDefinition{
		{Coordinate: "A1", Title: "Item"},
		{Coordinate: "B1", Title: "Qty"},
	}, tpl.Columns)
	assert.Equal(t, []HeaderDefinition{
		{Coordinate: "A2", Title: "Apples"},
	}, tpl.Rows)
	assert.Equal(t, []CellDefinition{
		{Coordinate: "C1", DataValue: DataValueDefinition{Value: "2024", Type: "int"}},
		{Coordinate: "B2", DataValue: DataValueDefinition{Value: "3", Type: "int"}},
		{Coordinate: "C2", DataValue: DataValueDefinition{Value: "15", Type: "percentage"}},
		{Coordinate: "B3", DataValue: DataValueDefinition{Value: "2.5", Type: "decimal"}},
		{Coordinate: "C3", DataValue: DataValueDefinition{Value: "true", Type: "bool"}},
		{Coordinate: "B4", DataValue: DataValueDefinition{Value: "=SUM(B2:B3)", Type: "int"}},
		{Coordinate: "C4", DataValue: DataValueDefinition{Value: "2024-01-02T03:04:05Z", Type: "datetime"}},
		{Coordinate: "A5", DataValue: DataValueDefinition{Value: "=B5", Type: "formula"}},
		{Coordinate: "B5", DataValue: DataValueDefinition{Value: "=B4*2", Type: "formula"}},
		{Coordinate: "C5", DataValue: DataValueDefinition{Value: "=SUM(B2:B3)*2", Type: "formula"}},
	}, tpl.Cells)
}

func assertSameCells(t *testing.T, expected, actual *spreadsheet.Table) {
	t.Helper()
	want, got := expected.Cells(), actual.Cells()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Coordinate, got[i].Coordinate)
		assert.True(t, want[i].Value.Equal(got[i].Value),
			"%s: expected %#v, got %#v", want[i].Coordinate, want[i].Value, got[i].Value)
	}
}

func TestRoundTrip(t *testing.T) {
	original := sampleTable(t)

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SaveJSON(&buf, original))
		assert.Contains(t, buf.String(), `"Name": "Sample"`)

		loaded, err := LoadJSON(&buf)
		require.NoError(t, err)
		assert.Equal(t, original.Name(), loaded.Name())
		assertSameCells(t, original, loaded)
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SaveYAML(&buf, original))
		assert.Contains(t, buf.String(), "name: Sample")

		loaded, err := LoadYAML(&buf)
		require.NoError(t, err)
		assertSameCells(t, original, loaded)
	})

	t.Run("FormulaTextStaysText", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SaveJSON(&buf, original))
		loaded, err := LoadJSON(&buf)
		require.NoError(t, err)

		stored := cell(t, loaded, "C5")
		assert.Equal(t, spreadsheet.TypeText, stored.Type())
		assert.Equal(t, spreadsheet.NewText("=SUM(B2:B3)*2"), stored)
		assert.Equal(t, spreadsheet.TypeFunction, cell(t, loaded, "B4").Type())
	})

	t.Run("Evaluation", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, SaveJSON(&buf, original))
		loaded, err := LoadJSON(&buf)
		require.NoError(t, err)

		for _, address := range []string{"B4", "B5", "A5", "C5"} {
			want, err := original.GetValue(spreadsheet.MustCoordinate(address))
			require.NoError(t, err)
			assert.True(t, want.Equal(value(t, loaded, address)), address)
		}
	})
}

func TestLoadYAML(t *testing.T) {
	doc := `
name: Scores
columns:
  - coordinate: B1
    title: Score
rows:
  - coordinate: A2
    title: Alice
  - coordinate: A3
    title: Bob
cells:
  - coordinate: B2
    data: {value: "90", type: int}
  - coordinate: B3
    data: {value: "70", type: int}
  - coordinate: B4
    data: {value: "=AVG(B2:B3)", type: int}
`
	table, err := LoadYAML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Scores", table.Name())
	assert.Equal(t, spreadsheet.NewText("Bob"), cell(t, table, "A3"))
	assert.True(t, value(t, table, "B4").Equal(spreadsheet.NewDecimalFromInt(80, 0)))
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	original := sampleTable(t)

	for _, name := range []string{"sheet.json", "sheet.yaml", "sheet.YML"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, SaveFile(path, original))

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			assertSameCells(t, original, loaded)
		})
	}

	t.Run("UnsupportedFormat", func(t *testing.T) {
		err := SaveFile(filepath.Join(dir, "sheet.csv"), original)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)

		_, err = LoadFile(filepath.Join(dir, "sheet.txt"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "absent.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("ErrorNamesFile", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"Name": ""}`), 0o600))
		_, err := LoadFile(path)
		require.ErrorIs(t, err, spreadsheet.ErrInvalidTableName)
		assert.ErrorContains(t, err, "broken.json")
	})
}
