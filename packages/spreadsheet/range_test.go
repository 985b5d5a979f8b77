package spreadsheet

import (
	"math"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lastRowText = strconv.Itoa(math.MaxInt)

func TestParseRange(t *testing.T) {
	tests := []struct {
		text     string
		expected CellRange
	}{
		{"A1:A3", CellRange{Column: 'A', Start: 1, End: 3}},
		{"A3:A1", CellRange{Column: 'A', Start: 1, End: 3}},
		{" b2 : b5 ", CellRange{Column: 'B', Start: 2, End: 5}},
		{"C7", CellRange{Column: 'C', Start: 7, End: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			r, err := ParseRange(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, r)
		})
	}

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			text string
			err  error
		}{
			{"A1:A2:A3", ErrInvalidRangeFormat},
			{"A1:B2", ErrUnsupportedComplexRange},
			{"A0:A2", ErrInvalidCoordinate},
			{"A1:A" + lastRowText, ErrRangeTooLarge},
			{"A1:A" + strconv.Itoa(MaxRangeLength+1), ErrRangeTooLarge},
		}
		for _, tt := range tests {
			_, err := ParseRange(tt.text)
			assert.ErrorIs(t, err, tt.err, tt.text)
		}

		r, err := ParseRange("A1:A" + strconv.Itoa(MaxRangeLength))
		require.NoError(t, err)
		assert.Equal(t, MaxRangeLength, r.Len())
	})
}

func TestCellRangeIterate(t *testing.T) {
	r := CellRange{Column: 'A', Start: 2, End: 4}
	assert.Equal(t, []string{"A2", "A3", "A4"}, coordinateStrings(slices.Collect(r.Iterate())))
	assert.Equal(t, 3, r.Len())

	t.Run("LastRow", func(t *testing.T) {
		r, err := ParseRange("A" + strconv.Itoa(math.MaxInt-1) + ":A" + lastRowText)
		require.NoError(t, err)

		coords := slices.Collect(r.Iterate())
		require.Len(t, coords, 2)
		assert.Equal(t, RowId(math.MaxInt-1), coords[0].Row)
		assert.Equal(t, RowId(math.MaxInt), coords[1].Row)
		assert.Equal(t, 2, r.Len())
	})

	t.Run("SingleLastRow", func(t *testing.T) {
		r := CellRange{Column: 'Z', Start: math.MaxInt, End: math.MaxInt}
		assert.Equal(t, []string{"Z" + lastRowText}, coordinateStrings(slices.Collect(r.Iterate())))
	})

	t.Run("EarlyStop", func(t *testing.T) {
		r := CellRange{Column: 'A', Start: 1, End: 10}
		var seen []Coordinate
		for c := range r.Iterate() {
			seen = append(seen, c)
			if len(seen) == 2 {
				break
			}
		}
		assert.Len(t, seen, 2)
	})
}

func TestRangeAtLastRow(t *testing.T) {
	NewTableTestCase(t, "sum over the last two rows").
		SetInt("A"+strconv.Itoa(math.MaxInt-1), 3).
		SetInt("A"+lastRowText, 4).
		SetText("B1", "=SUM(A"+strconv.Itoa(math.MaxInt-1)+":A"+lastRowText+")").
		AssertValue("B1", NewInteger(7)).
		End()

	NewTableTestCase(t, "oversized range").
		SetText("B1", "=SUM(A1:A"+lastRowText+")").
		AssertErrorIs("B1", ErrRangeTooLarge).
		AssertErrorIs("B1", ErrRange).
		End()

	coords, err := Precedents("=SUM(A" + strconv.Itoa(math.MaxInt-1) + ":A" + lastRowText + ")")
	require.NoError(t, err)
	assert.Len(t, coords, 2)
}
