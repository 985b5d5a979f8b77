package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowId(t *testing.T) {
	_, err := NewRowId(0)
	require.ErrorIs(t, err, ErrRowOutOfRange)
	require.ErrorIs(t, err, ErrRange)
	assert.EqualError(t, err, "The '0' is out of range")

	for _, n := range []int{1, 2, 9, 100, 65535} {
		r, err := NewRowId(n)
		require.NoError(t, err)
		next, err := r.NextValue()
		require.NoError(t, err)
		back, err := next.PreviousValue()
		require.NoError(t, err)
		assert.Equal(t, r, back)
		assert.Equal(t, n, back.Value())
	}

	_, err = RowId(1).PreviousValue()
	assert.ErrorIs(t, err, ErrRange)
}

func TestColumnId(t *testing.T) {
	c, err := NewColumnId('b')
	require.NoError(t, err)
	assert.Equal(t, ColumnId('B'), c)
	assert.Equal(t, 2, c.Index())
	assert.Equal(t, "B", c.String())

	for _, bad := range []rune{'@', '[', '1', 'é'} {
		_, err := NewColumnId(bad)
		assert.ErrorIs(t, err, ErrColumnOutOfRange, "column %q", bad)
	}

	for ch := rune('A'); ch <= 'Z'; ch++ {
		col := ColumnId(ch)
		if ch != 'Z' {
			next, err := col.NextValue()
			require.NoError(t, err)
			back, err := next.PreviousValue()
			require.NoError(t, err)
			assert.Equal(t, col, back)
		}
		if ch != 'A' {
			prev, err := col.PreviousValue()
			require.NoError(t, err)
			back, err := prev.NextValue()
			require.NoError(t, err)
			assert.Equal(t, col, back)
		}
	}

	_, err = ColumnId('A').PreviousValue()
	assert.ErrorIs(t, err, ErrRange)
	_, err = ColumnId('Z').NextValue()
	assert.ErrorIs(t, err, ErrRange)

	_, err = ColumnFromIndex(27)
	assert.ErrorIs(t, err, ErrColumnOutOfRange)
}

func TestCoordinateRoundTrip(t *testing.T) {
	for _, row := range []int{1, 2, 10, 99, 12345} {
		for ch := rune('A'); ch <= 'Z'; ch++ {
			coord, err := NewCoordinate(row, ch)
			require.NoError(t, err)
			parsed, err := ParseCoordinate(coord.String())
			require.NoError(t, err)
			assert.Equal(t, coord, parsed)
		}
	}
}

func TestParseCoordinate(t *testing.T) {
	coord, err := ParseCoordinate("b12")
	require.NoError(t, err)
	assert.Equal(t, "B12", coord.String())
	assert.Equal(t, RowId(12), coord.Row)
	assert.Equal(t, ColumnId('B'), coord.Column)

	tests := []struct {
		input  string
		target error
	}{
		{"", ErrInvalidCoordinate},
		{"A", ErrInvalidCoordinate},
		{"12", ErrInvalidCoordinate},
		{"AA1", ErrInvalidCoordinate},
		{"A1B", ErrInvalidCoordinate},
		{" A1", ErrInvalidCoordinate},
		{"A-1", ErrInvalidCoordinate},
		{"A99999999999999999999", ErrInvalidCoordinate},
		{"A0", ErrRowOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseCoordinate(tt.input)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	_, err = ParseCoordinate("1A")
	assert.EqualError(t, err, "The '1A' is not correct")
}

func TestCoordinateLess(t *testing.T) {
	assert.True(t, MustCoordinate("Z1").Less(MustCoordinate("A2")))
	assert.True(t, MustCoordinate("A2").Less(MustCoordinate("B2")))
	assert.False(t, MustCoordinate("B2").Less(MustCoordinate("B2")))
}
