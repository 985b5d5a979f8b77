package spreadsheet

import (
	"strconv"
)

const (
	// MinColumn and MaxColumn bound the single-letter column space
	MinColumn = 'A'
	MaxColumn = 'Z'
	// columnCount is the number of addressable columns
	columnCount = MaxColumn - MinColumn + 1
)

// RowId is a one-based row number
type RowId int

// NewRowId validates and returns a row id. rows start at 1.
func NewRowId(n int) (RowId, error) {
	if n < 1 {
		return 0, newError(CodeRowOutOfRange, "The '%d' is out of range", n)
	}
	return RowId(n), nil
}

// Value returns the row number
func (r RowId) Value() int {
	return int(r)
}

// NextValue returns the row below r
func (r RowId) NextValue() (RowId, error) {
	return NewRowId(int(r) + 1)
}

// PreviousValue returns the row above r. row 1 has no previous row.
func (r RowId) PreviousValue() (RowId, error) {
	return NewRowId(int(r) - 1)
}

func (r RowId) String() string {
	return strconv.Itoa(int(r))
}

// ColumnId is a single column letter, A through Z, always uppercase
type ColumnId rune

// NewColumnId validates a column letter. lowercase letters are
// normalized to uppercase.
func NewColumnId(ch rune) (ColumnId, error) {
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	if ch < MinColumn || ch > MaxColumn {
		return 0, newError(CodeColumnOutOfRange, "The '%c' is out of range", ch)
	}
	return ColumnId(ch), nil
}

// ColumnFromIndex maps 1..26 to A..Z
func ColumnFromIndex(n int) (ColumnId, error) {
	if n < 1 || n > columnCount {
		return 0, newError(CodeColumnOutOfRange, "The '%d' is out of range", n)
	}
	return ColumnId(MinColumn + rune(n-1)), nil
}

// Index returns the one-based column index (A=1)
func (c ColumnId) Index() int {
	return int(c-MinColumn) + 1
}

// Letter returns the column letter
func (c ColumnId) Letter() rune {
	return rune(c)
}

// NextValue returns the column to the right. Z has no next column.
func (c ColumnId) NextValue() (ColumnId, error) {
	return ColumnFromIndex(c.Index() + 1)
}

// PreviousValue returns the column to the left. A has no previous column.
func (c ColumnId) PreviousValue() (ColumnId, error) {
	return ColumnFromIndex(c.Index() - 1)
}

func (c ColumnId) String() string {
	return string(rune(c))
}

// Coordinate addresses a single cell
type Coordinate struct {
	Row    RowId
	Column ColumnId
}

// NewCoordinate validates the row and column parts and builds a coordinate
func NewCoordinate(row int, column rune) (Coordinate, error) {
	r, err := NewRowId(row)
	if err != nil {
		return Coordinate{}, err
	}
	c, err := NewColumnId(column)
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Row: r, Column: c}, nil
}

// MustCoordinate is like ParseCoordinate but panics on error. meant for
// tests and package-level fixtures.
func MustCoordinate(s string) Coordinate {
	coord, err := ParseCoordinate(s)
	if err != nil {
		panic(err)
	}
	return coord
}

// ParseCoordinate parses canonical cell address text. the accepted form is
// exactly one letter followed by one or more decimal digits, e.g. "B12".
// the letter is case-insensitive.
func ParseCoordinate(s string) (Coordinate, error) {
	if !isCoordinateText(s) {
		return Coordinate{}, newError(CodeInvalidCoordinate, "The '%s' is not correct", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		// digits overflowing int land here
		return Coordinate{}, newError(CodeInvalidCoordinate, "The '%s' is not correct", s)
	}
	return NewCoordinate(n, rune(s[0]))
}

// isCoordinateText checks the shape ^[A-Za-z][0-9]+$ without allocating
func isCoordinateText(s string) bool {
	if len(s) < 2 || !isLetter(rune(s[0])) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isDigit(rune(s[i])) {
			return false
		}
	}
	return true
}

// String returns the canonical address text, e.g. "B12"
func (c Coordinate) String() string {
	return c.Column.String() + c.Row.String()
}

// Less orders coordinates by row, then column
func (c Coordinate) Less(o Coordinate) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Column < o.Column
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
