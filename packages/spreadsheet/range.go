package spreadsheet

import (
	"iter"
	"strings"
)

// MaxRangeLength is the largest number of cells a single range may span
const MaxRangeLength = 1 << 20

// Range represents a lazy range for evaluating function arguments
type Range interface {
	Bounds() CellRange
	Iterate() iter.Seq[Coordinate]
}

// CellRange is an inclusive, contiguous span of rows within one column
type CellRange struct {
	Column ColumnId
	Start  RowId
	End    RowId
}

var _ Range = CellRange{}

// ParseRange parses "A1:A3" range text. both endpoints must be in the
// same column; the rows are order-normalized, so "A3:A1" is the same
// range. a lone coordinate is a one-cell range.
func ParseRange(text string) (CellRange, error) {
	parts := strings.Split(text, ":")
	switch len(parts) {
	case 1:
		coord, err := ParseCoordinate(strings.TrimSpace(text))
		if err != nil {
			return CellRange{}, err
		}
		return CellRange{Column: coord.Column, Start: coord.Row, End: coord.Row}, nil
	case 2:
		// handled below
	default:
		return CellRange{}, newError(CodeInvalidRangeFormat,
			"Invalid range format: '%s'. Expected format is 'A1:A3' or single cell reference like 'A1'", text)
	}

	start, err := ParseCoordinate(strings.TrimSpace(parts[0]))
	if err != nil {
		return CellRange{}, err
	}
	end, err := ParseCoordinate(strings.TrimSpace(parts[1]))
	if err != nil {
		return CellRange{}, err
	}

	if start.Column != end.Column {
		return CellRange{}, newError(CodeUnsupportedComplexRange,
			"Complex ranges not yet supported: '%s'. Only single-column ranges like 'A1:A3' are supported", text)
	}

	r := CellRange{
		Column: start.Column,
		Start:  min(start.Row, end.Row),
		End:    max(start.Row, end.Row),
	}
	if r.End-r.Start >= MaxRangeLength {
		return CellRange{}, newError(CodeRangeTooLarge,
			"Range '%s' spans more than %d cells", text, MaxRangeLength)
	}
	return r, nil
}

// Bounds returns the range itself
func (r CellRange) Bounds() CellRange {
	return r
}

// Len returns the number of cells in the range
func (r CellRange) Len() int {
	return int(r.End-r.Start) + 1
}

// Contains checks if coord lies inside the range
func (r CellRange) Contains(coord Coordinate) bool {
	return coord.Column == r.Column && coord.Row >= r.Start && coord.Row <= r.End
}

// Iterate returns an iterator over the coordinates of the range, top to
// bottom
func (r CellRange) Iterate() iter.Seq[Coordinate] {
	return func(yield func(Coordinate) bool) {
		if r.End < r.Start {
			return
		}
		// stop on End before incrementing so a range ending on the last
		// representable row cannot wrap
		for row := r.Start; ; row++ {
			if !yield(Coordinate{Row: row, Column: r.Column}) || row == r.End {
				return
			}
		}
	}
}

// String returns "A1:A3", or just "A1" for a one-cell range
func (r CellRange) String() string {
	start := Coordinate{Row: r.Start, Column: r.Column}
	if r.Start == r.End {
		return start.String()
	}
	return start.String() + ":" + Coordinate{Row: r.End, Column: r.Column}.String()
}
