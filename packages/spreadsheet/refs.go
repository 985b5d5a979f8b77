package spreadsheet

import (
	"slices"
	"strings"

	"github.com/xuri/efp"
)

// Precedents lists the cells a formula reads directly, in row-then-column
// order without duplicates. ranges are expanded. operands that are not
// cell references (named ranges, booleans) are skipped; a malformed
// range fails.
func Precedents(formula string) ([]Coordinate, error) {
	formula = strings.TrimSpace(formula)
	if !strings.HasPrefix(formula, "=") {
		formula = "=" + formula
	}

	ps := efp.ExcelParser()
	tokens := ps.Parse(formula)

	seen := make(map[Coordinate]struct{})
	var coords []Coordinate
	add := func(c Coordinate) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		coords = append(coords, c)
	}

	for _, token := range tokens {
		if token.TType != efp.TokenTypeOperand || token.TSubType != efp.TokenSubTypeRange {
			continue
		}
		ref := token.TValue
		if strings.ContainsRune(ref, charColon) {
			r, err := ParseRange(ref)
			if err != nil {
				return nil, err
			}
			for c := range r.Iterate() {
				add(c)
			}
			continue
		}
		if !isCoordinateText(ref) {
			continue
		}
		c, err := ParseCoordinate(ref)
		if err != nil {
			return nil, err
		}
		add(c)
	}

	slices.SortFunc(coords, compareCoordinates)
	return coords, nil
}

// CellPrecedents lists the direct precedents of the formula stored at
// coord. a cell that holds no formula has none.
func (t *Table) CellPrecedents(coord Coordinate) ([]Coordinate, error) {
	cell := t.GetCell(coord)
	switch cell.Type() {
	case TypeText:
		text, _ := cell.AsText()
		if !strings.HasPrefix(text, "=") {
			return []Coordinate{}, nil
		}
		return Precedents(text)
	case TypeFunction:
		f, _ := cell.AsFunction()
		return Precedents(f.Expression())
	case TypeInteger, TypeDecimal, TypeBoolean, TypeDateTime, TypePercentage:
		return []Coordinate{}, nil
	}
	return []Coordinate{}, nil
}
