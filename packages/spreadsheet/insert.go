package spreadsheet

import (
	"math"
	"strconv"
	"strings"
)

// lastRow is the largest representable row
const lastRow = RowId(math.MaxInt)

// InsertRowAfter inserts an empty row below row n. cells on rows below n
// move down by one, and every formula has its references to rows below n
// incremented, so the stored text reflects both the move and the
// adjusted references. the new cell map is built aside and swapped in
// whole; when a cell or a reference on the last row would have to move,
// the insert fails with a row range error and the table is unchanged.
func (t *Table) InsertRowAfter(n int) error {
	if n < 1 {
		return newError(CodeRowOutOfRange, "The '%d' is out of range", n)
	}
	after := RowId(n)

	next := make(map[Coordinate]DataValue, len(t.cells))
	moved, rewritten := 0, 0
	for coord, value := range t.cells {
		target := coord
		if coord.Row > after {
			if coord.Row == lastRow {
				return newError(CodeRowOutOfRange, "The '%s' is out of range", coord)
			}
			target.Row = coord.Row + 1
			moved++
		}
		shifted, changed, err := shiftFormula(value, after)
		if err != nil {
			return err
		}
		if changed {
			value = shifted
			rewritten++
		}
		next[target] = value
	}
	t.cells = next

	t.logger.Debug("inserted row", "after", n, "moved", moved, "rewritten", rewritten)
	return nil
}

// shiftFormula rewrites the references of a formula value. non-formula
// values are returned unchanged.
func shiftFormula(value DataValue, after RowId) (DataValue, bool, error) {
	switch value.Type() {
	case TypeText:
		text, _ := value.AsText()
		if !strings.HasPrefix(text, "=") {
			return value, false, nil
		}
		shifted, count, err := ShiftReferences(text, after)
		if err != nil || count == 0 {
			return value, false, err
		}
		return NewText(shifted), true, nil
	case TypeFunction:
		f, _ := value.AsFunction()
		shifted, count, err := ShiftReferences(f.Expression(), after)
		if err != nil || count == 0 {
			return value, false, err
		}
		return NewFunctionValue(f.withExpression(shifted)), true, nil
	case TypeInteger, TypeDecimal, TypeBoolean, TypeDateTime, TypePercentage:
		return value, false, nil
	}
	return value, false, nil
}

// ShiftReferences increments the row of every cell reference in formula
// whose row is greater than after. references anywhere in the expression
// are rewritten, including range endpoints and arguments of nested calls;
// quoted text and function names are left alone. it returns the new
// text and the number of references changed. a reference to the last row
// cannot move and fails with a row range error.
func ShiftReferences(formula string, after RowId) (string, int, error) {
	var sb strings.Builder
	sb.Grow(len(formula) + 4)

	count := 0
	inQuote := false
	i := 0
	for i < len(formula) {
		ch := formula[i]

		if inQuote {
			sb.WriteByte(ch)
			if ch == charQuote {
				inQuote = false
			}
			i++
			continue
		}
		if ch == charQuote {
			inQuote = true
			sb.WriteByte(ch)
			i++
			continue
		}

		// a word starts at a letter not preceded by another word character
		if !isLetter(rune(ch)) || (i > 0 && isWordByte(formula[i-1])) {
			sb.WriteByte(ch)
			i++
			continue
		}

		end := i
		for end < len(formula) && isWordByte(formula[end]) {
			end++
		}
		word := formula[i:end]
		called := end < len(formula) && formula[end] == charLParen

		if !called && isCoordinateText(word) {
			if row, err := strconv.Atoi(word[1:]); err == nil && row > int(after) {
				if RowId(row) == lastRow {
					return formula, 0, newError(CodeRowOutOfRange, "The '%s' is out of range", word)
				}
				sb.WriteByte(word[0])
				sb.WriteString(strconv.Itoa(row + 1))
				count++
				i = end
				continue
			}
		}
		sb.WriteString(word)
		i = end
	}

	return sb.String(), count, nil
}

// isWordByte reports whether b may be part of a reference or name
func isWordByte(b byte) bool {
	return isLetter(rune(b)) || isDigit(rune(b)) || b == charUnderscore
}
