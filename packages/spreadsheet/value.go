package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// ValueType is the variant tag of a DataValue
type ValueType uint8

const (
	TypeText       ValueType = 0
	TypeInteger    ValueType = 1
	TypeDecimal    ValueType = 2
	TypeBoolean    ValueType = 3
	TypeDateTime   ValueType = 4
	TypePercentage ValueType = 5
	TypeFunction   ValueType = 6
)

// valueTypeNames maps value types to the names used in messages and
// template documents
var valueTypeNames = map[ValueType]string{
	TypeText:       "Text",
	TypeInteger:    "Integer",
	TypeDecimal:    "Decimal",
	TypeBoolean:    "Boolean",
	TypeDateTime:   "DateTime",
	TypePercentage: "Percentage",
	TypeFunction:   "Function",
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%d)", uint8(t))
}

// ParseValueType maps a case-insensitive type name to a ValueType. both
// the short and long spellings are accepted ("int" and "integer").
func ParseValueType(name string) (ValueType, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "text", "string":
		return TypeText, true
	case "int", "integer":
		return TypeInteger, true
	case "decimal", "number":
		return TypeDecimal, true
	case "bool", "boolean":
		return TypeBoolean, true
	case "datetime", "date":
		return TypeDateTime, true
	case "percentage", "percent":
		return TypePercentage, true
	case "function":
		return TypeFunction, true
	}
	return 0, false
}

// DataValue is an immutable cell value holding exactly one of the
// ValueType variants. the zero value is empty text.
type DataValue struct {
	kind     ValueType
	text     string
	integer  int64
	decimal  *apd.Decimal // never mutated once set
	boolean  bool
	datetime time.Time
	percent  Percentage
	function Function
}

// Empty is the value of a cell that was never set
var Empty = DataValue{}

// NewText creates a text value
func NewText(s string) DataValue {
	return DataValue{kind: TypeText, text: s}
}

// NewInteger creates an integer value
func NewInteger(i int64) DataValue {
	return DataValue{kind: TypeInteger, integer: i}
}

// NewDecimal creates a decimal value. d is copied.
func NewDecimal(d *apd.Decimal) DataValue {
	return DataValue{kind: TypeDecimal, decimal: new(apd.Decimal).Set(d)}
}

// NewDecimalFromInt creates the decimal coeff * 10^exp
func NewDecimalFromInt(coeff int64, exp int32) DataValue {
	return DataValue{kind: TypeDecimal, decimal: apd.New(coeff, exp)}
}

// NewDecimalFromString parses decimal text such as "3.5". NaN and
// infinities are rejected.
func NewDecimalFromString(s string) (DataValue, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil || d.Form != apd.Finite {
		return Empty, newError(CodeInvalidNumberToken, "Invalid number token: '%s'. Expected a valid integer, decimal, or percentage value", s)
	}
	return DataValue{kind: TypeDecimal, decimal: d}, nil
}

// NewBoolean creates a boolean value
func NewBoolean(b bool) DataValue {
	return DataValue{kind: TypeBoolean, boolean: b}
}

// NewDateTime creates a date-time value
func NewDateTime(t time.Time) DataValue {
	return DataValue{kind: TypeDateTime, datetime: t}
}

// NewPercentageValue wraps a percentage
func NewPercentageValue(p Percentage) DataValue {
	return DataValue{kind: TypePercentage, percent: p}
}

// NewFunctionValue wraps a function
func NewFunctionValue(f Function) DataValue {
	return DataValue{kind: TypeFunction, function: f}
}

// Type returns the variant tag
func (v DataValue) Type() ValueType {
	return v.kind
}

func (v DataValue) AsText() (string, bool) {
	return v.text, v.kind == TypeText
}

func (v DataValue) AsInteger() (int64, bool) {
	return v.integer, v.kind == TypeInteger
}

// AsDecimal returns a copy of the decimal payload
func (v DataValue) AsDecimal() (*apd.Decimal, bool) {
	if v.kind != TypeDecimal {
		return nil, false
	}
	return new(apd.Decimal).Set(v.decimal), true
}

func (v DataValue) AsBoolean() (bool, bool) {
	return v.boolean, v.kind == TypeBoolean
}

func (v DataValue) AsDateTime() (time.Time, bool) {
	return v.datetime, v.kind == TypeDateTime
}

func (v DataValue) AsPercentage() (Percentage, bool) {
	return v.percent, v.kind == TypePercentage
}

func (v DataValue) AsFunction() (Function, bool) {
	return v.function, v.kind == TypeFunction
}

// IsEmpty reports whether v is empty text
func (v DataValue) IsEmpty() bool {
	return v.kind == TypeText && v.text == ""
}

// IsNumeric reports whether v is an integer or a decimal
func (v DataValue) IsNumeric() bool {
	return v.kind == TypeInteger || v.kind == TypeDecimal
}

// IsFormula reports whether v is evaluated rather than returned as-is:
// text starting with '=' or a function value
func (v DataValue) IsFormula() bool {
	switch v.kind {
	case TypeText:
		return strings.HasPrefix(v.text, "=")
	case TypeFunction:
		return true
	case TypeInteger, TypeDecimal, TypeBoolean, TypeDateTime, TypePercentage:
		return false
	}
	return false
}

// String renders v for display. decimals render in plain notation,
// booleans as TRUE/FALSE.
func (v DataValue) String() string {
	switch v.kind {
	case TypeText:
		return v.text
	case TypeInteger:
		return strconv.FormatInt(v.integer, 10)
	case TypeDecimal:
		return v.decimal.Text('f')
	case TypeBoolean:
		if v.boolean {
			return "TRUE"
		}
		return "FALSE"
	case TypeDateTime:
		return v.datetime.Format(time.RFC3339)
	case TypePercentage:
		return v.percent.String()
	case TypeFunction:
		return v.function.String()
	}
	return ""
}

// Equal compares variant and value. decimals compare numerically, so
// 8.5 and 8.50 are equal.
func (v DataValue) Equal(o DataValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case TypeText:
		return v.text == o.text
	case TypeInteger:
		return v.integer == o.integer
	case TypeDecimal:
		return v.decimal.Cmp(o.decimal) == 0
	case TypeBoolean:
		return v.boolean == o.boolean
	case TypeDateTime:
		return v.datetime.Equal(o.datetime)
	case TypePercentage:
		return v.percent.Equal(o.percent)
	case TypeFunction:
		return v.function == o.function
	}
	return false
}

// Key returns a string that is equal for two values exactly when Equal
// reports true, for use as a map key
func (v DataValue) Key() string {
	switch v.kind {
	case TypeDecimal:
		return v.kind.String() + ":" + reduced(v.decimal)
	case TypePercentage:
		return v.kind.String() + ":" + reduced(v.percent.value)
	case TypeDateTime:
		return v.kind.String() + ":" + v.datetime.UTC().Format(time.RFC3339Nano)
	case TypeFunction:
		return v.kind.String() + ":" + v.function.expected.String() + ":" + v.function.expression
	case TypeText, TypeInteger, TypeBoolean:
		return v.kind.String() + ":" + v.String()
	}
	return v.kind.String()
}

// reduced renders d without trailing zeros
func reduced(d *apd.Decimal) string {
	if d == nil {
		return "0"
	}
	var r apd.Decimal
	r.Reduce(d)
	return r.Text('f')
}

func (v DataValue) GoString() string {
	return fmt.Sprintf("%s(%q)", v.kind, v.String())
}

// ParseLiteral makes a best-effort value from user input: integer,
// decimal, percentage, TRUE/FALSE, falling back to text. formulas stay
// text so they are evaluated on read.
func ParseLiteral(s string) DataValue {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.HasPrefix(trimmed, "=") {
		return NewText(s)
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return NewInteger(i)
	}
	if isDecimalText(trimmed) {
		if d, err := NewDecimalFromString(trimmed); err == nil {
			return d
		}
	}
	if strings.HasSuffix(trimmed, "%") {
		if p, err := ParsePercentage(trimmed); err == nil {
			return NewPercentageValue(p)
		}
	}
	switch strings.ToUpper(trimmed) {
	case "TRUE":
		return NewBoolean(true)
	case "FALSE":
		return NewBoolean(false)
	}
	return NewText(s)
}

// isDecimalText accepts an optional sign, digits and at most one period.
// apd alone would also accept "NaN" and "Infinity".
func isDecimalText(s string) bool {
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	digits, periods := 0, 0
	for _, ch := range s {
		switch {
		case isDigit(ch):
			digits++
		case ch == '.':
			periods++
		default:
			return false
		}
	}
	return digits > 0 && periods <= 1
}
