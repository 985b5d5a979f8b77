package spreadsheet

import (
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Percentage is a percent amount, e.g. 50 for "50%". arithmetic uses its
// ratio (value/100).
type Percentage struct {
	value *apd.Decimal
}

// hundred is the divisor used to turn a percentage into a ratio
var hundred = apd.New(100, 0)

// NewPercentage creates a percentage from its percent amount. d is copied.
func NewPercentage(d *apd.Decimal) Percentage {
	return Percentage{value: new(apd.Decimal).Set(d)}
}

// NewPercentageFromInt creates the percentage coeff * 10^exp percent
func NewPercentageFromInt(coeff int64, exp int32) Percentage {
	return Percentage{value: apd.New(coeff, exp)}
}

// ParsePercentage parses text such as "50%", "12.5%" or "-10%".
// surrounding whitespace is ignored.
func ParsePercentage(s string) (Percentage, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Percentage{}, newError(CodeEmptyPercentageText, "Percentage text cannot be null or empty")
	}
	if !strings.HasSuffix(trimmed, "%") {
		return Percentage{}, newError(CodeInvalidPercentageFormat, "Invalid percentage format: '%s'. Expected a number followed by '%%'", s)
	}
	number := strings.TrimSpace(strings.TrimSuffix(trimmed, "%"))
	if !isDecimalText(number) {
		return Percentage{}, newError(CodeInvalidPercentageFormat, "Invalid percentage format: '%s'. Expected a number followed by '%%'", s)
	}
	d, _, err := apd.NewFromString(number)
	if err != nil {
		return Percentage{}, newError(CodeInvalidPercentageFormat, "Invalid percentage format: '%s'. Expected a number followed by '%%'", s)
	}
	return Percentage{value: d}, nil
}

// TryParsePercentage is ParsePercentage without the error detail
func TryParsePercentage(s string) (Percentage, bool) {
	p, err := ParsePercentage(s)
	return p, err == nil
}

// Value returns a copy of the percent amount
func (p Percentage) Value() *apd.Decimal {
	return new(apd.Decimal).Set(p.amount())
}

// Ratio returns value/100
func (p Percentage) Ratio() *apd.Decimal {
	var r apd.Decimal
	// dividing by a non-zero constant cannot trap
	_, _ = decimalContext.Quo(&r, p.amount(), hundred)
	return &r
}

// Equal compares the percent amounts numerically
func (p Percentage) Equal(o Percentage) bool {
	return p.amount().Cmp(o.amount()) == 0
}

// String renders the percentage as "42.5%"
func (p Percentage) String() string {
	return reduced(p.amount()) + "%"
}

// amount returns the value, treating the zero Percentage as 0%
func (p Percentage) amount() *apd.Decimal {
	if p.value == nil {
		return apd.New(0, 0)
	}
	return p.value
}
