package spreadsheet

import (
	"fmt"
	"math"

	"github.com/cockroachdb/apd/v3"
)

// decimalContext is shared by every decimal operation. 34 digits matches
// decimal128.
var decimalContext = apd.BaseContext.WithPrecision(34)

// Operator is an arithmetic operator of the value model
type Operator string

const (
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
	OpPower    Operator = "^"
	OpConcat   Operator = "&"
)

// operatorNames maps operators to the operation names used in messages
var operatorNames = map[Operator]string{
	OpAdd:      "Addition",
	OpSubtract: "Subtraction",
	OpMultiply: "Multiplication",
	OpDivide:   "Division",
	OpPower:    "Power",
	OpConcat:   "Concatenation",
}

func (op Operator) name() string {
	if n, ok := operatorNames[op]; ok {
		return n
	}
	return string(op)
}

// Apply dispatches a binary operator
func Apply(op Operator, left, right DataValue) (DataValue, error) {
	switch op {
	case OpAdd:
		return Add(left, right)
	case OpSubtract:
		return Subtract(left, right)
	case OpMultiply:
		return Multiply(left, right)
	case OpDivide:
		return Divide(left, right)
	case OpPower:
		return Power(left, right)
	case OpConcat:
		return Concat(left, right), nil
	}
	return Empty, newError(CodeUnknownOperator, "Unknown operator: '%s'. Supported operators are +, -, *, /, ^ and &", string(op))
}

// unsupported builds the error for an operator applied to a variant that
// does not take part in arithmetic
func unsupported(op Operator, v DataValue) error {
	return newError(CodeUnsupportedOperation, "%s (%s) operation not supported for %s type", op.name(), string(op), v.Type())
}

// checkArithmetic rejects operands that are neither numbers nor
// percentages
func checkArithmetic(op Operator, left, right DataValue) error {
	for _, v := range []DataValue{left, right} {
		switch v.Type() {
		case TypeInteger, TypeDecimal, TypePercentage:
		case TypeText, TypeBoolean, TypeDateTime, TypeFunction:
			return unsupported(op, v)
		}
	}
	return nil
}

// Add sums two numbers. int+int stays an integer and fails on overflow;
// any decimal operand makes the result decimal. a percentage operand is
// ambiguous and rejected.
func Add(left, right DataValue) (DataValue, error) {
	if err := checkArithmetic(OpAdd, left, right); err != nil {
		return Empty, err
	}
	if left.Type() == TypePercentage || right.Type() == TypePercentage {
		return Empty, newError(CodeAmbiguousPercentage, "Adding Percentage to number is ambiguous.")
	}
	if left.Type() == TypeInteger && right.Type() == TypeInteger {
		a, b := left.integer, right.integer
		if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
			return Empty, newError(CodeOverflow, "Arithmetic operation resulted in an overflow: %d + %d", a, b)
		}
		return NewInteger(a + b), nil
	}
	return decimalOp(OpAdd, decimalContext.Add, toDecimal(left), toDecimal(right))
}

// Subtract follows the same promotion rules as Add
func Subtract(left, right DataValue) (DataValue, error) {
	if err := checkArithmetic(OpSubtract, left, right); err != nil {
		return Empty, err
	}
	if left.Type() == TypePercentage || right.Type() == TypePercentage {
		return Empty, newError(CodeAmbiguousPercentage, "Subtracting Percentage from number is ambiguous.")
	}
	if left.Type() == TypeInteger && right.Type() == TypeInteger {
		a, b := left.integer, right.integer
		if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
			return Empty, newError(CodeOverflow, "Arithmetic operation resulted in an overflow: %d - %d", a, b)
		}
		return NewInteger(a - b), nil
	}
	return decimalOp(OpSubtract, decimalContext.Sub, toDecimal(left), toDecimal(right))
}

// Multiply multiplies two numbers. percentages are converted to their
// ratio first and always produce a decimal.
func Multiply(left, right DataValue) (DataValue, error) {
	if err := checkArithmetic(OpMultiply, left, right); err != nil {
		return Empty, err
	}
	if left.Type() == TypeInteger && right.Type() == TypeInteger {
		a, b := left.integer, right.integer
		if a != 0 && b != 0 {
			p := a * b
			if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
				return Empty, newError(CodeOverflow, "Arithmetic operation resulted in an overflow: %d * %d", a, b)
			}
			return NewInteger(p), nil
		}
		return NewInteger(0), nil
	}
	return decimalOp(OpMultiply, decimalContext.Mul, toDecimal(left), toDecimal(right))
}

// Divide always yields a decimal, even for two integers. a zero divisor
// is a numeric fault.
func Divide(left, right DataValue) (DataValue, error) {
	if err := checkArithmetic(OpDivide, left, right); err != nil {
		return Empty, err
	}
	divisor := toDecimal(right)
	if divisor.IsZero() {
		return Empty, newError(CodeDivisionByZero, "Attempted to divide by zero.")
	}
	return decimalOp(OpDivide, decimalContext.Quo, toDecimal(left), divisor)
}

// Power raises left to right. the result is always decimal. percentages
// only take part in multiplication and division.
func Power(left, right DataValue) (DataValue, error) {
	for _, v := range []DataValue{left, right} {
		if !v.IsNumeric() {
			return Empty, unsupported(OpPower, v)
		}
	}
	return decimalOp(OpPower, decimalContext.Pow, toDecimal(left), toDecimal(right))
}

// Concat joins the rendered text of both operands
func Concat(left, right DataValue) DataValue {
	return NewText(left.String() + right.String())
}

// Negate is unary minus
func Negate(v DataValue) (DataValue, error) {
	switch v.Type() {
	case TypeInteger:
		if v.integer == math.MinInt64 {
			return Empty, newError(CodeOverflow, "Arithmetic operation resulted in an overflow: -(%d)", v.integer)
		}
		return NewInteger(-v.integer), nil
	case TypeDecimal:
		return DataValue{kind: TypeDecimal, decimal: new(apd.Decimal).Neg(v.decimal)}, nil
	case TypeText, TypeBoolean, TypeDateTime, TypePercentage, TypeFunction:
		return Empty, newError(CodeUnsupportedOperation, "Unary - not supported for %s type", v.Type())
	}
	return Empty, newError(CodeUnsupportedOperation, "Unary - not supported for %s type", v.Type())
}

// Plus is unary plus; it only checks that v is a number
func Plus(v DataValue) (DataValue, error) {
	switch v.Type() {
	case TypeInteger, TypeDecimal:
		return v, nil
	case TypeText, TypeBoolean, TypeDateTime, TypePercentage, TypeFunction:
		return Empty, newError(CodeUnsupportedOperation, "Unary + not supported for %s type", v.Type())
	}
	return Empty, newError(CodeUnsupportedOperation, "Unary + not supported for %s type", v.Type())
}

// toDecimal converts a number or percentage to a decimal operand.
// callers have already rejected the other variants.
func toDecimal(v DataValue) *apd.Decimal {
	switch v.Type() {
	case TypeInteger:
		return new(apd.Decimal).SetInt64(v.integer)
	case TypeDecimal:
		return v.decimal
	case TypePercentage:
		return v.percent.Ratio()
	}
	return apd.New(0, 0)
}

// decimalOp runs an apd operation and maps its trapped conditions. an
// overflow or a division by zero becomes a numeric fault; any other
// trapped condition is returned as-is and stays unclassified.
func decimalOp(op Operator, fn func(d, x, y *apd.Decimal) (apd.Condition, error), x, y *apd.Decimal) (DataValue, error) {
	var res apd.Decimal
	cond, err := fn(&res, x, y)
	if err != nil {
		switch {
		case cond&(apd.Overflow|apd.SystemOverflow) != 0:
			return Empty, newError(CodeOverflow, "Arithmetic operation resulted in an overflow: %s %s %s", x.Text('f'), string(op), y.Text('f'))
		case cond&apd.DivisionByZero != 0:
			return Empty, newError(CodeDivisionByZero, "Attempted to divide by zero.")
		}
		return Empty, fmt.Errorf("%s of %s and %s: %w", op.name(), x.Text('f'), y.Text('f'), err)
	}
	return DataValue{kind: TypeDecimal, decimal: &res}, nil
}
