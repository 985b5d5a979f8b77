package spreadsheet

import (
	"strings"
)

// Environment is what a function sees of the evaluation it runs in.
// Resolve goes through the cycle guard; Evaluate runs an argument
// expression (a literal, an arithmetic expression or a nested call).
type Environment interface {
	Resolve(coord Coordinate) (DataValue, error)
	Evaluate(expression string) (DataValue, error)
}

// Functions dispatches function calls by name. args are the raw argument
// tokens, already split on top-level commas.
type Functions interface {
	Call(env Environment, name string, args []string) (DataValue, error)
}

// BuiltInFunctions contains all built-in table functions
type BuiltInFunctions struct{}

var _ Functions = (*BuiltInFunctions)(nil)

// NewDefaultBuiltInFunctions creates the built-in function set
func NewDefaultBuiltInFunctions() *BuiltInFunctions {
	return &BuiltInFunctions{}
}

// Call invokes a built-in function by name with the given arguments
func (bf *BuiltInFunctions) Call(env Environment, name string, args []string) (DataValue, error) {
	switch strings.ToUpper(name) {
	case "SUM":
		return bf.SUM(env, args)
	case "AVG", "AVERAGE":
		return bf.AVERAGE(env, args)
	case "COUNT":
		return bf.COUNT(env, args)
	case "MIN":
		return bf.MIN(env, args)
	case "MAX":
		return bf.MAX(env, args)
	case "CONCAT":
		return bf.CONCAT(env, args)
	default:
		return Empty, newError(CodeUnknownFunction,
			"Unknown function: '%s'. Supported functions are SUM, AVG, AVERAGE, COUNT, MIN, MAX and CONCAT", name)
	}
}

// SUM adds every integer and decimal member; other variants are ignored.
// an all-integer sum stays an integer.
func (bf *BuiltInFunctions) SUM(env Environment, args []string) (DataValue, error) {
	sum, _, err := sumNumeric(env, args)
	return sum, err
}

// AVERAGE divides the numeric sum by the numeric count. with no numeric
// members the result is 0 rather than a division by zero.
func (bf *BuiltInFunctions) AVERAGE(env Environment, args []string) (DataValue, error) {
	sum, count, err := sumNumeric(env, args)
	if err != nil {
		return Empty, err
	}
	if count == 0 {
		return NewInteger(0), nil
	}
	return Divide(sum, NewInteger(int64(count)))
}

// COUNT counts members that are not empty text
func (bf *BuiltInFunctions) COUNT(env Environment, args []string) (DataValue, error) {
	count := int64(0)
	err := eachValue(env, args, func(v DataValue) error {
		if !v.IsEmpty() {
			count++
		}
		return nil
	})
	if err != nil {
		return Empty, err
	}
	return NewInteger(count), nil
}

// MIN returns the smallest numeric member, or 0 if there is none
func (bf *BuiltInFunctions) MIN(env Environment, args []string) (DataValue, error) {
	return extremum(env, args, func(cmp int) bool { return cmp < 0 })
}

// MAX returns the largest numeric member, or 0 if there is none
func (bf *BuiltInFunctions) MAX(env Environment, args []string) (DataValue, error) {
	return extremum(env, args, func(cmp int) bool { return cmp > 0 })
}

// CONCAT joins the rendered text of every member
func (bf *BuiltInFunctions) CONCAT(env Environment, args []string) (DataValue, error) {
	var sb strings.Builder
	err := eachValue(env, args, func(v DataValue) error {
		sb.WriteString(v.String())
		return nil
	})
	if err != nil {
		return Empty, err
	}
	return NewText(sb.String()), nil
}

// sumNumeric adds the numeric members of args and counts them
func sumNumeric(env Environment, args []string) (DataValue, int, error) {
	sum := NewInteger(0)
	count := 0
	err := eachValue(env, args, func(v DataValue) error {
		if !v.IsNumeric() {
			return nil
		}
		next, err := Add(sum, v)
		if err != nil {
			return err
		}
		sum = next
		count++
		return nil
	})
	if err != nil {
		return Empty, 0, err
	}
	return sum, count, nil
}

// extremum keeps the numeric member for which better(cmp(candidate, best))
// holds
func extremum(env Environment, args []string, better func(cmp int) bool) (DataValue, error) {
	var best DataValue
	found := false
	err := eachValue(env, args, func(v DataValue) error {
		if !v.IsNumeric() {
			return nil
		}
		if !found || better(toDecimal(v).Cmp(toDecimal(best))) {
			best = v
			found = true
		}
		return nil
	})
	if err != nil {
		return Empty, err
	}
	if !found {
		return NewInteger(0), nil
	}
	return best, nil
}

// eachValue expands every argument token and calls fn for each resulting
// value, in order. the first error stops the walk and is returned as-is.
func eachValue(env Environment, args []string, fn func(DataValue) error) error {
	for _, arg := range args {
		values, err := argumentValues(env, arg)
		if err != nil {
			return err
		}
		for _, v := range values {
			if err := fn(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// argumentValues resolves one argument token: a range expands to its
// cells, a reference resolves, quoted text is a literal, and anything
// else is evaluated as an expression
func argumentValues(env Environment, token string) ([]DataValue, error) {
	switch {
	case isQuoted(token):
		return []DataValue{NewText(unquote(token))}, nil
	case isCoordinateText(token):
		coord, err := ParseCoordinate(token)
		if err != nil {
			return nil, err
		}
		v, err := env.Resolve(coord)
		if err != nil {
			return nil, err
		}
		return []DataValue{v}, nil
	case strings.ContainsRune(token, charColon) && !strings.ContainsAny(token, "()\""):
		r, err := ParseRange(token)
		if err != nil {
			return nil, err
		}
		values := make([]DataValue, 0, r.Len())
		for coord := range r.Iterate() {
			v, err := env.Resolve(coord)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	}

	v, err := env.Evaluate(token)
	if err != nil {
		return nil, err
	}
	return []DataValue{v}, nil
}

// isQuoted reports whether token is a single double-quoted text literal
func isQuoted(token string) bool {
	if len(token) < 2 || token[0] != charQuote || token[len(token)-1] != charQuote {
		return false
	}
	// an inner quote that is not doubled ends the literal early
	body := token[1 : len(token)-1]
	return !strings.Contains(strings.ReplaceAll(body, `""`, ""), `"`)
}

// unquote strips the surrounding quotes and collapses doubled quotes
func unquote(token string) string {
	return strings.ReplaceAll(token[1:len(token)-1], `""`, `"`)
}
