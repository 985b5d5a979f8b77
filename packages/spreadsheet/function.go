package spreadsheet

import (
	"strings"
	"unicode"
)

// knownFunctions is the set of function names a Function value may carry
var knownFunctions = map[string]struct{}{
	"SUM":     {},
	"AVG":     {},
	"AVERAGE": {},
	"COUNT":   {},
	"MIN":     {},
	"MAX":     {},
	"CONCAT":  {},
}

// IsKnownFunction reports whether name (any case) is a supported function
func IsKnownFunction(name string) bool {
	_, ok := knownFunctions[strings.ToUpper(name)]
	return ok
}

// Function is a validated function-call expression such as "SUM(A1:A3)",
// stored without a leading '='. the expected type describes the intended
// result format; evaluation does not coerce to it.
type Function struct {
	expression string
	expected   ValueType
}

// NewFunction creates a function expecting a decimal result
func NewFunction(expression string) (Function, error) {
	return NewTypedFunction(expression, TypeDecimal)
}

// NewTypedFunction validates expression and creates a function with the
// given expected result type
func NewTypedFunction(expression string, expected ValueType) (Function, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return Function{}, newError(CodeInvalidFunctionValue, "Invalid function value: '%s'", expression)
	}
	if strings.HasPrefix(trimmed, "=") {
		return Function{}, newError(CodeInvalidFunctionValue,
			"Function value should not start with '='. Use '%s' instead of '%s'.", trimmed[1:], trimmed)
	}
	if name := headName(trimmed); !IsKnownFunction(name) {
		return Function{}, newError(CodeUnknownFunction,
			"Unknown function: '%s'. Supported functions are SUM, AVG, AVERAGE, COUNT, MIN, MAX and CONCAT", expression)
	}
	return Function{expression: trimmed, expected: expected}, nil
}

// TryNewFunction is NewTypedFunction reporting success instead of an error
func TryNewFunction(expression string, expected ValueType) (Function, bool) {
	f, err := NewTypedFunction(expression, expected)
	return f, err == nil
}

// MustFunction is like NewFunction but panics on error
func MustFunction(expression string) Function {
	f, err := NewFunction(expression)
	if err != nil {
		panic(err)
	}
	return f
}

// headName returns the upper-cased text before the first '(' or the
// whole expression for a bare name
func headName(expression string) string {
	if i := strings.IndexByte(expression, '('); i >= 0 {
		return strings.ToUpper(strings.TrimSpace(expression[:i]))
	}
	return strings.ToUpper(expression)
}

// Expression returns the expression text, without '='
func (f Function) Expression() string {
	return f.expression
}

// ExpectedType returns the declared result type
func (f Function) ExpectedType() ValueType {
	return f.expected
}

func (f Function) String() string {
	return f.expression
}

// withExpression returns a copy of f carrying a rewritten expression. the
// head name is unchanged by reference rewriting, so no revalidation is
// needed.
func (f Function) withExpression(expression string) Function {
	return Function{expression: expression, expected: f.expected}
}

// Name returns the upper-cased function name
func (f Function) Name() string {
	return headName(f.expression)
}

// HasArguments reports whether the expression has an argument list
func (f Function) HasArguments() bool {
	return strings.ContainsRune(f.expression, '(') && strings.ContainsRune(f.expression, ')')
}

// Arguments returns the text between the first '(' and the last ')'. a
// bare name has no arguments.
func (f Function) Arguments() (string, error) {
	return callArguments(f.expression)
}

// callArguments extracts the argument text of a call expression
func callArguments(expression string) (string, error) {
	open := strings.IndexByte(expression, '(')
	if open < 0 {
		return "", nil
	}
	closing := strings.LastIndexByte(expression, ')')
	if closing < 0 || closing <= open {
		return "", newError(CodeInvalidFunctionSyntax,
			"Invalid function syntax: '%s'. Functions must have matching parentheses and valid structure", expression)
	}
	return expression[open+1 : closing], nil
}

// ArgumentTokens splits the argument text on top-level commas and
// whitespace. nested calls and "A1:A3" ranges stay whole, as does
// double-quoted text.
func (f Function) ArgumentTokens() ([]string, error) {
	args, err := f.Arguments()
	if err != nil {
		return nil, err
	}
	return splitArguments(args), nil
}

// splitArguments tokenizes a function argument list. a ':' suppresses
// comma splitting until the range token ends at a comma, whitespace or
// the end of input.
func splitArguments(args string) []string {
	if strings.TrimSpace(args) == "" {
		return []string{}
	}

	var (
		tokens  []string
		current strings.Builder
		depth   int
		inRange bool
		inQuote bool
	)
	runes := []rune(args)

	flush := func() {
		if tok := strings.TrimSpace(current.String()); tok != "" {
			tokens = append(tokens, tok)
		}
		current.Reset()
	}

	for i, ch := range runes {
		if inQuote {
			current.WriteRune(ch)
			if ch == charQuote {
				inQuote = false
			}
			continue
		}

		switch {
		case ch == charQuote:
			inQuote = true
			current.WriteRune(ch)
		case ch == charLParen:
			depth++
			current.WriteRune(ch)
		case ch == charRParen:
			depth--
			current.WriteRune(ch)
		case unicode.IsSpace(ch) && depth == 0:
			flush()
		case ch == charComma && depth == 0 && !inRange:
			flush()
		case ch == charColon:
			current.WriteRune(ch)
			// a range inside a nested call is already protected by depth
			inRange = depth == 0
		default:
			current.WriteRune(ch)
			if inRange {
				last := i == len(runes)-1
				if last || runes[i+1] == charComma || unicode.IsSpace(runes[i+1]) {
					inRange = false
				}
			}
		}
	}
	flush()

	return tokens
}

// IsNested reports whether any argument contains a parenthesized call
func (f Function) IsNested() bool {
	args, err := f.Arguments()
	if err != nil || strings.TrimSpace(args) == "" {
		return false
	}
	return strings.ContainsRune(args, '(') && strings.ContainsRune(args, ')')
}

// Nested returns the argument tokens that are themselves valid function
// calls, sharing f's expected type. tokens that fail validation are
// skipped.
func (f Function) Nested() []Function {
	tokens, err := f.ArgumentTokens()
	if err != nil {
		return nil
	}
	nested := make([]Function, 0)
	for _, tok := range tokens {
		if !strings.ContainsRune(tok, '(') || !strings.ContainsRune(tok, ')') {
			continue
		}
		if child, ok := TryNewFunction(tok, f.expected); ok {
			nested = append(nested, child)
		}
	}
	return nested
}
