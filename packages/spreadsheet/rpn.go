package spreadsheet

import (
	"strconv"
	"strings"
)

// precedence of binary operators. unary operators bind tighter than any
// binary operator.
var precedence = map[string]int{
	"&": 0,
	"+": 1,
	"-": 1,
	"*": 2,
	"/": 2,
	"^": 3,
}

const unaryPrecedence = 4

func tokenPrecedence(tok Token) int {
	if tok.Type == TokenUnaryOp {
		return unaryPrecedence
	}
	return precedence[tok.Value]
}

// ToRPN converts infix tokens to postfix using the shunting-yard
// algorithm. binary operators are left-associative: operators of equal or
// higher precedence are popped before an incoming one is pushed.
func ToRPN(tokens []Token) ([]Token, error) {
	output := make([]Token, 0, len(tokens))
	stack := make([]Token, 0)

	for _, tok := range tokens {
		switch tok.Type {
		case TokenNumber, TokenPercentage, TokenString, TokenCell, TokenFunction:
			output = append(output, tok)
		case TokenUnaryOp:
			// prefix operators have nothing to their left to pop
			stack = append(stack, tok)
		case TokenBinaryOp:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.Type == TokenLeftParen || tokenPrecedence(top) < tokenPrecedence(tok) {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, tok)
		case TokenLeftParen:
			stack = append(stack, tok)
		case TokenRightParen:
			matched := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Type == TokenLeftParen {
					matched = true
					break
				}
				output = append(output, top)
			}
			if !matched {
				return nil, newError(CodeUnbalancedParentheses,
					"Invalid expression: unmatched ')' at position %d. Check for balanced parentheses and proper syntax", tok.Pos)
			}
		case TokenUnknown:
			return nil, unknownTokenError(tok.Value)
		case TokenEOF:
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Type == TokenLeftParen {
			return nil, newError(CodeUnbalancedParentheses,
				"Invalid expression: unmatched '(' at position %d. Check for balanced parentheses and proper syntax", top.Pos)
		}
		output = append(output, top)
	}

	return output, nil
}

// evaluator runs one top-level evaluation. every nested formula, argument
// and reference shares its context, so the cycle guard sees the whole
// path.
type evaluator struct {
	table *Table
	ctx   *evalContext
}

var _ Environment = (*evaluator)(nil)

// Resolve evaluates the cell at coord through the cycle guard
func (e *evaluator) Resolve(coord Coordinate) (DataValue, error) {
	return e.table.resolve(e, coord)
}

// Evaluate evaluates a formula body (no leading '=')
func (e *evaluator) Evaluate(expression string) (DataValue, error) {
	trimmed := strings.TrimSpace(expression)

	// whole-expression calls and bare function names go straight to the
	// dispatcher so a missing argument list is a syntax error
	if isSingleCall(trimmed) || IsKnownFunction(trimmed) {
		return e.call(trimmed)
	}

	tokens, err := NewLexer(trimmed).Tokenize()
	if err != nil {
		return Empty, err
	}
	rpn, err := ToRPN(tokens)
	if err != nil {
		return Empty, err
	}
	return e.evaluateRPN(rpn)
}

// call dispatches a call expression such as "SUM(A1:A3)"
func (e *evaluator) call(expression string) (DataValue, error) {
	if !strings.ContainsRune(expression, charLParen) {
		return Empty, newError(CodeInvalidFunctionSyntax,
			"Invalid function syntax: '%s'. Functions must have matching parentheses and valid structure", expression)
	}
	args, err := callArguments(expression)
	if err != nil {
		return Empty, err
	}
	return e.table.functions.Call(e, headName(expression), splitArguments(args))
}

// evaluateRPN runs the postfix stack machine
func (e *evaluator) evaluateRPN(rpn []Token) (DataValue, error) {
	stack := make([]DataValue, 0, len(rpn))

	for _, tok := range rpn {
		switch tok.Type {
		case TokenCell:
			coord, err := ParseCoordinate(tok.Value)
			if err != nil {
				return Empty, err
			}
			v, err := e.Resolve(coord)
			if err != nil {
				return Empty, err
			}
			stack = append(stack, v)
		case TokenNumber:
			v, err := parseNumber(tok.Value)
			if err != nil {
				return Empty, err
			}
			stack = append(stack, v)
		case TokenPercentage:
			p, err := ParsePercentage(tok.Value)
			if err != nil {
				return Empty, err
			}
			stack = append(stack, NewPercentageValue(p))
		case TokenString:
			stack = append(stack, NewText(tok.Value))
		case TokenFunction:
			v, err := e.call(tok.Value)
			if err != nil {
				return Empty, err
			}
			stack = append(stack, v)
		case TokenUnaryOp:
			if len(stack) < 1 {
				return Empty, newError(CodeInsufficientOperands,
					"Insufficient operands for operator '%s'. Unary operators require one operand", tok.Value)
			}
			operand := stack[len(stack)-1]
			var (
				v   DataValue
				err error
			)
			if tok.Value == "-" {
				v, err = Negate(operand)
			} else {
				v, err = Plus(operand)
			}
			if err != nil {
				return Empty, err
			}
			stack[len(stack)-1] = v
		case TokenBinaryOp:
			if len(stack) < 2 {
				return Empty, newError(CodeInsufficientOperands,
					"Insufficient operands for operator '%s'. Binary operators require two operands", tok.Value)
			}
			right := stack[len(stack)-1]
			left := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			v, err := Apply(Operator(tok.Value), left, right)
			if err != nil {
				return Empty, err
			}
			stack = append(stack, v)
		default:
			return Empty, unknownTokenError(tok.Value)
		}
	}

	if len(stack) != 1 {
		return Empty, newError(CodeInvalidExpression,
			"Invalid expression: The formula could not be evaluated. Check for balanced parentheses and proper syntax")
	}
	return stack[0], nil
}

// parseNumber turns a numeric literal into an integer when it fits and a
// decimal otherwise
func parseNumber(text string) (DataValue, error) {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return NewInteger(i), nil
	}
	return NewDecimalFromString(text)
}

// isSingleCall reports whether expression is exactly one function call:
// a name, '(' and the ')' matching it as the last character
func isSingleCall(expression string) bool {
	open := strings.IndexByte(expression, charLParen)
	if open <= 0 || !isIdentifier(strings.TrimSpace(expression[:open])) {
		return false
	}
	depth := 0
	inQuote := false
	for i := open; i < len(expression); i++ {
		ch := expression[i]
		if inQuote {
			if ch == charQuote {
				inQuote = false
			}
			continue
		}
		switch ch {
		case charQuote:
			inQuote = true
		case charLParen:
			depth++
		case charRParen:
			depth--
			if depth == 0 {
				return i == len(expression)-1
			}
		}
	}
	return false
}
