package spreadsheet

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenType represents different types of tokens in formulas
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenPercentage
	TokenString
	TokenCell
	TokenFunction
	TokenUnaryOp
	TokenBinaryOp
	TokenLeftParen
	TokenRightParen
	TokenUnknown
)

var tokenTypeNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenNumber:     "Number",
	TokenPercentage: "Percentage",
	TokenString:     "String",
	TokenCell:       "Cell",
	TokenFunction:   "Function",
	TokenUnaryOp:    "UnaryOp",
	TokenBinaryOp:   "BinaryOp",
	TokenLeftParen:  "LeftParen",
	TokenRightParen: "RightParen",
	TokenUnknown:    "Unknown",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return "TokenType(" + strconv.Itoa(int(t)) + ")"
}

// character classification constants. slightly easier to read.
const (
	charNull       = 0
	charTab        = '\t'
	charNewline    = '\n'
	charReturn     = '\r'
	charSpace      = ' '
	charQuote      = '"'
	charPercent    = '%'
	charAmpersand  = '&'
	charLParen     = '('
	charRParen     = ')'
	charAsterisk   = '*'
	charPlus       = '+'
	charComma      = ','
	charMinus      = '-'
	charPeriod     = '.'
	charSlash      = '/'
	charColon      = ':'
	charEqual      = '='
	charCaret      = '^'
	charUnderscore = '_'
)

// Token represents a lexical token with position information
type Token struct {
	Type  TokenType
	Value string
	Pos   int // rune position in input
}

// TokenState represents the lexer state used to tell unary from binary
// operators
type TokenState int

const (
	StateStart TokenState = iota
	StateAfterValue
	StateAfterOperator
	StateAfterLeftParen
	StateAfterRightParen
)

// Lexer tokenizes a formula expression (without its leading '='). a name
// directly followed by a balanced parenthesized body becomes a single
// TokenFunction, so nested calls are plain operands to the converter.
type Lexer struct {
	input  string
	runes  []rune // UTF-8 aware representation
	pos    int
	state  TokenState
	tokens []Token
}

// NewLexer creates a new lexer for the given expression
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		runes:  []rune(input),
		pos:    0,
		state:  StateStart,
		tokens: []Token{},
	}
}

// Tokenize tokenizes the entire input. unrecognized words are returned
// as TokenUnknown and classified by the converter; the only lexing
// failures are unclosed strings and unclosed function bodies.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenEOF {
			break
		}
		l.tokens = append(l.tokens, tok)
		l.updateState(tok.Type)
	}
	return l.tokens, nil
}

// updateState updates the lexer state based on the token type
func (l *Lexer) updateState(tokenType TokenType) {
	switch tokenType {
	case TokenNumber, TokenPercentage, TokenString, TokenCell, TokenFunction, TokenUnknown:
		l.state = StateAfterValue
	case TokenUnaryOp, TokenBinaryOp:
		l.state = StateAfterOperator
	case TokenLeftParen:
		l.state = StateAfterLeftParen
	case TokenRightParen:
		l.state = StateAfterRightParen
	}
}

// nextToken returns the next token from the input
func (l *Lexer) nextToken() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.runes) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	startPos := l.pos
	ch := l.current()

	switch ch {
	case charQuote:
		return l.scanString()
	case charLParen:
		l.pos++
		return Token{Type: TokenLeftParen, Value: "(", Pos: startPos}, nil
	case charRParen:
		l.pos++
		return Token{Type: TokenRightParen, Value: ")", Pos: startPos}, nil
	case charPlus, charMinus:
		l.pos++
		if l.isUnaryContext() {
			return Token{Type: TokenUnaryOp, Value: string(ch), Pos: startPos}, nil
		}
		return Token{Type: TokenBinaryOp, Value: string(ch), Pos: startPos}, nil
	case charAsterisk, charSlash, charCaret, charAmpersand:
		l.pos++
		return Token{Type: TokenBinaryOp, Value: string(ch), Pos: startPos}, nil
	}

	return l.scanWord()
}

// helper methods for character navigation and classification

// substring returns a substring of the original input based on rune positions
func (l *Lexer) substring(start, end int) string {
	if start < 0 || end > len(l.runes) || start > end {
		return ""
	}
	return string(l.runes[start:end])
}

func (l *Lexer) current() rune {
	if l.pos >= len(l.runes) {
		return charNull
	}
	return l.runes[l.pos]
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.runes) && isSpace(l.current()) {
		l.pos++
	}
}

func isSpace(ch rune) bool {
	return ch == charSpace || ch == charTab || ch == charNewline || ch == charReturn
}

// isDelimiter reports whether ch ends a word
func isDelimiter(ch rune) bool {
	switch ch {
	case charPlus, charMinus, charAsterisk, charSlash, charCaret, charAmpersand,
		charLParen, charRParen, charQuote:
		return true
	}
	return isSpace(ch)
}

// scanString scans a string literal with support for double-quote escapes
func (l *Lexer) scanString() (Token, error) {
	startPos := l.pos
	l.pos++ // consume opening quote

	var result []rune

	for l.pos < len(l.runes) {
		ch := l.current()

		if ch == charQuote {
			// check if it's an escape sequence (double quote)
			if l.pos+1 < len(l.runes) && l.runes[l.pos+1] == charQuote {
				result = append(result, charQuote)
				l.pos += 2 // consume both quotes
			} else {
				l.pos++ // consume closing quote
				return Token{Type: TokenString, Value: string(result), Pos: startPos}, nil
			}
		} else {
			result = append(result, ch)
			l.pos++
		}
	}

	return Token{}, newError(CodeInvalidExpression, "Invalid expression: unclosed string literal starting at position %d", startPos)
}

// scanWord scans a maximal run of non-delimiter characters and
// classifies it. a name immediately followed by '(' is scanned through
// its balanced body as one function-call token.
func (l *Lexer) scanWord() (Token, error) {
	startPos := l.pos
	for l.pos < len(l.runes) && !isDelimiter(l.current()) {
		l.pos++
	}
	word := l.substring(startPos, l.pos)

	if l.current() == charLParen && isIdentifier(word) {
		return l.scanFunctionCall(startPos)
	}

	return Token{Type: classifyWord(word), Value: word, Pos: startPos}, nil
}

// scanFunctionCall consumes "(" ... ")" with nesting, skipping quoted
// text, and returns the whole call as one token
func (l *Lexer) scanFunctionCall(startPos int) (Token, error) {
	depth := 0
	inQuote := false
	for l.pos < len(l.runes) {
		ch := l.current()
		l.pos++
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
				return Token{Type: TokenFunction, Value: l.substring(startPos, l.pos), Pos: startPos}, nil
			}
		}
	}
	return Token{}, newError(CodeUnbalancedParentheses,
		"Invalid function syntax: '%s'. Functions must have matching parentheses and valid structure", l.substring(startPos, l.pos))
}

// isUnaryContext checks if the current context allows for unary operators
func (l *Lexer) isUnaryContext() bool {
	// unary operators are allowed after:
	// - start of expression
	// - after another operator
	// - after left paren
	switch l.state {
	case StateStart, StateAfterOperator, StateAfterLeftParen:
		return true
	default:
		return false
	}
}

// isIdentifier reports whether s looks like a function name
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, ch := range s {
		if i == 0 && !isLetter(ch) && ch != charUnderscore {
			return false
		}
		if !isLetter(ch) && !isDigit(ch) && ch != charUnderscore {
			return false
		}
	}
	return true
}

// classifyWord decides what an operand word is
func classifyWord(word string) TokenType {
	switch {
	case isCoordinateText(word):
		return TokenCell
	case isNumberText(word):
		return TokenNumber
	case strings.HasSuffix(word, "%") && isDecimalText(strings.TrimSuffix(word, "%")):
		return TokenPercentage
	}
	return TokenUnknown
}

// isNumberText accepts unsigned integer and decimal literals
func isNumberText(s string) bool {
	return s != "" && s[0] != '-' && s[0] != '+' && isDecimalText(s)
}

// unknownTokenError explains why a word is not a valid operand: a run
// of letters is a bad number, a lone symbol is an unknown operator
func unknownTokenError(word string) error {
	if isAllLetters(word) {
		return newError(CodeInvalidNumberToken, "Invalid number token: '%s'. Expected a valid integer, decimal, or percentage value", word)
	}
	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(word)
		if !isLetter(r) && !isDigit(r) {
			return newError(CodeUnknownOperator, "Unknown operator: '%s'. Supported operators are +, -, *, /, ^ and &", word)
		}
	}
	return newError(CodeInvalidNumberToken, "Invalid number token: '%s'. Expected a valid integer, decimal, or percentage value", word)
}

func isAllLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if !isLetter(ch) {
			return false
		}
	}
	return true
}
