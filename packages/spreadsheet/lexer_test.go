package spreadsheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFormula(formula string) bool {
	lexer := NewLexer(strings.TrimPrefix(formula, "="))
	tokens, err := lexer.Tokenize()
	if err != nil {
		return false
	}

	if len(tokens) == 0 {
		return false
	}

	_, err = ToRPN(tokens)
	return err == nil
}

func TestParserBasicFormulas(t *testing.T) {
	validFormulas := []string{
		"=1+2",
		"=A1",
		"=SUM(A1:A10)",
		"=SUM(B2:A1)",
		"=SUM(A1:A1)",
		"=SUM(A1:Z1000)",
		"=-A1",
		"=50%*A1",
		"=((1))",
		"=A1&B1",
		`="Hello 世界"`,
		`="Test 😀 emoji"`,
		`=CONCAT("Hello ", "世界")`,
		`="say ""hi"""`,
	}

	for _, formula := range validFormulas {
		t.Run(formula, func(t *testing.T) {
			if !parseFormula(formula) {
				t.Errorf("Failed to parse valid formula: %s", formula)
			}
		})
	}
}

func TestParserInvalidFormulas(t *testing.T) {
	invalidFormulas := []string{
		"=",
		"=SUM(",
		"=A1:",
		`="hello`,
		"=1+)",
		"=(1",
		"=foo",
	}

	for _, formula := range invalidFormulas {
		t.Run(formula, func(t *testing.T) {
			if parseFormula(formula) {
				t.Errorf("Expected formula to fail but it succeeded: %s", formula)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tokens, err := NewLexer(`-A1 + SUM(A1:A3, "x)") * 2.5 ^ 10% & "b"`).Tokenize()
	require.NoError(t, err)

	types := make([]TokenType, len(tokens))
	values := make([]string, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
		values[i] = tok.Value
	}
	assert.Equal(t, []TokenType{
		TokenUnaryOp, TokenCell, TokenBinaryOp, TokenFunction, TokenBinaryOp,
		TokenNumber, TokenBinaryOp, TokenPercentage, TokenBinaryOp, TokenString,
	}, types)
	assert.Equal(t, []string{
		"-", "A1", "+", `SUM(A1:A3, "x)")`, "*", "2.5", "^", "10%", "&", "b",
	}, values)
}

func TestTokenizeUnaryContext(t *testing.T) {
	tests := []struct {
		input string
		types []TokenType
	}{
		{"1-2", []TokenType{TokenNumber, TokenBinaryOp, TokenNumber}},
		{"1--2", []TokenType{TokenNumber, TokenBinaryOp, TokenUnaryOp, TokenNumber}},
		{"(-2)", []TokenType{TokenLeftParen, TokenUnaryOp, TokenNumber, TokenRightParen}},
		{"(1)-2", []TokenType{TokenLeftParen, TokenNumber, TokenRightParen, TokenBinaryOp, TokenNumber}},
		{"+A1", []TokenType{TokenUnaryOp, TokenCell}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).Tokenize()
			require.NoError(t, err)
			types := make([]TokenType, len(tokens))
			for i, tok := range tokens {
				types[i] = tok.Type
			}
			assert.Equal(t, tt.types, types)
		})
	}
}

func TestToRPN(t *testing.T) {
	tests := map[string]string{
		"1+2*3":         "1 2 3 * +",
		"(1+2)*3":       "1 2 + 3 *",
		"8-3-2":         "8 3 - 2 -",
		"2^3^2":         "2 3 ^ 2 ^",
		"-1+2":          "1 - 2 +",
		`"a"&1+2`:       "a 1 2 + &",
		"SUM(A1:A2)*A3": "SUM(A1:A2) A3 *",
	}
	for input, expected := range tests {
		t.Run(input, func(t *testing.T) {
			tokens, err := NewLexer(input).Tokenize()
			require.NoError(t, err)
			rpn, err := ToRPN(tokens)
			require.NoError(t, err)
			values := make([]string, len(rpn))
			for i, tok := range rpn {
				values[i] = tok.Value
			}
			assert.Equal(t, expected, strings.Join(values, " "))
		})
	}
}

func TestUnknownTokens(t *testing.T) {
	tests := []struct {
		input  string
		target error
	}{
		{"abc+1", ErrInvalidNumberToken},
		{"1.2.3", ErrInvalidNumberToken},
		{"1 % 2", ErrUnknownOperator},
		{"1 ! 2", ErrUnknownOperator},
		{"AA1", ErrInvalidNumberToken},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).Tokenize()
			require.NoError(t, err)
			_, err = ToRPN(tokens)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}
