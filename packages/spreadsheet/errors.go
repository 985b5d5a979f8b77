package spreadsheet

import (
	"errors"
	"fmt"
)

// ErrorKind is the category of an engine failure. callers match on the
// kind when they only care about the class of failure, and on the
// ErrorCode when they care about the specific cause.
type ErrorKind uint8

const (
	KindRange    ErrorKind = 1 // row/column out of bounds
	KindParse    ErrorKind = 2 // malformed coordinate, number, percentage, token or name
	KindSyntax   ErrorKind = 3 // unbalanced parens, missing function parens, bad range
	KindSemantic ErrorKind = 4 // unknown function/operator, operand count or type
	KindCycle    ErrorKind = 5 // self or mutually recursive reference
	KindNumeric  ErrorKind = 6 // overflow, divide-by-zero
	KindDepth    ErrorKind = 7 // evaluation chain deeper than the configured cap
)

// kindNames maps error kinds to their display names
var kindNames = map[ErrorKind]string{
	KindRange:    "RangeError",
	KindParse:    "ParseError",
	KindSyntax:   "SyntaxError",
	KindSemantic: "SemanticError",
	KindCycle:    "CycleError",
	KindNumeric:  "NumericFault",
	KindDepth:    "DepthError",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// ErrorCode identifies the specific cause of an engine failure
type ErrorCode uint8

const (
	CodeRowOutOfRange ErrorCode = iota + 1
	CodeColumnOutOfRange
	CodeInvalidCoordinate
	CodeInvalidNumberToken
	CodeInvalidPercentageFormat
	CodeEmptyPercentageText
	CodeInvalidTableName
	CodeInvalidFunctionValue
	CodeInvalidFunctionSyntax
	CodeInvalidRangeFormat
	CodeInvalidExpression
	CodeUnbalancedParentheses
	CodeUnknownFunction
	CodeUnknownOperator
	CodeInsufficientOperands
	CodeUnsupportedOperation
	CodeAmbiguousPercentage
	CodeUnsupportedComplexRange
	CodeCircularReference
	CodeOverflow
	CodeDivisionByZero
	CodeDepthExceeded
	CodeRangeTooLarge
)

// codeInfo describes each error code: its kind and a short name
var codeInfo = map[ErrorCode]struct {
	kind ErrorKind
	name string
}{
	CodeRowOutOfRange:           {KindRange, "RowOutOfRange"},
	CodeColumnOutOfRange:        {KindRange, "ColumnOutOfRange"},
	CodeInvalidCoordinate:       {KindParse, "InvalidCoordinate"},
	CodeInvalidNumberToken:      {KindParse, "InvalidNumberToken"},
	CodeInvalidPercentageFormat: {KindParse, "InvalidPercentageFormat"},
	CodeEmptyPercentageText:     {KindParse, "EmptyPercentageText"},
	CodeInvalidTableName:        {KindParse, "InvalidTableName"},
	CodeInvalidFunctionValue:    {KindParse, "InvalidFunctionValue"},
	CodeInvalidFunctionSyntax:   {KindSyntax, "InvalidFunctionSyntax"},
	CodeInvalidRangeFormat:      {KindSyntax, "InvalidRangeFormat"},
	CodeInvalidExpression:       {KindSyntax, "InvalidExpression"},
	CodeUnbalancedParentheses:   {KindSyntax, "UnbalancedParentheses"},
	CodeUnknownFunction:         {KindSemantic, "UnknownFunction"},
	CodeUnknownOperator:         {KindSemantic, "UnknownOperator"},
	CodeInsufficientOperands:    {KindSemantic, "InsufficientOperands"},
	CodeUnsupportedOperation:    {KindSemantic, "UnsupportedOperation"},
	CodeAmbiguousPercentage:     {KindSemantic, "AmbiguousPercentage"},
	CodeUnsupportedComplexRange: {KindSemantic, "UnsupportedComplexRange"},
	CodeCircularReference:       {KindCycle, "CircularReference"},
	CodeOverflow:                {KindNumeric, "Overflow"},
	CodeDivisionByZero:          {KindNumeric, "DivisionByZero"},
	CodeDepthExceeded:           {KindDepth, "DepthExceeded"},
	CodeRangeTooLarge:           {KindRange, "RangeTooLarge"},
}

// Kind returns the category the code belongs to
func (c ErrorCode) Kind() ErrorKind {
	return codeInfo[c].kind
}

func (c ErrorCode) String() string {
	if info, ok := codeInfo[c]; ok {
		return info.name
	}
	return fmt.Sprintf("ErrorCode(%d)", uint8(c))
}

// Error is a typed engine failure. it always propagates out of public
// operations; it is never converted into an in-band #ERROR value.
type Error struct {
	Kind    ErrorKind
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != 0 {
		return e.Kind.String() + ": " + e.Code.String()
	}
	return e.Kind.String()
}

// Is reports whether target is a sentinel describing e. a sentinel with a
// code matches that code only; a sentinel with just a kind matches every
// error of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != 0 {
		return t.Code == e.Code
	}
	return t.Kind == e.Kind
}

// newError creates a new engine error for the given code
func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Kind:    code.Kind(),
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// sentinel creates a match-only Error for a code, for use with errors.Is
func sentinel(code ErrorCode) *Error {
	return &Error{Kind: code.Kind(), Code: code}
}

// kind sentinels
var (
	ErrRange    = &Error{Kind: KindRange}
	ErrParse    = &Error{Kind: KindParse}
	ErrSyntax   = &Error{Kind: KindSyntax}
	ErrSemantic = &Error{Kind: KindSemantic}
	ErrCycle    = &Error{Kind: KindCycle}
	ErrNumeric  = &Error{Kind: KindNumeric}
	ErrDepth    = &Error{Kind: KindDepth}
)

// code sentinels
var (
	ErrRowOutOfRange           = sentinel(CodeRowOutOfRange)
	ErrColumnOutOfRange        = sentinel(CodeColumnOutOfRange)
	ErrInvalidCoordinate       = sentinel(CodeInvalidCoordinate)
	ErrInvalidNumberToken      = sentinel(CodeInvalidNumberToken)
	ErrInvalidPercentageFormat = sentinel(CodeInvalidPercentageFormat)
	ErrEmptyPercentageText     = sentinel(CodeEmptyPercentageText)
	ErrInvalidTableName        = sentinel(CodeInvalidTableName)
	ErrInvalidFunctionValue    = sentinel(CodeInvalidFunctionValue)
	ErrInvalidFunctionSyntax   = sentinel(CodeInvalidFunctionSyntax)
	ErrInvalidRangeFormat      = sentinel(CodeInvalidRangeFormat)
	ErrInvalidExpression       = sentinel(CodeInvalidExpression)
	ErrUnbalancedParentheses   = sentinel(CodeUnbalancedParentheses)
	ErrUnknownFunction         = sentinel(CodeUnknownFunction)
	ErrUnknownOperator         = sentinel(CodeUnknownOperator)
	ErrInsufficientOperands    = sentinel(CodeInsufficientOperands)
	ErrUnsupportedOperation    = sentinel(CodeUnsupportedOperation)
	ErrAmbiguousPercentage     = sentinel(CodeAmbiguousPercentage)
	ErrUnsupportedComplexRange = sentinel(CodeUnsupportedComplexRange)
	ErrCircularReference       = sentinel(CodeCircularReference)
	ErrOverflow                = sentinel(CodeOverflow)
	ErrDivisionByZero          = sentinel(CodeDivisionByZero)
	ErrDepthExceeded           = sentinel(CodeDepthExceeded)
	ErrRangeTooLarge           = sentinel(CodeRangeTooLarge)
)

// IsClassified reports whether err is part of the engine's named
// taxonomy. unclassified errors are the only ones the outermost per-cell
// evaluation may convert into an #ERROR text value.
func IsClassified(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
