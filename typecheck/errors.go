package typecheck

import (
	"fmt"

	"github.com/lightplayer/lps/errors"
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/types"
)

// ErrorKind classifies a type error.
type ErrorKind uint8

const (
	Mismatch ErrorKind = iota
	UndefinedVariable
	UndefinedFunction
	InvalidArgumentCount
	InvalidSwizzle
	InvalidOperation
	Redeclared
	InvalidReturn
	DuplicateFunction
)

var kindNames = [...]string{
	Mismatch:             "Mismatch",
	UndefinedVariable:    "UndefinedVariable",
	UndefinedFunction:    "UndefinedFunction",
	InvalidArgumentCount: "InvalidArgumentCount",
	InvalidSwizzle:       "InvalidSwizzle",
	InvalidOperation:     "InvalidOperation",
	Redeclared:           "Redeclared",
	InvalidReturn:        "InvalidReturn",
	DuplicateFunction:    "DuplicateFunction",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

var kindCodes = [...]errors.ErrorCode{
	Mismatch:             errors.E2003,
	UndefinedVariable:    errors.E2001,
	UndefinedFunction:    errors.E2002,
	InvalidArgumentCount: errors.E2004,
	InvalidSwizzle:       errors.E2005,
	InvalidOperation:     errors.E2006,
	Redeclared:           errors.E2007,
	InvalidReturn:        errors.E2008,
	DuplicateFunction:    errors.E2009,
}

// Code returns the error code for the kind.
func (k ErrorKind) Code() errors.ErrorCode {
	if int(k) < len(kindCodes) {
		return kindCodes[k]
	}
	return errors.E2099
}

// TypeError is the first problem found by the checker.
type TypeError struct {
	Kind    ErrorKind
	Message string
	Span    token.Span

	// Expected and Found are set for Mismatch errors.
	Expected types.Type
	Found    types.Type

	// ExpectedArgs and FoundArgs are set for InvalidArgumentCount errors.
	ExpectedArgs int
	FoundArgs    int

	// Name is the variable or function involved, if any.
	Name        string
	Suggestions []errors.Suggestion

	Filename   string
	SourceLine string
}

func (e *TypeError) Error() string {
	return e.compileError().Error()
}

// FriendlyErrorMessage returns a multi-line message with a source snippet.
func (e *TypeError) FriendlyErrorMessage() string {
	return e.compileError().FriendlyErrorMessage()
}

// ToFormatted converts the error for display with errors.Formatter.
func (e *TypeError) ToFormatted() *errors.FormattedError {
	return e.compileError().ToFormatted()
}

func (e *TypeError) compileError() *errors.CompileError {
	start, end := e.Span.Start, e.Span.End
	endCol := 0
	if end.Line == start.Line && end.Char > start.Char {
		endCol = end.ColumnNumber()
	}
	return &errors.CompileError{
		Code:        e.Kind.Code(),
		Kind:        "type error",
		Message:     e.Message,
		Filename:    e.Filename,
		Line:        start.LineNumber(),
		Column:      start.ColumnNumber(),
		EndColumn:   endCol,
		SourceLine:  e.SourceLine,
		Suggestions: e.Suggestions,
	}
}

func (c *Checker) fail(kind ErrorKind, span token.Span, format string, args ...any) *TypeError {
	return &TypeError{
		Kind:       kind,
		Message:    fmt.Sprintf(format, args...),
		Span:       span,
		Filename:   c.filename,
		SourceLine: errors.SourceLine(c.source, span.Start.LineNumber()),
	}
}

func (c *Checker) mismatch(span token.Span, expected, found types.Type) *TypeError {
	err := c.fail(Mismatch, span, "type mismatch: expected %s, found %s", expected, found)
	err.Expected = expected
	err.Found = found
	return err
}

func (c *Checker) argCount(span token.Span, name string, min, max, found int) *TypeError {
	expected := plural(min, "argument")
	if max != min {
		expected = fmt.Sprintf("%d to %d arguments", min, max)
	}
	err := c.fail(InvalidArgumentCount, span, "%s expects %s, found %d", name, expected, found)
	err.Name = name
	err.ExpectedArgs = min
	err.FoundArgs = found
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
