package parser

import (
	"fmt"

	"github.com/lightplayer/lps/errors"
	"github.com/lightplayer/lps/internal/token"
)

// SyntaxError describes the first problem found while parsing. Parsing stops
// at the first error.
type SyntaxError struct {
	Code       errors.ErrorCode
	Message    string
	Span       token.Span
	Filename   string
	SourceLine string
	// Cause is set when the error originated in the lexer.
	Cause error
}

func (e *SyntaxError) Error() string {
	return e.compileError().Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.Cause
}

// FriendlyErrorMessage returns a multi-line message with a source snippet.
func (e *SyntaxError) FriendlyErrorMessage() string {
	return e.compileError().FriendlyErrorMessage()
}

// ToFormatted converts the error for display with errors.Formatter.
func (e *SyntaxError) ToFormatted() *errors.FormattedError {
	return e.compileError().ToFormatted()
}

// Line returns the 1-based line of the error.
func (e *SyntaxError) Line() int {
	return e.Span.Start.LineNumber()
}

// Column returns the 1-based column of the error.
func (e *SyntaxError) Column() int {
	return e.Span.Start.ColumnNumber()
}

func (e *SyntaxError) compileError() *errors.CompileError {
	start, end := e.Span.Start, e.Span.End
	endCol := 0
	if end.Line == start.Line && end.Char > start.Char {
		endCol = end.ColumnNumber()
	}
	return &errors.CompileError{
		Code:       e.Code,
		Kind:       "parse error",
		Message:    e.Message,
		Filename:   e.Filename,
		Line:       start.LineNumber(),
		Column:     start.ColumnNumber(),
		EndColumn:  endCol,
		SourceLine: e.SourceLine,
	}
}

func tokenDescription(t token.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return fmt.Sprintf("identifier %q", t.Literal)
	case token.INT, token.FLOAT:
		return fmt.Sprintf("number %s", t.Literal)
	default:
		if t.Literal == "" {
			return string(t.Type)
		}
		return fmt.Sprintf("%q", t.Literal)
	}
}
