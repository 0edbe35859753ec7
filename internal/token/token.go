// Package token defines the tokens produced when lexing LPS source code.
package token

import "fmt"

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes on the same line.
func (p Position) Advance(n int) Position {
	return Position{
		Char:      p.Char + n,
		LineStart: p.LineStart,
		Line:      p.Line,
		Column:    p.Column + n,
		File:      p.File,
	}
}

// NoPos is the zero value Position.
var NoPos = Position{}

// Span is a half-open byte range [Start, End) in the source.
type Span struct {
	Start Position
	End   Position
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End.Char - s.Start.Char
}

// Merge returns the smallest span covering both s and o.
func (s Span) Merge(o Span) Span {
	out := s
	if o.Start.Char < out.Start.Char {
		out.Start = o.Start
	}
	if o.End.Char > out.End.Char {
		out.End = o.End
	}
	return out
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Start.LineNumber(), s.Start.ColumnNumber())
}

// Token represents one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Span returns the source range of the token.
func (t Token) Span() Span {
	return Span{Start: t.StartPosition, End: t.EndPosition}
}

// Token types
const (
	AMPERSAND        Type = "&"
	AMPERSAND_EQUALS Type = "&="
	AND              Type = "&&"
	ASSIGN           Type = "="
	ASTERISK         Type = "*"
	ASTERISK_EQUALS  Type = "*="
	BANG             Type = "!"
	BITOR            Type = "|"
	BITOR_EQUALS     Type = "|="
	CARET            Type = "^"
	CARET_EQUALS     Type = "^="
	COLON            Type = ":"
	COMMA            Type = ","
	EOF              Type = "EOF"
	EQ               Type = "=="
	FLOAT            Type = "FLOAT"
	GT               Type = ">"
	GT_EQUALS        Type = ">="
	GT_GT            Type = ">>"
	GT_GT_EQUALS     Type = ">>="
	IDENT            Type = "IDENT"
	ILLEGAL          Type = "ILLEGAL"
	INT              Type = "INT"
	LBRACE           Type = "{"
	LPAREN           Type = "("
	LT               Type = "<"
	LT_EQUALS        Type = "<="
	LT_LT            Type = "<<"
	LT_LT_EQUALS     Type = "<<="
	MINUS            Type = "-"
	MINUS_EQUALS     Type = "-="
	MINUS_MINUS      Type = "--"
	MOD              Type = "%"
	MOD_EQUALS       Type = "%="
	NOT_EQ           Type = "!="
	OR               Type = "||"
	PERIOD           Type = "."
	PLUS             Type = "+"
	PLUS_EQUALS      Type = "+="
	PLUS_PLUS        Type = "++"
	QUESTION         Type = "?"
	RBRACE           Type = "}"
	RPAREN           Type = ")"
	SEMICOLON        Type = ";"
	SLASH            Type = "/"
	SLASH_EQUALS     Type = "/="
	TILDE            Type = "~"

	// Keywords
	BOOL   Type = "BOOL"
	ELSE   Type = "ELSE"
	FALSE  Type = "FALSE"
	FLOATT Type = "FLOAT_TYPE"
	FOR    Type = "FOR"
	IF     Type = "IF"
	INTT   Type = "INT_TYPE"
	MAT3   Type = "MAT3"
	RETURN Type = "RETURN"
	TRUE   Type = "TRUE"
	VEC2   Type = "VEC2"
	VEC3   Type = "VEC3"
	VEC4   Type = "VEC4"
	VOID   Type = "VOID"
	WHILE  Type = "WHILE"
)

// Reserved keywords
var keywords = map[string]Type{
	"bool":   BOOL,
	"else":   ELSE,
	"false":  FALSE,
	"float":  FLOATT,
	"for":    FOR,
	"if":     IF,
	"int":    INTT,
	"mat3":   MAT3,
	"return": RETURN,
	"true":   TRUE,
	"vec2":   VEC2,
	"vec3":   VEC3,
	"vec4":   VEC4,
	"void":   VOID,
	"while":  WHILE,
}

// LookupIdentifier returns the keyword type for identifier, or IDENT.
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}

// Keywords returns the reserved words in no particular order.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	return out
}

// IsTypeKeyword reports whether t names a declarable type.
func IsTypeKeyword(t Type) bool {
	switch t {
	case BOOL, FLOATT, INTT, MAT3, VEC2, VEC3, VEC4, VOID:
		return true
	}
	return false
}

// IsAssignment reports whether t is "=" or a compound assignment operator.
func IsAssignment(t Type) bool {
	switch t {
	case ASSIGN, PLUS_EQUALS, MINUS_EQUALS, ASTERISK_EQUALS, SLASH_EQUALS,
		MOD_EQUALS, AMPERSAND_EQUALS, BITOR_EQUALS, CARET_EQUALS,
		LT_LT_EQUALS, GT_GT_EQUALS:
		return true
	}
	return false
}
