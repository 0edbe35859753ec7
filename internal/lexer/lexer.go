// Package lexer converts LPS source text into tokens.
package lexer

import (
	"fmt"
	"strconv"

	"github.com/lightplayer/lps/internal/token"
)

// Lexer produces tokens from an input string on demand.
type Lexer struct {
	input     string
	pos       int
	line      int
	lineStart int
	file      string
	strict    bool
	done      bool
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithFile sets the filename recorded in token positions.
func WithFile(file string) Option {
	return func(l *Lexer) {
		l.file = file
	}
}

// WithStrict makes unrecognized bytes produce an ILLEGAL token and an error
// instead of ending the token stream.
func WithStrict() Option {
	return func(l *Lexer) {
		l.strict = true
	}
}

// New returns a Lexer for the given input.
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{input: input}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tokenize lexes the whole input. The result always ends with an EOF token,
// even when an error is returned in strict mode.
func Tokenize(input string, opts ...Option) ([]token.Token, error) {
	l := New(input, opts...)
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			tokens = append(tokens, tok, token.Token{
				Type:          token.EOF,
				StartPosition: tok.EndPosition,
				EndPosition:   tok.EndPosition,
			})
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

// IllegalCharError is returned in strict mode for bytes that start no token.
type IllegalCharError struct {
	Char     byte
	Position token.Position
}

func (e *IllegalCharError) Error() string {
	return fmt.Sprintf("unexpected character %q at %d:%d",
		e.Char, e.Position.LineNumber(), e.Position.ColumnNumber())
}

func (l *Lexer) position() token.Position {
	return token.Position{
		Char:      l.pos,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.pos - l.lineStart,
		File:      l.file,
	}
}

func (l *Lexer) current() byte {
	if l.pos < len(l.input) {
		return l.input[l.pos]
	}
	return 0
}

func (l *Lexer) peek(offset int) byte {
	if idx := l.pos + offset; idx < len(l.input) {
		return l.input[idx]
	}
	return 0
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.lineStart = l.pos + 1
	}
	l.pos++
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.current()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v':
			l.advance()
		case ch == '/' && l.peek(1) == '/':
			for l.pos < len(l.input) && l.current() != '\n' {
				l.advance()
			}
		case ch == '/' && l.peek(1) == '*':
			l.advance()
			l.advance()
			for l.pos < len(l.input) {
				if l.current() == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

// Next returns the next token. Once EOF has been returned every further call
// returns EOF again.
func (l *Lexer) Next() (token.Token, error) {
	if !l.done {
		l.skipWhitespaceAndComments()
	}
	start := l.position()
	if l.done || l.pos >= len(l.input) {
		l.done = true
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}, nil
	}

	ch := l.current()
	var typ token.Type
	switch ch {
	case '+':
		typ = l.either('+', token.PLUS_PLUS, '=', token.PLUS_EQUALS, token.PLUS)
	case '-':
		typ = l.either('-', token.MINUS_MINUS, '=', token.MINUS_EQUALS, token.MINUS)
	case '*':
		typ = l.either('=', token.ASTERISK_EQUALS, 0, "", token.ASTERISK)
	case '/':
		typ = l.either('=', token.SLASH_EQUALS, 0, "", token.SLASH)
	case '%':
		typ = l.either('=', token.MOD_EQUALS, 0, "", token.MOD)
	case '^':
		typ = l.either('=', token.CARET_EQUALS, 0, "", token.CARET)
	case '=':
		typ = l.either('=', token.EQ, 0, "", token.ASSIGN)
	case '!':
		typ = l.either('=', token.NOT_EQ, 0, "", token.BANG)
	case '&':
		typ = l.either('&', token.AND, '=', token.AMPERSAND_EQUALS, token.AMPERSAND)
	case '|':
		typ = l.either('|', token.OR, '=', token.BITOR_EQUALS, token.BITOR)
	case '<':
		typ = l.shiftOrCompare('<', token.LT_LT, token.LT_LT_EQUALS, token.LT_EQUALS, token.LT)
	case '>':
		typ = l.shiftOrCompare('>', token.GT_GT, token.GT_GT_EQUALS, token.GT_EQUALS, token.GT)
	case '~':
		l.advance()
		typ = token.TILDE
	case '(':
		l.advance()
		typ = token.LPAREN
	case ')':
		l.advance()
		typ = token.RPAREN
	case '{':
		l.advance()
		typ = token.LBRACE
	case '}':
		l.advance()
		typ = token.RBRACE
	case ',':
		l.advance()
		typ = token.COMMA
	case ';':
		l.advance()
		typ = token.SEMICOLON
	case '?':
		l.advance()
		typ = token.QUESTION
	case ':':
		l.advance()
		typ = token.COLON
	case '.':
		if isDigit(l.peek(1)) {
			return l.readNumber(start), nil
		}
		l.advance()
		typ = token.PERIOD
	default:
		switch {
		case isDigit(ch):
			return l.readNumber(start), nil
		case isLetter(ch):
			return l.readIdentifier(start), nil
		}
		l.advance()
		end := l.position()
		if l.strict {
			return token.Token{
				Type:          token.ILLEGAL,
				Literal:       string(ch),
				StartPosition: start,
				EndPosition:   end,
			}, &IllegalCharError{Char: ch, Position: start}
		}
		// Unknown input ends the token stream.
		l.done = true
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: end}, nil
	}
	end := l.position()
	return token.Token{
		Type:          typ,
		Literal:       l.input[start.Char:end.Char],
		StartPosition: start,
		EndPosition:   end,
	}, nil
}

// either consumes the current byte and then optionally one of two follow
// bytes, returning the matching token type.
func (l *Lexer) either(a byte, aType token.Type, b byte, bType token.Type, def token.Type) token.Type {
	l.advance()
	next := l.current()
	switch {
	case next == a && a != 0:
		l.advance()
		return aType
	case next == b && b != 0:
		l.advance()
		return bType
	}
	return def
}

func (l *Lexer) shiftOrCompare(ch byte, shift, shiftEq, cmpEq, cmp token.Type) token.Type {
	l.advance()
	switch l.current() {
	case '=':
		l.advance()
		return cmpEq
	case ch:
		l.advance()
		if l.current() == '=' {
			l.advance()
			return shiftEq
		}
		return shift
	}
	return cmp
}

func (l *Lexer) readNumber(start token.Position) token.Token {
	isFloat := false
	literalEnd := -1
loop:
	for l.pos < len(l.input) {
		ch := l.current()
		switch {
		case isDigit(ch):
			l.advance()
		case ch == '.':
			isFloat = true
			l.advance()
		case ch == 'e' || ch == 'E':
			isFloat = true
			l.advance()
			if c := l.current(); c == '+' || c == '-' {
				l.advance()
			}
		case ch == 'f' || ch == 'F':
			isFloat = true
			literalEnd = l.pos
			l.advance()
			break loop
		case (ch == 'x' || ch == 'X') && l.input[start.Char:l.pos] == "0":
			l.advance()
			for isHexDigit(l.current()) {
				l.advance()
			}
			break loop
		default:
			break loop
		}
	}
	end := l.position()
	if literalEnd < 0 {
		literalEnd = end.Char
	}
	literal := l.input[start.Char:literalEnd]
	typ := token.INT
	if isFloat {
		typ = token.FLOAT
	} else if !isHex(literal) {
		if _, err := strconv.ParseInt(literal, 10, 32); err != nil {
			typ = token.FLOAT
		}
	}
	return token.Token{Type: typ, Literal: literal, StartPosition: start, EndPosition: end}
}

func (l *Lexer) readIdentifier(start token.Position) token.Token {
	for isLetter(l.current()) || isDigit(l.current()) {
		l.advance()
	}
	end := l.position()
	literal := l.input[start.Char:end.Char]
	return token.Token{
		Type:          token.LookupIdentifier(literal),
		Literal:       literal,
		StartPosition: start,
		EndPosition:   end,
	}
}

func isHex(s string) bool {
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}
