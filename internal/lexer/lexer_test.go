package lexer

import (
	"testing"

	"github.com/lightplayer/lps/internal/token"
	"github.com/stretchr/testify/require"
)

type expectedToken struct {
	typ     token.Type
	literal string
}

func checkTokens(t *testing.T, input string, expected []expectedToken) {
	t.Helper()
	l := New(input)
	for i, tt := range expected {
		tok, err := l.Next()
		require.Nil(t, err)
		require.Equal(t, tt.typ, tok.Type, "tests[%d] type", i)
		require.Equal(t, tt.literal, tok.Literal, "tests[%d] literal", i)
	}
}

func TestOperators(t *testing.T) {
	checkTokens(t, "+ - * / % ^ ++ -- < > <= >= == != && || ! & | ~ << >>", []expectedToken{
		{token.PLUS, "+"},
		{token.MINUS, "-"},
		{token.ASTERISK, "*"},
		{token.SLASH, "/"},
		{token.MOD, "%"},
		{token.CARET, "^"},
		{token.PLUS_PLUS, "++"},
		{token.MINUS_MINUS, "--"},
		{token.LT, "<"},
		{token.GT, ">"},
		{token.LT_EQUALS, "<="},
		{token.GT_EQUALS, ">="},
		{token.EQ, "=="},
		{token.NOT_EQ, "!="},
		{token.AND, "&&"},
		{token.OR, "||"},
		{token.BANG, "!"},
		{token.AMPERSAND, "&"},
		{token.BITOR, "|"},
		{token.TILDE, "~"},
		{token.LT_LT, "<<"},
		{token.GT_GT, ">>"},
		{token.EOF, ""},
	})
}

func TestCompoundAssignment(t *testing.T) {
	checkTokens(t, "= += -= *= /= %= &= |= ^= <<= >>=", []expectedToken{
		{token.ASSIGN, "="},
		{token.PLUS_EQUALS, "+="},
		{token.MINUS_EQUALS, "-="},
		{token.ASTERISK_EQUALS, "*="},
		{token.SLASH_EQUALS, "/="},
		{token.MOD_EQUALS, "%="},
		{token.AMPERSAND_EQUALS, "&="},
		{token.BITOR_EQUALS, "|="},
		{token.CARET_EQUALS, "^="},
		{token.LT_LT_EQUALS, "<<="},
		{token.GT_GT_EQUALS, ">>="},
		{token.EOF, ""},
	})
}

func TestNumbers(t *testing.T) {
	checkTokens(t, "42 3.14 .5 1e3 2.5E-2 1.0f 7f 0x1F 0XfF 99999999999", []expectedToken{
		{token.INT, "42"},
		{token.FLOAT, "3.14"},
		{token.FLOAT, ".5"},
		{token.FLOAT, "1e3"},
		{token.FLOAT, "2.5E-2"},
		{token.FLOAT, "1.0"},
		{token.FLOAT, "7"},
		{token.INT, "0x1F"},
		{token.INT, "0XfF"},
		{token.FLOAT, "99999999999"},
		{token.EOF, ""},
	})
}

func TestKeywordsAndDelimiters(t *testing.T) {
	checkTokens(t, "float f(vec2 p) { return p.x ? 1 : 0; }", []expectedToken{
		{token.FLOATT, "float"},
		{token.IDENT, "f"},
		{token.LPAREN, "("},
		{token.VEC2, "vec2"},
		{token.IDENT, "p"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "p"},
		{token.PERIOD, "."},
		{token.IDENT, "x"},
		{token.QUESTION, "?"},
		{token.INT, "1"},
		{token.COLON, ":"},
		{token.INT, "0"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	})
}

func TestComments(t *testing.T) {
	checkTokens(t, "a // line\n/* block /* not nested */ b */ c", []expectedToken{
		{token.IDENT, "a"},
		{token.IDENT, "b"},
		{token.ASTERISK, "*"},
		{token.SLASH, "/"},
		{token.IDENT, "c"},
		{token.EOF, ""},
	})
	checkTokens(t, "x /* never closed", []expectedToken{
		{token.IDENT, "x"},
		{token.EOF, ""},
	})
}

func TestUnknownCharacterEndsStream(t *testing.T) {
	tokens, err := Tokenize("1 + $ 2")
	require.Nil(t, err)
	require.Len(t, tokens, 3)
	require.Equal(t, token.EOF, tokens[2].Type)

	l := New("$ x")
	tok, err := l.Next()
	require.Nil(t, err)
	require.Equal(t, token.EOF, tok.Type)
	tok, err = l.Next()
	require.Nil(t, err)
	require.Equal(t, token.EOF, tok.Type)
}

func TestStrictMode(t *testing.T) {
	tokens, err := Tokenize("1 + $", WithStrict())
	require.NotNil(t, err)
	var illegal *IllegalCharError
	require.ErrorAs(t, err, &illegal)
	require.Equal(t, byte('$'), illegal.Char)
	require.Equal(t, 4, illegal.Position.Char)
	require.Equal(t, token.ILLEGAL, tokens[len(tokens)-2].Type)
	require.Equal(t, token.EOF, tokens[len(tokens)-1].Type)
}

func TestPositions(t *testing.T) {
	l := New("a\n  bb", WithFile("t.lps"))
	a, err := l.Next()
	require.Nil(t, err)
	require.Equal(t, 0, a.StartPosition.Line)
	bb, err := l.Next()
	require.Nil(t, err)
	require.Equal(t, 1, bb.StartPosition.Line)
	require.Equal(t, 2, bb.StartPosition.Column)
	require.Equal(t, 4, bb.StartPosition.Char)
	require.Equal(t, 6, bb.EndPosition.Char)
	require.Equal(t, "t.lps", bb.StartPosition.File)
}
