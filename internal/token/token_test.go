package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for key, val := range keywords {
		require.Equal(t, val, LookupIdentifier(key))
		require.Equal(t, IDENT, LookupIdentifier(strings.ToUpper(key)))
	}
	require.Len(t, Keywords(), len(keywords))
}

func TestPosition(t *testing.T) {
	tok := Token{
		Type:          IDENT,
		Literal:       "foo",
		StartPosition: Position{Line: 2, Column: 0, Char: 10},
		EndPosition:   Position{Line: 2, Column: 3, Char: 13},
	}
	require.Equal(t, 3, tok.StartPosition.LineNumber())
	require.Equal(t, 1, tok.StartPosition.ColumnNumber())
	require.Equal(t, 3, tok.Span().Len())
	require.Equal(t, "3:1", tok.Span().String())
}

func TestSpanMerge(t *testing.T) {
	a := Span{Start: Position{Char: 4}, End: Position{Char: 6}}
	b := Span{Start: Position{Char: 1}, End: Position{Char: 5}}
	m := a.Merge(b)
	require.Equal(t, 1, m.Start.Char)
	require.Equal(t, 6, m.End.Char)
}

func TestClassifiers(t *testing.T) {
	require.True(t, IsTypeKeyword(VEC3))
	require.False(t, IsTypeKeyword(IF))
	require.True(t, IsAssignment(LT_LT_EQUALS))
	require.False(t, IsAssignment(EQ))
}
