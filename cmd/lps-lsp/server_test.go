package main

import (
	"context"
	"sync"
	"testing"

	"github.com/jdbaldry/go-language-server-protocol/jsonrpc2"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	"github.com/stretchr/testify/require"
)

const script = `float sq(float v) {
    return v * v;
}
float a = sq(x);
return vec3(a, sin(time), 0.0);`

type fakeClient struct {
	mu    sync.Mutex
	diags []*protocol.PublishDiagnosticsParams
}

func (c *fakeClient) Notify(ctx context.Context, method string, params interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := params.(*protocol.PublishDiagnosticsParams); ok && method == "textDocument/publishDiagnostics" {
		c.diags = append(c.diags, p)
	}
	return nil
}

func (c *fakeClient) last(t *testing.T) *protocol.PublishDiagnosticsParams {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.diags)
	return c.diags[len(c.diags)-1]
}

func openDocument(t *testing.T, s *Server, uri protocol.DocumentURI, text string) {
	t.Helper()
	err := s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "lps", Version: 1, Text: text},
	})
	require.NoError(t, err)
}

func position(uri protocol.DocumentURI, line, char uint32) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     protocol.Position{Line: line, Character: char},
	}
}

func TestCache(t *testing.T) {
	c := newCache()
	require.Error(t, c.put(&document{}))

	doc := &document{item: protocol.TextDocumentItem{URI: "file:///a.lps", Text: script}}
	doc.analyze(context.Background())
	require.NoError(t, doc.err)
	require.NotNil(t, doc.res)
	require.NoError(t, c.put(doc))

	got, err := c.get("file:///a.lps")
	require.NoError(t, err)
	require.Same(t, doc, got)

	c.remove("file:///a.lps")
	_, err = c.get("file:///a.lps")
	require.Error(t, err)
}

func TestAnalyzeKeepsTreeOnTypeError(t *testing.T) {
	doc := &document{item: protocol.TextDocumentItem{URI: "file:///b.lps", Text: "float a = 1.0;\nreturn b;"}}
	doc.analyze(context.Background())
	require.Error(t, doc.err)
	require.NotNil(t, doc.prog)
	require.Nil(t, doc.res)

	doc.item.Text = "float a = ;"
	doc.analyze(context.Background())
	require.Error(t, doc.err)
	require.Nil(t, doc.prog)
}

func TestDiagnostics(t *testing.T) {
	client := &fakeClient{}
	s := NewServer("test", "0.0.0", client)
	uri := protocol.DocumentURI("file:///bad.lps")
	ctx := context.Background()

	openDocument(t, s, uri, "return foo;")
	diags := client.last(t)
	require.Equal(t, uri, diags.URI)
	require.Len(t, diags.Diagnostics, 1)
	d := diags.Diagnostics[0]
	require.Equal(t, protocol.SeverityError, d.Severity)
	require.Equal(t, "lps", d.Source)
	require.Equal(t, "E2001", d.Code)
	require.Contains(t, d.Message, "foo")
	require.Equal(t, uint32(0), d.Range.Start.Line)
	require.Equal(t, uint32(7), d.Range.Start.Character)
	require.Greater(t, d.Range.End.Character, d.Range.Start.Character)

	err := s.DidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "return (1.0;"}},
	})
	require.NoError(t, err)
	diags = client.last(t)
	require.Equal(t, int32(2), diags.Version)
	require.Len(t, diags.Diagnostics, 1)
	require.Equal(t, uint32(0), diags.Diagnostics[0].Range.Start.Line)

	text := "return x;"
	require.NoError(t, s.DidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Text:         &text,
	}))
	require.Empty(t, client.last(t).Diagnostics)

	require.NoError(t, s.DidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	_, err = s.cache.get(uri)
	require.Error(t, err)
}

func TestNilClient(t *testing.T) {
	s := NewServer("test", "0.0.0", nil)
	openDocument(t, s, "file:///a.lps", "return foo;")
}

func TestHover(t *testing.T) {
	s := NewServer("test", "0.0.0", nil)
	uri := protocol.DocumentURI("file:///a.lps")
	openDocument(t, s, uri, script)
	ctx := context.Background()

	tests := []struct {
		name     string
		line     uint32
		char     uint32
		contains []string
	}{
		{"local", 3, 6, []string{"float a", "Variable"}},
		{"function", 3, 10, []string{"float sq(float v)", "Function"}},
		{"parameter", 1, 11, []string{"float v"}},
		{"builtin function", 4, 15, []string{"sin", "Built-in function"}},
		{"builtin variable", 4, 20, []string{"float time", "Built-in variable"}},
		{"use of local", 4, 12, []string{"float a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.Hover(ctx, &protocol.HoverParams{TextDocumentPositionParams: position(uri, tt.line, tt.char)})
			require.NoError(t, err)
			require.NotNil(t, result)
			require.Equal(t, protocol.Markdown, result.Contents.Kind)
			for _, want := range tt.contains {
				require.Contains(t, result.Contents.Value, want)
			}
		})
	}

	// Keywords and whitespace have nothing to show.
	result, err := s.Hover(ctx, &protocol.HoverParams{TextDocumentPositionParams: position(uri, 4, 0)})
	require.NoError(t, err)
	require.Nil(t, result)
	result, err = s.Hover(ctx, &protocol.HoverParams{TextDocumentPositionParams: position(uri, 1, 0)})
	require.NoError(t, err)
	require.Nil(t, result)

	// Unknown documents are not an error.
	result, err = s.Hover(ctx, &protocol.HoverParams{TextDocumentPositionParams: position("file:///none.lps", 0, 0)})
	require.NoError(t, err)
	require.Nil(t, result)
}

func labels(list *protocol.CompletionList) map[string]bool {
	out := map[string]bool{}
	for _, item := range list.Items {
		out[item.Label] = true
	}
	return out
}

func TestCompletion(t *testing.T) {
	s := NewServer("test", "0.0.0", nil)
	uri := protocol.DocumentURI("file:///a.lps")
	openDocument(t, s, uri, script)
	ctx := context.Background()

	result, err := s.Completion(ctx, &protocol.CompletionParams{TextDocumentPositionParams: position(uri, 4, 0)})
	require.NoError(t, err)
	got := labels(result)
	for _, want := range []string{"a", "sq", "sin", "smoothstep", "uv", "time", "return", "vec3"} {
		require.True(t, got[want], "missing %q", want)
	}
	require.False(t, got["v"], "parameter of sq is out of scope")

	result, err = s.Completion(ctx, &protocol.CompletionParams{TextDocumentPositionParams: position(uri, 1, 4)})
	require.NoError(t, err)
	got = labels(result)
	require.True(t, got["v"])
	require.False(t, got["a"])

	result, err = s.Completion(ctx, &protocol.CompletionParams{TextDocumentPositionParams: position("file:///none.lps", 0, 0)})
	require.NoError(t, err)
	require.Empty(t, result.Items)
}

func TestDocumentSymbol(t *testing.T) {
	s := NewServer("test", "0.0.0", nil)
	uri := protocol.DocumentURI("file:///a.lps")
	openDocument(t, s, uri, script)

	result, err := s.DocumentSymbol(context.Background(), &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, result, 2)

	fn, ok := result[0].(protocol.DocumentSymbol)
	require.True(t, ok)
	require.Equal(t, "sq", fn.Name)
	require.Equal(t, symbolFunction, fn.Kind)
	require.Equal(t, "float sq(float v)", fn.Detail)
	require.Equal(t, uint32(0), fn.Range.Start.Line)
	require.Equal(t, uint32(2), fn.Range.End.Line)

	local, ok := result[1].(protocol.DocumentSymbol)
	require.True(t, ok)
	require.Equal(t, "a", local.Name)
	require.Equal(t, symbolVariable, local.Kind)
	require.Equal(t, uint32(3), local.Range.Start.Line)
}

func TestDefinition(t *testing.T) {
	s := NewServer("test", "0.0.0", nil)
	uri := protocol.DocumentURI("file:///a.lps")
	openDocument(t, s, uri, script)
	ctx := context.Background()

	locs, err := s.Definition(ctx, &protocol.DefinitionParams{TextDocumentPositionParams: position(uri, 4, 12)})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	require.Equal(t, uri, locs[0].URI)
	require.Equal(t, uint32(3), locs[0].Range.Start.Line)

	locs, err = s.Definition(ctx, &protocol.DefinitionParams{TextDocumentPositionParams: position(uri, 3, 10)})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	require.Equal(t, uint32(0), locs[0].Range.Start.Line)
	require.Equal(t, locs[0].Range.Start, locs[0].Range.End)

	// Built-ins have no definition in the document.
	locs, err = s.Definition(ctx, &protocol.DefinitionParams{TextDocumentPositionParams: position(uri, 4, 15)})
	require.NoError(t, err)
	require.Empty(t, locs)
}

func TestHandler(t *testing.T) {
	client := &fakeClient{}
	s := NewServer("test", "0.0.0", client)
	handler := s.Handler()
	ctx := context.Background()

	var replyErr error
	replied := false
	reply := func(ctx context.Context, result interface{}, err error) error {
		replied, replyErr = true, err
		return nil
	}

	req, err := jsonrpc2.NewNotification("textDocument/didOpen", &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///h.lps", Version: 1, Text: "return foo;"},
	})
	require.NoError(t, err)
	require.NoError(t, handler(ctx, reply, req))
	require.True(t, replied)
	require.NoError(t, replyErr)
	require.Len(t, client.last(t).Diagnostics, 1)

	req, err = jsonrpc2.NewNotification("textDocument/unknown", nil)
	require.NoError(t, err)
	replied = false
	require.NoError(t, handler(ctx, reply, req))
	require.True(t, replied)
	require.ErrorIs(t, replyErr, jsonrpc2.ErrMethodNotFound)
}
