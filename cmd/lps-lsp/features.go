package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	lpserrors "github.com/lightplayer/lps/errors"
	"github.com/lightplayer/lps/internal/token"
	"github.com/lightplayer/lps/parser"
	"github.com/lightplayer/lps/typecheck"
	"github.com/rs/zerolog/log"
)

// Completion item and symbol kinds from the protocol.
const (
	completionFunction = 3
	completionVariable = 6
	completionKeyword  = 14

	symbolFunction protocol.SymbolKind = 12
	symbolVariable protocol.SymbolKind = 13
)

// diagnostics converts the analysis error of a document.
func diagnostics(err error) []protocol.Diagnostic {
	if err == nil {
		return []protocol.Diagnostic{}
	}
	var (
		span token.Span
		code lpserrors.ErrorCode
		msg  string
	)
	var synErr *parser.SyntaxError
	var typErr *typecheck.TypeError
	switch {
	case errors.As(err, &synErr):
		span, code, msg = synErr.Span, synErr.Code, synErr.Message
	case errors.As(err, &typErr):
		span, code, msg = typErr.Span, typErr.Kind.Code(), typErr.Message
	default:
		msg = err.Error()
	}
	r := toRange(span)
	if r.End.Line == r.Start.Line && r.End.Character <= r.Start.Character {
		r.End.Character = r.Start.Character + 1
	}
	return []protocol.Diagnostic{{
		Range:    r,
		Severity: protocol.SeverityError,
		Code:     string(code),
		Source:   "lps",
		Message:  msg,
	}}
}

func (s *Server) queueDiagnostics(uri protocol.DocumentURI) {
	if s.client == nil {
		return
	}
	doc, err := s.cache.get(uri)
	if err != nil {
		log.Error().Err(err).Str("call", "queueDiagnostics").Msg("failed to get document")
		return
	}
	params := &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     doc.item.Version,
		Diagnostics: diagnostics(doc.err),
	}
	if err := s.client.Notify(context.Background(), "textDocument/publishDiagnostics", params); err != nil {
		log.Error().Err(err).Str("call", "queueDiagnostics").Msg("failed to publish diagnostics")
	}
}

func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc, err := s.cache.get(params.TextDocument.URI)
	if err != nil {
		log.Error().Err(err).Str("call", "Hover").Msg("failed to get document")
		return nil, nil
	}
	line, char := int(params.Position.Line), int(params.Position.Character)
	tok, ok := tokenAt(doc.item.Text, line, char)
	if !ok || tok.Type != token.IDENT {
		return nil, nil
	}
	value, ok := describe(doc, tok.Literal, line, char)
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: value},
	}, nil
}

// describe renders hover text for a name. Declarations in the document
// shadow built-ins.
func describe(doc *document, name string, line, char int) (string, bool) {
	if doc.prog != nil {
		scope := enclosingFunction(doc.prog, line, char)
		if sym, ok := lookupSymbol(collectSymbols(doc.pool, doc.prog), scope, name, line, char); ok {
			kind := "Variable"
			if sym.function != nil {
				kind = "Function"
			}
			return fmt.Sprintf("```lps\n%s\n```\n%s", sym.detail(), kind), true
		}
	}
	if b, ok := typecheck.LookupFunction(name); ok {
		return fmt.Sprintf("```lps\n%s\n```\nBuilt-in function", builtinSignature(b)), true
	}
	if v, ok := typecheck.LookupVariable(name); ok {
		return fmt.Sprintf("```lps\n%s %s\n```\nBuilt-in variable", v.Type, v.Name), true
	}
	return "", false
}

func builtinSignature(b *typecheck.Builtin) string {
	args := fmt.Sprintf("%d", b.MinArgs)
	if b.MaxArgs != b.MinArgs {
		args = fmt.Sprintf("%d-%d", b.MinArgs, b.MaxArgs)
	}
	result := b.Result.String()
	if b.ResultFollowsArg {
		result = "T"
	}
	return fmt.Sprintf("%s %s(%s args)", result, b.Name, args)
}

func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	doc, err := s.cache.get(params.TextDocument.URI)
	if err != nil {
		log.Error().Err(err).Str("call", "Completion").Msg("failed to get document")
		return &protocol.CompletionList{IsIncomplete: false, Items: nil}, nil
	}

	var items []protocol.CompletionItem
	for _, keyword := range token.Keywords() {
		items = append(items, protocol.CompletionItem{
			Label:  keyword,
			Kind:   completionKeyword,
			Detail: "keyword",
		})
	}
	for _, name := range typecheck.BuiltinFunctions() {
		b, _ := typecheck.LookupFunction(name)
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       completionFunction,
			Detail:     builtinSignature(b),
			InsertText: name + "()",
		})
	}
	for _, name := range typecheck.BuiltinVariables() {
		v, _ := typecheck.LookupVariable(name)
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   completionVariable,
			Detail: fmt.Sprintf("%s (built-in)", v.Type),
		})
	}

	if doc.prog != nil {
		line, char := int(params.Position.Line), int(params.Position.Character)
		scope := enclosingFunction(doc.prog, line, char)
		seen := map[string]bool{}
		for _, sym := range collectSymbols(doc.pool, doc.prog) {
			if seen[sym.name] {
				continue
			}
			if sym.function != nil {
				seen[sym.name] = true
				items = append(items, protocol.CompletionItem{
					Label:      sym.name,
					Kind:       completionFunction,
					Detail:     sym.detail(),
					InsertText: sym.name + "()",
				})
				continue
			}
			if sym.scope != scope || !before(sym.span.Start, line, char) {
				continue
			}
			seen[sym.name] = true
			items = append(items, protocol.CompletionItem{
				Label:  sym.name,
				Kind:   completionVariable,
				Detail: sym.detail(),
			})
		}
	}

	return &protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}

func (s *Server) DocumentSymbol(ctx context.Context, params *protocol.DocumentSymbolParams) ([]interface{}, error) {
	doc, err := s.cache.get(params.TextDocument.URI)
	if err != nil {
		log.Error().Err(err).Str("call", "DocumentSymbol").Msg("failed to get document")
		return nil, err
	}
	if doc.prog == nil {
		return []interface{}{}, nil
	}
	var out []interface{}
	for _, sym := range collectSymbols(doc.pool, doc.prog) {
		// Parameters are listed as part of their function's detail.
		if sym.function == nil && sym.scope != "main" && isParam(doc, sym) {
			continue
		}
		kind := symbolVariable
		if sym.function != nil {
			kind = symbolFunction
		}
		r := toRange(sym.span)
		out = append(out, protocol.DocumentSymbol{
			Name:           sym.name,
			Detail:         sym.detail(),
			Kind:           kind,
			Range:          r,
			SelectionRange: r,
		})
	}
	return out, nil
}

func isParam(doc *document, sym symbol) bool {
	fn, ok := doc.prog.Function(sym.scope)
	if !ok {
		return false
	}
	for _, p := range fn.Params {
		if p.Name == sym.name && p.Span == sym.span {
			return true
		}
	}
	return false
}

func (s *Server) Definition(ctx context.Context, params *protocol.DefinitionParams) ([]protocol.Location, error) {
	doc, err := s.cache.get(params.TextDocument.URI)
	if err != nil {
		log.Error().Err(err).Str("call", "Definition").Msg("failed to get document")
		return nil, err
	}
	if doc.prog == nil {
		return nil, nil
	}
	line, char := int(params.Position.Line), int(params.Position.Character)
	tok, ok := tokenAt(doc.item.Text, line, char)
	if !ok || tok.Type != token.IDENT {
		return nil, nil
	}
	scope := enclosingFunction(doc.prog, line, char)
	sym, ok := lookupSymbol(collectSymbols(doc.pool, doc.prog), scope, tok.Literal, line, char)
	if !ok {
		return nil, nil
	}
	r := toRange(sym.span)
	if sym.function != nil {
		r.End = r.Start
	}
	return []protocol.Location{{URI: params.TextDocument.URI, Range: r}}, nil
}
