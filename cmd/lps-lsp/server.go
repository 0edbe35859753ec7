package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jdbaldry/go-language-server-protocol/jsonrpc2"
	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	"github.com/rs/zerolog/log"
)

// notifier sends notifications to the client. jsonrpc2.Conn implements it.
type notifier interface {
	Notify(ctx context.Context, method string, params interface{}) error
}

// Server answers language server requests for LPS documents.
type Server struct {
	name    string
	version string
	cache   *cache
	client  notifier
	exit    func()
}

// NewServer returns a server that publishes diagnostics through client.
func NewServer(name, version string, client notifier) *Server {
	return &Server{name: name, version: version, cache: newCache(), client: client}
}

// Handler dispatches requests by method name.
func (s *Server) Handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		log.Debug().Str("method", req.Method()).Msg("request")
		switch req.Method() {
		case "initialize":
			return reply(ctx, s.initialize(), nil)
		case "initialized":
			return reply(ctx, nil, nil)
		case "shutdown":
			return reply(ctx, nil, nil)
		case "exit":
			if s.exit != nil {
				s.exit()
			}
			return reply(ctx, nil, nil)
		case "textDocument/didOpen":
			return notification(ctx, reply, req, s.DidOpen)
		case "textDocument/didChange":
			return notification(ctx, reply, req, s.DidChange)
		case "textDocument/didSave":
			return notification(ctx, reply, req, s.DidSave)
		case "textDocument/didClose":
			return notification(ctx, reply, req, s.DidClose)
		case "textDocument/hover":
			return call(ctx, reply, req, s.Hover)
		case "textDocument/completion":
			return call(ctx, reply, req, s.Completion)
		case "textDocument/definition":
			return call(ctx, reply, req, s.Definition)
		case "textDocument/documentSymbol":
			return call(ctx, reply, req, s.DocumentSymbol)
		}
		return jsonrpc2.MethodNotFound(ctx, reply, req)
	}
}

func decode[P any](req jsonrpc2.Request) (*P, error) {
	var params P
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return nil, fmt.Errorf("%w: %s", jsonrpc2.ErrParse, err)
	}
	return &params, nil
}

func call[P, R any](ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request, fn func(context.Context, *P) (R, error)) error {
	params, err := decode[P](req)
	if err != nil {
		return reply(ctx, nil, err)
	}
	result, err := fn(ctx, params)
	return reply(ctx, result, err)
}

func notification[P any](ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request, fn func(context.Context, *P) error) error {
	params, err := decode[P](req)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, nil, fn(ctx, params))
}

func (s *Server) initialize() *protocol.InitializeResult {
	log.Info().Str("name", s.name).Str("version", s.version).Msg("initializing")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				Change:    protocol.Full,
				OpenClose: true,
			},
			CompletionProvider:     protocol.CompletionOptions{TriggerCharacters: []string{"."}},
			HoverProvider:          true,
			DefinitionProvider:     true,
			DocumentSymbolProvider: true,
		},
	}
}

func (s *Server) update(ctx context.Context, item protocol.TextDocumentItem) error {
	doc := &document{item: item}
	doc.analyze(ctx)
	if err := s.cache.put(doc); err != nil {
		return err
	}
	s.queueDiagnostics(item.URI)
	return nil
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	return s.update(ctx, params.TextDocument)
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	doc, err := s.cache.get(params.TextDocument.URI)
	if err != nil {
		log.Error().Err(err).Str("call", "DidChange").Msg("failed to get document")
		return err
	}
	item := doc.item
	item.Version = params.TextDocument.Version
	// Full sync: the last change holds the whole text.
	item.Text = params.ContentChanges[len(params.ContentChanges)-1].Text
	return s.update(ctx, item)
}

func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text == nil {
		return nil
	}
	doc, err := s.cache.get(params.TextDocument.URI)
	if err != nil {
		log.Error().Err(err).Str("call", "DidSave").Msg("failed to get document")
		return err
	}
	item := doc.item
	item.Text = *params.Text
	return s.update(ctx, item)
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cache.remove(params.TextDocument.URI)
	return nil
}
