package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/jdbaldry/go-language-server-protocol/lsp/protocol"
	"github.com/lightplayer/lps/ast"
	"github.com/lightplayer/lps/parser"
	"github.com/lightplayer/lps/typecheck"
)

// document is an open text document with the result of its last analysis.
// pool and prog are kept when only type checking failed, so completion and
// hover keep working on code that is being edited.
type document struct {
	item protocol.TextDocumentItem
	pool *ast.Pool
	prog *ast.Program
	res  *typecheck.Result
	err  error
}

// analyze parses and type checks the document text.
func (d *document) analyze(ctx context.Context) {
	d.pool, d.prog, d.res, d.err = nil, nil, nil, nil
	filename := string(d.item.URI)
	pool, prog, err := parser.Parse(ctx, d.item.Text, parser.WithFilename(filename))
	if err != nil {
		d.err = err
		return
	}
	d.pool, d.prog = pool, prog
	d.res, d.err = typecheck.CheckProgram(pool, prog,
		typecheck.WithFilename(filename),
		typecheck.WithSource(d.item.Text))
}

type cache struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentURI]*document
}

func newCache() *cache {
	return &cache{docs: map[protocol.DocumentURI]*document{}}
}

func (c *cache) put(doc *document) error {
	if doc.item.URI == "" {
		return fmt.Errorf("document has no URI")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc.item.URI] = doc
	return nil
}

func (c *cache) get(uri protocol.DocumentURI) (*document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[uri]
	if !ok {
		return nil, fmt.Errorf("document %s not found in cache", uri)
	}
	return doc, nil
}

func (c *cache) remove(uri protocol.DocumentURI) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, uri)
}
