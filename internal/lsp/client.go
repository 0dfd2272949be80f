// Package lsp implements the editor-side handle for a connected language
// server: the jsonrpc2 connection, the capability set recorded at
// initialize time, and the async pull-diagnostics request.
package lsp

import (
	"context"
	"io"
	"log"

	"github.com/sourcegraph/jsonrpc2"

	"quill/internal/diagnostic"
	"quill/internal/lsp/protocol"
)

// DiagnosticResult is the resolved outcome of one pull request.
type DiagnosticResult struct {
	Report protocol.DocumentDiagnosticReport
	Err    error
}

// DiagnosticClient is the already-connected server handle the pull engine
// consumes: an identity, a capability set, and an async request method.
type DiagnosticClient interface {
	ID() diagnostic.ServerID
	Name() string
	SupportsPullDiagnostics() bool
	DiagnosticOptions() *protocol.DiagnosticOptions

	// TextDocumentDiagnostic issues a pull request and returns a channel
	// that resolves with the server's report or error. It returns nil when
	// the request cannot be issued (feature unsupported, or no usable
	// document identifier); callers skip nil futures.
	TextDocumentDiagnostic(doc protocol.TextDocumentIdentifier, previousResultID string) <-chan DiagnosticResult
}

// Client is a jsonrpc2-backed DiagnosticClient talking LSP to one server.
type Client struct {
	id   diagnostic.ServerID
	name string
	conn *jsonrpc2.Conn
	ctx  context.Context
	caps protocol.ServerCapabilities
}

// NewClient wraps an established server connection. The reader/writer pair
// usually comes from a spawned server process's stdout/stdin.
func NewClient(ctx context.Context, id diagnostic.ServerID, name string, rw io.ReadWriteCloser) *Client {
	c := &Client{id: id, name: name, ctx: ctx}
	stream := jsonrpc2.NewBufferedStream(rw, jsonrpc2.VSCodeObjectCodec{})
	c.conn = jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(c.handle))
	return c
}

// NewClientIO combines a reader and writer into the ReadWriteCloser NewClient
// expects, closing neither.
func NewClientIO(in io.Reader, out io.Writer) io.ReadWriteCloser {
	return rwc{in, out}
}

// rwc combines a reader and writer into a single ReadWriteCloser
type rwc struct {
	io.Reader
	io.Writer
}

// Close implements io.Closer
func (rwc) Close() error {
	return nil
}

// Initialize performs the LSP handshake and records the server's
// capability set.
func (c *Client) Initialize(ctx context.Context, rootURI string) error {
	params := protocol.InitializeParams{
		RootURI: rootURI,
		ClientInfo: &protocol.ClientInfo{
			Name: "quill",
		},
		Capabilities: protocol.ClientCapabilities{
			TextDocument: protocol.TextDocumentClientCapabilities{
				Diagnostic: &protocol.DiagnosticClientCapabilities{
					RelatedDocumentSupport: true,
				},
			},
		},
	}

	var result protocol.InitializeResult
	if err := c.conn.Call(ctx, "initialize", params, &result); err != nil {
		return err
	}
	c.caps = result.Capabilities

	return c.conn.Notify(ctx, "initialized", struct{}{})
}

// ID returns the session-scoped server identity.
func (c *Client) ID() diagnostic.ServerID {
	return c.id
}

// Name returns the configured server name (stable across sessions, used as
// the persistent cache key).
func (c *Client) Name() string {
	return c.name
}

// Capabilities returns the capability set recorded at initialize time.
func (c *Client) Capabilities() protocol.ServerCapabilities {
	return c.caps
}

// SupportsPullDiagnostics reports whether the server advertises the
// textDocument/diagnostic feature.
func (c *Client) SupportsPullDiagnostics() bool {
	return c.caps.DiagnosticProvider != nil
}

// DiagnosticOptions returns the advertised diagnostic capability, or nil.
func (c *Client) DiagnosticOptions() *protocol.DiagnosticOptions {
	return c.caps.DiagnosticProvider
}

// TextDocumentDiagnostic issues a textDocument/diagnostic request. The
// request runs on its own goroutine; the returned channel resolves exactly
// once. Response deserialization failures surface as the channel's Err.
func (c *Client) TextDocumentDiagnostic(doc protocol.TextDocumentIdentifier, previousResultID string) <-chan DiagnosticResult {
	if !c.SupportsPullDiagnostics() {
		return nil
	}
	if doc.URI == "" {
		return nil
	}

	params := protocol.DocumentDiagnosticParams{
		TextDocument:     doc,
		PreviousResultID: previousResultID,
	}
	if opts := c.caps.DiagnosticProvider; opts != nil {
		params.Identifier = opts.Identifier
	}

	result := make(chan DiagnosticResult, 1)
	go func() {
		var report protocol.DocumentDiagnosticReport
		err := c.conn.Call(c.ctx, "textDocument/diagnostic", params, &report)
		result <- DiagnosticResult{Report: report, Err: err}
	}()
	return result
}

// DidOpen notifies the server that a document was opened.
func (c *Client) DidOpen(ctx context.Context, uri, languageID, text string, version int) error {
	return c.conn.Notify(ctx, "textDocument/didOpen", protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: languageID,
			Version:    version,
			Text:       text,
		},
	})
}

// DidChange notifies the server of a full-sync content change.
func (c *Client) DidChange(ctx context.Context, uri string, version int, text string) error {
	return c.conn.Notify(ctx, "textDocument/didChange", protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{URI: uri, Version: version},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: text}},
	})
}

// DidClose notifies the server that a document was closed.
func (c *Client) DidClose(ctx context.Context, uri string) error {
	return c.conn.Notify(ctx, "textDocument/didClose", protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
}

// Shutdown runs the shutdown/exit sequence and closes the connection.
func (c *Client) Shutdown(ctx context.Context) error {
	var result interface{}
	if err := c.conn.Call(ctx, "shutdown", nil, &result); err != nil {
		log.Printf("shutdown request to %s failed: %v", c.name, err)
	}
	if err := c.conn.Notify(ctx, "exit", nil); err != nil {
		log.Printf("exit notification to %s failed: %v", c.name, err)
	}
	return c.conn.Close()
}

// DisconnectNotify returns a channel closed when the connection drops.
func (c *Client) DisconnectNotify() <-chan struct{} {
	return c.conn.DisconnectNotify()
}

// handle processes incoming requests and notifications from the server.
// Pushed diagnostics and progress are outside this client's protocol
// subset; they are ignored rather than approximated.
func (c *Client) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "window/logMessage", "window/showMessage", "$/progress",
		"textDocument/publishDiagnostics", "telemetry/event":
		return nil, nil

	default:
		// Check if this is a notification (no ID)
		if req.ID == (jsonrpc2.ID{}) {
			// This is a notification, no response needed
			return nil, nil
		}
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "Method not implemented: " + req.Method}
	}
}
